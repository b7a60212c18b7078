package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/akarpovs/viewtube/internal/dbx"
	"github.com/akarpovs/viewtube/internal/server/migrations"
	"github.com/akarpovs/viewtube/internal/server/repositories/accounts"
	"github.com/akarpovs/viewtube/internal/server/repositories/channels"
)

// PostgresManager is the production RepositoryManager.
type PostgresManager struct{}

func NewPostgresManager() *PostgresManager {
	return &PostgresManager{}
}

func (m *PostgresManager) Accounts(db dbx.Querier) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

func (m *PostgresManager) Channels(db dbx.Querier) channels.Repository {
	return channels.NewPostgresRepository(db)
}

func (m *PostgresManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

// OpenDB opens a pgx-backed database handle and verifies connectivity.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}
