package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akarpovs/viewtube/internal/common"
	"github.com/akarpovs/viewtube/internal/dbx"
	"github.com/akarpovs/viewtube/internal/server/models"
)

const accountColumns = `id, handle, email, display_name, password_hash,
	avatar_url, cover_image_url, refresh_token, created_at, updated_at`

// PostgresRepository implements Repository over dbx.Querier (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.Querier
}

func NewPostgresRepository(db dbx.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.Handle, &a.Email, &a.DisplayName, &a.PasswordHash,
		&a.AvatarURL, &a.CoverImageURL, &a.RefreshToken, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (handle, email, display_name, password_hash, avatar_url, cover_image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + accountColumns

	row := r.db.QueryRowContext(ctx, query,
		account.Handle, account.Email, account.DisplayName,
		account.PasswordHash, account.AvatarURL, account.CoverImageURL)

	created, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrDuplicateAccount
		}
		return nil, err
	}
	return created, nil
}

func (r *PostgresRepository) FindByHandleOrEmail(ctx context.Context, handle, email string) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE handle = $1 OR email = $2`

	return scanAccount(r.db.QueryRowContext(ctx, query, handle, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1`

	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, displayName, email string) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET display_name = $2, email = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + accountColumns

	updated, err := scanAccount(r.db.QueryRowContext(ctx, query, id, displayName, email))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrDuplicateAccount
		}
		return nil, err
	}
	return updated, nil
}

func (r *PostgresRepository) UpdateAvatar(ctx context.Context, id, url string) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET avatar_url = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + accountColumns

	return scanAccount(r.db.QueryRowContext(ctx, query, id, url))
}

func (r *PostgresRepository) UpdateCoverImage(ctx context.Context, id, url string) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET cover_image_url = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + accountColumns

	return scanAccount(r.db.QueryRowContext(ctx, query, id, url))
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	query := `
		UPDATE accounts
		SET refresh_token = $2, updated_at = now()
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ClearRefreshToken(ctx context.Context, id string) error {
	query := `
		UPDATE accounts
		SET refresh_token = '', updated_at = now()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $2, updated_at = now()
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
