// Package repomanager provides the factory that hands out repositories bound
// to a *sql.DB or to a transaction handle.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/akarpovs/viewtube/internal/dbx"
	"github.com/akarpovs/viewtube/internal/server/repositories/accounts"
	"github.com/akarpovs/viewtube/internal/server/repositories/channels"
)

// RepositoryManager builds repositories over the given Querier. Passing a
// transaction handle yields transactional repositories.
type RepositoryManager interface {
	Accounts(db dbx.Querier) accounts.Repository
	Channels(db dbx.Querier) channels.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
