// Package accounts declares the repository contract for account records:
// creation under uniqueness constraints, lookups, profile/media/password
// mutations, and custody of the stored refresh-token value.
package accounts

import (
	"context"

	"github.com/akarpovs/viewtube/internal/server/models"
)

// Repository defines persistence operations over account records.
//
// All mutations are single-row atomic UPDATEs; that atomicity is the only
// concurrency guard the service layer relies on.
type Repository interface {
	// Create inserts a new account. A handle or email collision returns
	// common.ErrDuplicateAccount (the unique indexes are the source of truth).
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// FindByHandleOrEmail returns the account matching either field, or
	// common.ErrNotFound. Inputs are expected normalized.
	FindByHandleOrEmail(ctx context.Context, handle, email string) (*models.Account, error)

	// GetByID returns the account with the given id, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// UpdateProfile replaces display name and email together.
	UpdateProfile(ctx context.Context, id, displayName, email string) (*models.Account, error)

	// UpdateAvatar and UpdateCoverImage replace the stored media reference.
	UpdateAvatar(ctx context.Context, id, url string) (*models.Account, error)
	UpdateCoverImage(ctx context.Context, id, url string) (*models.Account, error)

	// SetRefreshToken stores the account's single valid refresh token.
	SetRefreshToken(ctx context.Context, id, token string) error

	// ClearRefreshToken removes the stored refresh token. Idempotent.
	ClearRefreshToken(ctx context.Context, id string) error

	// SetPassword replaces the stored password hash.
	SetPassword(ctx context.Context, id, passwordHash string) error
}
