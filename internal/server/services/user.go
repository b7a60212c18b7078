// Package services contains the server-side business logic. This file
// implements UserService: registration with media upload, credential
// verification, session issuance/rotation, and profile mutation.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/akarpovs/viewtube/internal/common"
	"github.com/akarpovs/viewtube/internal/server/auth"
	"github.com/akarpovs/viewtube/internal/server/mediastore"
	"github.com/akarpovs/viewtube/internal/server/models"
	"github.com/akarpovs/viewtube/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a longer-lived refresh
// token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides account and session operations:
//   - Register: create accounts, uploading their media
//   - Login: verify credentials and mint a session pair
//   - Refresh: rotate the refresh token and mint a new pair
//   - Logout: clear the stored refresh token
//   - profile/avatar/cover/password mutation
type UserService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	tokens *auth.TokenMaker
	media  mediastore.Store
}

// NewUserService constructs a UserService from its collaborators.
func NewUserService(db *sql.DB, repos repomanager.RepositoryManager, tokens *auth.TokenMaker, media mediastore.Store) *UserService {
	return &UserService{db: db, repos: repos, tokens: tokens, media: media}
}

// RegisterParams carries registration input. AvatarPath and CoverImagePath
// are local temp files; the transport layer removes them after the call,
// whatever the outcome.
type RegisterParams struct {
	Handle         string
	Email          string
	DisplayName    string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Register creates a new account. Handle and email are stored normalized;
// either colliding with an existing account yields ErrDuplicateAccount. The
// unique indexes remain the authoritative guard under concurrent
// registration.
func (s *UserService) Register(ctx context.Context, p RegisterParams) (*models.Profile, error) {
	if p.Handle == "" || p.Email == "" || p.DisplayName == "" || p.Password == "" || p.AvatarPath == "" {
		return nil, fmt.Errorf("%w: handle, email, displayName, password and avatar are required", common.ErrValidation)
	}

	handle := normalize(p.Handle)
	email := normalize(p.Email)

	repo := s.repos.Accounts(s.db)

	// Friendly pre-check; a race loser is still caught by the unique index.
	if _, err := repo.FindByHandleOrEmail(ctx, handle, email); err == nil {
		return nil, common.ErrDuplicateAccount
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("error checking existing account: %w", err)
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	avatarURL, err := s.media.Upload(ctx, p.AvatarPath)
	if err != nil {
		return nil, err
	}

	coverURL := ""
	if p.CoverImagePath != "" {
		coverURL, err = s.media.Upload(ctx, p.CoverImagePath)
		if err != nil {
			return nil, err
		}
	}

	account, err := repo.Create(ctx, &models.Account{
		Handle:        handle,
		Email:         email,
		DisplayName:   strings.TrimSpace(p.DisplayName),
		PasswordHash:  hash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	})
	if err != nil {
		return nil, err
	}

	return account.PublicProfile(), nil
}

// Login verifies identity (handle or email) and password. Unknown identity
// and wrong password both surface as ErrInvalidCredentials. On success the
// issued refresh token is persisted on the account before the pair is
// returned.
func (s *UserService) Login(ctx context.Context, identity, password string) (*models.Profile, *TokenPair, error) {
	if identity == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: identity and password are required", common.ErrValidation)
	}

	repo := s.repos.Accounts(s.db)
	identity = normalize(identity)

	account, err := repo.FindByHandleOrEmail(ctx, identity, identity)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("error looking up account: %w", err)
	}

	if err := auth.CheckPassword(password, account.PasswordHash); err != nil {
		return nil, nil, common.ErrInvalidCredentials
	}

	pair, err := s.issueSession(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	return account.PublicProfile(), pair, nil
}

// Refresh verifies the presented refresh token and rotates the session.
// Signature/expiry failures yield ErrInvalidToken; a token that verifies but
// does not match the stored value yields ErrTokenMismatch (treated as
// replayed — rotation is the only revocation mechanism). The old token is
// invalid the moment the new one is persisted.
func (s *UserService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	accountID, err := s.tokens.ParseRefreshToken(presented)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	repo := s.repos.Accounts(s.db)
	account, err := repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error loading account: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(account.RefreshToken), []byte(presented)) != 1 {
		return nil, common.ErrTokenMismatch
	}

	return s.issueSession(ctx, account)
}

// Logout clears the stored refresh token. Idempotent: logging out twice or
// with no active session is not an error.
func (s *UserService) Logout(ctx context.Context, accountID string) error {
	if err := s.repos.Accounts(s.db).ClearRefreshToken(ctx, accountID); err != nil {
		return fmt.Errorf("error clearing refresh token: %w", err)
	}
	return nil
}

// CurrentUser returns the public projection of the authenticated account.
func (s *UserService) CurrentUser(ctx context.Context, accountID string) (*models.Profile, error) {
	account, err := s.repos.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account.PublicProfile(), nil
}

// UpdateProfile replaces display name and email together; partial updates
// are rejected.
func (s *UserService) UpdateProfile(ctx context.Context, accountID, displayName, email string) (*models.Profile, error) {
	if displayName == "" || email == "" {
		return nil, fmt.Errorf("%w: displayName and email are required together", common.ErrValidation)
	}

	account, err := s.repos.Accounts(s.db).UpdateProfile(ctx, accountID, strings.TrimSpace(displayName), normalize(email))
	if err != nil {
		return nil, err
	}
	return account.PublicProfile(), nil
}

// UpdateAvatar uploads the new avatar, deletes the previous asset, and only
// then persists the new reference. If deleting the old asset fails the swap
// is aborted and the stored reference stays authoritative.
func (s *UserService) UpdateAvatar(ctx context.Context, accountID, localPath string) (*models.Profile, error) {
	if localPath == "" {
		return nil, fmt.Errorf("%w: avatar file is required", common.ErrValidation)
	}
	return s.replaceMedia(ctx, accountID, localPath,
		func(a *models.Account) string { return a.AvatarURL },
		s.repos.Accounts(s.db).UpdateAvatar)
}

// UpdateCoverImage replaces the cover image with the same swap discipline as
// UpdateAvatar. The previous cover may be absent.
func (s *UserService) UpdateCoverImage(ctx context.Context, accountID, localPath string) (*models.Profile, error) {
	if localPath == "" {
		return nil, fmt.Errorf("%w: cover image file is required", common.ErrValidation)
	}
	return s.replaceMedia(ctx, accountID, localPath,
		func(a *models.Account) string { return a.CoverImageURL },
		s.repos.Accounts(s.db).UpdateCoverImage)
}

// ChangePassword verifies the old password, re-hashes the new one and
// returns only after the write has been confirmed by the store.
func (s *UserService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: old and new passwords are required", common.ErrValidation)
	}

	repo := s.repos.Accounts(s.db)
	account, err := repo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := auth.CheckPassword(oldPassword, account.PasswordHash); err != nil {
		return common.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := repo.SetPassword(ctx, accountID, hash); err != nil {
		return fmt.Errorf("error persisting password: %w", err)
	}
	return nil
}

// --- helpers below ---

// issueSession mints a token pair and persists the refresh token on the
// account row before returning. A persistence failure is surfaced as
// ErrTokenGeneration, never swallowed. Concurrent calls for the same account
// race on the single-row UPDATE; the last writer wins and the loser's token
// fails the mismatch check on its next use.
func (s *UserService) issueSession(ctx context.Context, account *models.Account) (*TokenPair, error) {
	access, err := s.tokens.MintAccessToken(account.ID, account.Handle, account.DisplayName, account.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTokenGeneration, err)
	}
	refresh, err := s.tokens.MintRefreshToken(account.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTokenGeneration, err)
	}

	if err := s.repos.Accounts(s.db).SetRefreshToken(ctx, account.ID, refresh); err != nil {
		return nil, fmt.Errorf("%w: persisting refresh token: %v", common.ErrTokenGeneration, err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// replaceMedia is the shared avatar/cover swap: upload new, delete old,
// persist new. On old-asset deletion failure the freshly uploaded object is
// removed best-effort and the account is left unchanged.
func (s *UserService) replaceMedia(ctx context.Context, accountID, localPath string,
	current func(*models.Account) string,
	persist func(ctx context.Context, id, url string) (*models.Account, error),
) (*models.Profile, error) {
	account, err := s.repos.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	newURL, err := s.media.Upload(ctx, localPath)
	if err != nil {
		return nil, err
	}

	if old := current(account); old != "" {
		if err := s.media.Delete(ctx, old); err != nil {
			_ = s.media.Delete(ctx, newURL)
			return nil, fmt.Errorf("%w: deleting previous asset: %v", common.ErrMediaOperation, err)
		}
	}

	updated, err := persist(ctx, accountID, newURL)
	if err != nil {
		return nil, err
	}
	return updated.PublicProfile(), nil
}
