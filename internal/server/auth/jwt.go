// Package auth implements the credential primitives: JWT minting/parsing for
// both token kinds and password hashing.
//
// Access tokens are short-lived and self-verifying: they carry the account's
// display claims and checking one requires no storage lookup. Refresh tokens
// are longer-lived, carry only the account id, and are only as valid as the
// copy stored on the account row.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/akarpovs/viewtube/internal/common"
)

// AccessClaims is the claim set of an access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	AccountID   string `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// RefreshClaims is the claim set of a refresh token: account id only.
type RefreshClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"id"`
}

// TokenMaker mints and parses both token kinds. The two secrets are
// independent so a refresh token never verifies as an access token or vice
// versa.
type TokenMaker struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	clock         clockwork.Clock
}

// NewTokenMaker constructs a TokenMaker. Pass clockwork.NewRealClock outside
// of tests.
func NewTokenMaker(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, clock clockwork.Clock) *TokenMaker {
	return &TokenMaker{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		clock:         clock,
	}
}

// MintAccessToken signs a short-lived access token carrying the account's
// display claims.
func (m *TokenMaker) MintAccessToken(accountID, handle, displayName, email string) (string, error) {
	now := m.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
		AccountID:   accountID,
		Handle:      handle,
		DisplayName: displayName,
		Email:       email,
	})
	return token.SignedString(m.accessSecret)
}

// MintRefreshToken signs a longer-lived refresh token carrying the account id.
func (m *TokenMaker) MintRefreshToken(accountID string) (string, error) {
	now := m.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
		},
		AccountID: accountID,
	})
	return token.SignedString(m.refreshSecret)
}

// ParseAccessToken verifies signature and expiry of an access token and
// returns its claims. Failures surface as common.ErrInvalidToken.
func (m *TokenMaker) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(tokenStr, claims, m.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefreshToken verifies signature and expiry of a refresh token and
// returns the account id it was issued to. This is only the cryptographic
// half of refresh verification; the stored-value match lives in the service.
func (m *TokenMaker) ParseRefreshToken(tokenStr string) (string, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenStr, claims, m.refreshSecret); err != nil {
		return "", err
	}
	return claims.AccountID, nil
}

func (m *TokenMaker) parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil || !token.Valid {
		return common.ErrInvalidToken
	}
	return nil
}
