package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/akarpovs/viewtube/internal/common"
)

// HashPassword returns the bcrypt hash of a plaintext password. bcrypt salts
// internally, so equal inputs produce distinct hashes.
func HashPassword(password string) (string, error) {
	const op = "auth.HashPassword"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash. The comparison is
// constant-time inside bcrypt. A non-match surfaces as
// common.ErrInvalidCredentials.
func CheckPassword(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return common.ErrInvalidCredentials
	}
	return nil
}
