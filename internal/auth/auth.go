// Package auth gates the ledger behind a single shared password.
package auth

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is used when neither a hash nor a password is configured.
const DefaultPassword = "changeme"

var ErrWrongPassword = errors.New("wrong password")

// Gate checks submitted passwords against a bcrypt hash.
type Gate struct {
	hash []byte
}

// NewGate prefers a precomputed bcrypt hash and otherwise hashes the plain
// password at startup.
func NewGate(hash, password string) (*Gate, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("invalid APP_PASSWORD_HASH: %w", err)
		}
		return &Gate{hash: []byte(hash)}, nil
	}

	if password == "" {
		password = DefaultPassword
	}
	if password == DefaultPassword {
		slog.Warn("Using the default ledger password; set APP_PASSWORD or APP_PASSWORD_HASH")
	}
	h, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &Gate{hash: []byte(h)}, nil
}

// Check returns ErrWrongPassword when password does not match.
func (g *Gate) Check(password string) error {
	err := bcrypt.CompareHashAndPassword(g.hash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrWrongPassword
	}
	if err != nil {
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
