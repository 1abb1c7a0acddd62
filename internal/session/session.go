// Package session keeps per-browser state (login flag and flash message)
// behind a cookie, in memory or in Redis.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by a Store for unknown or expired ids.
var ErrNotFound = errors.New("session not found")

const (
	FlashSuccess = "success"
	FlashError   = "danger"
)

type Session struct {
	ID            string    `json:"id"`
	Authenticated bool      `json:"authenticated"`
	Flash         string    `json:"flash,omitempty"`
	FlashKind     string    `json:"flash_kind,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Store persists sessions by id.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// SetFlash queues a message for the next page view.
func (s *Session) SetFlash(kind, msg string) {
	s.FlashKind = kind
	s.Flash = msg
}

// PopFlash returns and clears the queued message.
func (s *Session) PopFlash() (kind, msg string) {
	kind, msg = s.FlashKind, s.Flash
	s.FlashKind, s.Flash = "", ""
	return kind, msg
}

func (s *Session) expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

type ctxKey struct{}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by Manager.Middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}
