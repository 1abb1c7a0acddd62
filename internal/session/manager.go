package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const (
	CookieName = "nanny_session"
	DefaultTTL = 12 * time.Hour
)

// Manager binds sessions to requests through a cookie.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(store Store, ttl time.Duration, secureCookie bool) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:  store,
		ttl:    ttl,
		secure: secureCookie,
		now:    time.Now,
	}
}

// Load returns the request's session, or a fresh unsaved one when the cookie
// is missing, unknown or expired.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	ctx := r.Context()
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		s, err := m.store.Get(ctx, c.Value)
		switch {
		case err == nil && !s.expired(m.now()):
			return s, nil
		case err == nil:
			_ = m.store.Delete(ctx, s.ID)
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
	}
	return m.newSession()
}

func (m *Manager) newSession() (*Session, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}
	now := m.now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}, nil
}

// Save persists s and (re)sends its cookie.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if err := m.store.Save(ctx, s); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Renew moves s to a fresh id, carrying over its flash and
// dropping the old one. Call it on login.
func (m *Manager) Renew(ctx context.Context, s *Session) (*Session, error) {
	fresh, err := m.newSession()
	if err != nil {
		return nil, err
	}
	if s != nil {
		fresh.Flash, fresh.FlashKind = s.Flash, s.FlashKind
		if err := m.store.Delete(ctx, s.ID); err != nil {
			slog.WarnContext(ctx, "Failed to drop previous session", "error", err)
		}
	}
	return fresh, nil
}

// Destroy deletes s and expires its cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	if s == nil {
		return nil
	}
	return m.store.Delete(ctx, s.ID)
}

// Middleware attaches the request's session to its context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Load(r)
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to load session", "error", err)
			http.Error(w, "Session unavailable", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}
