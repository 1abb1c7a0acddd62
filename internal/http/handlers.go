package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"nannyledger/internal/auth"
	"nannyledger/internal/core"
	applog "nannyledger/internal/log"
	"nannyledger/internal/services"
	"nannyledger/internal/session"
)

type loginView struct {
	Title string
	Error string
}

type indexView struct {
	Title         string
	Flash         string
	FlashKind     string
	Ledger        services.Ledger
	Today         string
	MaxWorkdays   int
	MaxNoteLength int
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if sess, ok := session.FromContext(r.Context()); ok && sess.Authenticated {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.render(w, r, http.StatusOK, "login.html", loginView{Title: s.title})
	case http.MethodPost:
		s.handleLoginSubmit(w, r)
	default:
		MethodNotAllowed("GET, POST").Write(w)
	}
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context()).WithOperation(applog.OpLogin)

	p, err := ParseBody(w, r)
	if err != nil {
		http.Error(w, "Permintaan tidak valid", http.StatusBadRequest)
		return
	}

	if err := s.gate.Check(p.Get("password")); err != nil {
		if !errors.Is(err, auth.ErrWrongPassword) {
			s.internalError(w, r, applog.OpLogin, err)
			return
		}
		logger.Warn("Login rejected",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldErrorType, applog.ErrorTypeAuth)
		s.render(w, r, http.StatusUnauthorized, "login.html", loginView{Title: s.title, Error: "Password salah"})
		return
	}

	current, _ := session.FromContext(r.Context())
	fresh, err := s.sessions.Renew(r.Context(), current)
	if err != nil {
		s.internalError(w, r, applog.OpLogin, err)
		return
	}
	fresh.Authenticated = true
	if err := s.sessions.Save(r.Context(), w, fresh); err != nil {
		s.internalError(w, r, applog.OpLogin, err)
		return
	}

	logger.Info("Login succeeded")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		MethodNotAllowed("GET, POST").Write(w)
		return
	}
	sess, _ := session.FromContext(r.Context())
	if err := s.sessions.Destroy(r.Context(), w, sess); err != nil {
		applog.FromContext(r.Context()).Warn("Failed to delete session on logout",
			applog.FieldOperation, applog.OpLogout,
			applog.FieldError, err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		MethodNotAllowed("GET, HEAD").Write(w)
		return
	}

	ledger, err := s.ledger.Ledger(r.Context())
	if err != nil {
		s.internalError(w, r, applog.OpList, err)
		return
	}

	view := indexView{
		Title:         s.title,
		Ledger:        ledger,
		Today:         time.Now().Format("2006-01-02"),
		MaxWorkdays:   core.MaxWorkdays,
		MaxNoteLength: core.MaxNoteLength,
	}
	if sess, ok := session.FromContext(r.Context()); ok && sess.Flash != "" {
		view.FlashKind, view.Flash = sess.PopFlash()
		if err := s.sessions.Save(r.Context(), w, sess); err != nil {
			applog.FromContext(r.Context()).Error("Failed to save session",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeSession)
		}
	}

	s.render(w, r, http.StatusOK, "index.html", view)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		MethodNotAllowed("GET, HEAD").Write(w)
		return
	}
	m := s.tracer.GetMetrics()
	NewResponse().Header("Cache-Control", "no-store").JSON(map[string]any{
		"status":              "ok",
		"uptime_seconds":      int64(time.Since(s.started).Seconds()),
		"requests_total":      m.TotalRequests,
		"server_errors":       m.ServerErrors,
		"rate_limited":        s.limiter.Rejected(),
		"suspicious_requests": s.detector.SuspiciousRequests(),
	}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		MethodNotAllowed("GET, HEAD").Write(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ledger.Ping(ctx); err != nil {
		applog.FromContext(r.Context()).Error("Readiness check failed",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeDatabase)
		NewResponse().Status(http.StatusServiceUnavailable).JSON(map[string]string{
			"status": "unavailable",
		}).Write(w)
		return
	}
	NewResponse().JSON(map[string]string{"status": "ready"}).Write(w)
}
