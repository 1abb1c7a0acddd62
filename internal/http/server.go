package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"nannyledger/internal/auth"
	"nannyledger/internal/core"
	applog "nannyledger/internal/log"
	"nannyledger/internal/middleware/ratelimit"
	"nannyledger/internal/middleware/security"
	"nannyledger/internal/middleware/trace"
	"nannyledger/internal/services"
	"nannyledger/internal/session"
	appweb "nannyledger/web"
)

// Options wires the server's collaborators. Ledger, Gate and Sessions are
// required; the rest fall back to defaults.
type Options struct {
	Addr     string
	Title    string
	Ledger   *services.LedgerService
	Gate     *auth.Gate
	Sessions *session.Manager
	Limiter  *ratelimit.Limiter
	Detector *security.Detector
	Headers  security.HeadersConfig
	Logger   *applog.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	ledger    *services.LedgerService
	gate      *auth.Gate
	sessions  *session.Manager
	tracer    *trace.Middleware
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	logger    *applog.Logger
	title     string
	started   time.Time
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options) (*Server, error) {
	if opts.Ledger == nil || opts.Gate == nil || opts.Sessions == nil {
		return nil, fmt.Errorf("http server needs a ledger, a password gate and a session manager")
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
	}
	if opts.Detector == nil {
		opts.Detector = security.NewDetector()
	}
	if opts.Headers.CSP == "" {
		opts.Headers = security.DefaultHeadersConfig()
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Title == "" {
		opts.Title = "Buku Gaji Pengasuh"
	}

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates: t,
		ledger:    opts.Ledger,
		gate:      opts.Gate,
		sessions:  opts.Sessions,
		tracer:    trace.NewMiddleware(opts.Detector.ExtractClientIP),
		limiter:   opts.Limiter,
		detector:  opts.Detector,
		logger:    opts.Logger.WithComponent(applog.ComponentHTTP),
		title:     opts.Title,
		started:   time.Now(),
	}

	mux := http.NewServeMux()

	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	mux.Handle("/", s.requireAuth(http.HandlerFunc(s.handleIndex)))
	mux.Handle("/entries", s.requireAuth(http.HandlerFunc(s.handleCreateEntry)))
	mux.Handle("/entries/delete", s.requireAuth(http.HandlerFunc(s.handleDeleteEntry)))
	mux.Handle("/settings", s.requireAuth(http.HandlerFunc(s.handleSettings)))
	mux.Handle("/export.csv", s.requireAuth(http.HandlerFunc(s.handleExport)))

	var handler http.Handler = mux
	handler = s.sessions.Middleware(handler)
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, http.MethodPost)(handler)
	handler = security.NewHeadersMiddleware(opts.Headers).Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = applog.Middleware(s.logger, trace.RequestIDFromRequest)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"rupiah":  core.FormatRupiah,
		"tanggal": core.FormatDateID,
	}
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down", applog.FieldOperation, applog.OpShutdown)
	return s.Server.Shutdown(ctx)
}

// requireAuth sends visitors without a logged-in session to the login page.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok || !sess.Authenticated {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		applog.FromContext(r.Context()).Error("Template render failed",
			applog.FieldOperation, applog.OpRender,
			"template", name,
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeTemplate)
	}
}

// redirectWithFlash stores a message in the session and sends the browser
// back to the ledger view.
func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if sess, ok := session.FromContext(r.Context()); ok {
		sess.SetFlash(kind, msg)
		if err := s.sessions.Save(r.Context(), w, sess); err != nil {
			applog.FromContext(r.Context()).Error("Failed to save session",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeSession)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	applog.FromContext(r.Context()).Error("Request failed",
		applog.FieldOperation, op,
		applog.FieldError, err,
		applog.FieldErrorType, applog.ErrorTypeInternal)
	http.Error(w, "Terjadi kesalahan server", http.StatusInternalServerError)
}
