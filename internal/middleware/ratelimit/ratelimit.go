package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter counts requests per client in fixed windows.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	hits    atomic.Int64
}

type window struct {
	start time.Time
	count int
}

// Config holds rate limiter configuration
type Config struct {
	Requests int
	Period   time.Duration
}

// DefaultConfig allows 60 requests per minute.
func DefaultConfig() Config {
	return Config{Requests: 60, Period: time.Minute}
}

func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.Requests <= 0 {
		config.Requests = def.Requests
	}
	if config.Period <= 0 {
		config.Period = def.Period
	}
	return &Limiter{
		clients: make(map[string]*window),
		limit:   config.Requests,
		period:  config.Period,
		now:     time.Now,
	}
}

// Allow records a request from key and reports whether it is within limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[key]
	if !ok || now.Sub(w.start) >= l.period {
		l.clients[key] = &window{start: now, count: 1}
		return true
	}
	w.count++
	if w.count > l.limit {
		l.hits.Add(1)
		return false
	}
	return true
}

// Prune forgets clients whose window ended and returns how many were dropped.
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for key, w := range l.clients {
		if now.Sub(w.start) >= l.period {
			delete(l.clients, key)
			n++
		}
	}
	return n
}

// Run prunes stale clients every interval until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Prune()
		case <-ctx.Done():
			return
		}
	}
}

func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Rejected counts requests refused since startup.
func (l *Limiter) Rejected() int64 {
	return l.hits.Load()
}

// Middleware limits requests whose method is in methods (all methods when
// empty), keyed by extractIP.
func (l *Limiter) Middleware(extractIP func(*http.Request) string, methods ...string) func(http.Handler) http.Handler {
	limited := make(map[string]bool, len(methods))
	for _, m := range methods {
		limited[m] = true
	}
	retryAfter := strconv.Itoa(int(l.period.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(limited) == 0 || limited[r.Method] {
				clientIP := extractIP(r)
				if !l.Allow(clientIP) {
					slog.WarnContext(r.Context(), "Rate limit exceeded",
						"client_ip", clientIP,
						"method", r.Method,
						"path", r.URL.Path)
					w.Header().Set("Retry-After", retryAfter)
					http.Error(w, "Terlalu banyak permintaan, coba lagi nanti.", http.StatusTooManyRequests)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
