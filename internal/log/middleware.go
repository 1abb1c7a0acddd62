package log

import (
	"net/http"
)

// Middleware attaches a request-scoped logger carrying the request id,
// method and path to every request context.
func Middleware(base *Logger, requestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				FieldRequestID, requestID(r),
				FieldMethod, r.Method,
				FieldPath, r.URL.Path,
			)
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}
