// middleware/logging.go
package middleware

import (
	"net/http"
	"time"

	appcontext "hotelpulse/internal/context"
	"hotelpulse/internal/logging"
)

type respLogger struct {
	http.ResponseWriter
	status int
}

func (l *respLogger) WriteHeader(code int) {
	l.status = code
	l.ResponseWriter.WriteHeader(code)
}

// Logging emits one structured line per request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lw := &respLogger{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(lw, r)
		dur := time.Since(start)

		logging.Info("HTTP request completed",
			"request_id", appcontext.GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", lw.status,
			"duration_ms", dur.Milliseconds(),
		)
	})
}
