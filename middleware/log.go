package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"outreach/pkg/httputil"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Log wraps the whole router: resolves the caller identity into the request
// context and logs one line per request.
func Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			start = time.Now()
			ip    = httputil.ClientIP(r)
			ctx   = httputil.ContextWithClientIP(r.Context(), ip)
			sw    = &statusWriter{ResponseWriter: w, status: http.StatusOK}
		)

		next.ServeHTTP(sw, r.WithContext(ctx))

		log.Ctx(ctx).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("source_ip", ip).
			Int("status", sw.status).
			Dur("latency", time.Since(start)).
			Msg("")
	})
}
