package middleware

import (
	"net/http"

	"outreach/pkg/errutil"
	"outreach/pkg/httputil"
)

// BodyLimit rejects oversized payloads before any further stage runs. A body
// of exactly maxBytes passes; one byte more is a 413.
type BodyLimit struct {
	maxBytes int64
}

func NewBodyLimit(maxBytes int64) *BodyLimit {
	return &BodyLimit{maxBytes: maxBytes}
}

func (m *BodyLimit) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > m.maxBytes {
			httputil.ReturnServerResponse(w, nil, errutil.PayloadTooLargeError())
			return
		}

		// chunked bodies have no Content-Length; cap them at read time
		r.Body = http.MaxBytesReader(w, r.Body, m.maxBytes)

		next.ServeHTTP(w, r)
	})
}
