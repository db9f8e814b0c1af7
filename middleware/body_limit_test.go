package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyLimit(t *testing.T) {
	const maxBytes = 16

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantNext   bool
	}{
		{
			name:       "body under limit",
			body:       strings.Repeat("a", maxBytes-1),
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "body exactly at limit",
			body:       strings.Repeat("a", maxBytes),
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "body one byte over",
			body:       strings.Repeat("a", maxBytes+1),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantNext:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var nextCalled bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				// the reader cap must still let the full in-limit body through
				b, err := io.ReadAll(r.Body)
				assert.NoError(t, err)
				assert.Len(t, b, len(tt.body))
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			NewBodyLimit(maxBytes).Handle(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNext, nextCalled)
		})
	}
}

func TestBodyLimitErrorShape(t *testing.T) {
	next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("next should not run")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader("oversized"))
	rec := httptest.NewRecorder()

	NewBodyLimit(1).Handle(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Payload Too Large", body.Error)
}

func TestBodyLimitChunkedBodyCapped(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		assert.Error(t, err)
	})

	// no Content-Length, so only the read-time cap can catch it
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(strings.Repeat("a", 32)))
	req.ContentLength = -1
	rec := httptest.NewRecorder()

	NewBodyLimit(16).Handle(next).ServeHTTP(rec, req)
}
