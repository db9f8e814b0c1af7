package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach/pkg/httputil"
	"outreach/pkg/ratelimit"
)

type stubLimiter struct {
	result *ratelimit.Result
	source string
}

func (s *stubLimiter) Allow(_ context.Context, source string) *ratelimit.Result {
	s.source = source
	return s.result
}

func TestRateLimitAllowed(t *testing.T) {
	resetAt := time.Now().Add(time.Minute)
	limiter := &stubLimiter{result: &ratelimit.Result{
		Allowed:   true,
		Limit:     100,
		Remaining: 57,
		ResetAt:   resetAt,
	}}

	var nextCalled bool
	next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		nextCalled = true
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
	req = req.WithContext(httputil.ContextWithClientIP(req.Context(), "10.0.0.1"))
	rec := httptest.NewRecorder()

	NewRateLimit(limiter).Handle(next).ServeHTTP(rec, req)

	assert.True(t, nextCalled)
	assert.Equal(t, "10.0.0.1", limiter.source)

	// telemetry headers go out on allowed requests too
	assert.Equal(t, "100", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "57", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, strconv.FormatInt(resetAt.Unix(), 10), rec.Header().Get("X-RateLimit-Reset"))
	assert.Empty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitDenied(t *testing.T) {
	resetAt := time.Now().Add(30 * time.Second)
	limiter := &stubLimiter{result: &ratelimit.Result{
		Allowed:   false,
		Limit:     100,
		Remaining: 0,
		ResetAt:   resetAt,
	}}

	next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("next should not run")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
	rec := httptest.NewRecorder()

	NewRateLimit(limiter).Handle(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retryAfter, 1)
	assert.LessOrEqual(t, retryAfter, 30)

	var body struct {
		Success    bool   `json:"success"`
		Error      string `json:"error"`
		Limit      int    `json:"limit"`
		Remaining  int    `json:"remaining"`
		Reset      int64  `json:"reset"`
		RetryAfter int    `json:"retryAfter"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Too Many Requests", body.Error)
	assert.Equal(t, 100, body.Limit)
	assert.Zero(t, body.Remaining)
	assert.Equal(t, resetAt.Unix(), body.Reset)
	assert.Equal(t, retryAfter, body.RetryAfter)
}

func TestRateLimitRetryAfterFloorsAtOne(t *testing.T) {
	limiter := &stubLimiter{result: &ratelimit.Result{
		Allowed: false,
		Limit:   100,
		ResetAt: time.Now().Add(-time.Second),
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
	rec := httptest.NewRecorder()

	NewRateLimit(limiter).Handle(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestLogResolvesClientIP(t *testing.T) {
	var gotIP string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotIP = httputil.ClientIPFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	rec := httptest.NewRecorder()

	Log(next).ServeHTTP(rec, req)

	assert.Equal(t, "203.0.113.7", gotIP)
}
