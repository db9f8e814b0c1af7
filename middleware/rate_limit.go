package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"outreach/pkg/httputil"
	"outreach/pkg/ratelimit"
)

type RateLimiter interface {
	Allow(ctx context.Context, source string) *ratelimit.Result
}

// RateLimit gates requests per source identity and stamps rate-limit
// telemetry headers on every response so callers can self-throttle.
type RateLimit struct {
	limiter RateLimiter
}

func NewRateLimit(limiter RateLimiter) *RateLimit {
	return &RateLimit{limiter: limiter}
}

type rateLimitedResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Limit      int    `json:"limit"`
	Remaining  int    `json:"remaining"`
	Reset      int64  `json:"reset"`
	RetryAfter int    `json:"retryAfter"`
}

func (m *RateLimit) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		res := m.limiter.Allow(ctx, httputil.ClientIPFromContext(ctx))

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			retryAfter := int(math.Ceil(res.RetryAfter(time.Now()).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			httputil.WriteJson(w, http.StatusTooManyRequests, &rateLimitedResponse{
				Success:    false,
				Error:      "Too Many Requests",
				Limit:      res.Limit,
				Remaining:  0,
				Reset:      res.ResetAt.Unix(),
				RetryAfter: retryAfter,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
