package httputil

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const unknownClientIP = "unknown"

type clientIPKey struct{}

func ReadJsonBody(r *http.Request, dst interface{}) error {
	if r.Body == http.NoBody {
		return nil
	}

	d := json.NewDecoder(r.Body)

	return d.Decode(dst)
}

// ClientIP identifies the caller: first hop of X-Forwarded-For, then
// X-Real-IP, then a shared "unknown" bucket. RemoteAddr is deliberately not
// used; the service always sits behind a proxy that sets one of the two.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx != -1 {
			fwd = fwd[:idx]
		}
		if ip := strings.TrimSpace(fwd); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	return unknownClientIP
}

func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok && ip != "" {
		return ip
	}
	return unknownClientIP
}
