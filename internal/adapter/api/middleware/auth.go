package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
)

const APIKeyHeader = "X-API-Key"

// AnonCaller is the identity sentinel used when nothing identifies the
// caller.
const AnonCaller = "anon"

type callerContextKey struct{}

// Auth is a middleware factory that enforces the shared API secret passed
// in the X-API-Key header. The comparison is constant-time so the rejection
// path leaks nothing about the secret, and the error body never reveals
// whether any resource exists. Rejected requests terminate here, before any
// counter increment or database read.
func Auth(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)
			if apiKey == "" {
				logger.Warn("API key missing from request", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
				http.Error(w, "Unauthorized: API key required", http.StatusUnauthorized)
				return
			}

			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(secret)) != 1 {
				logger.Warn("invalid API key provided", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
				http.Error(w, "Unauthorized: Invalid API key", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), callerContextKey{}, apiKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Caller resolves the identity used for per-caller accounting: the
// authenticated token when present, the network origin otherwise, and the
// anon sentinel when neither is known.
func Caller(r *http.Request) string {
	if token, ok := r.Context().Value(callerContextKey{}).(string); ok && token != "" {
		return token
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return AnonCaller
}
