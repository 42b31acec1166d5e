package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// Throttle is a middleware factory applying a process-global
// requests-per-second cap in front of the whole router. It is a coarse
// overload guard; per-caller accounting happens in the admission controller
// behind it.
func Throttle(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
