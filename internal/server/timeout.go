package server

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware puts a deadline on each REST request's context.
// Cancellation is cooperative: the store and generator calls carry the
// context, so a slow turn is cut off there rather than mid-write. The
// websocket route is mounted outside this middleware because its
// connections are long-lived.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
