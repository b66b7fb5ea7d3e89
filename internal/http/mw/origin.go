package mw

import (
	"log/slog"
	"net/http"
)

// RequireOrigin returns middleware that rejects requests whose Origin header
// is not accepted by the allowed predicate. The token intake endpoint sits
// behind this: only pages on the product's own origins may post tokens.
// Requests without an Origin header are rejected too.
func RequireOrigin(allowed func(origin string) bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !allowed(origin) {
				logger.Warn("rejected token post from disallowed origin", "origin", origin, "path", r.URL.Path)
				http.Error(w, "origin not allowed", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
