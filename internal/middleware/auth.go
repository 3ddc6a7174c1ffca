package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// openPaths are reachable without a token.
var openPaths = map[string]bool{
	"/":        true,
	"/health":  true,
	"/metrics": true,
}

// APITokenAuth validates the bearer token from the Authorization header.
// An empty configured token disables authentication.
func APITokenAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || openPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			// Support both "Bearer <token>" and "<token>" formats
			presented := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if presented == "" {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			// Constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				http.Error(w, "invalid API token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
