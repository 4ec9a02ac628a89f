package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/mkuznecov/blogplatform/internal/handlers/render"
)

// BasicAuthMiddleware protects the admin endpoints with HTTP basic auth
func BasicAuthMiddleware(login string, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotLogin, gotPassword, ok := r.BasicAuth()

			loginMatch := subtle.ConstantTimeCompare([]byte(gotLogin), []byte(login)) == 1
			passwordMatch := subtle.ConstantTimeCompare([]byte(gotPassword), []byte(password)) == 1

			if !ok || !loginMatch || !passwordMatch {
				w.Header().Set("WWW-Authenticate", `Basic realm="restricted"`)
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
