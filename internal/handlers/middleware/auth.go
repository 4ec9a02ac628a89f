package middleware

import (
	"context"
	"net/http"

	"github.com/mkuznecov/blogplatform/internal/handlers/render"
	"github.com/mkuznecov/blogplatform/internal/models"
)

type authService interface {
	Authenticate(ctx context.Context, r *http.Request) (models.User, error)
}

// AuthMiddleware is the access guard: it admits requests carrying a valid
// bearer access token and attaches the resolved user to the context.
// Every failure answers the same 401, nothing about which check failed
// leaks out
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := as.Authenticate(r.Context(), r)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := NewContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware attaches the user when a valid token is present but
// admits anonymous requests too. Public read endpoints use it so MyStatus in
// like info reflects the viewer
func OptionalAuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "" {
				if user, err := as.Authenticate(r.Context(), r); err == nil {
					r = r.WithContext(NewContextWithUser(r.Context(), user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
