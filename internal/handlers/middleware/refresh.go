package middleware

import (
	"context"
	"net/http"

	"github.com/mkuznecov/blogplatform/internal/handlers/render"
	"github.com/mkuznecov/blogplatform/internal/service/auth"
)

type refreshService interface {
	ReadRefreshToken(r *http.Request) (string, error)
	CheckRefresh(ctx context.Context, refresh string) (auth.RefreshClaims, error)
}

// RefreshMiddleware is the refresh guard: it reads the refresh token from
// its cookie, validates it against the stored device session and attaches
// the proven (user, device) pair to the context. Token rotation itself
// happens in the handler, the guard never consumes the token
func RefreshMiddleware(rs refreshService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			refresh, err := rs.ReadRefreshToken(r)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := rs.CheckRefresh(r.Context(), refresh)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := NewContextWithRefresh(r.Context(), RefreshIdentity{
				UserID:   claims.UserID,
				DeviceID: claims.DeviceID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
