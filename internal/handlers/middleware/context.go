package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkuznecov/blogplatform/internal/models"
)

type ctxKey string

const (
	userKey    ctxKey = "user"
	refreshKey ctxKey = "refresh"
)

// RefreshIdentity is what the refresh guard proves about the caller:
// a validated (user, device) pair
type RefreshIdentity struct {
	UserID   uuid.UUID
	DeviceID uuid.UUID
}

func NewContextWithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

func NewContextWithRefresh(ctx context.Context, id RefreshIdentity) context.Context {
	return context.WithValue(ctx, refreshKey, id)
}

func RefreshFromContext(ctx context.Context) (RefreshIdentity, bool) {
	id, ok := ctx.Value(refreshKey).(RefreshIdentity)
	return id, ok
}
