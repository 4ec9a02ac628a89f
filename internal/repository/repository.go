package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mkuznecov/blogplatform/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// Must return apperrors.ErrLoginAlreadyExists or apperrors.ErrEmailAlreadyExists
	// when the corresponding unique constraint is violated
	Create(ctx context.Context, user models.User) (models.User, error)

	// Get user by id, login, email or either login or email
	// Must return apperrors.ErrUserNotFound if user not found
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByLoginOrEmail(ctx context.Context, loginOrEmail string) (models.User, error)

	// Find user by confirmation code
	// Must return apperrors.ErrConfirmCodeNotFound if no user carries the code
	GetByConfirmCode(ctx context.Context, code uuid.UUID) (models.User, error)

	// Mark user email confirmed and drop the code
	Confirm(ctx context.Context, id uuid.UUID) error

	// Replace confirmation code and its expiry (email resending)
	SetConfirmCode(ctx context.Context, id uuid.UUID, code uuid.UUID, expiresAt time.Time) error

	// List users paginated, with optional login/email substring search
	List(ctx context.Context, q models.PageQuery, searchLogin string, searchEmail string) (models.Page[models.User], error)

	// Delete user
	// Must return apperrors.ErrUserNotFound if user not found
	Delete(ctx context.Context, id uuid.UUID) error
}

// DeviceSession repository interface
type SessionRepo interface {
	// Insert new session
	// Must return apperrors.ErrSessionExists on (userID, deviceID) uniqueness violation
	Create(ctx context.Context, session models.DeviceSession) error

	// Must return apperrors.ErrSessionNotFound if session absent
	Get(ctx context.Context, userID uuid.UUID, deviceID uuid.UUID) (models.DeviceSession, error)
	GetByDeviceID(ctx context.Context, deviceID uuid.UUID) (models.DeviceSession, error)

	// List user sessions ordered by creation time
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.DeviceSession, error)

	// Rotate replaces the session fingerprint with next but only if the
	// stored value still equals prev (atomic compare-and-set). Must return
	// apperrors.ErrSessionNotFound if nothing matched: either the session is
	// gone or another refresh won the race
	Rotate(ctx context.Context, userID uuid.UUID, deviceID uuid.UUID, prev time.Time, next time.Time) error

	// Must return apperrors.ErrSessionNotFound if session absent
	Delete(ctx context.Context, userID uuid.UUID, deviceID uuid.UUID) error

	// Delete every user session except keepDeviceID
	DeleteOthers(ctx context.Context, userID uuid.UUID, keepDeviceID uuid.UUID) error
}

// Blog repository interface
type BlogRepo interface {
	Create(ctx context.Context, blog models.Blog) (models.Blog, error)

	// Must return apperrors.ErrBlogNotFound if blog absent
	GetByID(ctx context.Context, id uuid.UUID) (models.Blog, error)
	Update(ctx context.Context, blog models.Blog) error
	Delete(ctx context.Context, id uuid.UUID) error

	// List blogs paginated with optional name substring search
	List(ctx context.Context, q models.PageQuery, searchName string) (models.Page[models.Blog], error)
}

// Post repository interface
// viewerID defines whose like status is reported as MyStatus; uuid.Nil means
// an anonymous viewer
type PostRepo interface {
	Create(ctx context.Context, post models.Post) (models.Post, error)

	// Must return apperrors.ErrPostNotFound if post absent
	GetByID(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (models.Post, error)
	Update(ctx context.Context, post models.Post) error
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, q models.PageQuery, viewerID uuid.UUID) (models.Page[models.Post], error)
	ListByBlog(ctx context.Context, blogID uuid.UUID, q models.PageQuery, viewerID uuid.UUID) (models.Page[models.Post], error)

	// Upsert the user reaction on a post
	SetLikeStatus(ctx context.Context, postID uuid.UUID, userID uuid.UUID, status models.LikeStatus) error
}

// Comment repository interface
type CommentRepo interface {
	Create(ctx context.Context, comment models.Comment) (models.Comment, error)

	// Must return apperrors.ErrCommentNotFound if comment absent
	GetByID(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (models.Comment, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
	Delete(ctx context.Context, id uuid.UUID) error

	ListByPost(ctx context.Context, postID uuid.UUID, q models.PageQuery, viewerID uuid.UUID) (models.Page[models.Comment], error)

	// Upsert the user reaction on a comment
	SetLikeStatus(ctx context.Context, commentID uuid.UUID, userID uuid.UUID, status models.LikeStatus) error
}

// Storage aggregates all repositories over a single db handle
type Storage interface {
	User() UserRepo
	Session() SessionRepo
	Blog() BlogRepo
	Post() PostRepo
	Comment() CommentRepo

	// Run fn within a db transaction
	InTx(ctx context.Context, fn func(Storage) error) error

	// Wipe all stored data. Test support only
	TruncateAll(ctx context.Context) error
}
