package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/mkuznecov/blogplatform/internal/apperrors"
	"github.com/mkuznecov/blogplatform/internal/handlers/middleware"
	"github.com/mkuznecov/blogplatform/internal/handlers/render"
	"github.com/mkuznecov/blogplatform/internal/models"
)

type CommentService interface {
	Get(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (models.Comment, error)
	Update(ctx context.Context, id uuid.UUID, user *models.User, content string) error
	Delete(ctx context.Context, id uuid.UUID, user *models.User) error
	SetLikeStatus(ctx context.Context, commentID uuid.UUID, user *models.User, status models.LikeStatus) error
}

type CommentHandler struct {
	comments CommentService
}

func NewComment(comments CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) Handler(withAuth func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /comments/{id}", h.get)
	mux.Handle("PUT /comments/{id}", withAuth(http.HandlerFunc(h.update)))
	mux.Handle("DELETE /comments/{id}", withAuth(http.HandlerFunc(h.delete)))
	mux.Handle("PUT /comments/{id}/like-status", withAuth(http.HandlerFunc(h.setLikeStatus)))

	return mux
}

func (h *CommentHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		render.ServiceError(w, "Comment not found", http.StatusNotFound)
		return
	}

	comment, err := h.comments.Get(r.Context(), id, viewerID(r))
	if err != nil {
		renderCommentError(w, err)
		return
	}

	render.JSON(w, toCommentView(comment))
}

func (h *CommentHandler) update(w http.ResponseWriter, r *http.Request) {
	type CommentRequest struct {
		Content string `json:"content" validate:"required,min=20,max=300"`
	}

	id, ok := pathUUID(r, "id")
	if !ok {
		render.ServiceError(w, "Comment not found", http.StatusNotFound)
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	data, err := render.BindAndValidate[CommentRequest](w, r)
	if err != nil {
		return
	}

	err = h.comments.Update(r.Context(), id, &user, data.Content)
	if err != nil {
		renderCommentError(w, err)
		return
	}

	render.NoContent(w)
}

func (h *CommentHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		render.ServiceError(w, "Comment not found", http.StatusNotFound)
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	err := h.comments.Delete(r.Context(), id, &user)
	if err != nil {
		renderCommentError(w, err)
		return
	}

	render.NoContent(w)
}

func (h *CommentHandler) setLikeStatus(w http.ResponseWriter, r *http.Request) {
	type LikeRequest struct {
		LikeStatus models.LikeStatus `json:"likeStatus" validate:"required,oneof=None Like Dislike"`
	}

	id, ok := pathUUID(r, "id")
	if !ok {
		render.ServiceError(w, "Comment not found", http.StatusNotFound)
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	data, err := render.BindAndValidate[LikeRequest](w, r)
	if err != nil {
		return
	}

	err = h.comments.SetLikeStatus(r.Context(), id, &user, data.LikeStatus)
	if err != nil {
		renderCommentError(w, err)
		return
	}

	render.NoContent(w)
}

func renderCommentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrCommentNotFound):
		render.ServiceError(w, "Comment not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrForbidden):
		render.ServiceError(w, "Forbidden", http.StatusForbidden)
	default:
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
