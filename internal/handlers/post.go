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

type PostService interface {
	Get(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (models.Post, error)
	List(ctx context.Context, q models.PageQuery, viewerID uuid.UUID) (models.Page[models.Post], error)
	SetLikeStatus(ctx context.Context, postID uuid.UUID, user *models.User, status models.LikeStatus) error

	CreateComment(ctx context.Context, postID uuid.UUID, user *models.User, content string) (models.Comment, error)
	ListComments(ctx context.Context, postID uuid.UUID, q models.PageQuery, viewerID uuid.UUID) (models.Page[models.Comment], error)
}

type PostHandler struct {
	posts PostService
}

func NewPost(posts PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// Handler returns the public post surface. Write routes require the access
// guard; the router wraps them
func (h *PostHandler) Handler(withAuth func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts", h.list)
	mux.HandleFunc("GET /posts/{id}", h.get)
	mux.HandleFunc("GET /posts/{id}/comments", h.listComments)
	mux.Handle("POST /posts/{id}/comments", withAuth(http.HandlerFunc(h.createComment)))
	mux.Handle("PUT /posts/{id}/like-status", withAuth(http.HandlerFunc(h.setLikeStatus)))

	return mux
}

func (h *PostHandler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.List(r.Context(), parsePageQuery(r), viewerID(r))
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, toPageView(page, toPostView))
}

func (h *PostHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		render.ServiceError(w, "Post not found", http.StatusNotFound)
		return
	}

	post, err := h.posts.Get(r.Context(), id, viewerID(r))
	if err != nil {
		renderPostError(w, err)
		return
	}

	render.JSON(w, toPostView(post))
}

func (h *PostHandler) listComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		render.ServiceError(w, "Post not found", http.StatusNotFound)
		return
	}

	page, err := h.posts.ListComments(r.Context(), id, parsePageQuery(r), viewerID(r))
	if err != nil {
		renderPostError(w, err)
		return
	}

	render.JSON(w, toPageView(page, toCommentView))
}

func (h *PostHandler) createComment(w http.ResponseWriter, r *http.Request) {
	type CommentRequest struct {
		Content string `json:"content" validate:"required,min=20,max=300"`
	}

	id, ok := pathUUID(r, "id")
	if !ok {
		render.ServiceError(w, "Post not found", http.StatusNotFound)
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

	comment, err := h.posts.CreateComment(r.Context(), id, &user, data.Content)
	if err != nil {
		renderPostError(w, err)
		return
	}

	render.JSONWithStatus(w, toCommentView(comment), http.StatusCreated)
}

func (h *PostHandler) setLikeStatus(w http.ResponseWriter, r *http.Request) {
	type LikeRequest struct {
		LikeStatus models.LikeStatus `json:"likeStatus" validate:"required,oneof=None Like Dislike"`
	}

	id, ok := pathUUID(r, "id")
	if !ok {
		render.ServiceError(w, "Post not found", http.StatusNotFound)
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

	err = h.posts.SetLikeStatus(r.Context(), id, &user, data.LikeStatus)
	if err != nil {
		renderPostError(w, err)
		return
	}

	render.NoContent(w)
}

func renderPostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrPostNotFound):
		render.ServiceError(w, "Post not found", http.StatusNotFound)
	default:
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
