package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/mkuznecov/blogplatform/internal/apperrors"
	"github.com/mkuznecov/blogplatform/internal/handlers/render"
	"github.com/mkuznecov/blogplatform/internal/models"
)

type BlogService interface {
	Create(ctx context.Context, name string, description string, websiteURL string) (models.Blog, error)
	Get(ctx context.Context, id uuid.UUID) (models.Blog, error)
	Update(ctx context.Context, blog models.Blog) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q models.PageQuery, searchName string) (models.Page[models.Blog], error)

	CreatePost(ctx context.Context, blogID uuid.UUID, title string, shortDescription string, content string) (models.Post, error)
	UpdatePost(ctx context.Context, blogID uuid.UUID, postID uuid.UUID, title string, shortDescription string, content string) error
	DeletePost(ctx context.Context, blogID uuid.UUID, postID uuid.UUID) error
	ListPosts(ctx context.Context, blogID uuid.UUID, q models.PageQuery, viewerID uuid.UUID) (models.Page[models.Post], error)
}

type BlogHandler struct {
	blogs BlogService
}

func NewBlog(blogs BlogService) *BlogHandler {
	return &BlogHandler{blogs: blogs}
}

// PublicHandler serves the read-only blog surface
func (h *BlogHandler) PublicHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /blogs", h.list)
	mux.HandleFunc("GET /blogs/{id}", h.get)
	mux.HandleFunc("GET /blogs/{id}/posts", h.listPosts)

	return mux
}

// AdminHandler serves blog management. Wrapped with basic auth in the router
func (h *BlogHandler) AdminHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sa/blogs", h.list)
	mux.HandleFunc("POST /sa/blogs", h.create)
	mux.HandleFunc("PUT /sa/blogs/{id}", h.update)
	mux.HandleFunc("DELETE /sa/blogs/{id}", h.delete)
	mux.HandleFunc("GET /sa/blogs/{id}/posts", h.listPosts)
	mux.HandleFunc("POST /sa/blogs/{id}/posts", h.createPost)
	mux.HandleFunc("PUT /sa/blogs/{blogId}/posts/{postId}", h.updatePost)
	mux.HandleFunc("DELETE /sa/blogs/{blogId}/posts/{postId}", h.deletePost)

	return mux
}

type blogRequest struct {
	Name        string `json:"name" validate:"required,max=15"`
	Description string `json:"description" validate:"required,max=500"`
	WebsiteURL  string `json:"websiteUrl" validate:"required,url,max=100"`
}

type postOfBlogRequest struct {
	Title            string `json:"title" validate:"required,max=30"`
	ShortDescription string `json:"shortDescription" validate:"required,max=100"`
	Content          string `json:"content" validate:"required,max=1000"`
}

func (h *BlogHandler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.blogs.List(r.Context(), parsePageQuery(r), r.URL.Query().Get("searchNameTerm"))
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, toPageView(page, toBlogView))
}

func (h *BlogHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		render.ServiceError(w, "Blog not found", http.StatusNotFound)
		return
	}

	blog, err := h.blogs.Get(r.Context(), id)
	if err != nil {
		renderBlogError(w, err)
		return
	}

	render.JSON(w, toBlogView(blog))
}

func (h *BlogHandler) create(w http.ResponseWriter, r *http.Request) {
	data, err := render.BindAndValidate[blogRequest](w, r)
	if err != nil {
		return
	}

	blog, err := h.blogs.Create(r.Context(), data.Name, data.Description, data.WebsiteURL)
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSONWithStatus(w, toBlogView(blog), http.StatusCreated)
}

func (h *BlogHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		render.ServiceError(w, "Blog not found", http.StatusNotFound)
		return
	}

	data, err := render.BindAndValidate[blogRequest](w, r)
	if err != nil {
		return
	}

	err = h.blogs.Update(r.Context(), models.Blog{
		ID:          id,
		Name:        data.Name,
		Description: data.Description,
		WebsiteURL:  data.WebsiteURL,
	})
	if err != nil {
		renderBlogError(w, err)
		return
	}

	render.NoContent(w)
}

func (h *BlogHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		render.ServiceError(w, "Blog not found", http.StatusNotFound)
		return
	}

	if err := h.blogs.Delete(r.Context(), id); err != nil {
		renderBlogError(w, err)
		return
	}

	render.NoContent(w)
}

func (h *BlogHandler) listPosts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		render.ServiceError(w, "Blog not found", http.StatusNotFound)
		return
	}

	page, err := h.blogs.ListPosts(r.Context(), id, parsePageQuery(r), viewerID(r))
	if err != nil {
		renderBlogError(w, err)
		return
	}

	render.JSON(w, toPageView(page, toPostView))
}

func (h *BlogHandler) createPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		render.ServiceError(w, "Blog not found", http.StatusNotFound)
		return
	}

	data, err := render.BindAndValidate[postOfBlogRequest](w, r)
	if err != nil {
		return
	}

	post, err := h.blogs.CreatePost(r.Context(), id, data.Title, data.ShortDescription, data.Content)
	if err != nil {
		renderBlogError(w, err)
		return
	}

	render.JSONWithStatus(w, toPostView(post), http.StatusCreated)
}

func (h *BlogHandler) updatePost(w http.ResponseWriter, r *http.Request) {
	blogID, okBlog := pathUUID(r, "blogId")
	postID, okPost := pathUUID(r, "postId")
	if !okBlog || !okPost {
		render.ServiceError(w, "Post not found", http.StatusNotFound)
		return
	}

	data, err := render.BindAndValidate[postOfBlogRequest](w, r)
	if err != nil {
		return
	}

	err = h.blogs.UpdatePost(r.Context(), blogID, postID, data.Title, data.ShortDescription, data.Content)
	if err != nil {
		renderBlogError(w, err)
		return
	}

	render.NoContent(w)
}

func (h *BlogHandler) deletePost(w http.ResponseWriter, r *http.Request) {
	blogID, okBlog := pathUUID(r, "blogId")
	postID, okPost := pathUUID(r, "postId")
	if !okBlog || !okPost {
		render.ServiceError(w, "Post not found", http.StatusNotFound)
		return
	}

	err := h.blogs.DeletePost(r.Context(), blogID, postID)
	if err != nil {
		renderBlogError(w, err)
		return
	}

	render.NoContent(w)
}

func renderBlogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrBlogNotFound):
		render.ServiceError(w, "Blog not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrPostNotFound):
		render.ServiceError(w, "Post not found", http.StatusNotFound)
	default:
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
