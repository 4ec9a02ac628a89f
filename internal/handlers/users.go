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

type UserService interface {
	Create(ctx context.Context, login string, email string, password string) (models.User, error)
	List(ctx context.Context, q models.PageQuery, searchLogin string, searchEmail string) (models.Page[models.User], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type UsersHandler struct {
	users UserService
}

func NewUsers(users UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sa/users", h.list)
	mux.HandleFunc("POST /sa/users", h.create)
	mux.HandleFunc("DELETE /sa/users/{id}", h.delete)

	return mux
}

func (h *UsersHandler) list(w http.ResponseWriter, r *http.Request) {
	q := parsePageQuery(r)
	searchLogin := r.URL.Query().Get("searchLoginTerm")
	searchEmail := r.URL.Query().Get("searchEmailTerm")

	page, err := h.users.List(r.Context(), q, searchLogin, searchEmail)
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, toPageView(page, toUserView))
}

func (h *UsersHandler) create(w http.ResponseWriter, r *http.Request) {
	type UserRequest struct {
		Login    string `json:"login" validate:"required,min=3,max=10,alphanum"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6,max=20"`
	}

	data, err := render.BindAndValidate[UserRequest](w, r)
	if err != nil {
		return
	}

	user, err := h.users.Create(r.Context(), data.Login, data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrLoginAlreadyExists):
			render.ServiceError(w, "Login already taken", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrEmailAlreadyExists):
			render.ServiceError(w, "Email already registered", http.StatusBadRequest)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, toUserView(user), http.StatusCreated)
}

func (h *UsersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		render.ServiceError(w, "User not found", http.StatusNotFound)
		return
	}

	err := h.users.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			render.ServiceError(w, "User not found", http.StatusNotFound)
			return
		}
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.NoContent(w)
}
