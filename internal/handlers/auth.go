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

// Auth service surface the handler needs
type AuthService interface {
	Register(ctx context.Context, login string, email string, password string) error
	ConfirmRegistration(ctx context.Context, code uuid.UUID) error
	ResendConfirmation(ctx context.Context, email string) error

	Login(ctx context.Context, loginOrEmail string, password string, device models.DeviceMeta) (models.TokenPair, error)
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID, deviceID uuid.UUID) error

	ReadRefreshToken(r *http.Request) (string, error)
	SetRefreshCookie(w http.ResponseWriter, refresh models.IssuedToken)
	ClearRefreshCookie(w http.ResponseWriter)
}

type AuthHandler struct {
	auth       AuthService
	deviceMeta func(r *http.Request) models.DeviceMeta
}

func NewAuth(auth AuthService, deviceMeta func(r *http.Request) models.DeviceMeta) *AuthHandler {
	return &AuthHandler{auth: auth, deviceMeta: deviceMeta}
}

// Handler returns the public part of the auth surface.
// Refresh-guarded routes (refresh-token, logout) are wired in the router so
// the guard wraps only them
func (h *AuthHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/registration", h.register)
	mux.HandleFunc("POST /auth/registration-confirmation", h.confirm)
	mux.HandleFunc("POST /auth/registration-email-resending", h.resend)

	return mux
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		LoginOrEmail string `json:"loginOrEmail" validate:"required"`
		Password     string `json:"password" validate:"required"`
	}
	type LoginSuccessResponse struct {
		AccessToken string `json:"accessToken"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.auth.Login(r.Context(), data.LoginOrEmail, data.Password, h.deviceMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid login or password", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.auth.SetRefreshCookie(w, pair.Refresh)
	render.JSON(w, LoginSuccessResponse{AccessToken: pair.Access.Value})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	type RefreshSuccessResponse struct {
		AccessToken string `json:"accessToken"`
	}

	refresh, err := h.auth.ReadRefreshToken(r)
	if err != nil {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	pair, err := h.auth.Refresh(r.Context(), refresh)
	if err != nil {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	h.auth.SetRefreshCookie(w, pair.Refresh)
	render.JSON(w, RefreshSuccessResponse{AccessToken: pair.Access.Value})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.RefreshFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	err := h.auth.Logout(r.Context(), identity.UserID, identity.DeviceID)
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.auth.ClearRefreshCookie(w)
	render.NoContent(w)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Login    string `json:"login" validate:"required,min=3,max=30"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6,max=72"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	err = h.auth.Register(r.Context(), data.Login, data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrLoginAlreadyExists):
			render.ServiceError(w, "Login is already taken", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrEmailAlreadyExists):
			render.ServiceError(w, "Email is already taken", http.StatusBadRequest)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.NoContent(w)
}

func (h *AuthHandler) confirm(w http.ResponseWriter, r *http.Request) {
	type ConfirmRequest struct {
		Code uuid.UUID `json:"code" validate:"required"`
	}

	data, err := render.BindAndValidate[ConfirmRequest](w, r)
	if err != nil {
		return
	}

	err = h.auth.ConfirmRegistration(r.Context(), data.Code)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrConfirmCodeNotFound):
			render.ServiceError(w, "Confirmation code not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrAlreadyConfirmed):
			render.ServiceError(w, "Email is already confirmed", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrConfirmCodeExpired):
			render.ServiceError(w, "Confirmation code is expired", http.StatusBadRequest)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.NoContent(w)
}

func (h *AuthHandler) resend(w http.ResponseWriter, r *http.Request) {
	type ResendRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	data, err := render.BindAndValidate[ResendRequest](w, r)
	if err != nil {
		return
	}

	err = h.auth.ResendConfirmation(r.Context(), data.Email)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrAlreadyConfirmed):
			render.ServiceError(w, "Email is already confirmed", http.StatusBadRequest)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.NoContent(w)
}

// Me answers who the access token belongs to. Access-guarded
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	type MeResponse struct {
		UserID uuid.UUID `json:"userId"`
		Login  string    `json:"login"`
		Email  string    `json:"email"`
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	render.JSON(w, MeResponse{UserID: user.ID, Login: user.Login, Email: user.Email})
}
