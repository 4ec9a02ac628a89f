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

type DeviceService interface {
	ListDevices(ctx context.Context, userID uuid.UUID) ([]models.DeviceSession, error)
	TerminateDevice(ctx context.Context, userID uuid.UUID, deviceID uuid.UUID) error
	TerminateOtherDevices(ctx context.Context, userID uuid.UUID, keepDeviceID uuid.UUID) error
}

// DevicesHandler serves the security/devices surface. All routes are behind
// the refresh guard: device management proves possession of a live refresh
// token, not just an access token
type DevicesHandler struct {
	devices DeviceService
}

func NewDevices(devices DeviceService) *DevicesHandler {
	return &DevicesHandler{devices: devices}
}

func (h *DevicesHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /security/devices", h.list)
	mux.HandleFunc("DELETE /security/devices", h.terminateOthers)
	mux.HandleFunc("DELETE /security/devices/{deviceId}", h.terminate)

	return mux
}

func (h *DevicesHandler) list(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.RefreshFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessions, err := h.devices.ListDevices(r.Context(), identity.UserID)
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	views := make([]deviceView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, toDeviceView(s))
	}

	render.JSON(w, views)
}

func (h *DevicesHandler) terminateOthers(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.RefreshFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	err := h.devices.TerminateOtherDevices(r.Context(), identity.UserID, identity.DeviceID)
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.NoContent(w)
}

func (h *DevicesHandler) terminate(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.RefreshFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	deviceID, ok := pathUUID(r, "deviceId")
	if !ok {
		render.ServiceError(w, "Device not found", http.StatusNotFound)
		return
	}

	err := h.devices.TerminateDevice(r.Context(), identity.UserID, deviceID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSessionNotFound):
			render.ServiceError(w, "Device not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrForbidden):
			render.ServiceError(w, "Forbidden", http.StatusForbidden)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.NoContent(w)
}
