package handlers

import (
	"context"
	"net/http"

	"github.com/mkuznecov/blogplatform/internal/handlers/render"
)

type DataWiper interface {
	TruncateAll(ctx context.Context) error
}

// TestingHandler wipes all data; mounted for e2e test environments only
type TestingHandler struct {
	storage DataWiper
}

func NewTesting(storage DataWiper) *TestingHandler {
	return &TestingHandler{storage: storage}
}

func (h *TestingHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /testing/all-data", h.wipe)

	return mux
}

func (h *TestingHandler) wipe(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.TruncateAll(r.Context()); err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.NoContent(w)
}
