package reserve

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"huddle/internal/hub"
)

// NameStore is the reservation capability the handler needs; *Store
// satisfies it, tests use a fake.
type NameStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	Reserve(ctx context.Context, name string) (bool, error)
}

// Handler exposes the reservation store over REST.
type Handler struct {
	store  NameStore
	logger *slog.Logger
}

func NewHandler(store NameStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Routes mounts the name API on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/names/{name}", h.Check)
	r.Post("/api/names", h.Reserve)
}

type checkResponse struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
}

type reserveRequest struct {
	Name string `json:"name"`
}

type reserveResponse struct {
	Name     string `json:"name"`
	Reserved bool   `json:"reserved"`
}

// Check handles GET /api/names/{name}.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := hub.ValidateDisplayName(name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	exists, err := h.store.Exists(r.Context(), name)
	if err != nil {
		h.logger.Error("name check failed", "name", name, "err", err)
		http.Error(w, "reservation store unavailable", http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, http.StatusOK, checkResponse{Name: name, Exists: exists})
}

// Reserve handles POST /api/names.
func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := hub.ValidateDisplayName(req.Name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reserved, err := h.store.Reserve(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("name reservation failed", "name", req.Name, "err", err)
		http.Error(w, "reservation store unavailable", http.StatusServiceUnavailable)
		return
	}

	status := http.StatusCreated
	if !reserved {
		status = http.StatusConflict
	}
	h.writeJSON(w, status, reserveResponse{Name: req.Name, Reserved: reserved})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("write response", "err", err)
	}
}
