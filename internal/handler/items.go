package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pizzadesk/api/internal/backend"
	"github.com/pizzadesk/api/internal/enum"
	"github.com/shopspring/decimal"
)

// ItemStore defines the backend methods needed by the item management
// screen. Satisfied by *backend.Client; narrow interface for testability.
type ItemStore interface {
	ListItems(ctx context.Context) ([]backend.Item, error)
	CreateItem(ctx context.Context, it backend.Item) error
	UpdateItem(ctx context.Context, it backend.Item) error
	DeleteItem(ctx context.Context, id int64) error
}

// ItemHandler proxies menu item CRUD to the backend, validating input
// before forwarding so the screen gets uniform error shapes.
type ItemHandler struct {
	store ItemStore
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(store ItemStore) *ItemHandler {
	return &ItemHandler{store: store}
}

// RegisterRoutes registers item CRUD endpoints on the given Chi router.
// Expected to be mounted at /items.
func (h *ItemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request types ---

type itemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
}

func (req itemRequest) validate() string {
	if req.Name == "" {
		return "name is required"
	}
	if !enum.ValidCategory(req.Category) {
		return "invalid category"
	}
	if !req.Price.IsPositive() {
		return "price must be > 0"
	}
	return ""
}

// --- Handlers ---

// List returns the full menu from the backend.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListItems(r.Context())
	if err != nil {
		log.Printf("ERROR: list items: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	resp := make([]itemResponse, len(items))
	for i, it := range items {
		resp[i] = toItemResponse(it)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new menu item.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	err := h.store.CreateItem(r.Context(), backend.Item{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
	})
	if err != nil {
		writeBackendError(w, "create item", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// Update replaces an existing menu item.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	err = h.store.UpdateItem(r.Context(), backend.Item{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
	})
	if err != nil {
		writeBackendError(w, "update item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a menu item.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	if err := h.store.DeleteItem(r.Context(), id); err != nil {
		writeBackendError(w, "delete item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeBackendError maps a backend client failure to a response. A backend
// 404 passes through; everything else is the gateway's fault as far as the
// screen is concerned.
func writeBackendError(w http.ResponseWriter, op string, err error) {
	var subErr *backend.SubmissionError
	if errors.As(err, &subErr) {
		if subErr.Status == http.StatusNotFound {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": subErr.Message})
		return
	}
	log.Printf("ERROR: %s: %v", op, err)
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
}
