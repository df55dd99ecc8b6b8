package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/keebmart/keebmart/internal/auth"
	"github.com/keebmart/keebmart/internal/model"
	"github.com/keebmart/keebmart/internal/store"
)

// userEmailField scopes cart items to their owner. Ownership always
// comes from the verified identity, never from the request body.
const userEmailField = "user_email"

// CartHandler serves the authenticated caller's shopping cart.
type CartHandler struct {
	docs   DocumentStore
	logger *slog.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(docs DocumentStore, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		docs:   docs,
		logger: logger,
	}
}

// List handles GET /carts. Only the caller's own items are returned.
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	docs, err := h.docs.FindDocuments(r.Context(), store.CartsCollection, bson.M{
		userEmailField: identity.Email,
	})
	if err != nil {
		handleStoreError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data":   docs,
	})
}

// Add handles POST /carts. The item is stored as-is with the caller's
// email stamped on; any user_email in the body is overwritten.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	var doc model.Document
	if !readJSON(w, r, &doc) {
		return
	}
	if len(doc) == 0 {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	doc[userEmailField] = identity.Email

	id, err := h.docs.InsertDocument(r.Context(), store.CartsCollection, doc)
	if err != nil {
		handleStoreError(w, h.logger, err)
		return
	}

	h.logger.Info("cart_item_added", "id", id)

	writeJSON(w, http.StatusCreated, map[string]any{
		"acknowledged": true,
		"inserted_id":  id,
	})
}

// Remove handles DELETE /carts/{id}. Deletion is scoped to the caller's
// own items; someone else's item looks absent, so the response is 404.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	err := h.docs.DeleteDocumentMatching(r.Context(), store.CartsCollection, id, bson.M{
		userEmailField: identity.Email,
	})
	if err != nil {
		handleStoreError(w, h.logger, err)
		return
	}

	h.logger.Info("cart_item_removed", "id", id)

	writeJSON(w, http.StatusOK, map[string]any{
		"acknowledged":  true,
		"deleted_count": 1,
	})
}
