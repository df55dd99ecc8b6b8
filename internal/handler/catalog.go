package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/keebmart/keebmart/internal/model"
)

// DocumentStore is the document persistence capability the pass-through
// CRUD handlers need. *store.Store satisfies it.
type DocumentStore interface {
	InsertDocument(ctx context.Context, collection string, doc model.Document) (string, error)
	FindDocuments(ctx context.Context, collection string, filter bson.M) ([]model.Document, error)
	FindDocumentByID(ctx context.Context, collection, id string) (model.Document, error)
	UpdateDocumentByID(ctx context.Context, collection, id string, fields model.Document) (*model.UpdateResult, error)
	DeleteDocumentByID(ctx context.Context, collection, id string) error
	DeleteDocumentMatching(ctx context.Context, collection, id string, filter bson.M) error
}

// CatalogHandler serves pass-through CRUD over one document collection.
// Each request maps to exactly one store call.
type CatalogHandler struct {
	docs       DocumentStore
	collection string
	logger     *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler for the named collection.
func NewCatalogHandler(docs DocumentStore, collection string, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		docs:       docs,
		collection: collection,
		logger:     logger,
	}
}

// List handles GET on the collection. An optional ?brand= query parameter
// narrows the result by exact match.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if brand := r.URL.Query().Get("brand"); brand != "" {
		filter["brand"] = brand
	}

	docs, err := h.docs.FindDocuments(r.Context(), h.collection, filter)
	if err != nil {
		handleStoreError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data":   docs,
	})
}

// Get handles GET /{id}.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.docs.FindDocumentByID(r.Context(), h.collection, id)
	if err != nil {
		handleStoreError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// Create handles POST. The body is stored as-is; the assigned identifier
// is returned.
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var doc model.Document
	if !readJSON(w, r, &doc) {
		return
	}
	if len(doc) == 0 {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	id, err := h.docs.InsertDocument(r.Context(), h.collection, doc)
	if err != nil {
		handleStoreError(w, h.logger, err)
		return
	}

	h.logger.Info("document_created", "collection", h.collection, "id", id)

	writeJSON(w, http.StatusCreated, map[string]any{
		"acknowledged": true,
		"inserted_id":  id,
	})
}

// Update handles PUT /{id}. Fields are applied as a $set patch with
// upsert, matching the original backend.
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fields model.Document
	if !readJSON(w, r, &fields) {
		return
	}
	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	result, err := h.docs.UpdateDocumentByID(r.Context(), h.collection, id, fields)
	if err != nil {
		handleStoreError(w, h.logger, err)
		return
	}

	h.logger.Info("document_updated", "collection", h.collection, "id", id)

	writeJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /{id}.
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.docs.DeleteDocumentByID(r.Context(), h.collection, id); err != nil {
		handleStoreError(w, h.logger, err)
		return
	}

	h.logger.Info("document_deleted", "collection", h.collection, "id", id)

	writeJSON(w, http.StatusOK, map[string]any{
		"acknowledged":  true,
		"deleted_count": 1,
	})
}
