package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/keebmart/keebmart/internal/model"
	"github.com/keebmart/keebmart/internal/store"
)

func newCatalogRouter(docs DocumentStore) chi.Router {
	h := NewCatalogHandler(docs, store.ProductsCollection, testLogger())
	r := chi.NewRouter()
	r.Get("/products", h.List)
	r.Post("/products", h.Create)
	r.Get("/products/{id}", h.Get)
	r.Put("/products/{id}", h.Update)
	r.Delete("/products/{id}", h.Delete)
	return r
}

func TestCatalogHandler_CreateAndGet(t *testing.T) {
	fake := newFakeDocStore()
	router := newCatalogRouter(fake)

	req := httptest.NewRequest(http.MethodPost, "/products",
		strings.NewReader(`{"title":"GMMK Pro","brand":"Glorious","price":349}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	id, _ := created["inserted_id"].(string)
	if id == "" {
		t.Fatal("expected an inserted_id in the response")
	}

	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, "/products/"+id, nil))

	if getRec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", getRec.Code)
	}

	var doc model.Document
	if err := json.NewDecoder(getRec.Body).Decode(&doc); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if doc["title"] != "GMMK Pro" {
		t.Errorf("expected title 'GMMK Pro', got %v", doc["title"])
	}
}

func TestCatalogHandler_List_BrandFilter(t *testing.T) {
	fake := newFakeDocStore()
	router := newCatalogRouter(fake)

	for _, body := range []string{
		`{"title":"GMMK Pro","brand":"Glorious"}`,
		`{"title":"Q1","brand":"Keychron"}`,
		`{"title":"K2","brand":"Keychron"}`,
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body)))
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed to seed product: %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?brand=Keychron", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Status bool             `json:"status"`
		Data   []model.Document `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Status {
		t.Error("expected status true")
	}
	if len(resp.Data) != 2 {
		t.Errorf("expected 2 Keychron products, got %d", len(resp.Data))
	}
}

func TestCatalogHandler_Update_Upsert(t *testing.T) {
	fake := newFakeDocStore()
	router := newCatalogRouter(fake)

	// Update on a fresh id upserts
	freshID := "65f000000000000000000001"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/products/"+freshID,
		strings.NewReader(`{"title":"Planck","price":150}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result model.UpdateResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.UpsertedCount != 1 {
		t.Errorf("expected upserted_count 1, got %d", result.UpsertedCount)
	}
}

func TestCatalogHandler_Errors(t *testing.T) {
	fake := newFakeDocStore()
	router := newCatalogRouter(fake)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"get malformed id", http.MethodGet, "/products/not-hex", "", http.StatusBadRequest},
		{"get missing", http.MethodGet, "/products/65f000000000000000000009", "", http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/products/65f000000000000000000009", "", http.StatusNotFound},
		{"create empty body", http.MethodPost, "/products", ``, http.StatusBadRequest},
		{"create empty object", http.MethodPost, "/products", `{}`, http.StatusBadRequest},
		{"update with only _id", http.MethodPut, "/products/65f000000000000000000001", `{"_id":"65f000000000000000000002"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestCatalogHandler_Delete(t *testing.T) {
	fake := newFakeDocStore()
	router := newCatalogRouter(fake)

	id, err := fake.InsertDocument(context.Background(), store.ProductsCollection,
		model.Document{"title": "Q1"})
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/products/"+id, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if len(fake.coll(store.ProductsCollection)) != 0 {
		t.Error("expected the document to be deleted")
	}
}
