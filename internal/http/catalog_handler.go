package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SantiagoArteche/off-eccom-api/internal/catalog"
	"github.com/SantiagoArteche/off-eccom-api/internal/pagination"
)

type CatalogService interface {
	GetProducts(ctx context.Context, page pagination.Page) (*catalog.ProductList, error)
	GetProductByID(ctx context.Context, id string) (*catalog.Product, error)
	CreateProduct(ctx context.Context, in catalog.CreateProductInput) (*catalog.Product, error)
	UpdateProduct(ctx context.Context, id string, in catalog.UpdateProductInput) (*catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) (string, error)

	GetCategories(ctx context.Context, page pagination.Page) (*catalog.CategoryList, error)
	GetCategoryByID(ctx context.Context, id string) (*catalog.Category, error)
	CreateCategory(ctx context.Context, name string) (*catalog.Category, error)
	UpdateCategory(ctx context.Context, id, name string) (*catalog.Category, error)
	DeleteCategory(ctx context.Context, id string) (string, error)
}

type CatalogHandler struct {
	svc CatalogService
}

func NewCatalogHandler(svc CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	list, err := h.svc.GetProducts(r.Context(), page)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CatalogHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProductByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": p})
}

type createProductRequest struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
	CategoryID string  `json:"categoryId"`
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var body createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if body.Name == "" || body.Price <= 0 || body.Stock < 0 || body.CategoryID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, positive price, non-negative stock and categoryId are required"})
		return
	}

	p, err := h.svc.CreateProduct(r.Context(), catalog.CreateProductInput{
		Name:       body.Name,
		Price:      body.Price,
		Stock:      body.Stock,
		CategoryID: body.CategoryID,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": p})
}

type updateProductRequest struct {
	Name       *string  `json:"name"`
	Price      *float64 `json:"price"`
	Stock      *int     `json:"stock"`
	CategoryID *string  `json:"categoryId"`
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var body updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	p, err := h.svc.UpdateProduct(r.Context(), chi.URLParam(r, "id"), catalog.UpdateProductInput{
		Name:       body.Name,
		Price:      body.Price,
		Stock:      body.Stock,
		CategoryID: body.CategoryID,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updatedProduct": p})
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": msg})
}

func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	list, err := h.svc.GetCategories(r.Context(), page)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CatalogHandler) GetCategoryByID(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCategoryByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": c})
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	c, err := h.svc.CreateCategory(r.Context(), body.Name)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"category": c})
}

func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	c, err := h.svc.UpdateCategory(r.Context(), chi.URLParam(r, "id"), body.Name)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updatedCategory": c})
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.DeleteCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": msg})
}
