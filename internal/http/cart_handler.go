package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SantiagoArteche/off-eccom-api/internal/cart"
	"github.com/SantiagoArteche/off-eccom-api/internal/pagination"
)

// CartService is the slice of the cart service the handlers use.
type CartService interface {
	AddProduct(ctx context.Context, productID, cartID string, quantity int) (*cart.AddResult, error)
	Create(ctx context.Context, userID string) (*cart.CreateResult, error)
	Delete(ctx context.Context, id string) (string, error)
	RemoveUnit(ctx context.Context, productID, cartID string) (string, error)
	RemoveProduct(ctx context.Context, productID, cartID string) (string, error)
	GetByID(ctx context.Context, id string) (*cart.Cart, error)
	GetAll(ctx context.Context, page pagination.Page) (*cart.List, error)
}

type CartHandler struct {
	svc CartService
}

func NewCartHandler(svc CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	list, err := h.svc.GetAll(r.Context(), page)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CartHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": c})
}

func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Create(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": msg})
}

type addItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var body addItemRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Quantity must be a number"})
			return
		}
	}
	// Absent or invalid-low quantity defaults to one unit.
	if body.Quantity < 1 {
		body.Quantity = 1
	}

	res, err := h.svc.AddProduct(r.Context(), chi.URLParam(r, "productId"), chi.URLParam(r, "cartId"), body.Quantity)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CartHandler) RemoveUnit(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.RemoveUnit(r.Context(), chi.URLParam(r, "productId"), chi.URLParam(r, "cartId"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": msg})
}

func (h *CartHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.RemoveProduct(r.Context(), chi.URLParam(r, "productId"), chi.URLParam(r, "cartId"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": msg})
}
