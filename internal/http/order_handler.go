package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SantiagoArteche/off-eccom-api/internal/order"
	"github.com/SantiagoArteche/off-eccom-api/internal/pagination"
)

type OrderService interface {
	Create(ctx context.Context, cartID string, discount int) (*order.CreateResult, error)
	Update(ctx context.Context, orderID, cartID string, discount *int) (*order.Order, error)
	Pay(ctx context.Context, id string, accountValidated bool) (*order.PayResult, error)
	Delete(ctx context.Context, id string) (string, error)
	GetByID(ctx context.Context, id string) (*order.Order, error)
	GetAll(ctx context.Context, page pagination.Page) (*order.List, error)
}

// AccountVerifier is the auth collaborator: it answers whether an account
// finished validation. Only Pay consumes it.
type AccountVerifier interface {
	Validated(ctx context.Context, userID string) (bool, error)
}

type OrderHandler struct {
	svc      OrderService
	accounts AccountVerifier
}

func NewOrderHandler(svc OrderService, accounts AccountVerifier) *OrderHandler {
	return &OrderHandler{svc: svc, accounts: accounts}
}

func (h *OrderHandler) GetAll(w http.ResponseWriter, r *http.Request) {
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

func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": o})
}

type createOrderRequest struct {
	CartID   string `json:"cartId"`
	Discount int    `json:"discount"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	res, err := h.svc.Create(r.Context(), body.CartID, body.Discount)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type updateOrderRequest struct {
	CartID   string `json:"cartId"`
	Discount *int   `json:"discount"`
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	o, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), body.CartID, body.Discount)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updatedOrder": o})
}

func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	validated := false
	if userID := r.Header.Get("X-User-Id"); userID != "" {
		ok, err := h.accounts.Validated(r.Context(), userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		validated = ok
	}

	res, err := h.svc.Pay(r.Context(), chi.URLParam(r, "id"), validated)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": msg})
}
