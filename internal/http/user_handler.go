package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SantiagoArteche/off-eccom-api/internal/pagination"
	"github.com/SantiagoArteche/off-eccom-api/internal/user"
)

type UserService interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetAll(ctx context.Context, page pagination.Page) (*user.List, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
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

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}
