package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(carts *CartHandler, orders *OrderHandler, catalog *CatalogHandler, users *UserHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler)

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", carts.GetAll)
		r.Get("/{id}", carts.GetByID)
		r.Post("/{userId}", carts.Create)
		r.Delete("/{id}", carts.Delete)
		r.Post("/{cartId}/products/{productId}", carts.AddProduct)
		r.Patch("/{cartId}/products/{productId}", carts.RemoveUnit)
		r.Delete("/{cartId}/products/{productId}", carts.RemoveProduct)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", orders.GetAll)
		r.Get("/{id}", orders.GetByID)
		r.Post("/", orders.Create)
		r.Put("/{id}", orders.Update)
		r.Post("/{id}/pay", orders.Pay)
		r.Delete("/{id}", orders.Delete)
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", catalog.GetProducts)
		r.Get("/{id}", catalog.GetProductByID)
		r.Post("/", catalog.CreateProduct)
		r.Put("/{id}", catalog.UpdateProduct)
		r.Delete("/{id}", catalog.DeleteProduct)
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", catalog.GetCategories)
		r.Get("/{id}", catalog.GetCategoryByID)
		r.Post("/", catalog.CreateCategory)
		r.Put("/{id}", catalog.UpdateCategory)
		r.Delete("/{id}", catalog.DeleteCategory)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", users.GetAll)
		r.Get("/{id}", users.GetByID)
	})

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]string{"status": "ok", "service": "off-eccom-api"}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
