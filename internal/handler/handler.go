// Package handler exposes the order service and product catalog over HTTP.
// JSON is encoded and decoded with go-faster/jx.
package handler

import (
	"net/http"

	"github.com/mkalinin/storefront-orders/internal/domain/order"
	"github.com/mkalinin/storefront-orders/internal/domain/product"
)

// Handler holds the HTTP endpoints, delegating all business logic to the
// order service and product repository.
type Handler struct {
	products product.Repository
	orders   *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(products product.Repository, orders *order.Service) *Handler {
	return &Handler{
		products: products,
		orders:   orders,
	}
}

// Routes returns the API route table. Order creation and completion accept
// either a single request object or an array of them in one body.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", h.placeOrders)
	mux.HandleFunc("POST /api/orders/complete", h.completeOrders)
	mux.HandleFunc("GET /api/orders/{userID}/active", h.activeOrders)
	mux.HandleFunc("GET /api/orders/{userID}/completed", h.completedOrders)
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	return mux
}
