// Package handler exposes the storefront HTTP API. Handlers stay thin:
// they parse the request, call into the domain, and map domain errors to
// status codes.
package handler

import (
	"net/http"

	"github.com/luxewear/storefront/internal/domain/catalog"
	"github.com/luxewear/storefront/internal/domain/order"
	"github.com/luxewear/storefront/internal/domain/pricing"
	"github.com/luxewear/storefront/internal/session"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored.
	ImageBaseURL string
}

// Handler serves the storefront API, delegating business logic to the
// injected domain dependencies.
type Handler struct {
	products     catalog.Repository
	reviews      catalog.ReviewRepository
	engine       *pricing.Engine
	orders       *order.Service
	orderStore   order.Repository
	sessions     *session.Manager
	imageBaseURL string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	products catalog.Repository,
	reviews catalog.ReviewRepository,
	engine *pricing.Engine,
	orders *order.Service,
	orderStore order.Repository,
	sessions *session.Manager,
) *Handler {
	return &Handler{
		products:     products,
		reviews:      reviews,
		engine:       engine,
		orders:       orders,
		orderStore:   orderStore,
		sessions:     sessions,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes registers every API route on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/search", h.searchProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("POST /api/products", h.createProduct)
	mux.HandleFunc("PUT /api/products/{id}", h.updateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.deleteProduct)

	mux.HandleFunc("GET /api/products/{id}/reviews", h.listReviews)
	mux.HandleFunc("POST /api/products/{id}/reviews", h.createReview)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart", h.addToCart)
	mux.HandleFunc("PUT /api/cart/items", h.updateCartItem)
	mux.HandleFunc("DELETE /api/cart/items", h.removeCartItem)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)

	mux.HandleFunc("GET /api/wishlist", h.getWishlist)
	mux.HandleFunc("POST /api/wishlist/toggle", h.toggleWishlist)
	mux.HandleFunc("DELETE /api/wishlist/{productId}", h.removeFromWishlist)
	mux.HandleFunc("DELETE /api/wishlist", h.clearWishlist)

	mux.HandleFunc("POST /api/promo/validate", h.validatePromo)
	mux.HandleFunc("GET /api/shipping-methods", h.listShippingMethods)

	mux.HandleFunc("POST /api/orders", h.placeOrder)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("PUT /api/orders/{id}/status", h.updateOrderStatus)

	return mux
}
