package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/luxewear/storefront/internal/domain/catalog"
)

type wishlistResponse struct {
	Items []productJSON `json:"items"`
	Count int           `json:"count"`
}

func (h *Handler) getWishlist(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(w, r)
	items := s.Wishlist.Items()

	resp := wishlistResponse{Items: make([]productJSON, len(items)), Count: len(items)}
	for i, p := range items {
		resp.Items[i] = h.toProductJSON(p)
	}
	respondJSON(w, http.StatusOK, resp)
}

type toggleWishlistRequest struct {
	ProductID string `json:"productId"`
}

type toggleWishlistResponse struct {
	ProductID  string `json:"productId"`
	Wishlisted bool   `json:"wishlisted"`
	Count      int    `json:"count"`
}

func (h *Handler) toggleWishlist(w http.ResponseWriter, r *http.Request) {
	var body toggleWishlistRequest
	if err := decodeBody(r, &body); err != nil || body.ProductID == "" {
		respondError(w, http.StatusBadRequest, "productId is required")
		return
	}

	p, err := h.products.GetByID(r.Context(), body.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, errors.Wrap(err, "get product"))
		return
	}

	s := h.sessions.Get(w, r)
	wishlisted := s.Wishlist.Toggle(*p)

	respondJSON(w, http.StatusOK, toggleWishlistResponse{
		ProductID:  p.ID,
		Wishlisted: wishlisted,
		Count:      s.Wishlist.Len(),
	})
}

func (h *Handler) removeFromWishlist(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(w, r)
	s.Wishlist.Remove(r.PathValue("productId"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearWishlist(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(w, r)
	s.Wishlist.Clear()
	w.WriteHeader(http.StatusNoContent)
}
