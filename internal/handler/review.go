package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/luxewear/storefront/internal/domain/catalog"
)

// reviewJSON is the wire shape of a product review.
type reviewJSON struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Author    string    `json:"author,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toReviewJSON(rev catalog.Review) reviewJSON {
	return reviewJSON{
		ID:        rev.ID,
		ProductID: rev.ProductID,
		Author:    rev.Author,
		Rating:    rev.Rating,
		Comment:   rev.Comment,
		CreatedAt: rev.CreatedAt,
	}
}

type createReviewRequest struct {
	Author  string `json:"author"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListByProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		respondInternal(w, r, errors.Wrap(err, "list reviews"))
		return
	}

	out := make([]reviewJSON, len(reviews))
	for i, rev := range reviews {
		out[i] = toReviewJSON(rev)
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	var body createReviewRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !catalog.ValidRating(body.Rating) {
		respondError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	productID := r.PathValue("id")
	if _, err := h.products.GetByID(r.Context(), productID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, errors.Wrap(err, "get product"))
		return
	}

	rev := catalog.Review{
		ID:        uuid.New().String(),
		ProductID: productID,
		Author:    body.Author,
		Rating:    body.Rating,
		Comment:   body.Comment,
		CreatedAt: time.Now(),
	}
	if err := h.reviews.Create(r.Context(), &rev); err != nil {
		respondInternal(w, r, errors.Wrap(err, "create review"))
		return
	}
	respondJSON(w, http.StatusCreated, toReviewJSON(rev))
}
