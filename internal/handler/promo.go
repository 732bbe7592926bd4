package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/luxewear/storefront/internal/domain/pricing"
)

type validatePromoRequest struct {
	Code string `json:"code"`
}

// validatePromoResponse reports the outcome of applying a code to the current
// cart. Rejection is a result, not an error: the response is always 200 with
// the status field distinguishing the outcomes.
type validatePromoResponse struct {
	Status      pricing.PromoStatus `json:"status"`
	Reason      string              `json:"reason,omitempty"`
	Description string              `json:"description,omitempty"`
	Discount    decimal.Decimal     `json:"discount"`
	Total       decimal.Decimal     `json:"total"`
}

func (h *Handler) validatePromo(w http.ResponseWriter, r *http.Request) {
	var body validatePromoRequest
	if err := decodeBody(r, &body); err != nil || body.Code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}

	method, _ := h.shippingMethodByID("")
	s := h.sessions.Get(w, r)

	quote, err := h.engine.Price(r.Context(), s.Cart.Items(), body.Code, method)
	if err != nil {
		respondInternal(w, r, errors.Wrap(err, "validate promo"))
		return
	}
	quote = quote.Rounded()

	respondJSON(w, http.StatusOK, validatePromoResponse{
		Status:      quote.Promo,
		Reason:      quote.PromoReason,
		Description: quote.PromoDescription,
		Discount:    quote.Discount,
		Total:       quote.Total,
	})
}
