package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/luxewear/storefront/internal/domain/cart"
	"github.com/luxewear/storefront/internal/domain/catalog"
	"github.com/luxewear/storefront/internal/domain/pricing"
)

// cartResponse is the cart contents plus a freshly computed quote. Quotes are
// derived on every read, never stored.
type cartResponse struct {
	Items    []cart.LineItem `json:"items"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`

	PromoStatus      pricing.PromoStatus `json:"promoStatus"`
	PromoReason      string              `json:"promoReason,omitempty"`
	PromoDescription string              `json:"promoDescription,omitempty"`
	ShippingMethod   string              `json:"shippingMethod"`
}

// shippingMethodByID resolves a method id, falling back to the first
// configured method when id is empty.
func (h *Handler) shippingMethodByID(id string) (pricing.ShippingMethod, bool) {
	methods := h.orders.ShippingMethods()
	if id == "" && len(methods) > 0 {
		return methods[0], true
	}
	for _, m := range methods {
		if m.ID == id {
			return m, true
		}
	}
	return pricing.ShippingMethod{}, false
}

// quoteCart prices the session cart and renders the cart response.
func (h *Handler) quoteCart(w http.ResponseWriter, r *http.Request, items []cart.LineItem, promoCode, methodID string) {
	method, ok := h.shippingMethodByID(methodID)
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown shipping method")
		return
	}

	quote, err := h.engine.Price(r.Context(), items, promoCode, method)
	if err != nil {
		respondInternal(w, r, errors.Wrap(err, "price cart"))
		return
	}
	quote = quote.Rounded()

	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	if items == nil {
		items = []cart.LineItem{}
	}

	respondJSON(w, http.StatusOK, cartResponse{
		Items:            items,
		Count:            count,
		Subtotal:         quote.Subtotal,
		Discount:         quote.Discount,
		Shipping:         quote.Shipping,
		Tax:              quote.Tax,
		Total:            quote.Total,
		PromoStatus:      quote.Promo,
		PromoReason:      quote.PromoReason,
		PromoDescription: quote.PromoDescription,
		ShippingMethod:   method.ID,
	})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(w, r)
	q := r.URL.Query()
	h.quoteCart(w, r, s.Cart.Items(), q.Get("promo"), q.Get("shipping"))
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var body addToCartRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "quantity must be at least 1")
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

	size, ok := pickVariant(body.Size, p.Sizes)
	if !ok {
		respondError(w, http.StatusBadRequest, "size not available for this product")
		return
	}
	color, ok := pickVariant(body.Color, p.Colors)
	if !ok {
		respondError(w, http.StatusBadRequest, "color not available for this product")
		return
	}

	s := h.sessions.Get(w, r)
	s.Cart.Add(cart.LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		ImageURL:  p.ImageURL,
		Quantity:  body.Quantity,
		Size:      size,
		Color:     color,
	})
	h.sessions.Persist(r.Context(), s)

	h.quoteCart(w, r, s.Cart.Items(), "", "")
}

// pickVariant validates a requested variant against the product's options,
// defaulting to the first option when none was requested.
func pickVariant(requested string, options []string) (string, bool) {
	if requested == "" {
		if len(options) == 0 {
			return "", true
		}
		return options[0], true
	}
	for _, o := range options {
		if o == requested {
			return requested, true
		}
	}
	return "", false
}

type updateCartItemRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var body updateCartItemRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "quantity must be at least 1; remove the item instead")
		return
	}

	s := h.sessions.Get(w, r)
	s.Cart.UpdateQuantity(cart.Key{ProductID: body.ProductID, Size: body.Size, Color: body.Color}, body.Quantity)
	h.sessions.Persist(r.Context(), s)

	h.quoteCart(w, r, s.Cart.Items(), "", "")
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("productId") == "" {
		respondError(w, http.StatusBadRequest, "productId is required")
		return
	}

	s := h.sessions.Get(w, r)
	s.Cart.Remove(cart.Key{
		ProductID: q.Get("productId"),
		Size:      q.Get("size"),
		Color:     q.Get("color"),
	})
	h.sessions.Persist(r.Context(), s)

	h.quoteCart(w, r, s.Cart.Items(), "", "")
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(w, r)
	s.Cart.Clear()
	h.sessions.Drop(r.Context(), s)

	h.quoteCart(w, r, s.Cart.Items(), "", "")
}
