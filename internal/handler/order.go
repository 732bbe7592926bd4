package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/luxewear/storefront/internal/domain/cart"
	"github.com/luxewear/storefront/internal/domain/order"
)

type placeOrderRequest struct {
	PromoCode       string        `json:"promoCode"`
	ShippingMethod  string        `json:"shippingMethod"`
	PaymentMethod   string        `json:"paymentMethod"`
	ShippingAddress order.Address `json:"shippingAddress"`
	BillingAddress  order.Address `json:"billingAddress"`
}

type orderJSON struct {
	ID                string          `json:"id"`
	Items             []cart.LineItem `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Discount          decimal.Decimal `json:"discount"`
	Shipping          decimal.Decimal `json:"shipping"`
	Tax               decimal.Decimal `json:"tax"`
	Total             decimal.Decimal `json:"total"`
	PromoCode         string          `json:"promoCode,omitempty"`
	ShippingMethod    string          `json:"shippingMethod"`
	PaymentMethod     string          `json:"paymentMethod"`
	Status            order.Status    `json:"status"`
	ShippingAddress   order.Address   `json:"shippingAddress"`
	BillingAddress    order.Address   `json:"billingAddress"`
	TrackingNumber    string          `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

func toOrderJSON(o order.Order) orderJSON {
	return orderJSON{
		ID:                o.ID,
		Items:             o.Items,
		Subtotal:          o.Subtotal,
		Discount:          o.Discount,
		Shipping:          o.Shipping,
		Tax:               o.Tax,
		Total:             o.Total,
		PromoCode:         o.PromoCode,
		ShippingMethod:    o.ShippingMethod,
		PaymentMethod:     o.PaymentMethod,
		Status:            o.Status,
		ShippingAddress:   o.ShippingAddress,
		BillingAddress:    o.BillingAddress,
		TrackingNumber:    o.TrackingNumber,
		EstimatedDelivery: o.EstimatedDelivery,
		CreatedAt:         o.CreatedAt,
	}
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var body placeOrderRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s := h.sessions.Get(w, r)
	o, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		Items:            s.Cart.Items(),
		PromoCode:        body.PromoCode,
		ShippingMethodID: body.ShippingMethod,
		PaymentMethod:    body.PaymentMethod,
		ShippingAddress:  body.ShippingAddress,
		BillingAddress:   body.BillingAddress,
	})
	if err != nil {
		var (
			unknownMethod *order.UnknownShippingMethodError
			rejectedPromo *order.RejectedPromoError
		)
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			respondError(w, http.StatusBadRequest, "cart is empty")
		case errors.As(err, &unknownMethod):
			respondError(w, http.StatusBadRequest, unknownMethod.Error())
		case errors.As(err, &rejectedPromo):
			respondError(w, http.StatusUnprocessableEntity, rejectedPromo.Error())
		default:
			respondInternal(w, r, errors.Wrap(err, "place order"))
		}
		return
	}

	// The cart is spent once the order exists.
	s.Cart.Clear()
	h.sessions.Drop(r.Context(), s)

	respondJSON(w, http.StatusCreated, toOrderJSON(*o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orderStore.List(r.Context())
	if err != nil {
		respondInternal(w, r, errors.Wrap(err, "list orders"))
		return
	}

	out := make([]orderJSON, len(list))
	for i, o := range list {
		out[i] = toOrderJSON(o)
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orderStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, http.StatusNotFound, "order not found")
			return
		}
		respondInternal(w, r, errors.Wrap(err, "get order"))
		return
	}
	respondJSON(w, http.StatusOK, toOrderJSON(*o))
}

type updateOrderStatusRequest struct {
	Status         order.Status `json:"status"`
	TrackingNumber string       `json:"trackingNumber"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body updateOrderStatusRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !body.Status.Valid() {
		respondError(w, http.StatusBadRequest, "unknown order status")
		return
	}

	id := r.PathValue("id")
	if err := h.orderStore.UpdateStatus(r.Context(), id, body.Status, body.TrackingNumber); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, http.StatusNotFound, "order not found")
			return
		}
		respondInternal(w, r, errors.Wrap(err, "update order status"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"id":             id,
		"status":         body.Status,
		"trackingNumber": body.TrackingNumber,
	})
}

func (h *Handler) listShippingMethods(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.orders.ShippingMethods())
}
