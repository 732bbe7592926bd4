package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luxewear/storefront/internal/domain/cart"
	"github.com/luxewear/storefront/internal/domain/pricing"
	"github.com/luxewear/storefront/internal/domain/promo"
)

// Sentinel errors for order placement.
var (
	// ErrEmptyCart guards checkout: placing an order with zero line items is
	// not a failure mode, it redirects the shopper back to browsing.
	ErrEmptyCart = fmt.Errorf("cart is empty")
)

// UnknownShippingMethodError indicates the requested shipping method is not
// offered.
type UnknownShippingMethodError struct {
	MethodID string
}

func (e *UnknownShippingMethodError) Error() string {
	return fmt.Sprintf("unknown shipping method %q", e.MethodID)
}

// RejectedPromoError indicates the submitted promo code was not accepted at
// checkout. The reason is shopper-presentable.
type RejectedPromoError struct {
	Code   string
	Reason string
}

func (e *RejectedPromoError) Error() string {
	return fmt.Sprintf("promo code %q rejected: %s", e.Code, e.Reason)
}

// PlaceOrderRequest holds the input for placing an order. Payment is stubbed:
// the method is recorded, nothing is charged.
type PlaceOrderRequest struct {
	Items            []cart.LineItem
	PromoCode        string
	ShippingMethodID string
	PaymentMethod    string
	ShippingAddress  Address
	BillingAddress   Address
}

// Service encapsulates order placement business logic.
type Service struct {
	engine  *pricing.Engine
	methods []pricing.ShippingMethod
	orders  Repository
	promos  promo.Redeemer
	now     func() time.Time
}

// NewService creates an order Service. methods are the shipping methods
// selectable per order. promos records promo code usage at placement and may
// be nil when usage counters are not tracked.
func NewService(engine *pricing.Engine, methods []pricing.ShippingMethod, orders Repository, promos promo.Redeemer) *Service {
	return &Service{
		engine:  engine,
		methods: methods,
		orders:  orders,
		promos:  promos,
		now:     time.Now,
	}
}

// ShippingMethods returns the selectable shipping methods.
func (s *Service) ShippingMethods() []pricing.ShippingMethod {
	return s.methods
}

// PlaceOrder prices the submitted line items, persists the order with the
// rounded totals, and returns it. The caller clears the session cart on
// success.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	method, ok := s.methodByID(req.ShippingMethodID)
	if !ok {
		return nil, &UnknownShippingMethodError{MethodID: req.ShippingMethodID}
	}

	quote, err := s.engine.Price(ctx, req.Items, req.PromoCode, method)
	if err != nil {
		return nil, fmt.Errorf("price order: %w", err)
	}
	if quote.Promo == pricing.PromoRejected {
		return nil, &RejectedPromoError{Code: req.PromoCode, Reason: quote.PromoReason}
	}

	quote = quote.Rounded()
	now := s.now()
	estimated := now.Add(deliveryWindow(method.ID))

	o := &Order{
		ID:                uuid.New().String(),
		Items:             req.Items,
		Subtotal:          quote.Subtotal,
		Discount:          quote.Discount,
		Shipping:          quote.Shipping,
		Tax:               quote.Tax,
		Total:             quote.Total,
		PromoCode:         req.PromoCode,
		ShippingMethod:    method.ID,
		PaymentMethod:     req.PaymentMethod,
		Status:            StatusPending,
		ShippingAddress:   req.ShippingAddress,
		BillingAddress:    req.BillingAddress,
		EstimatedDelivery: &estimated,
		CreatedAt:         now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// The use is consumed only once the order is persisted. A failed counter
	// update must not fail a placed order.
	if quote.Promo == pricing.PromoApplied && s.promos != nil {
		if err := s.promos.Redeem(ctx, req.PromoCode); err != nil {
			zctx.From(ctx).Warn("Recording promo use failed",
				zap.String("code", req.PromoCode), zap.Error(err))
		}
	}

	return o, nil
}

func (s *Service) methodByID(id string) (pricing.ShippingMethod, bool) {
	for _, m := range s.methods {
		if m.ID == id {
			return m, true
		}
	}
	return pricing.ShippingMethod{}, false
}

// deliveryWindow maps a shipping method to its outer delivery estimate.
func deliveryWindow(methodID string) time.Duration {
	if methodID == "express" {
		return 2 * 24 * time.Hour
	}
	return 5 * 24 * time.Hour
}
