// Package pricing derives cart totals: subtotal, promo discount, shipping,
// tax, and total. All math is decimal and unrounded; rounding to currency
// precision happens once, at the presentation boundary.
package pricing

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/luxewear/storefront/internal/domain/cart"
	"github.com/luxewear/storefront/internal/domain/promo"
)

var hundred = decimal.NewFromInt(100)

// PromoStatus distinguishes the three promo outcomes the UI renders
// differently: no code entered, code applied, and code rejected.
type PromoStatus string

const (
	// PromoNone means no code was entered.
	PromoNone PromoStatus = "none"
	// PromoApplied means the code was recognized and the discount applied.
	PromoApplied PromoStatus = "applied"
	// PromoRejected means a code was entered but not accepted; Quote.PromoReason
	// carries the cause. Rejection is a result flag, never an error.
	PromoRejected PromoStatus = "rejected"
)

// ShippingMethod carries a flat fee and the subtotal level at or above which
// the fee is waived. A zero or negative FreeThreshold ships free always.
type ShippingMethod struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Fee           decimal.Decimal `json:"fee"`
	FreeThreshold decimal.Decimal `json:"freeThreshold"`
}

// Cost returns the shipping cost for the given subtotal: zero at or above the
// free-shipping threshold, the flat fee below it.
//
// The threshold compares against the pre-discount subtotal, matching the cart
// page of the storefront. See DESIGN.md for the checkout-stage decision.
func (m ShippingMethod) Cost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(m.FreeThreshold) {
		return decimal.Zero
	}
	return m.Fee
}

// Quote is the derived pricing result. It is never stored; callers recompute
// it from current inputs whenever those change.
//
// Components are kept unrounded. Total = Subtotal - Discount + Shipping + Tax.
type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal

	Promo            PromoStatus
	PromoReason      string
	PromoDescription string
}

// Rounded returns a copy with every component rounded to 2 decimal places,
// for display and persistence.
func (q Quote) Rounded() Quote {
	q.Subtotal = q.Subtotal.Round(2)
	q.Discount = q.Discount.Round(2)
	q.Shipping = q.Shipping.Round(2)
	q.Tax = q.Tax.Round(2)
	q.Total = q.Total.Round(2)
	return q
}

// Engine computes quotes. The tax rate and the promo code table are injected
// configuration, not constants.
type Engine struct {
	taxRate decimal.Decimal
	promos  promo.Validator
}

// NewEngine creates an Engine. taxRate is a fraction: 0.10 means 10% tax on
// the discounted subtotal.
func NewEngine(taxRate decimal.Decimal, promos promo.Validator) *Engine {
	return &Engine{taxRate: taxRate, promos: promos}
}

// Price computes the quote for the given line items, promo code, and shipping
// method. An empty promoCode yields PromoNone; an unaccepted code yields
// PromoRejected with a reason. Only infrastructure failures (promo table
// unreachable) surface as errors.
//
// Every term follows the same formula regardless of cart size: an empty cart
// has a zero subtotal, so it still pays the flat fee of a method whose
// free-shipping threshold is above zero.
func (e *Engine) Price(ctx context.Context, items []cart.LineItem, promoCode string, method ShippingMethod) (Quote, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal())
	}

	q := Quote{
		Subtotal: subtotal,
		Discount: decimal.Zero,
		Promo:    PromoNone,
	}

	if promoCode != "" {
		d, err := e.promos.Validate(ctx, promoCode, subtotal)
		switch {
		case err == nil:
			q.Promo = PromoApplied
			q.Discount = d.Amount
			q.PromoDescription = d.Description
		case errors.Is(err, promo.ErrInvalidCode),
			errors.Is(err, promo.ErrExpired),
			errors.Is(err, promo.ErrUsageLimitReached):
			q.Promo = PromoRejected
			q.PromoReason = err.Error()
		default:
			return Quote{}, errors.Wrap(err, "validate promo code")
		}
	}

	// Discount never exceeds the subtotal.
	if q.Discount.GreaterThan(subtotal) {
		q.Discount = subtotal
	}

	q.Shipping = method.Cost(subtotal)
	q.Tax = subtotal.Sub(q.Discount).Mul(e.taxRate)
	q.Total = subtotal.Sub(q.Discount).Add(q.Shipping).Add(q.Tax)

	return q, nil
}

// Percent builds a decimal tax rate from a percentage, e.g. Percent(10) is 0.10.
func Percent(p int64) decimal.Decimal {
	return decimal.NewFromInt(p).Div(hundred)
}
