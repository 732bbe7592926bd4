// Package promo defines promotional codes: string toggles that unlock a
// percentage discount on the cart subtotal.
package promo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidCode is returned when a promo code is not recognized.
	ErrInvalidCode = errors.New("invalid promo code")
	// ErrExpired is returned when a code is outside its valid time window.
	ErrExpired = errors.New("promo code expired")
	// ErrUsageLimitReached is returned when a code has exhausted its allowed uses.
	ErrUsageLimitReached = errors.New("promo code usage limit reached")
)

// Rule defines a promo code's discount and eligibility constraints.
// Percent is the discount as a percentage of the subtotal (10 means 10% off).
type Rule struct {
	Code        string
	Percent     decimal.Decimal
	Description string
	ValidFrom   *time.Time
	ValidUntil  *time.Time
	MaxUses     int
	Uses        int
}

// Discount holds a computed discount amount and the rule that produced it.
type Discount struct {
	Amount      decimal.Decimal
	Percent     decimal.Decimal
	Description string
}

// Repository provides lookup and mutation of promo rules. Lookups are
// case-insensitive on the code.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
	IncrementUses(ctx context.Context, code string) error
}
