package pricing

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxewear/storefront/internal/domain/cart"
	"github.com/luxewear/storefront/internal/domain/promo"
)

type stubValidator struct {
	percent decimal.Decimal
	err     error
	calls   int
}

func (s *stubValidator) Validate(_ context.Context, _ string, subtotal decimal.Decimal) (*promo.Discount, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	rule := &promo.Rule{Code: "DISCOUNT10", Percent: s.percent, Description: "promo"}
	d := promo.Apply(rule, subtotal)
	return &d, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func lineItem(id string, qty int, price string) cart.LineItem {
	return cart.LineItem{ProductID: id, Quantity: qty, UnitPrice: dec(price)}
}

var (
	standard = ShippingMethod{
		ID: "standard", Name: "Standard Shipping",
		Fee: dec("5.99"), FreeThreshold: dec("50"),
	}
	express = ShippingMethod{
		ID: "express", Name: "Express Shipping",
		Fee: dec("14.99"), FreeThreshold: dec("150"),
	}
)

// The worked scenario: {89.99 x1, 29.99 x2}, 10% promo, $50 free-shipping
// threshold. Total presents as 148.47.
func TestEngine_Price_Scenario(t *testing.T) {
	e := NewEngine(Percent(10), &stubValidator{percent: decimal.NewFromInt(10)})
	items := []cart.LineItem{
		lineItem("p1", 1, "89.99"),
		lineItem("p2", 2, "29.99"),
	}

	q, err := e.Price(context.Background(), items, "DISCOUNT10", standard)
	require.NoError(t, err)

	assert.Equal(t, PromoApplied, q.Promo)
	assert.Equal(t, "149.97", q.Subtotal.String())
	assert.Equal(t, "14.997", q.Discount.String())
	assert.True(t, q.Shipping.IsZero(), "149.97 exceeds the $50 threshold")
	assert.Equal(t, "13.4973", q.Tax.String())
	assert.Equal(t, "148.4703", q.Total.String())

	rounded := q.Rounded()
	assert.Equal(t, "148.47", rounded.Total.StringFixed(2))
	// Rounding is presentation-only: the quote itself keeps full precision.
	assert.Equal(t, "148.4703", q.Total.String())
}

func TestEngine_Price_NoCode(t *testing.T) {
	v := &stubValidator{percent: decimal.NewFromInt(10)}
	e := NewEngine(Percent(10), v)
	items := []cart.LineItem{lineItem("p1", 1, "20")}

	q, err := e.Price(context.Background(), items, "", standard)
	require.NoError(t, err)

	assert.Equal(t, PromoNone, q.Promo)
	assert.True(t, q.Discount.IsZero())
	assert.Zero(t, v.calls, "empty code must not hit the promo table")
	assert.Equal(t, "5.99", q.Shipping.String())
	assert.Equal(t, "2", q.Tax.String())
	assert.Equal(t, "27.99", q.Total.String())
}

func TestEngine_Price_RejectedCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "unknown code", err: promo.ErrInvalidCode},
		{name: "expired code", err: promo.ErrExpired},
		{name: "usage limit", err: promo.ErrUsageLimitReached},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(Percent(10), &stubValidator{err: tt.err})
			items := []cart.LineItem{lineItem("p1", 1, "100")}

			q, err := e.Price(context.Background(), items, "SOMECODE", standard)
			require.NoError(t, err, "rejection is a flag, not an error")

			assert.Equal(t, PromoRejected, q.Promo)
			assert.Equal(t, tt.err.Error(), q.PromoReason)
			assert.True(t, q.Discount.IsZero())
			// Totals still computed without the discount.
			assert.Equal(t, "110", q.Total.String())
		})
	}
}

func TestEngine_Price_InfrastructureErrorPropagates(t *testing.T) {
	e := NewEngine(Percent(10), &stubValidator{err: errors.New("promo table unreachable")})
	items := []cart.LineItem{lineItem("p1", 1, "100")}

	_, err := e.Price(context.Background(), items, "DISCOUNT10", standard)
	assert.Error(t, err)
}

func TestEngine_Price_EmptyCart(t *testing.T) {
	e := NewEngine(Percent(10), &stubValidator{percent: decimal.NewFromInt(10)})

	t.Run("positive threshold charges the flat fee", func(t *testing.T) {
		q, err := e.Price(context.Background(), nil, "", standard)
		require.NoError(t, err)

		assert.True(t, q.Subtotal.IsZero())
		assert.True(t, q.Discount.IsZero())
		assert.True(t, q.Tax.IsZero())
		assert.Equal(t, "5.99", q.Shipping.String())
		assert.True(t, q.Total.Equal(q.Shipping), "total = shipping on an empty cart")
	})

	t.Run("zero threshold ships free", func(t *testing.T) {
		free := ShippingMethod{ID: "pickup", Fee: dec("5.99")}
		q, err := e.Price(context.Background(), nil, "", free)
		require.NoError(t, err)

		assert.True(t, q.Shipping.IsZero())
		assert.True(t, q.Total.IsZero())
	})
}

func TestEngine_Price_ReapplyDoesNotStack(t *testing.T) {
	v := &stubValidator{percent: decimal.NewFromInt(10)}
	e := NewEngine(Percent(10), v)
	items := []cart.LineItem{lineItem("p1", 1, "100")}

	first, err := e.Price(context.Background(), items, "DISCOUNT10", standard)
	require.NoError(t, err)
	second, err := e.Price(context.Background(), items, "DISCOUNT10", standard)
	require.NoError(t, err)

	assert.True(t, first.Discount.Equal(second.Discount))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestEngine_Price_DiscountCappedAtSubtotal(t *testing.T) {
	e := NewEngine(Percent(10), &stubValidator{percent: decimal.NewFromInt(150)})
	items := []cart.LineItem{lineItem("p1", 1, "40")}

	q, err := e.Price(context.Background(), items, "DISCOUNT10", standard)
	require.NoError(t, err)

	assert.True(t, q.Discount.Equal(q.Subtotal))
	assert.True(t, q.Tax.IsZero())
	assert.True(t, q.Total.Equal(q.Shipping))
}

func TestShippingMethod_Cost(t *testing.T) {
	tests := []struct {
		name     string
		method   ShippingMethod
		subtotal string
		want     string
	}{
		{name: "below threshold pays fee", method: standard, subtotal: "49.99", want: "5.99"},
		{name: "at threshold ships free", method: standard, subtotal: "50", want: "0"},
		{name: "above threshold ships free", method: standard, subtotal: "100", want: "0"},
		{name: "express has its own threshold", method: express, subtotal: "100", want: "14.99"},
		{name: "express free above 150", method: express, subtotal: "150", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.method.Cost(dec(tt.subtotal))
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

// The waiver compares against the pre-discount subtotal: a $52 cart with a
// 10% promo still ships free on the $50 threshold even though the discounted
// subtotal is below it.
func TestEngine_Price_ThresholdUsesPreDiscountSubtotal(t *testing.T) {
	e := NewEngine(Percent(10), &stubValidator{percent: decimal.NewFromInt(10)})
	items := []cart.LineItem{lineItem("p1", 1, "52")}

	q, err := e.Price(context.Background(), items, "DISCOUNT10", standard)
	require.NoError(t, err)

	assert.Equal(t, "46.8", q.Subtotal.Sub(q.Discount).String())
	assert.True(t, q.Shipping.IsZero())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "0.1", Percent(10).String())
}
