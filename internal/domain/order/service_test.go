package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxewear/storefront/internal/domain/cart"
	"github.com/luxewear/storefront/internal/domain/pricing"
	"github.com/luxewear/storefront/internal/domain/promo"
)

type mockOrderRepo struct {
	lastOrder *Order
	err       error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.lastOrder = o
	return m.err
}

func (m *mockOrderRepo) GetByID(_ context.Context, _ string) (*Order, error) {
	return m.lastOrder, nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]Order, error) {
	if m.lastOrder == nil {
		return nil, nil
	}
	return []Order{*m.lastOrder}, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ string, _ Status, _ string) error {
	return m.err
}

type stubPromoRepo struct {
	rule       *promo.Rule
	increments int
}

func (s *stubPromoRepo) FindByCode(_ context.Context, _ string) (*promo.Rule, error) {
	if s.rule == nil {
		return nil, promo.ErrInvalidCode
	}
	return s.rule, nil
}

func (s *stubPromoRepo) IncrementUses(_ context.Context, _ string) error {
	s.increments++
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var testMethods = []pricing.ShippingMethod{
	{ID: "standard", Name: "Standard Shipping", Fee: dec("5.99"), FreeThreshold: dec("50")},
	{ID: "express", Name: "Express Shipping", Fee: dec("14.99"), FreeThreshold: dec("150")},
}

func newService(rule *promo.Rule, repo *mockOrderRepo) (*Service, *stubPromoRepo) {
	promos := &stubPromoRepo{rule: rule}
	validator := promo.NewRepoValidator(promos)
	engine := pricing.NewEngine(pricing.Percent(10), validator)
	return NewService(engine, testMethods, repo, validator), promos
}

func testItems() []cart.LineItem {
	return []cart.LineItem{
		{ProductID: "p1", Name: "Silk Midi Dress", UnitPrice: dec("89.99"), Quantity: 1, Size: "M", Color: "Black"},
		{ProductID: "p2", Name: "Cotton Tee", UnitPrice: dec("29.99"), Quantity: 2, Size: "S", Color: "White"},
	}
}

func TestService_PlaceOrder(t *testing.T) {
	repo := &mockOrderRepo{}
	svc, promos := newService(&promo.Rule{Code: "DISCOUNT10", Percent: decimal.NewFromInt(10)}, repo)
	fixedNow := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixedNow }

	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:            testItems(),
		PromoCode:        "DISCOUNT10",
		ShippingMethodID: "standard",
		PaymentMethod:    "credit-card",
		ShippingAddress:  Address{FirstName: "Ada", City: "Boston", Country: "United States"},
	})
	require.NoError(t, err)
	require.NotNil(t, o)

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "149.97", o.Subtotal.String())
	assert.Equal(t, "15", o.Discount.String(), "14.997 stored rounded")
	assert.True(t, o.Shipping.IsZero())
	assert.Equal(t, "13.5", o.Tax.String())
	assert.Equal(t, "148.47", o.Total.StringFixed(2))
	assert.Equal(t, fixedNow, o.CreatedAt)
	require.NotNil(t, o.EstimatedDelivery)
	assert.Equal(t, fixedNow.Add(5*24*time.Hour), *o.EstimatedDelivery)

	assert.Same(t, o, repo.lastOrder, "order persisted")
	assert.Equal(t, 1, promos.increments, "placement consumes exactly one use")
}

func TestService_PlaceOrder_RepricingDoesNotConsumeUses(t *testing.T) {
	rule := &promo.Rule{Code: "LIMITED", Percent: decimal.NewFromInt(10), MaxUses: 1}
	repo := &mockOrderRepo{}
	svc, promos := newService(rule, repo)

	// Cart re-renders validate the code repeatedly before checkout.
	for range 5 {
		_, err := svc.engine.Price(context.Background(), testItems(), "LIMITED", testMethods[0])
		require.NoError(t, err)
	}
	require.Equal(t, 0, promos.increments, "validation must not consume uses")

	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:            testItems(),
		PromoCode:        "LIMITED",
		ShippingMethodID: "standard",
	})
	require.NoError(t, err)
	assert.Equal(t, "15", o.Discount.String())
	assert.Equal(t, 1, promos.increments)
}

func TestService_PlaceOrder_EmptyCart(t *testing.T) {
	svc, _ := newService(nil, &mockOrderRepo{})

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		ShippingMethodID: "standard",
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestService_PlaceOrder_UnknownShippingMethod(t *testing.T) {
	svc, _ := newService(nil, &mockOrderRepo{})

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:            testItems(),
		ShippingMethodID: "teleport",
	})

	var umErr *UnknownShippingMethodError
	require.ErrorAs(t, err, &umErr)
	assert.Equal(t, "teleport", umErr.MethodID)
}

func TestService_PlaceOrder_RejectedPromo(t *testing.T) {
	repo := &mockOrderRepo{}
	svc, promos := newService(nil, repo) // promo table knows no codes

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:            testItems(),
		PromoCode:        "BOGUS",
		ShippingMethodID: "standard",
	})

	var rpErr *RejectedPromoError
	require.ErrorAs(t, err, &rpErr)
	assert.Equal(t, "BOGUS", rpErr.Code)
	assert.Nil(t, repo.lastOrder, "rejected promo must not persist an order")
	assert.Equal(t, 0, promos.increments)
}

func TestService_PlaceOrder_NoPromo(t *testing.T) {
	repo := &mockOrderRepo{}
	svc, _ := newService(nil, repo)

	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:            testItems(),
		ShippingMethodID: "express",
	})
	require.NoError(t, err)

	assert.True(t, o.Discount.IsZero())
	assert.Equal(t, "14.99", o.Shipping.String(), "149.97 below the express threshold")
}

func TestService_PlaceOrder_PersistError(t *testing.T) {
	repo := &mockOrderRepo{err: errors.New("db down")}
	svc, _ := newService(nil, repo)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:            testItems(),
		ShippingMethodID: "standard",
	})
	assert.Error(t, err)
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, Status("misplaced").Valid())
}
