package promo

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	rule          *Rule
	err           error
	incrementErr  error
	incrementCode string
}

func (m *mockRepo) FindByCode(_ context.Context, _ string) (*Rule, error) {
	return m.rule, m.err
}

func (m *mockRepo) IncrementUses(_ context.Context, code string) error {
	m.incrementCode = code
	return m.incrementErr
}

func TestRepoValidator_Validate(t *testing.T) {
	fixedNow := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	pastTime := fixedNow.Add(-24 * time.Hour)
	futureTime := fixedNow.Add(24 * time.Hour)

	tenPercent := &Rule{
		Code:        "DISCOUNT10",
		Percent:     decimal.NewFromInt(10),
		Description: "10% off your order",
	}

	tests := []struct {
		name       string
		repo       *mockRepo
		code       string
		subtotal   decimal.Decimal
		wantAmount string
		wantErr    error
	}{
		{
			name:       "valid code returns discount",
			repo:       &mockRepo{rule: tenPercent},
			code:       "DISCOUNT10",
			subtotal:   decimal.NewFromInt(100),
			wantAmount: "10",
		},
		{
			name:     "unknown code returns ErrInvalidCode",
			repo:     &mockRepo{err: ErrInvalidCode},
			code:     "BOGUS",
			subtotal: decimal.NewFromInt(100),
			wantErr:  ErrInvalidCode,
		},
		{
			name: "expired code",
			repo: &mockRepo{rule: &Rule{
				Code:       "OLD",
				Percent:    decimal.NewFromInt(10),
				ValidUntil: &pastTime,
			}},
			code:     "OLD",
			subtotal: decimal.NewFromInt(100),
			wantErr:  ErrExpired,
		},
		{
			name: "code not yet valid",
			repo: &mockRepo{rule: &Rule{
				Code:      "SOON",
				Percent:   decimal.NewFromInt(10),
				ValidFrom: &futureTime,
			}},
			code:     "SOON",
			subtotal: decimal.NewFromInt(100),
			wantErr:  ErrExpired,
		},
		{
			name: "code within window succeeds",
			repo: &mockRepo{rule: &Rule{
				Code:       "WINDOW",
				Percent:    decimal.NewFromInt(25),
				ValidFrom:  &pastTime,
				ValidUntil: &futureTime,
			}},
			code:       "WINDOW",
			subtotal:   decimal.NewFromInt(80),
			wantAmount: "20",
		},
		{
			name: "usage limit reached",
			repo: &mockRepo{rule: &Rule{
				Code:    "LIMITED",
				Percent: decimal.NewFromInt(10),
				MaxUses: 100,
				Uses:    100,
			}},
			code:     "LIMITED",
			subtotal: decimal.NewFromInt(100),
			wantErr:  ErrUsageLimitReached,
		},
		{
			name: "usage under limit succeeds",
			repo: &mockRepo{rule: &Rule{
				Code:    "HASROOM",
				Percent: decimal.NewFromInt(10),
				MaxUses: 100,
				Uses:    99,
			}},
			code:       "HASROOM",
			subtotal:   decimal.NewFromInt(100),
			wantAmount: "10",
		},
		{
			name:       "zero subtotal yields zero discount",
			repo:       &mockRepo{rule: tenPercent},
			code:       "DISCOUNT10",
			subtotal:   decimal.Zero,
			wantAmount: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewRepoValidator(tt.repo)
			v.now = func() time.Time { return fixedNow }

			d, err := v.Validate(context.Background(), tt.code, tt.subtotal)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, d)
				assert.Empty(t, tt.repo.incrementCode, "failed validation must not consume a use")
				return
			}

			require.NoError(t, err)
			require.NotNil(t, d)
			assert.True(t, d.Amount.Equal(mustDecimal(tt.wantAmount)),
				"got %s, want %s", d.Amount, tt.wantAmount)
			assert.Empty(t, tt.repo.incrementCode, "validation is read-only")
		})
	}
}

func TestRepoValidator_ValidateNeverConsumesUses(t *testing.T) {
	repo := &mockRepo{rule: &Rule{Code: "LIMITED", Percent: decimal.NewFromInt(10), MaxUses: 1}}
	v := NewRepoValidator(repo)

	// A cart quoted many times before checkout must not burn the code.
	for range 10 {
		_, err := v.Validate(context.Background(), "LIMITED", decimal.NewFromInt(50))
		require.NoError(t, err)
	}
	assert.Empty(t, repo.incrementCode)
}

func TestRepoValidator_Redeem(t *testing.T) {
	repo := &mockRepo{rule: &Rule{Code: "DISCOUNT10", Percent: decimal.NewFromInt(10)}}
	v := NewRepoValidator(repo)

	require.NoError(t, v.Redeem(context.Background(), "discount10"))
	assert.Equal(t, "DISCOUNT10", repo.incrementCode, "uses tracked against the canonical code")
}

func TestRepoValidator_RedeemError(t *testing.T) {
	repo := &mockRepo{
		rule:         &Rule{Code: "DISCOUNT10", Percent: decimal.NewFromInt(10)},
		incrementErr: errors.New("db down"),
	}
	v := NewRepoValidator(repo)

	assert.Error(t, v.Redeem(context.Background(), "DISCOUNT10"))
}

func TestApply_NotRounded(t *testing.T) {
	rule := &Rule{Code: "DISCOUNT10", Percent: decimal.NewFromInt(10)}

	// 10% of 149.97 is 14.997; the third decimal must survive so checkout
	// totals do not compound rounding error.
	d := Apply(rule, mustDecimal("149.97"))
	assert.Equal(t, "14.997", d.Amount.String())
}

func TestApply_IdempotentOverSubtotal(t *testing.T) {
	rule := &Rule{Code: "DISCOUNT10", Percent: decimal.NewFromInt(10)}
	subtotal := mustDecimal("149.97")

	first := Apply(rule, subtotal)
	second := Apply(rule, subtotal)

	assert.True(t, first.Amount.Equal(second.Amount),
		"discount is a function of subtotal and code, not of history")
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
