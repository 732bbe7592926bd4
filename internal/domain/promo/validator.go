package promo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Validator validates a promo code against a cart subtotal and returns the
// computed discount. The discount is a function of the current subtotal and
// the code only, so re-validating the same code never stacks. Validation is
// read-only: it does not consume a use.
type Validator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Discount, error)
}

// Redeemer records that a promo code was consumed by a placed order.
// Redemption is separate from validation so cart re-pricing cannot exhaust
// usage-limited codes.
type Redeemer interface {
	Redeem(ctx context.Context, code string) error
}

// RepoValidator implements Validator by looking up rules from a Repository.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate looks up the rule for the given code, checks temporal validity and
// usage limits, and computes the discount against the subtotal. The usage
// counter is left untouched; Redeem consumes a use at order placement.
func (v *RepoValidator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Discount, error) {
	rule, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return nil, ErrInvalidCode
		}
		return nil, errors.Wrap(err, "lookup promo code")
	}

	now := v.now()

	if rule.ValidFrom != nil && now.Before(*rule.ValidFrom) {
		return nil, ErrExpired
	}
	if rule.ValidUntil != nil && now.After(*rule.ValidUntil) {
		return nil, ErrExpired
	}

	if rule.MaxUses > 0 && rule.Uses >= rule.MaxUses {
		return nil, ErrUsageLimitReached
	}

	d := Apply(rule, subtotal)
	return &d, nil
}

// Redeem increments the usage counter for the given code. The canonical code
// spelling is resolved through the repository first so counters are tracked
// case-insensitively, matching Validate's lookup.
func (v *RepoValidator) Redeem(ctx context.Context, code string) error {
	rule, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		return errors.Wrap(err, "lookup promo code")
	}
	if err := v.repo.IncrementUses(ctx, rule.Code); err != nil {
		return errors.Wrap(err, "increment promo uses")
	}
	return nil
}

// Apply computes the percentage discount for the given rule and subtotal.
// Negative intermediate values are clamped to zero; the amount is not rounded
// here so downstream math does not compound rounding error.
func Apply(rule *Rule, subtotal decimal.Decimal) Discount {
	amount := subtotal.Mul(rule.Percent).Div(hundred)
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	return Discount{
		Amount:      amount,
		Percent:     rule.Percent,
		Description: rule.Description,
	}
}
