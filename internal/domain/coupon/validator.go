package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validator checks a coupon code against an order subtotal and returns the
// discount it would grant. Validation does not consume a use; callers that
// record the application are responsible for Repository.ConsumeUse.
type Validator struct {
	repo Repository
	now  func() time.Time
}

// NewValidator creates a Validator backed by the given Repository.
func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo, now: time.Now}
}

// Validate normalizes the code, runs the eligibility checks in their fixed
// order (unknown code, inactive, expired, usage exhausted, below minimum),
// and short-circuits on the first failure. On success it returns the Applied
// record with the computed discount amount.
func (v *Validator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Applied, error) {
	normalized := Normalize(code)

	rule, err := v.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return nil, ErrInvalidCode
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	if !rule.Active {
		return nil, ErrInactive
	}
	if rule.ExpiresAt.Before(v.now()) {
		return nil, ErrExpired
	}
	if rule.UsageLimit > 0 && rule.UsedCount >= rule.UsageLimit {
		return nil, ErrUsageExhausted
	}
	if subtotal.LessThan(rule.MinOrderAmount) {
		return nil, &BelowMinimumError{Minimum: rule.MinOrderAmount}
	}

	return &Applied{
		Code:   rule.Code,
		Type:   rule.DiscountType,
		Value:  rule.Value,
		Amount: Compute(rule, subtotal),
	}, nil
}
