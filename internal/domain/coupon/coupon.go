// Package coupon implements promotional code validation and discount
// calculation.
package coupon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the subtotal, optionally
	// capped at the rule's MaxDiscount.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a fixed monetary discount capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
)

// Validation failures, in the order the checks run. The first failing check
// wins; later checks are not evaluated.
var (
	// ErrInvalidCode is returned when a coupon code is not found.
	ErrInvalidCode = errors.New("invalid coupon code")
	// ErrInactive is returned when the coupon has been deactivated.
	ErrInactive = errors.New("coupon is not active")
	// ErrExpired is returned when the coupon is past its expiry timestamp.
	ErrExpired = errors.New("coupon has expired")
	// ErrUsageExhausted is returned when the coupon has reached its usage limit.
	ErrUsageExhausted = errors.New("coupon usage limit reached")
)

// BelowMinimumError is returned when the order subtotal does not meet the
// coupon's minimum order amount. The message carries the minimum so the
// shopper knows how much more to add.
type BelowMinimumError struct {
	Minimum decimal.Decimal
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("minimum order amount of %s required for this coupon", e.Minimum.StringFixed(2))
}

// Rule defines a coupon's discount behaviour and eligibility constraints.
type Rule struct {
	Code           string
	DiscountType   DiscountType
	Value          decimal.Decimal
	MinOrderAmount decimal.Decimal
	// MaxDiscount caps percentage discounts; zero means uncapped.
	MaxDiscount decimal.Decimal
	ExpiresAt   time.Time
	Active      bool
	// UsageLimit bounds total redemptions; zero means unlimited.
	UsageLimit int
	UsedCount  int
}

// Applied is the session-scoped record of a successfully applied coupon.
// The Amount is frozen at apply time and reused at checkout commit without
// re-validation.
type Applied struct {
	Code   string
	Type   DiscountType
	Value  decimal.Decimal
	Amount decimal.Decimal
}

// Normalize upper-cases and trims a coupon code for lookup.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Repository provides coupon rule persistence.
type Repository interface {
	// FindByCode looks up a rule by its normalized code, regardless of the
	// active flag. Returns ErrInvalidCode when no such coupon exists.
	FindByCode(ctx context.Context, code string) (*Rule, error)
	// ConsumeUse atomically increments used_count, failing with
	// ErrUsageExhausted when the usage limit has been reached. The increment
	// is never reverted: removing an applied coupon does not return the use.
	ConsumeUse(ctx context.Context, code string) error

	List(ctx context.Context) ([]Rule, error)
	Create(ctx context.Context, r *Rule) error
	Update(ctx context.Context, r *Rule) error
	Delete(ctx context.Context, code string) error
}
