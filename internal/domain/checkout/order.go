package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/urbanelite/storefront/internal/domain/coupon"
)

// StatusConfirmed is the single terminal order status.
const StatusConfirmed = "confirmed"

// OrderLine is a frozen copy of the product fields at purchase time. Later
// catalog edits do not change what the customer sees in their history.
type OrderLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
	Image     string          `json:"image"`
	BgColor   string          `json:"bgcolor"`
	Quantity  int             `json:"quantity"`
}

// Order is an immutable record of a completed checkout, stored per account.
type Order struct {
	ID             string
	AccountID      string
	Items          []OrderLine
	Subtotal       decimal.Decimal
	PlatformFee    decimal.Decimal
	CouponCode     string
	CouponDiscount decimal.Decimal
	Total          decimal.Decimal
	Status         string
	PaymentID      string
	CreatedAt      time.Time
}

// CustomerOrder is an order joined with its owning account, for the admin
// console's all-orders view.
type CustomerOrder struct {
	Order
	CustomerName  string
	CustomerEmail string
}

// OrderStore persists orders and their checkout side effects.
type OrderStore interface {
	// Commit atomically persists the order, records one purchase per distinct
	// product, optionally decrements stock (floored at zero), clears the
	// cart, and clears the applied-coupon session row. Any failure rolls the
	// whole commit back with no partial stock decrements or order rows.
	Commit(ctx context.Context, o *Order, decrementStock bool) error

	ListByAccount(ctx context.Context, accountID string) ([]Order, error)
	ListAll(ctx context.Context) ([]CustomerOrder, error)
}

// SessionStore holds the per-account applied-coupon state between
// /apply-coupon and checkout commit.
type SessionStore interface {
	SetApplied(ctx context.Context, accountID string, a *coupon.Applied) error
	// GetApplied returns nil (and no error) when no coupon is applied.
	GetApplied(ctx context.Context, accountID string) (*coupon.Applied, error)
	ClearApplied(ctx context.Context, accountID string) error
}
