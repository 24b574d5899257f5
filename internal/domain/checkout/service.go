package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/urbanelite/storefront/internal/domain/account"
	"github.com/urbanelite/storefront/internal/domain/coupon"
)

// StockMode selects when purchased stock is decremented.
type StockMode string

const (
	// StockAtCart reserves stock when a product enters a cart and releases
	// it when removed.
	StockAtCart StockMode = "at_cart"
	// StockAtCommit decrements stock inside the checkout commit transaction.
	StockAtCommit StockMode = "at_commit"
	// StockNone never touches stock.
	StockNone StockMode = "none"
)

// ErrEmptyCart is returned when checkout is attempted with no cart lines.
var ErrEmptyCart = errors.New("cart is empty")

// Config holds the pricing policy knobs.
type Config struct {
	// PlatformFee is a flat charge added once per order.
	PlatformFee decimal.Decimal
	// StockMode selects the stock reservation policy.
	StockMode StockMode
}

// Quote is the priced state of a cart, rendered by GET /checkout.
type Quote struct {
	Lines          []account.CartLine
	Subtotal       decimal.Decimal
	PlatformFee    decimal.Decimal
	Applied        *coupon.Applied
	CouponDiscount decimal.Decimal
	Total          decimal.Decimal
}

// Service coordinates coupon application and the checkout commit. The
// applied-coupon state lives in the SessionStore and is passed through
// explicitly; the service keeps no per-request mutable state.
type Service struct {
	cfg       Config
	accounts  account.Repository
	coupons   coupon.Repository
	validator *coupon.Validator
	orders    OrderStore
	session   SessionStore

	now   func() time.Time
	newID func() string
}

// NewService creates a checkout Service.
func NewService(
	cfg Config,
	accounts account.Repository,
	coupons coupon.Repository,
	validator *coupon.Validator,
	orders OrderStore,
	session SessionStore,
) *Service {
	if cfg.StockMode == "" {
		cfg.StockMode = StockAtCommit
	}
	return &Service{
		cfg:       cfg,
		accounts:  accounts,
		coupons:   coupons,
		validator: validator,
		orders:    orders,
		session:   session,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// StockMode reports the configured stock reservation policy.
func (s *Service) StockMode() StockMode {
	return s.cfg.StockMode
}

// Quote prices the current cart together with any applied coupon.
func (s *Service) Quote(ctx context.Context, accountID string) (*Quote, error) {
	lines, err := s.accounts.ListCart(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart")
	}

	applied, err := s.session.GetApplied(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "load applied coupon")
	}

	subtotal := Subtotal(lines)
	discount := decimal.Zero
	if applied != nil {
		discount = applied.Amount
	}

	return &Quote{
		Lines:          lines,
		Subtotal:       subtotal,
		PlatformFee:    s.cfg.PlatformFee,
		Applied:        applied,
		CouponDiscount: discount,
		Total:          Total(subtotal, s.cfg.PlatformFee, discount),
	}, nil
}

// ApplyCoupon validates the code against the current cart subtotal, consumes
// one use, and stores the applied state for the session. Re-applying the
// code already applied is idempotent: it returns the stored state without
// consuming another use.
func (s *Service) ApplyCoupon(ctx context.Context, accountID, code string) (*coupon.Applied, error) {
	normalized := coupon.Normalize(code)

	current, err := s.session.GetApplied(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "load applied coupon")
	}
	if current != nil && current.Code == normalized {
		return current, nil
	}

	lines, err := s.accounts.ListCart(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart")
	}

	applied, err := s.validator.Validate(ctx, normalized, Subtotal(lines))
	if err != nil {
		return nil, err
	}

	// The use is consumed here and not returned on removal.
	if err := s.coupons.ConsumeUse(ctx, applied.Code); err != nil {
		return nil, err
	}

	if err := s.session.SetApplied(ctx, accountID, applied); err != nil {
		return nil, errors.Wrap(err, "store applied coupon")
	}
	return applied, nil
}

// RemoveCoupon clears the session-scoped coupon state. The consumed use
// stays consumed.
func (s *Service) RemoveCoupon(ctx context.Context, accountID string) error {
	return s.session.ClearApplied(ctx, accountID)
}

// Confirm commits the checkout: snapshots the cart into an order, reusing
// the applied coupon's stored discount amount without re-validation, and
// persists all side effects in one transaction. paymentID is empty for the
// direct (non-gateway) flow.
func (s *Service) Confirm(ctx context.Context, accountID, paymentID string) (*Order, error) {
	lines, err := s.accounts.ListCart(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart")
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	applied, err := s.session.GetApplied(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "load applied coupon")
	}

	subtotal := Subtotal(lines)
	discount := decimal.Zero
	couponCode := ""
	if applied != nil {
		discount = applied.Amount
		couponCode = applied.Code
	}

	items := make([]OrderLine, len(lines))
	for i, line := range lines {
		items[i] = OrderLine{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Price:     line.Product.Price,
			Discount:  line.Product.Discount,
			Image:     line.Product.Image,
			BgColor:   line.Product.BgColor,
			Quantity:  line.Quantity,
		}
	}

	o := &Order{
		ID:             s.newID(),
		AccountID:      accountID,
		Items:          items,
		Subtotal:       subtotal,
		PlatformFee:    s.cfg.PlatformFee,
		CouponCode:     couponCode,
		CouponDiscount: discount,
		Total:          Total(subtotal, s.cfg.PlatformFee, discount),
		Status:         StatusConfirmed,
		PaymentID:      paymentID,
		CreatedAt:      s.now(),
	}

	if err := s.orders.Commit(ctx, o, s.cfg.StockMode == StockAtCommit); err != nil {
		return nil, errors.Wrap(err, "commit order")
	}
	return o, nil
}
