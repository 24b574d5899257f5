package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urbanelite/storefront/internal/domain/coupon"
)

const couponColumns = `code, discount_type, value, min_order_amount, max_discount,
	expires_at, active, usage_limit, used_count`

const (
	getCouponByCodeSQL = `SELECT ` + couponColumns + ` FROM coupons WHERE code = UPPER($1)`

	listCouponsSQL = `SELECT ` + couponColumns + ` FROM coupons ORDER BY code`

	// The guard makes the increment a single conditional statement, so
	// concurrent applications cannot push used_count past the limit.
	consumeCouponUseSQL = `UPDATE coupons SET used_count = used_count + 1
		WHERE code = $1 AND (usage_limit = 0 OR used_count < usage_limit)`

	createCouponSQL = `INSERT INTO coupons
		(code, discount_type, value, min_order_amount, max_discount, expires_at, active, usage_limit, used_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	updateCouponSQL = `UPDATE coupons SET discount_type = $2, value = $3,
		min_order_amount = $4, max_discount = $5, expires_at = $6, active = $7,
		usage_limit = $8 WHERE code = $1`

	deleteCouponSQL = `DELETE FROM coupons WHERE code = $1`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode looks up a coupon by its code, case-insensitively. Inactive
// coupons are returned too; the validator distinguishes inactive from
// unknown. Returns coupon.ErrInvalidCode when no such coupon exists.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Rule, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanCouponRule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrInvalidCode
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return &rule, nil
}

// ConsumeUse atomically increments the usage counter, respecting the usage
// limit in the same statement.
func (r *CouponRepository) ConsumeUse(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, consumeCouponUseSQL, code)
	if err != nil {
		return fmt.Errorf("consuming use for coupon %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the code vanished or the limit was hit by a concurrent apply.
		if _, err := r.FindByCode(ctx, code); err != nil {
			return err
		}
		return coupon.ErrUsageExhausted
	}
	return nil
}

// List returns all coupon rules ordered by code.
func (r *CouponRepository) List(ctx context.Context) ([]coupon.Rule, error) {
	rows, err := r.pool.Query(ctx, listCouponsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}
	return pgx.CollectRows(rows, scanCouponRule)
}

// Create inserts a new coupon rule with a normalized code.
func (r *CouponRepository) Create(ctx context.Context, rule *coupon.Rule) error {
	_, err := r.pool.Exec(ctx, createCouponSQL,
		coupon.Normalize(rule.Code), rule.DiscountType, rule.Value,
		rule.MinOrderAmount, rule.MaxDiscount, rule.ExpiresAt,
		rule.Active, rule.UsageLimit, rule.UsedCount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("coupon %q already exists", rule.Code)
		}
		return fmt.Errorf("creating coupon %q: %w", rule.Code, err)
	}
	return nil
}

// Update overwrites a rule's discount behaviour and constraints. The usage
// counter is not reset.
func (r *CouponRepository) Update(ctx context.Context, rule *coupon.Rule) error {
	tag, err := r.pool.Exec(ctx, updateCouponSQL,
		coupon.Normalize(rule.Code), rule.DiscountType, rule.Value,
		rule.MinOrderAmount, rule.MaxDiscount, rule.ExpiresAt,
		rule.Active, rule.UsageLimit,
	)
	if err != nil {
		return fmt.Errorf("updating coupon %q: %w", rule.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrInvalidCode
	}
	return nil
}

// Delete removes a coupon rule.
func (r *CouponRepository) Delete(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, deleteCouponSQL, coupon.Normalize(code))
	if err != nil {
		return fmt.Errorf("deleting coupon %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrInvalidCode
	}
	return nil
}

func scanCouponRule(row pgx.CollectableRow) (coupon.Rule, error) {
	var (
		rule         coupon.Rule
		discountType string
	)
	err := row.Scan(
		&rule.Code, &discountType, &rule.Value, &rule.MinOrderAmount,
		&rule.MaxDiscount, &rule.ExpiresAt, &rule.Active,
		&rule.UsageLimit, &rule.UsedCount,
	)
	rule.DiscountType = coupon.DiscountType(discountType)
	return rule, err
}
