package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urbanelite/storefront/internal/domain/checkout"
	"github.com/urbanelite/storefront/internal/domain/coupon"
)

const (
	setAppliedCouponSQL = `INSERT INTO applied_coupons (account_id, code, discount_type, value, amount, applied_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (account_id) DO UPDATE SET
			code = EXCLUDED.code,
			discount_type = EXCLUDED.discount_type,
			value = EXCLUDED.value,
			amount = EXCLUDED.amount,
			applied_at = EXCLUDED.applied_at`

	getAppliedCouponSQL = `SELECT code, discount_type, value, amount
		FROM applied_coupons WHERE account_id = $1`

	deleteAppliedCouponSQL = `DELETE FROM applied_coupons WHERE account_id = $1`
)

var _ checkout.SessionStore = (*SessionRepository)(nil)

// SessionRepository stores the per-account applied coupon between apply and
// checkout. One row per account, replaced on re-apply.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a SessionRepository that uses the given pool.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) SetApplied(ctx context.Context, accountID string, a *coupon.Applied) error {
	_, err := r.pool.Exec(ctx, setAppliedCouponSQL, accountID, a.Code, a.Type, a.Value, a.Amount)
	if err != nil {
		return fmt.Errorf("storing applied coupon: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetApplied(ctx context.Context, accountID string) (*coupon.Applied, error) {
	var a coupon.Applied
	err := r.pool.QueryRow(ctx, getAppliedCouponSQL, accountID).
		Scan(&a.Code, &a.Type, &a.Value, &a.Amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading applied coupon: %w", err)
	}
	return &a, nil
}

func (r *SessionRepository) ClearApplied(ctx context.Context, accountID string) error {
	if _, err := r.pool.Exec(ctx, deleteAppliedCouponSQL, accountID); err != nil {
		return fmt.Errorf("clearing applied coupon: %w", err)
	}
	return nil
}
