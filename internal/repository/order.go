package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urbanelite/storefront/internal/domain/checkout"
)

const (
	decrementStockSQL = `UPDATE products SET stock = GREATEST(stock - $2, 0) WHERE id = $1`

	createOrderSQL = `INSERT INTO orders
		(id, account_id, items, subtotal, platform_fee, coupon_code, coupon_discount, total, status, payment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	recordPurchaseSQL = `INSERT INTO purchases (account_id, product_id, order_id, purchased_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, product_id) DO NOTHING`

	clearCartSQL = `DELETE FROM cart_items WHERE account_id = $1`

	clearAppliedCouponSQL = `DELETE FROM applied_coupons WHERE account_id = $1`

	orderColumns = `id, account_id, items, subtotal, platform_fee, coupon_code,
		coupon_discount, total, status, payment_id, created_at`

	listOrdersByAccountSQL = `SELECT ` + orderColumns + `
		FROM orders WHERE account_id = $1 ORDER BY created_at DESC`

	listAllOrdersSQL = `SELECT o.id, o.account_id, o.items, o.subtotal, o.platform_fee,
		o.coupon_code, o.coupon_discount, o.total, o.status, o.payment_id, o.created_at,
		a.full_name, a.email
		FROM orders o JOIN accounts a ON a.id = o.account_id
		ORDER BY o.created_at DESC`
)

var _ checkout.OrderStore = (*OrderRepository)(nil)

// OrderRepository implements checkout.OrderStore backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Commit persists the order and all checkout side effects in one
// transaction: stock decrements (optional, floored at zero), the order row,
// one purchase row per distinct product, cart clearing, and applied-coupon
// clearing. Any error rolls everything back.
func (r *OrderRepository) Commit(ctx context.Context, o *checkout.Order, decrementStock bool) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning checkout transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if decrementStock {
		for _, item := range o.Items {
			if _, err := tx.Exec(ctx, decrementStockSQL, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("decrementing stock for %q: %w", item.ProductID, err)
			}
		}
	}

	_, err = tx.Exec(ctx, createOrderSQL,
		o.ID, o.AccountID, itemsJSON, o.Subtotal, o.PlatformFee,
		o.CouponCode, o.CouponDiscount, o.Total, o.Status, o.PaymentID, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	for _, item := range o.Items {
		if _, err := tx.Exec(ctx, recordPurchaseSQL, o.AccountID, item.ProductID, o.ID, o.CreatedAt); err != nil {
			return fmt.Errorf("recording purchase of %q: %w", item.ProductID, err)
		}
	}

	if _, err := tx.Exec(ctx, clearCartSQL, o.AccountID); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	if _, err := tx.Exec(ctx, clearAppliedCouponSQL, o.AccountID); err != nil {
		return fmt.Errorf("clearing applied coupon: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing checkout transaction: %w", err)
	}
	return nil
}

// ListByAccount returns an account's orders, newest first.
func (r *OrderRepository) ListByAccount(ctx context.Context, accountID string) ([]checkout.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByAccountSQL, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ListAll returns every order joined with its customer, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]checkout.CustomerOrder, error) {
	rows, err := r.pool.Query(ctx, listAllOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing all orders: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (checkout.CustomerOrder, error) {
		var (
			co    checkout.CustomerOrder
			items []byte
		)
		err := row.Scan(
			&co.ID, &co.AccountID, &items, &co.Subtotal, &co.PlatformFee,
			&co.CouponCode, &co.CouponDiscount, &co.Total, &co.Status,
			&co.PaymentID, &co.CreatedAt, &co.CustomerName, &co.CustomerEmail,
		)
		if err != nil {
			return co, err
		}
		if err := json.Unmarshal(items, &co.Items); err != nil {
			return co, errors.Wrap(err, "unmarshal order items")
		}
		return co, nil
	})
}

func scanOrder(row pgx.CollectableRow) (checkout.Order, error) {
	var (
		o     checkout.Order
		items []byte
	)
	err := row.Scan(
		&o.ID, &o.AccountID, &items, &o.Subtotal, &o.PlatformFee,
		&o.CouponCode, &o.CouponDiscount, &o.Total, &o.Status,
		&o.PaymentID, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return o, errors.Wrap(err, "unmarshal order items")
	}
	return o, nil
}
