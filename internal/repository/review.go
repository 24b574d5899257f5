package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urbanelite/storefront/internal/domain/review"
)

const (
	createReviewSQL = `INSERT INTO reviews
		(id, product_id, account_id, reviewer_name, rating, title, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	reviewExistsSQL = `SELECT EXISTS (
		SELECT 1 FROM reviews WHERE product_id = $1 AND account_id = $2)`

	reviewColumns = `id, product_id, account_id, reviewer_name, rating, title, comment, created_at`

	listReviewsByProductSQL = `SELECT ` + reviewColumns + `
		FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`

	listReviewsByAccountSQL = `SELECT ` + reviewColumns + `
		FROM reviews WHERE account_id = $1 ORDER BY created_at DESC`

	listAllReviewsSQL = `SELECT ` + reviewColumns + `
		FROM reviews ORDER BY created_at DESC`
)

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	_, err := r.pool.Exec(ctx, createReviewSQL,
		rv.ID, rv.ProductID, rv.AccountID, rv.ReviewerName,
		rv.Rating, rv.Title, rv.Comment, rv.CreatedAt,
	)
	if isUniqueViolation(err) {
		return review.ErrAlreadyReviewed
	}
	if err != nil {
		return fmt.Errorf("creating review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) ExistsFor(ctx context.Context, productID, accountID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, reviewExistsSQL, productID, accountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking review existence: %w", err)
	}
	return exists, nil
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]review.Review, error) {
	rows, err := r.pool.Query(ctx, listReviewsByProductSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for product: %w", err)
	}
	return pgx.CollectRows(rows, scanReview)
}

func (r *ReviewRepository) ListByAccount(ctx context.Context, accountID string) ([]review.Review, error) {
	rows, err := r.pool.Query(ctx, listReviewsByAccountSQL, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for account: %w", err)
	}
	return pgx.CollectRows(rows, scanReview)
}

func (r *ReviewRepository) ListAll(ctx context.Context) ([]review.Review, error) {
	rows, err := r.pool.Query(ctx, listAllReviewsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing all reviews: %w", err)
	}
	return pgx.CollectRows(rows, scanReview)
}

func scanReview(row pgx.CollectableRow) (review.Review, error) {
	var rv review.Review
	err := row.Scan(
		&rv.ID, &rv.ProductID, &rv.AccountID, &rv.ReviewerName,
		&rv.Rating, &rv.Title, &rv.Comment, &rv.CreatedAt,
	)
	return rv, err
}
