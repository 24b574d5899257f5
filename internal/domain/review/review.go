// Package review implements product reviews gated by purchase history.
package review

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrAlreadyReviewed is returned when the account has already reviewed
	// the product. At most one review exists per (product, account) pair.
	ErrAlreadyReviewed = errors.New("product already reviewed")
	// ErrNotPurchased is returned when the account has no purchase record
	// for the product.
	ErrNotPurchased = errors.New("product must be purchased before reviewing")
	// ErrInvalidRating is returned when the rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Review is a customer's review of a product. ReviewerName is denormalized
// at submission time.
type Review struct {
	ID           string
	ProductID    string
	AccountID    string
	ReviewerName string
	Rating       int
	Title        string
	Comment      string
	CreatedAt    time.Time
}

// ProductSummary aggregates a product's reviews.
type ProductSummary struct {
	Reviews       []Review
	AverageRating float64
	TotalReviews  int
}

// Repository provides review persistence.
type Repository interface {
	// Create inserts a review; ErrAlreadyReviewed when the (product, account)
	// pair already has one.
	Create(ctx context.Context, r *Review) error
	ExistsFor(ctx context.Context, productID, accountID string) (bool, error)
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
	ListByAccount(ctx context.Context, accountID string) ([]Review, error)
	// ListAll returns every review, newest first. Used by the admin console.
	ListAll(ctx context.Context) ([]Review, error)
}
