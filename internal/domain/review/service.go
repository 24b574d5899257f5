package review

import (
	"context"
	"math"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// PurchaseChecker reports whether an account has bought a product.
type PurchaseChecker interface {
	HasPurchased(ctx context.Context, accountID, productID string) (bool, error)
}

// Service enforces review eligibility and uniqueness.
type Service struct {
	reviews   Repository
	purchases PurchaseChecker

	now   func() time.Time
	newID func() string
}

// NewService creates a review Service.
func NewService(reviews Repository, purchases PurchaseChecker) *Service {
	return &Service{
		reviews:   reviews,
		purchases: purchases,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// Submit creates a review after checking the rating range, that the account
// has not reviewed this product before, and that a purchase record exists.
// Eligibility is checked regardless of how valid the review content is.
func (s *Service) Submit(ctx context.Context, productID, accountID, reviewerName string, rating int, title, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	exists, err := s.reviews.ExistsFor(ctx, productID, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "check existing review")
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	purchased, err := s.purchases.HasPurchased(ctx, accountID, productID)
	if err != nil {
		return nil, errors.Wrap(err, "check purchase record")
	}
	if !purchased {
		return nil, ErrNotPurchased
	}

	r := &Review{
		ID:           s.newID(),
		ProductID:    productID,
		AccountID:    accountID,
		ReviewerName: reviewerName,
		Rating:       rating,
		Title:        title,
		Comment:      comment,
		CreatedAt:    s.now(),
	}
	// The unique index still backstops a concurrent duplicate submission.
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ProductSummary returns a product's reviews with the average rating
// rounded to one decimal place.
func (s *Service) ProductSummary(ctx context.Context, productID string) (*ProductSummary, error) {
	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, errors.Wrap(err, "list reviews")
	}

	avg := 0.0
	if len(reviews) > 0 {
		total := 0
		for _, r := range reviews {
			total += r.Rating
		}
		avg = math.Round(float64(total)/float64(len(reviews))*10) / 10
	}

	return &ProductSummary{
		Reviews:       reviews,
		AverageRating: avg,
		TotalReviews:  len(reviews),
	}, nil
}

// ListByAccount returns the reviews an account has written, newest first.
func (s *Service) ListByAccount(ctx context.Context, accountID string) ([]Review, error) {
	return s.reviews.ListByAccount(ctx, accountID)
}

// ListAll returns every review for the admin console, newest first.
func (s *Service) ListAll(ctx context.Context) ([]Review, error) {
	return s.reviews.ListAll(ctx)
}
