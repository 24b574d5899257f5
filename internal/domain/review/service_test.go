package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReviewRepo struct {
	existing  bool
	created   *Review
	createErr error
	byProduct []Review
}

func (m *mockReviewRepo) Create(_ context.Context, r *Review) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = r
	return nil
}
func (m *mockReviewRepo) ExistsFor(context.Context, string, string) (bool, error) {
	return m.existing, nil
}
func (m *mockReviewRepo) ListByProduct(context.Context, string) ([]Review, error) {
	return m.byProduct, nil
}
func (m *mockReviewRepo) ListByAccount(context.Context, string) ([]Review, error) { return nil, nil }
func (m *mockReviewRepo) ListAll(context.Context) ([]Review, error)               { return nil, nil }

type mockPurchases struct {
	purchased bool
}

func (m *mockPurchases) HasPurchased(context.Context, string, string) (bool, error) {
	return m.purchased, nil
}

func newTestService(repo *mockReviewRepo, purchases *mockPurchases) *Service {
	s := NewService(repo, purchases)
	s.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	s.newID = func() string { return "rev-1" }
	return s
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("purchaser can review", func(t *testing.T) {
		repo := &mockReviewRepo{}
		s := newTestService(repo, &mockPurchases{purchased: true})

		rv, err := s.Submit(ctx, "p1", "acc-1", "Sam", 4, "Solid", "Does the job.")

		require.NoError(t, err)
		assert.Equal(t, "rev-1", rv.ID)
		assert.Equal(t, "Sam", rv.ReviewerName)
		assert.Equal(t, 4, rv.Rating)
		assert.Same(t, rv, repo.created)
	})

	t.Run("rating out of range", func(t *testing.T) {
		for _, rating := range []int{0, 6, -1} {
			s := newTestService(&mockReviewRepo{}, &mockPurchases{purchased: true})

			_, err := s.Submit(ctx, "p1", "acc-1", "Sam", rating, "t", "c")

			require.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
		}
	})

	t.Run("without purchase record", func(t *testing.T) {
		repo := &mockReviewRepo{}
		s := newTestService(repo, &mockPurchases{purchased: false})

		_, err := s.Submit(ctx, "p1", "acc-1", "Sam", 5, "t", "c")

		require.ErrorIs(t, err, ErrNotPurchased)
		assert.Nil(t, repo.created)
	})

	t.Run("second review of the same product", func(t *testing.T) {
		repo := &mockReviewRepo{existing: true}
		s := newTestService(repo, &mockPurchases{purchased: true})

		_, err := s.Submit(ctx, "p1", "acc-1", "Sam", 5, "t", "c")

		require.ErrorIs(t, err, ErrAlreadyReviewed)
		assert.Nil(t, repo.created)
	})
}

func TestService_ProductSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("averages round to one decimal", func(t *testing.T) {
		repo := &mockReviewRepo{byProduct: []Review{
			{Rating: 5}, {Rating: 4}, {Rating: 4},
		}}
		s := newTestService(repo, &mockPurchases{})

		summary, err := s.ProductSummary(ctx, "p1")

		require.NoError(t, err)
		assert.Equal(t, 3, summary.TotalReviews)
		assert.InDelta(t, 4.3, summary.AverageRating, 0.0001)
	})

	t.Run("no reviews", func(t *testing.T) {
		s := newTestService(&mockReviewRepo{}, &mockPurchases{})

		summary, err := s.ProductSummary(ctx, "p1")

		require.NoError(t, err)
		assert.Zero(t, summary.TotalReviews)
		assert.Zero(t, summary.AverageRating)
	})
}
