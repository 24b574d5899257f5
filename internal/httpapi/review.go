package httpapi

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/urbanelite/storefront/internal/domain/review"
)

type reviewView struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	ReviewerName string    `json:"reviewerName"`
	Rating       int       `json:"rating"`
	Title        string    `json:"title"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toReviewViews(reviews []review.Review) []reviewView {
	views := make([]reviewView, len(reviews))
	for i, rv := range reviews {
		views[i] = reviewView{
			ID:           rv.ID,
			ProductID:    rv.ProductID,
			ReviewerName: rv.ReviewerName,
			Rating:       rv.Rating,
			Title:        rv.Title,
			Comment:      rv.Comment,
			CreatedAt:    rv.CreatedAt,
		}
	}
	return views
}

type productReviewsView struct {
	Reviews       []reviewView `json:"reviews"`
	AverageRating float64      `json:"averageRating"`
	TotalReviews  int          `json:"totalReviews"`
}

func (h *Handler) handleProductReviews(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reviews.ProductSummary(r.Context(), r.PathValue("productID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, productReviewsView{
		Reviews:       toReviewViews(summary.Reviews),
		AverageRating: summary.AverageRating,
		TotalReviews:  summary.TotalReviews,
	})
}

type submitReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Title   string `json:"title" validate:"required"`
	Comment string `json:"comment"`
}

func (h *Handler) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	var req submitReviewRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	a, err := h.accountRepo.GetByID(r.Context(), accountID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	rv, err := h.reviews.Submit(r.Context(),
		r.PathValue("productID"), a.ID, a.DisplayName(),
		req.Rating, req.Title, req.Comment,
	)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrInvalidRating):
			respondMessage(w, http.StatusBadRequest, false, "rating must be between 1 and 5")
		case errors.Is(err, review.ErrAlreadyReviewed):
			respondMessage(w, http.StatusConflict, false, "you have already reviewed this product")
		case errors.Is(err, review.ErrNotPurchased):
			respondMessage(w, http.StatusForbidden, false, "purchase this product to review it")
		default:
			respondError(w, r, err)
		}
		return
	}
	respondJSON(w, http.StatusCreated, toReviewViews([]review.Review{*rv})[0])
}

func (h *Handler) handleMyReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListByAccount(r.Context(), accountID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toReviewViews(reviews))
}
