package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/urbanelite/storefront/internal/domain/checkout"
	"github.com/urbanelite/storefront/internal/domain/coupon"
	"github.com/urbanelite/storefront/internal/payment"
)

type applyCouponRequest struct {
	Code string `json:"couponCode" validate:"required"`
}

// couponResponse extends the message envelope with the computed discount.
type couponResponse struct {
	Success  bool    `json:"success"`
	Discount float64 `json:"discount"`
	Message  string  `json:"message"`
}

func (h *Handler) handleApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	applied, err := h.checkout.ApplyCoupon(r.Context(), accountID(r), req.Code)
	if err != nil {
		if msg, ok := couponFailureMessage(err); ok {
			respondMessage(w, http.StatusBadRequest, false, msg)
			return
		}
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, couponResponse{
		Success:  true,
		Discount: applied.Amount.InexactFloat64(),
		Message:  fmt.Sprintf("coupon applied, you saved %s", applied.Amount.StringFixed(2)),
	})
}

// couponFailureMessage maps coupon validation errors to shopper-facing
// messages. The below-minimum message keeps the minimum amount from the error.
func couponFailureMessage(err error) (string, bool) {
	var belowMin *coupon.BelowMinimumError
	switch {
	case errors.Is(err, coupon.ErrInvalidCode):
		return "invalid coupon code", true
	case errors.Is(err, coupon.ErrInactive):
		return "this coupon is no longer active", true
	case errors.Is(err, coupon.ErrExpired):
		return "this coupon has expired", true
	case errors.Is(err, coupon.ErrUsageExhausted):
		return "this coupon has reached its usage limit", true
	case errors.As(err, &belowMin):
		return belowMin.Error(), true
	}
	return "", false
}

func (h *Handler) handleRemoveCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.checkout.RemoveCoupon(r.Context(), accountID(r)); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, true, "coupon removed")
}

type quoteView struct {
	Items          []cartLineView `json:"items"`
	Subtotal       float64        `json:"subtotal"`
	PlatformFee    float64        `json:"platformFee"`
	CouponCode     string         `json:"couponCode,omitempty"`
	CouponDiscount float64        `json:"couponDiscount"`
	Total          float64        `json:"total"`
}

func (h *Handler) handleCheckoutQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.checkout.Quote(r.Context(), accountID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	view := quoteView{
		Items:          h.toCartView(q.Lines).Items,
		Subtotal:       q.Subtotal.InexactFloat64(),
		PlatformFee:    q.PlatformFee.InexactFloat64(),
		CouponDiscount: q.CouponDiscount.InexactFloat64(),
		Total:          q.Total.InexactFloat64(),
	}
	if q.Applied != nil {
		view.CouponCode = q.Applied.Code
	}
	respondJSON(w, http.StatusOK, view)
}

type orderView struct {
	ID             string               `json:"id"`
	Items          []checkout.OrderLine `json:"items"`
	Subtotal       float64              `json:"subtotal"`
	PlatformFee    float64              `json:"platformFee"`
	CouponCode     string               `json:"couponCode,omitempty"`
	CouponDiscount float64              `json:"couponDiscount"`
	Total          float64              `json:"total"`
	Status         string               `json:"status"`
	PaymentID      string               `json:"paymentId,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
}

func toOrderView(o *checkout.Order) orderView {
	return orderView{
		ID:             o.ID,
		Items:          o.Items,
		Subtotal:       o.Subtotal.InexactFloat64(),
		PlatformFee:    o.PlatformFee.InexactFloat64(),
		CouponCode:     o.CouponCode,
		CouponDiscount: o.CouponDiscount.InexactFloat64(),
		Total:          o.Total.InexactFloat64(),
		Status:         o.Status,
		PaymentID:      o.PaymentID,
		CreatedAt:      o.CreatedAt,
	}
}

// handleProcessPayment commits the checkout without an external gateway.
func (h *Handler) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	o, err := h.checkout.Confirm(r.Context(), accountID(r), "")
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			respondMessage(w, http.StatusBadRequest, false, "cart is empty")
			return
		}
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderView(o))
}

type paymentOrderView struct {
	Success  bool    `json:"success"`
	OrderID  string  `json:"orderId"`
	Amount   int64   `json:"amount"`
	Currency string  `json:"currency"`
	Total    float64 `json:"total"`
}

// handleCreatePaymentOrder creates a gateway payment intent for the current
// cart total. The storefront order is only committed after the payment
// callback verifies.
func (h *Handler) handleCreatePaymentOrder(w http.ResponseWriter, r *http.Request) {
	q, err := h.checkout.Quote(r.Context(), accountID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if len(q.Lines) == 0 {
		respondMessage(w, http.StatusBadRequest, false, "cart is empty")
		return
	}

	intent, err := h.intents.CreateIntent(r.Context(), q.Total)
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			respondMessage(w, http.StatusServiceUnavailable, false, "payment gateway not configured")
			return
		}
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, paymentOrderView{
		Success:  true,
		OrderID:  intent.ID,
		Amount:   intent.AmountMinor,
		Currency: intent.Currency,
		Total:    q.Total.InexactFloat64(),
	})
}

// verifiedPaymentView acknowledges a verified payment with the id of the
// order it committed, carrying the full snapshot alongside.
type verifiedPaymentView struct {
	Success bool      `json:"success"`
	OrderID string    `json:"orderId"`
	Order   orderView `json:"order"`
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// handleVerifyPayment checks the gateway callback signature and commits the
// checkout only when it verifies. A mismatch never creates an order.
func (h *Handler) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.verifier.Verify(req.OrderID, req.PaymentID, req.Signature); err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			respondMessage(w, http.StatusServiceUnavailable, false, "payment gateway not configured")
			return
		}
		respondMessage(w, http.StatusBadRequest, false, "payment verification failed")
		return
	}

	o, err := h.checkout.Confirm(r.Context(), accountID(r), req.PaymentID)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			respondMessage(w, http.StatusBadRequest, false, "cart is empty")
			return
		}
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, verifiedPaymentView{
		Success: true,
		OrderID: o.ID,
		Order:   toOrderView(o),
	})
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByAccount(r.Context(), accountID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = toOrderView(&orders[i])
	}
	respondJSON(w, http.StatusOK, views)
}
