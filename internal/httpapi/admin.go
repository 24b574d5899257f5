package httpapi

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/urbanelite/storefront/internal/domain/account"
	"github.com/urbanelite/storefront/internal/domain/catalog"
	"github.com/urbanelite/storefront/internal/domain/coupon"
)

func (h *Handler) handleOwnerLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	o, err := h.owners.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			respondMessage(w, http.StatusUnauthorized, false, "invalid email or password")
			return
		}
		respondError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(o.ID, o.Email, scopeOwner)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.setAuthCookie(w, token)
	respondMessage(w, http.StatusOK, true, "logged in")
}

type statsView struct {
	TotalProducts int     `json:"totalProducts"`
	TotalOrders   int     `json:"totalOrders"`
	TotalReviews  int     `json:"totalReviews"`
	TotalRevenue  float64 `json:"totalRevenue"`
}

func (h *Handler) handleOwnerStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.products.List(ctx, catalog.ListOptions{})
	if err != nil {
		respondError(w, r, err)
		return
	}
	orders, err := h.orders.ListAll(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	reviews, err := h.reviews.ListAll(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}

	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(o.Total)
	}

	respondJSON(w, http.StatusOK, statsView{
		TotalProducts: len(products),
		TotalOrders:   len(orders),
		TotalReviews:  len(reviews),
		TotalRevenue:  revenue.InexactFloat64(),
	})
}

type customerOrderView struct {
	orderView
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
}

func (h *Handler) handleOwnerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	views := make([]customerOrderView, len(orders))
	for i := range orders {
		views[i] = customerOrderView{
			orderView:     toOrderView(&orders[i].Order),
			CustomerName:  orders[i].CustomerName,
			CustomerEmail: orders[i].CustomerEmail,
		}
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) handleOwnerReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListAll(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toReviewViews(reviews))
}

func (h *Handler) handleOwnerListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), catalog.ListOptions{})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.toProductViews(products))
}

type productRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Discount    float64 `json:"discount" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	BgColor     string  `json:"bgcolor"`
	PanelColor  string  `json:"panelcolor"`
	TextColor   string  `json:"textcolor"`
}

func (req *productRequest) toProduct() catalog.Product {
	return catalog.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
		Discount:    decimal.NewFromFloat(req.Discount),
		Stock:       req.Stock,
		Category:    req.Category,
		Image:       req.Image,
		BgColor:     req.BgColor,
		PanelColor:  req.PanelColor,
		TextColor:   req.TextColor,
	}
}

func (h *Handler) handleOwnerCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	p := req.toProduct()
	p.ID = uuid.New().String()
	if err := h.products.Create(r.Context(), &p); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.toProductView(p))
}

func (h *Handler) handleOwnerUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	p := req.toProduct()
	p.ID = r.PathValue("id")
	if err := h.products.Update(r.Context(), &p); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, false, "product not found")
			return
		}
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.toProductView(p))
}

func (h *Handler) handleOwnerDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, false, "product not found")
			return
		}
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, true, "product deleted")
}

type couponRuleView struct {
	Code           string    `json:"code"`
	DiscountType   string    `json:"discountType"`
	Value          float64   `json:"value"`
	MinOrderAmount float64   `json:"minOrderAmount"`
	MaxDiscount    float64   `json:"maxDiscount"`
	ExpiresAt      time.Time `json:"expiresAt"`
	Active         bool      `json:"active"`
	UsageLimit     int       `json:"usageLimit"`
	UsedCount      int       `json:"usedCount"`
}

func toCouponRuleView(rule coupon.Rule) couponRuleView {
	return couponRuleView{
		Code:           rule.Code,
		DiscountType:   string(rule.DiscountType),
		Value:          rule.Value.InexactFloat64(),
		MinOrderAmount: rule.MinOrderAmount.InexactFloat64(),
		MaxDiscount:    rule.MaxDiscount.InexactFloat64(),
		ExpiresAt:      rule.ExpiresAt,
		Active:         rule.Active,
		UsageLimit:     rule.UsageLimit,
		UsedCount:      rule.UsedCount,
	}
}

func (h *Handler) handleOwnerListCoupons(w http.ResponseWriter, r *http.Request) {
	rules, err := h.coupons.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	views := make([]couponRuleView, len(rules))
	for i, rule := range rules {
		views[i] = toCouponRuleView(rule)
	}
	respondJSON(w, http.StatusOK, views)
}

type couponRuleRequest struct {
	Code           string    `json:"code" validate:"required"`
	DiscountType   string    `json:"discountType" validate:"required,oneof=percentage fixed"`
	Value          float64   `json:"value" validate:"gt=0"`
	MinOrderAmount float64   `json:"minOrderAmount" validate:"gte=0"`
	MaxDiscount    float64   `json:"maxDiscount" validate:"gte=0"`
	ExpiresAt      time.Time `json:"expiresAt" validate:"required"`
	Active         bool      `json:"active"`
	UsageLimit     int       `json:"usageLimit" validate:"gte=0"`
}

func (req *couponRuleRequest) toRule() coupon.Rule {
	return coupon.Rule{
		Code:           coupon.Normalize(req.Code),
		DiscountType:   coupon.DiscountType(req.DiscountType),
		Value:          decimal.NewFromFloat(req.Value),
		MinOrderAmount: decimal.NewFromFloat(req.MinOrderAmount),
		MaxDiscount:    decimal.NewFromFloat(req.MaxDiscount),
		ExpiresAt:      req.ExpiresAt,
		Active:         req.Active,
		UsageLimit:     req.UsageLimit,
	}
}

func (h *Handler) handleOwnerCreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRuleRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	rule := req.toRule()
	if err := h.coupons.Create(r.Context(), &rule); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCouponRuleView(rule))
}

func (h *Handler) handleOwnerUpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRuleRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	rule := req.toRule()
	rule.Code = coupon.Normalize(r.PathValue("code"))
	if err := h.coupons.Update(r.Context(), &rule); err != nil {
		if errors.Is(err, coupon.ErrInvalidCode) {
			respondMessage(w, http.StatusNotFound, false, "coupon not found")
			return
		}
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCouponRuleView(rule))
}

func (h *Handler) handleOwnerDeleteCoupon(w http.ResponseWriter, r *http.Request) {
	err := h.coupons.Delete(r.Context(), coupon.Normalize(r.PathValue("code")))
	if err != nil {
		if errors.Is(err, coupon.ErrInvalidCode) {
			respondMessage(w, http.StatusNotFound, false, "coupon not found")
			return
		}
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, true, "coupon deleted")
}
