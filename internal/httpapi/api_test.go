package httpapi

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/urbanelite/storefront/internal/domain/account"
	"github.com/urbanelite/storefront/internal/domain/catalog"
	"github.com/urbanelite/storefront/internal/domain/checkout"
	"github.com/urbanelite/storefront/internal/domain/coupon"
	"github.com/urbanelite/storefront/internal/domain/review"
	"github.com/urbanelite/storefront/internal/payment"
)

// In-memory fakes backing the handler tests. They mirror the behaviour the
// PostgreSQL repositories promise: sentinel errors, upsert semantics, and
// unique constraints.

type fakeCatalog struct {
	products map[string]catalog.Product
}

func newFakeCatalog(products ...catalog.Product) *fakeCatalog {
	f := &fakeCatalog{products: make(map[string]catalog.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeCatalog) List(_ context.Context, opts catalog.ListOptions) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range f.products {
		if opts.AvailableOnly && p.Stock == 0 {
			continue
		}
		if opts.DiscountedOnly && !p.Discount.IsPositive() {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCatalog) Search(_ context.Context, term string) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

func (f *fakeCatalog) GetByIDs(_ context.Context, ids []string) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) Create(_ context.Context, p *catalog.Product) error {
	f.products[p.ID] = *p
	return nil
}

func (f *fakeCatalog) Update(_ context.Context, p *catalog.Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return catalog.ErrNotFound
	}
	f.products[p.ID] = *p
	return nil
}

func (f *fakeCatalog) Delete(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeCatalog) ReserveStock(_ context.Context, id string, qty int) error {
	p, ok := f.products[id]
	if !ok {
		return catalog.ErrNotFound
	}
	if p.Stock < qty {
		return catalog.ErrOutOfStock
	}
	p.Stock -= qty
	f.products[id] = p
	return nil
}

func (f *fakeCatalog) ReleaseStock(_ context.Context, id string, qty int) error {
	p, ok := f.products[id]
	if !ok {
		return catalog.ErrNotFound
	}
	p.Stock += qty
	f.products[id] = p
	return nil
}

type fakeAccounts struct {
	byID      map[string]*account.Account
	byEmail   map[string]*account.Account
	carts     map[string]map[string]int
	wishlists map[string]map[string]bool
	purchases map[string]map[string]bool
	catalog   *fakeCatalog
}

func newFakeAccounts(cat *fakeCatalog) *fakeAccounts {
	return &fakeAccounts{
		byID:      make(map[string]*account.Account),
		byEmail:   make(map[string]*account.Account),
		carts:     make(map[string]map[string]int),
		wishlists: make(map[string]map[string]bool),
		purchases: make(map[string]map[string]bool),
		catalog:   cat,
	}
}

func (f *fakeAccounts) Create(_ context.Context, a *account.Account) error {
	if _, ok := f.byEmail[a.Email]; ok {
		return account.ErrEmailTaken
	}
	f.byEmail[a.Email] = a
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*account.Account, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return nil, account.ErrNotFound
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*account.Account, error) {
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, account.ErrNotFound
}

func (f *fakeAccounts) UpdateProfile(_ context.Context, id, contact, address string) error {
	a, ok := f.byID[id]
	if !ok {
		return account.ErrNotFound
	}
	a.Contact, a.Address = contact, address
	return nil
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, id, hash string) error {
	a, ok := f.byID[id]
	if !ok {
		return account.ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (f *fakeAccounts) AddCartItem(_ context.Context, accountID, productID string) error {
	if f.carts[accountID] == nil {
		f.carts[accountID] = make(map[string]int)
	}
	f.carts[accountID][productID]++
	return nil
}

func (f *fakeAccounts) RemoveCartItem(_ context.Context, accountID, productID string) (int, error) {
	qty := f.carts[accountID][productID]
	delete(f.carts[accountID], productID)
	return qty, nil
}

func (f *fakeAccounts) ListCart(_ context.Context, accountID string) ([]account.CartLine, error) {
	ids := make([]string, 0, len(f.carts[accountID]))
	for id := range f.carts[accountID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var lines []account.CartLine
	for _, id := range ids {
		p, ok := f.catalog.products[id]
		if !ok {
			continue
		}
		lines = append(lines, account.CartLine{Product: p, Quantity: f.carts[accountID][id]})
	}
	return lines, nil
}

func (f *fakeAccounts) AddWishlistItem(_ context.Context, accountID, productID string) (bool, error) {
	if f.wishlists[accountID] == nil {
		f.wishlists[accountID] = make(map[string]bool)
	}
	if f.wishlists[accountID][productID] {
		return false, nil
	}
	f.wishlists[accountID][productID] = true
	return true, nil
}

func (f *fakeAccounts) RemoveWishlistItem(_ context.Context, accountID, productID string) error {
	delete(f.wishlists[accountID], productID)
	return nil
}

func (f *fakeAccounts) ListWishlist(_ context.Context, accountID string) ([]catalog.Product, error) {
	var out []catalog.Product
	for id := range f.wishlists[accountID] {
		if p, ok := f.catalog.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeAccounts) HasPurchased(_ context.Context, accountID, productID string) (bool, error) {
	return f.purchases[accountID][productID], nil
}

func (f *fakeAccounts) ListPurchases(_ context.Context, accountID string) ([]account.Purchase, error) {
	var out []account.Purchase
	for id := range f.purchases[accountID] {
		out = append(out, account.Purchase{ProductID: id})
	}
	return out, nil
}

type fakeCoupons struct {
	rules map[string]*coupon.Rule
}

func newFakeCoupons(rules ...*coupon.Rule) *fakeCoupons {
	f := &fakeCoupons{rules: make(map[string]*coupon.Rule)}
	for _, r := range rules {
		f.rules[r.Code] = r
	}
	return f
}

func (f *fakeCoupons) FindByCode(_ context.Context, code string) (*coupon.Rule, error) {
	if r, ok := f.rules[code]; ok {
		return r, nil
	}
	return nil, coupon.ErrInvalidCode
}

func (f *fakeCoupons) ConsumeUse(_ context.Context, code string) error {
	r, ok := f.rules[code]
	if !ok {
		return coupon.ErrInvalidCode
	}
	if r.UsageLimit > 0 && r.UsedCount >= r.UsageLimit {
		return coupon.ErrUsageExhausted
	}
	r.UsedCount++
	return nil
}

func (f *fakeCoupons) List(context.Context) ([]coupon.Rule, error) {
	var out []coupon.Rule
	for _, r := range f.rules {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeCoupons) Create(_ context.Context, r *coupon.Rule) error {
	f.rules[r.Code] = r
	return nil
}

func (f *fakeCoupons) Update(_ context.Context, r *coupon.Rule) error {
	if _, ok := f.rules[r.Code]; !ok {
		return coupon.ErrInvalidCode
	}
	f.rules[r.Code] = r
	return nil
}

func (f *fakeCoupons) Delete(_ context.Context, code string) error {
	if _, ok := f.rules[code]; !ok {
		return coupon.ErrInvalidCode
	}
	delete(f.rules, code)
	return nil
}

type fakeOrders struct {
	accounts *fakeAccounts
	session  *fakeSession
	orders   []checkout.Order
}

func (f *fakeOrders) Commit(_ context.Context, o *checkout.Order, _ bool) error {
	f.orders = append(f.orders, *o)
	if f.accounts.purchases[o.AccountID] == nil {
		f.accounts.purchases[o.AccountID] = make(map[string]bool)
	}
	for _, item := range o.Items {
		f.accounts.purchases[o.AccountID][item.ProductID] = true
	}
	delete(f.accounts.carts, o.AccountID)
	delete(f.session.applied, o.AccountID)
	return nil
}

func (f *fakeOrders) ListByAccount(_ context.Context, accountID string) ([]checkout.Order, error) {
	var out []checkout.Order
	for _, o := range f.orders {
		if o.AccountID == accountID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListAll(_ context.Context) ([]checkout.CustomerOrder, error) {
	var out []checkout.CustomerOrder
	for _, o := range f.orders {
		co := checkout.CustomerOrder{Order: o}
		if a, ok := f.accounts.byID[o.AccountID]; ok {
			co.CustomerName, co.CustomerEmail = a.FullName, a.Email
		}
		out = append(out, co)
	}
	return out, nil
}

type fakeSession struct {
	applied map[string]*coupon.Applied
}

func newFakeSession() *fakeSession {
	return &fakeSession{applied: make(map[string]*coupon.Applied)}
}

func (f *fakeSession) SetApplied(_ context.Context, accountID string, a *coupon.Applied) error {
	f.applied[accountID] = a
	return nil
}

func (f *fakeSession) GetApplied(_ context.Context, accountID string) (*coupon.Applied, error) {
	return f.applied[accountID], nil
}

func (f *fakeSession) ClearApplied(_ context.Context, accountID string) error {
	delete(f.applied, accountID)
	return nil
}

type fakeReviews struct {
	reviews []review.Review
}

func (f *fakeReviews) Create(_ context.Context, r *review.Review) error {
	for _, existing := range f.reviews {
		if existing.ProductID == r.ProductID && existing.AccountID == r.AccountID {
			return review.ErrAlreadyReviewed
		}
	}
	f.reviews = append(f.reviews, *r)
	return nil
}

func (f *fakeReviews) ExistsFor(_ context.Context, productID, accountID string) (bool, error) {
	for _, r := range f.reviews {
		if r.ProductID == productID && r.AccountID == accountID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviews) ListByProduct(_ context.Context, productID string) ([]review.Review, error) {
	var out []review.Review
	for _, r := range f.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviews) ListByAccount(_ context.Context, accountID string) ([]review.Review, error) {
	var out []review.Review
	for _, r := range f.reviews {
		if r.AccountID == accountID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviews) ListAll(context.Context) ([]review.Review, error) {
	return f.reviews, nil
}

type fakeOwners struct {
	byEmail map[string]*account.Owner
}

func newFakeOwners() *fakeOwners {
	return &fakeOwners{byEmail: make(map[string]*account.Owner)}
}

func (f *fakeOwners) Create(_ context.Context, o *account.Owner) error {
	if _, ok := f.byEmail[o.Email]; ok {
		return account.ErrEmailTaken
	}
	f.byEmail[o.Email] = o
	return nil
}

func (f *fakeOwners) GetByEmail(_ context.Context, email string) (*account.Owner, error) {
	if o, ok := f.byEmail[email]; ok {
		return o, nil
	}
	return nil, account.ErrNotFound
}

type fakeIntents struct {
	created []decimal.Decimal
}

func (f *fakeIntents) CreateIntent(_ context.Context, amount decimal.Decimal) (*payment.Intent, error) {
	f.created = append(f.created, amount)
	return &payment.Intent{
		ID:          "intent_1",
		AmountMinor: amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		Currency:    "INR",
	}, nil
}

func futureRule(code string, typ coupon.DiscountType, value, minOrder int64) *coupon.Rule {
	return &coupon.Rule{
		Code:           code,
		DiscountType:   typ,
		Value:          decimal.NewFromInt(value),
		MinOrderAmount: decimal.NewFromInt(minOrder),
		ExpiresAt:      time.Now().Add(30 * 24 * time.Hour),
		Active:         true,
	}
}
