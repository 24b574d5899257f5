// Package catalog holds the product catalog domain model.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrOutOfStock is returned when a stock reservation cannot be satisfied.
	ErrOutOfStock = errors.New("product out of stock")
)

// Product represents a catalog entry. Price and Discount are unit amounts;
// Discount is a per-item price reduction, not a coupon.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Discount    decimal.Decimal
	Stock       int
	Category    string
	Image       string
	BgColor     string
	PanelColor  string
	TextColor   string
	CreatedAt   time.Time
}

// Sort orders for listing.
const (
	SortNewest    = "newest"
	SortPopular   = "popular"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
)

// Virtual categories resolved by the repository rather than stored.
const (
	CategoryNew        = "new"
	CategoryDiscounted = "discounted"
)

// ListOptions filters and orders a catalog listing. Zero values mean
// "no constraint".
type ListOptions struct {
	// Category is a stored category name, or one of the virtual categories
	// CategoryNew (created in the last 30 days) and CategoryDiscounted.
	Category string
	// AvailableOnly keeps products with stock > 0.
	AvailableOnly bool
	// DiscountedOnly keeps products with a per-item discount.
	DiscountedOnly bool
	// SortBy is one of the Sort constants; empty defaults to SortNewest.
	SortBy string
	// Limit caps the result size when > 0.
	Limit int
}

// Repository provides catalog persistence.
type Repository interface {
	List(ctx context.Context, opts ListOptions) ([]Product, error)
	Search(ctx context.Context, term string) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error

	// ReserveStock atomically decrements stock by qty, failing with
	// ErrOutOfStock when fewer than qty units remain. Used by the at_cart
	// reservation mode.
	ReserveStock(ctx context.Context, id string, qty int) error
	// ReleaseStock atomically returns qty units to stock.
	ReleaseStock(ctx context.Context, id string, qty int) error
}
