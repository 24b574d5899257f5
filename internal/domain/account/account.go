// Package account holds the customer account domain model: identity, cart,
// wishlist and purchase history.
package account

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/urbanelite/storefront/internal/domain/catalog"
)

var (
	// ErrNotFound is returned when an account does not exist.
	ErrNotFound = errors.New("account not found")
	// ErrEmailTaken is returned when registering with an email that is
	// already in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Account is a registered customer.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Contact      string
	Address      string
	CreatedAt    time.Time
}

// DisplayName returns the name shown on reviews: the full name when set,
// otherwise the local part of the email.
func (a *Account) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	for i := 0; i < len(a.Email); i++ {
		if a.Email[i] == '@' {
			return a.Email[:i]
		}
	}
	return a.Email
}

// CartLine is a cart entry joined with its product. Repeated additions of
// the same product collapse into Quantity.
type CartLine struct {
	Product  catalog.Product
	Quantity int
}

// Purchase records that an account bought a product; it gates review
// eligibility. One row per (account, product).
type Purchase struct {
	ProductID   string
	OrderID     string
	PurchasedAt time.Time
}

// Repository provides account persistence, including the embedded cart and
// wishlist relations.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	UpdateProfile(ctx context.Context, id, contact, address string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// AddCartItem inserts the product into the cart or bumps its quantity.
	AddCartItem(ctx context.Context, accountID, productID string) error
	RemoveCartItem(ctx context.Context, accountID, productID string) (qty int, err error)
	ListCart(ctx context.Context, accountID string) ([]CartLine, error)

	AddWishlistItem(ctx context.Context, accountID, productID string) (added bool, err error)
	RemoveWishlistItem(ctx context.Context, accountID, productID string) error
	ListWishlist(ctx context.Context, accountID string) ([]catalog.Product, error)

	HasPurchased(ctx context.Context, accountID, productID string) (bool, error)
	ListPurchases(ctx context.Context, accountID string) ([]Purchase, error)
}
