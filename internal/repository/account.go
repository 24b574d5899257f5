package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urbanelite/storefront/internal/domain/account"
	"github.com/urbanelite/storefront/internal/domain/catalog"
)

const accountColumns = `id, email, password_hash, full_name, contact, address, created_at`

const (
	createAccountSQL = `INSERT INTO accounts (id, email, password_hash, full_name)
		VALUES ($1, $2, $3, $4)`

	getAccountByIDSQL = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	getAccountByEmailSQL = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	updateProfileSQL = `UPDATE accounts SET contact = $2, address = $3 WHERE id = $1`

	updatePasswordSQL = `UPDATE accounts SET password_hash = $2 WHERE id = $1`

	addCartItemSQL = `INSERT INTO cart_items (account_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (account_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + 1`

	removeCartItemSQL = `DELETE FROM cart_items
		WHERE account_id = $1 AND product_id = $2 RETURNING quantity`

	listCartSQL = `SELECT p.id, p.name, p.description, p.price, p.discount, p.stock,
		p.category, p.image, p.bgcolor, p.panelcolor, p.textcolor, p.created_at, c.quantity
		FROM cart_items c JOIN products p ON p.id = c.product_id
		WHERE c.account_id = $1 ORDER BY c.added_at`

	addWishlistItemSQL = `INSERT INTO wishlist_items (account_id, product_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`

	removeWishlistItemSQL = `DELETE FROM wishlist_items
		WHERE account_id = $1 AND product_id = $2`

	listWishlistSQL = `SELECT p.id, p.name, p.description, p.price, p.discount, p.stock,
		p.category, p.image, p.bgcolor, p.panelcolor, p.textcolor, p.created_at
		FROM wishlist_items w JOIN products p ON p.id = w.product_id
		WHERE w.account_id = $1 ORDER BY w.added_at`

	hasPurchasedSQL = `SELECT EXISTS (
		SELECT 1 FROM purchases WHERE account_id = $1 AND product_id = $2)`

	listPurchasesSQL = `SELECT product_id, order_id, purchased_at
		FROM purchases WHERE account_id = $1 ORDER BY purchased_at DESC`
)

var _ account.Repository = (*AccountRepository)(nil)

// AccountRepository implements account.Repository backed by PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns an AccountRepository that uses the given pool.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create inserts a new account. Returns account.ErrEmailTaken when the email
// is already registered.
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	_, err := r.pool.Exec(ctx, createAccountSQL, a.ID, a.Email, a.PasswordHash, a.FullName)
	if err != nil {
		if isUniqueViolation(err) {
			return account.ErrEmailTaken
		}
		return fmt.Errorf("creating account %q: %w", a.Email, err)
	}
	return nil
}

// GetByID returns the account with the given identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*account.Account, error) {
	return r.getBy(ctx, getAccountByIDSQL, id)
}

// GetByEmail returns the account with the given email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	return r.getBy(ctx, getAccountByEmailSQL, email)
}

func (r *AccountRepository) getBy(ctx context.Context, query, arg string) (*account.Account, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanAccount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrNotFound
		}
		return nil, fmt.Errorf("getting account: %w", err)
	}
	return &a, nil
}

// UpdateProfile stores the contact and address fields.
func (r *AccountRepository) UpdateProfile(ctx context.Context, id, contact, address string) error {
	tag, err := r.pool.Exec(ctx, updateProfileSQL, id, contact, address)
	if err != nil {
		return fmt.Errorf("updating profile %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

// UpdatePassword stores a new password hash.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, updatePasswordSQL, id, passwordHash)
	if err != nil {
		return fmt.Errorf("updating password %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

// AddCartItem inserts the product into the cart, bumping the quantity when
// it is already there.
func (r *AccountRepository) AddCartItem(ctx context.Context, accountID, productID string) error {
	_, err := r.pool.Exec(ctx, addCartItemSQL, accountID, productID)
	if err != nil {
		return fmt.Errorf("adding cart item %q: %w", productID, err)
	}
	return nil
}

// RemoveCartItem deletes the cart line and returns the quantity it held, so
// at_cart stock reservations can be released.
func (r *AccountRepository) RemoveCartItem(ctx context.Context, accountID, productID string) (int, error) {
	var qty int
	err := r.pool.QueryRow(ctx, removeCartItemSQL, accountID, productID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("removing cart item %q: %w", productID, err)
	}
	return qty, nil
}

// ListCart returns the cart lines joined with their products, oldest first.
func (r *AccountRepository) ListCart(ctx context.Context, accountID string) ([]account.CartLine, error) {
	rows, err := r.pool.Query(ctx, listCartSQL, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing cart: %w", err)
	}
	return pgx.CollectRows(rows, scanCartLine)
}

// AddWishlistItem inserts the product into the wishlist; added is false when
// it was already present.
func (r *AccountRepository) AddWishlistItem(ctx context.Context, accountID, productID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, addWishlistItemSQL, accountID, productID)
	if err != nil {
		return false, fmt.Errorf("adding wishlist item %q: %w", productID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// RemoveWishlistItem removes the product from the wishlist.
func (r *AccountRepository) RemoveWishlistItem(ctx context.Context, accountID, productID string) error {
	_, err := r.pool.Exec(ctx, removeWishlistItemSQL, accountID, productID)
	if err != nil {
		return fmt.Errorf("removing wishlist item %q: %w", productID, err)
	}
	return nil
}

// ListWishlist returns the wishlisted products, oldest first.
func (r *AccountRepository) ListWishlist(ctx context.Context, accountID string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listWishlistSQL, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing wishlist: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// HasPurchased reports whether a purchase record exists for the product.
func (r *AccountRepository) HasPurchased(ctx context.Context, accountID, productID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, hasPurchasedSQL, accountID, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking purchase: %w", err)
	}
	return exists, nil
}

// ListPurchases returns the account's purchase records, newest first.
func (r *AccountRepository) ListPurchases(ctx context.Context, accountID string) ([]account.Purchase, error) {
	rows, err := r.pool.Query(ctx, listPurchasesSQL, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (account.Purchase, error) {
		var p account.Purchase
		err := row.Scan(&p.ProductID, &p.OrderID, &p.PurchasedAt)
		return p, err
	})
}

func scanAccount(row pgx.CollectableRow) (account.Account, error) {
	var a account.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.Contact, &a.Address, &a.CreatedAt)
	return a, err
}

func scanCartLine(row pgx.CollectableRow) (account.CartLine, error) {
	var line account.CartLine
	p := &line.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Discount, &p.Stock,
		&p.Category, &p.Image, &p.BgColor, &p.PanelColor, &p.TextColor, &p.CreatedAt,
		&line.Quantity,
	)
	return line, err
}
