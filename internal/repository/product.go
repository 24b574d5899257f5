package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urbanelite/storefront/internal/domain/catalog"
)

const productColumns = `id, name, description, price, discount, stock, category,
	image, bgcolor, panelcolor, textcolor, created_at`

const (
	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	searchProductsSQL = `SELECT ` + productColumns + ` FROM products
		WHERE name ILIKE '%' || $1 || '%' ORDER BY created_at DESC`

	createProductSQL = `INSERT INTO products
		(id, name, description, price, discount, stock, category, image, bgcolor, panelcolor, textcolor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	updateProductSQL = `UPDATE products SET name = $2, description = $3, price = $4,
		discount = $5, stock = $6, category = $7, image = $8, bgcolor = $9,
		panelcolor = $10, textcolor = $11, updated_at = now()
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	reserveStockSQL = `UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`

	releaseStockSQL = `UPDATE products SET stock = stock + $2 WHERE id = $1`
)

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns products matching the filter options. Virtual categories and
// availability filters are resolved into WHERE clauses here.
func (r *ProductRepository) List(ctx context.Context, opts catalog.ListOptions) ([]catalog.Product, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT ` + productColumns + ` FROM products`)

	var conds []string
	switch opts.Category {
	case "":
	case catalog.CategoryNew:
		conds = append(conds, `created_at >= now() - INTERVAL '30 days'`)
	case catalog.CategoryDiscounted:
		conds = append(conds, `discount > 0`)
	default:
		args = append(args, opts.Category)
		conds = append(conds, fmt.Sprintf(`category = $%d`, len(args)))
	}
	if opts.AvailableOnly {
		conds = append(conds, `stock > 0`)
	}
	if opts.DiscountedOnly {
		conds = append(conds, `discount > 0`)
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	switch opts.SortBy {
	case catalog.SortPriceLow:
		sb.WriteString(" ORDER BY price ASC")
	case catalog.SortPriceHigh:
		sb.WriteString(" ORDER BY price DESC")
	default:
		// SortNewest and SortPopular both fall back to recency.
		sb.WriteString(" ORDER BY created_at DESC")
	}

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Search returns products whose name contains the term, case-insensitively.
func (r *ProductRepository) Search(ctx context.Context, term string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, searchProductsSQL, term)
	if err != nil {
		return nil, fmt.Errorf("searching products %q: %w", term, err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Discount, p.Stock,
		p.Category, p.Image, p.BgColor, p.PanelColor, p.TextColor,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update overwrites an existing product's fields.
func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Discount, p.Stock,
		p.Category, p.Image, p.BgColor, p.PanelColor, p.TextColor,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// ReserveStock decrements stock by qty only when enough units remain, as a
// single conditional UPDATE so concurrent reservations cannot oversell.
func (r *ProductRepository) ReserveStock(ctx context.Context, id string, qty int) error {
	tag, err := r.pool.Exec(ctx, reserveStockSQL, id, qty)
	if err != nil {
		return fmt.Errorf("reserving stock for %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return catalog.ErrOutOfStock
	}
	return nil
}

// ReleaseStock returns qty units to stock.
func (r *ProductRepository) ReleaseStock(ctx context.Context, id string, qty int) error {
	_, err := r.pool.Exec(ctx, releaseStockSQL, id, qty)
	if err != nil {
		return fmt.Errorf("releasing stock for %q: %w", id, err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Discount, &p.Stock,
		&p.Category, &p.Image, &p.BgColor, &p.PanelColor, &p.TextColor, &p.CreatedAt,
	)
	return p, err
}
