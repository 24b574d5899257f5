// Command seed-db loads demo products, starter coupons, and the initial
// admin owner into the database. Safe to re-run: every insert is an upsert.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/urbanelite/storefront/internal/repository"
)

type productJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	BgColor     string          `json:"bgcolor"`
	PanelColor  string          `json:"panelcolor"`
	TextColor   string          `json:"textcolor"`
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		ownerEmail    string
		ownerPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&ownerEmail, "owner-email", "", "admin owner email (or SHOP_SEED_OWNER_EMAIL env)")
	flag.StringVar(&ownerPassword, "owner-password", "", "admin owner password (or SHOP_SEED_OWNER_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if ownerEmail == "" {
		ownerEmail = os.Getenv("SHOP_SEED_OWNER_EMAIL")
	}
	if ownerPassword == "" {
		ownerPassword = os.Getenv("SHOP_SEED_OWNER_PASSWORD")
	}
	if ownerEmail != "" && ownerPassword == "" {
		slog.Error("owner password is required when seeding an owner: set --owner-password or SHOP_SEED_OWNER_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, ownerEmail, ownerPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, ownerEmail, ownerPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedCoupons(ctx, pool); err != nil {
		return errors.Wrap(err, "seed coupons")
	}

	if ownerEmail != "" {
		if err := seedOwner(ctx, pool, ownerEmail, ownerPassword); err != nil {
			return errors.Wrap(err, "seed owner")
		}
	}

	return nil
}

const upsertProductSQL = `INSERT INTO products
	(id, name, description, price, discount, stock, category, image, bgcolor, panelcolor, textcolor)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		price = EXCLUDED.price,
		discount = EXCLUDED.discount,
		stock = EXCLUDED.stock,
		category = EXCLUDED.category,
		image = EXCLUDED.image,
		bgcolor = EXCLUDED.bgcolor,
		panelcolor = EXCLUDED.panelcolor,
		textcolor = EXCLUDED.textcolor,
		updated_at = now()`

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		_, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Description, p.Price, p.Discount, p.Stock,
			p.Category, p.Image, p.BgColor, p.PanelColor, p.TextColor,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

const upsertCouponSQL = `INSERT INTO coupons
	(code, discount_type, value, min_order_amount, max_discount, expires_at, active, usage_limit)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (code) DO UPDATE SET
		discount_type = EXCLUDED.discount_type,
		value = EXCLUDED.value,
		min_order_amount = EXCLUDED.min_order_amount,
		max_discount = EXCLUDED.max_discount,
		expires_at = EXCLUDED.expires_at,
		active = EXCLUDED.active,
		usage_limit = EXCLUDED.usage_limit`

type couponSeed struct {
	code           string
	discountType   string
	value          decimal.Decimal
	minOrderAmount decimal.Decimal
	maxDiscount    decimal.Decimal
	usageLimit     int
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding starter coupons")

	expiry := time.Now().AddDate(1, 0, 0)
	coupons := []couponSeed{
		{
			code:           "WELCOME10",
			discountType:   "percentage",
			value:          decimal.NewFromInt(10),
			minOrderAmount: decimal.NewFromInt(500),
			maxDiscount:    decimal.NewFromInt(150),
		},
		{
			code:           "SAVE200",
			discountType:   "fixed",
			value:          decimal.NewFromInt(200),
			minOrderAmount: decimal.NewFromInt(1000),
		},
		{
			code:         "FREESHIP",
			discountType: "fixed",
			value:        decimal.NewFromInt(50),
			usageLimit:   1000,
		},
	}

	for _, c := range coupons {
		_, err := pool.Exec(ctx, upsertCouponSQL,
			c.code, c.discountType, c.value, c.minOrderAmount, c.maxDiscount,
			expiry, true, c.usageLimit,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.code)
		}

		slog.Info("upserted coupon", slog.String("code", c.code))
	}

	return nil
}

const upsertOwnerSQL = `INSERT INTO owners (id, email, password_hash, full_name)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash`

func seedOwner(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	slog.Info("seeding admin owner", slog.String("email", email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash owner password")
	}

	_, err = pool.Exec(ctx, upsertOwnerSQL, uuid.New().String(), email, string(hash), "Store Owner")
	if err != nil {
		return errors.Wrap(err, "upsert owner")
	}

	return nil
}
