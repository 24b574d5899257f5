package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urbanelite/storefront/internal/domain/account"
)

const (
	createOwnerSQL = `INSERT INTO owners (id, email, password_hash, full_name, created_at)
		VALUES ($1, $2, $3, $4, now())`

	getOwnerByEmailSQL = `SELECT id, email, password_hash, full_name, created_at
		FROM owners WHERE email = $1`
)

var _ account.OwnerRepository = (*OwnerRepository)(nil)

// OwnerRepository implements account.OwnerRepository backed by PostgreSQL.
type OwnerRepository struct {
	pool *pgxpool.Pool
}

// NewOwnerRepository returns an OwnerRepository that uses the given pool.
func NewOwnerRepository(pool *pgxpool.Pool) *OwnerRepository {
	return &OwnerRepository{pool: pool}
}

func (r *OwnerRepository) Create(ctx context.Context, o *account.Owner) error {
	_, err := r.pool.Exec(ctx, createOwnerSQL, o.ID, o.Email, o.PasswordHash, o.FullName)
	if isUniqueViolation(err) {
		return account.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("creating owner: %w", err)
	}
	return nil
}

func (r *OwnerRepository) GetByEmail(ctx context.Context, email string) (*account.Owner, error) {
	var o account.Owner
	err := r.pool.QueryRow(ctx, getOwnerByEmailSQL, email).
		Scan(&o.ID, &o.Email, &o.PasswordHash, &o.FullName, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading owner by email: %w", err)
	}
	return &o, nil
}
