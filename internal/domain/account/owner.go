package account

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Owner is an admin-console operator. Owners are provisioned by seeding,
// not self-registration.
type Owner struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	CreatedAt    time.Time
}

// OwnerRepository provides owner persistence.
type OwnerRepository interface {
	Create(ctx context.Context, o *Owner) error
	GetByEmail(ctx context.Context, email string) (*Owner, error)
}

// OwnerService authenticates admin-console owners.
type OwnerService struct {
	owners OwnerRepository
}

// NewOwnerService creates an OwnerService backed by the given repository.
func NewOwnerService(owners OwnerRepository) *OwnerService {
	return &OwnerService{owners: owners}
}

// Authenticate verifies owner credentials, returning ErrInvalidCredentials
// for both unknown emails and wrong passwords.
func (s *OwnerService) Authenticate(ctx context.Context, email, password string) (*Owner, error) {
	o, err := s.owners.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "lookup owner")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return o, nil
}

// Register creates an owner with a bcrypt-hashed password. Used by seeding.
func (s *OwnerService) Register(ctx context.Context, email, password, fullName string) (*Owner, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	o := &Owner{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
	}
	if err := s.owners.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
