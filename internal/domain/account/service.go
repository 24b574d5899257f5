package account

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service implements registration and authentication on top of a Repository.
type Service struct {
	accounts Repository
	newID    func() string
}

// NewService creates an account Service backed by the given repository.
func NewService(accounts Repository) *Service {
	return &Service{
		accounts: accounts,
		newID:    func() string { return uuid.New().String() },
	}
}

// Register creates a new account with a bcrypt-hashed password.
// Returns ErrEmailTaken when the email is already registered.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	a := &Account{
		ID:           s.newID(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Authenticate verifies the email/password pair and returns the account.
// Both an unknown email and a wrong password yield ErrInvalidCredentials so
// callers cannot probe which emails are registered.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "lookup account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// ChangePassword verifies the current password and stores a hash of the new one.
func (s *Service) ChangePassword(ctx context.Context, accountID, current, next string) error {
	a, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return errors.Wrap(err, "lookup account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	return s.accounts.UpdatePassword(ctx, accountID, string(hash))
}
