// Package payment adapts the external payment gateway: intent creation and
// callback signature verification.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured is returned when gateway credentials are missing.
	ErrNotConfigured = errors.New("payment gateway not configured")
	// ErrSignatureMismatch is returned when a payment callback signature
	// does not verify. The checkout commit must not run in that case.
	ErrSignatureMismatch = errors.New("payment signature mismatch")
)

// Intent is a remote payment intent created before the customer pays.
type Intent struct {
	ID string
	// AmountMinor is the charged amount in minor currency units.
	AmountMinor int64
	Currency    string
}

// IntentCreator creates payment intents with the external gateway.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal) (*Intent, error)
}

// DisabledGateway stands in when no gateway credentials are configured.
// Every intent creation fails with ErrNotConfigured.
type DisabledGateway struct{}

func (DisabledGateway) CreateIntent(context.Context, decimal.Decimal) (*Intent, error) {
	return nil, ErrNotConfigured
}

// Verifier checks gateway callback signatures with the shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier keyed with the gateway shared secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify recomputes the HMAC-SHA256 of "<orderID>|<paymentID>" and compares
// it against the supplied hex signature in constant time. Any mismatch, or
// a missing secret, fails verification.
func (v *Verifier) Verify(orderID, paymentID, signature string) error {
	if len(v.secret) == 0 {
		return ErrNotConfigured
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := mac.Sum(nil)

	supplied, err := hex.DecodeString(signature)
	if err != nil {
		return ErrSignatureMismatch
	}
	if !hmac.Equal(expected, supplied) {
		return ErrSignatureMismatch
	}
	return nil
}
