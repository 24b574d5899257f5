package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifier_Verify(t *testing.T) {
	const secret = "test-secret"
	v := NewVerifier(secret)

	t.Run("valid signature", func(t *testing.T) {
		sig := sign(secret, "order_1", "pay_1")
		require.NoError(t, v.Verify("order_1", "pay_1", sig))
	})

	t.Run("tampered payment id", func(t *testing.T) {
		sig := sign(secret, "order_1", "pay_1")
		err := v.Verify("order_1", "pay_2", sig)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("tampered order id", func(t *testing.T) {
		sig := sign(secret, "order_1", "pay_1")
		err := v.Verify("order_2", "pay_1", sig)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("signature from wrong secret", func(t *testing.T) {
		sig := sign("other-secret", "order_1", "pay_1")
		err := v.Verify("order_1", "pay_1", sig)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("signature is not hex", func(t *testing.T) {
		err := v.Verify("order_1", "pay_1", "zzzz")
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("empty secret", func(t *testing.T) {
		empty := NewVerifier("")
		err := empty.Verify("order_1", "pay_1", sign(secret, "order_1", "pay_1"))
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}
