package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

var minorUnits = decimal.NewFromInt(100)

// RazorpayGateway implements IntentCreator against the Razorpay Orders API.
type RazorpayGateway struct {
	client   *razorpay.Client
	currency string
	now      func() time.Time
}

var _ IntentCreator = (*RazorpayGateway)(nil)

// NewRazorpayGateway creates a gateway client. Returns ErrNotConfigured when
// either credential is missing so the caller can surface a generic failure
// instead of panicking at request time.
func NewRazorpayGateway(keyID, keySecret, currency string) (*RazorpayGateway, error) {
	if keyID == "" || keySecret == "" {
		return nil, ErrNotConfigured
	}
	return &RazorpayGateway{
		client:   razorpay.NewClient(keyID, keySecret),
		currency: currency,
		now:      time.Now,
	}, nil
}

// CreateIntent creates a gateway order for the amount, converted to minor
// currency units.
func (g *RazorpayGateway) CreateIntent(_ context.Context, amount decimal.Decimal) (*Intent, error) {
	minor := amount.Mul(minorUnits).Round(0).IntPart()

	data := map[string]interface{}{
		"amount":   minor,
		"currency": g.currency,
		"receipt":  fmt.Sprintf("receipt_%d", g.now().UnixMilli()),
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create gateway order")
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return nil, errors.New("gateway order response missing id")
	}

	return &Intent{
		ID:          id,
		AmountMinor: minor,
		Currency:    g.currency,
	}, nil
}
