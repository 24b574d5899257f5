package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCouponRepo struct {
	rule       *Rule
	findErr    error
	consumeErr error

	consumedCode string
}

func (m *mockCouponRepo) FindByCode(_ context.Context, _ string) (*Rule, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.rule, nil
}

func (m *mockCouponRepo) ConsumeUse(_ context.Context, code string) error {
	m.consumedCode = code
	return m.consumeErr
}

func (m *mockCouponRepo) List(context.Context) ([]Rule, error) { return nil, nil }
func (m *mockCouponRepo) Create(context.Context, *Rule) error  { return nil }
func (m *mockCouponRepo) Update(context.Context, *Rule) error  { return nil }
func (m *mockCouponRepo) Delete(context.Context, string) error { return nil }

func TestValidator_Validate(t *testing.T) {
	fixedNow := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(30 * 24 * time.Hour)

	tests := []struct {
		name       string
		repo       *mockCouponRepo
		code       string
		subtotal   decimal.Decimal
		wantAmount decimal.Decimal
		wantErr    error
	}{
		{
			name: "valid percentage coupon",
			repo: &mockCouponRepo{rule: &Rule{
				Code:         "WELCOME10",
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(10),
				ExpiresAt:    future,
				Active:       true,
			}},
			code:       "welcome10",
			subtotal:   decimal.NewFromInt(1000),
			wantAmount: decimal.NewFromInt(100),
		},
		{
			name: "valid fixed coupon with minimum met",
			repo: &mockCouponRepo{rule: &Rule{
				Code:           "SAVE200",
				DiscountType:   DiscountFixed,
				Value:          decimal.NewFromInt(200),
				MinOrderAmount: decimal.NewFromInt(1000),
				ExpiresAt:      future,
				Active:         true,
			}},
			code:       "SAVE200",
			subtotal:   decimal.NewFromInt(1000),
			wantAmount: decimal.NewFromInt(200),
		},
		{
			name:     "unknown code",
			repo:     &mockCouponRepo{findErr: ErrInvalidCode},
			code:     "BOGUS",
			subtotal: decimal.NewFromInt(1000),
			wantErr:  ErrInvalidCode,
		},
		{
			name: "inactive coupon",
			repo: &mockCouponRepo{rule: &Rule{
				Code:         "PAUSED",
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(10),
				ExpiresAt:    future,
				Active:       false,
			}},
			code:     "PAUSED",
			subtotal: decimal.NewFromInt(1000),
			wantErr:  ErrInactive,
		},
		{
			name: "expired coupon",
			repo: &mockCouponRepo{rule: &Rule{
				Code:         "OLD",
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(10),
				ExpiresAt:    past,
				Active:       true,
			}},
			code:     "OLD",
			subtotal: decimal.NewFromInt(1000),
			wantErr:  ErrExpired,
		},
		{
			name: "usage limit reached",
			repo: &mockCouponRepo{rule: &Rule{
				Code:         "FREESHIP",
				DiscountType: DiscountFixed,
				Value:        decimal.NewFromInt(50),
				ExpiresAt:    future,
				Active:       true,
				UsageLimit:   1000,
				UsedCount:    1000,
			}},
			code:     "FREESHIP",
			subtotal: decimal.NewFromInt(1000),
			wantErr:  ErrUsageExhausted,
		},
		{
			name: "zero usage limit means unlimited",
			repo: &mockCouponRepo{rule: &Rule{
				Code:         "EVERGREEN",
				DiscountType: DiscountFixed,
				Value:        decimal.NewFromInt(25),
				ExpiresAt:    future,
				Active:       true,
				UsageLimit:   0,
				UsedCount:    999999,
			}},
			code:       "EVERGREEN",
			subtotal:   decimal.NewFromInt(500),
			wantAmount: decimal.NewFromInt(25),
		},
		{
			name: "subtotal below minimum",
			repo: &mockCouponRepo{rule: &Rule{
				Code:           "WELCOME10",
				DiscountType:   DiscountPercentage,
				Value:          decimal.NewFromInt(10),
				MinOrderAmount: decimal.NewFromInt(500),
				ExpiresAt:      future,
				Active:         true,
			}},
			code:     "WELCOME10",
			subtotal: decimal.RequireFromString("499.99"),
			wantErr:  &BelowMinimumError{},
		},
		{
			name: "subtotal exactly at minimum passes",
			repo: &mockCouponRepo{rule: &Rule{
				Code:           "WELCOME10",
				DiscountType:   DiscountPercentage,
				Value:          decimal.NewFromInt(10),
				MinOrderAmount: decimal.NewFromInt(500),
				ExpiresAt:      future,
				Active:         true,
			}},
			code:       "WELCOME10",
			subtotal:   decimal.NewFromInt(500),
			wantAmount: decimal.NewFromInt(50),
		},
		{
			name: "inactive wins over expired",
			repo: &mockCouponRepo{rule: &Rule{
				Code:         "DEADCODE",
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(10),
				ExpiresAt:    past,
				Active:       false,
			}},
			code:     "DEADCODE",
			subtotal: decimal.NewFromInt(1000),
			wantErr:  ErrInactive,
		},
		{
			name: "expired wins over usage exhausted",
			repo: &mockCouponRepo{rule: &Rule{
				Code:         "DEADCODE",
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(10),
				ExpiresAt:    past,
				Active:       true,
				UsageLimit:   10,
				UsedCount:    10,
			}},
			code:     "DEADCODE",
			subtotal: decimal.NewFromInt(1000),
			wantErr:  ErrExpired,
		},
		{
			name: "usage exhausted wins over below minimum",
			repo: &mockCouponRepo{rule: &Rule{
				Code:           "DEADCODE",
				DiscountType:   DiscountPercentage,
				Value:          decimal.NewFromInt(10),
				MinOrderAmount: decimal.NewFromInt(5000),
				ExpiresAt:      future,
				Active:         true,
				UsageLimit:     10,
				UsedCount:      10,
			}},
			code:     "DEADCODE",
			subtotal: decimal.NewFromInt(100),
			wantErr:  ErrUsageExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(tt.repo)
			v.now = func() time.Time { return fixedNow }

			applied, err := v.Validate(context.Background(), tt.code, tt.subtotal)

			if tt.wantErr != nil {
				if _, ok := tt.wantErr.(*BelowMinimumError); ok {
					var belowMin *BelowMinimumError
					require.ErrorAs(t, err, &belowMin)
				} else {
					require.ErrorIs(t, err, tt.wantErr)
				}
				assert.Nil(t, applied)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, applied)
			assert.True(t, tt.wantAmount.Equal(applied.Amount), "want %s, got %s", tt.wantAmount, applied.Amount)
			assert.Equal(t, Normalize(tt.code), applied.Code)
		})
	}
}

func TestValidator_DoesNotConsumeUse(t *testing.T) {
	repo := &mockCouponRepo{rule: &Rule{
		Code:         "WELCOME10",
		DiscountType: DiscountPercentage,
		Value:        decimal.NewFromInt(10),
		ExpiresAt:    time.Now().Add(time.Hour),
		Active:       true,
	}}

	v := NewValidator(repo)
	_, err := v.Validate(context.Background(), "WELCOME10", decimal.NewFromInt(1000))

	require.NoError(t, err)
	assert.Empty(t, repo.consumedCode, "validation must not consume a use")
}

func TestBelowMinimumError_MessageCarriesMinimum(t *testing.T) {
	err := &BelowMinimumError{Minimum: decimal.NewFromInt(500)}
	assert.Contains(t, err.Error(), "500.00")
}
