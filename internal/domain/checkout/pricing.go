// Package checkout implements order pricing and the checkout commit.
package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/urbanelite/storefront/internal/domain/account"
)

// Subtotal sums the cart lines: unit price minus unit discount, times
// quantity, with negative prices and discounts treated as zero. The result
// is clamped so a discount-heavy cart can never produce a negative subtotal.
func Subtotal(lines []account.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))

		price := line.Product.Price
		if price.IsNegative() {
			price = decimal.Zero
		}
		discount := line.Product.Discount
		if discount.IsNegative() {
			discount = decimal.Zero
		}

		sum = sum.Add(price.Sub(discount).Mul(qty))
	}

	if sum.IsNegative() {
		return decimal.Zero
	}
	return sum.Round(2)
}

// Total computes subtotal + platformFee - couponDiscount, clamped at zero.
// The platform fee is charged once per order, never per item.
func Total(subtotal, platformFee, couponDiscount decimal.Decimal) decimal.Decimal {
	total := subtotal.Add(platformFee).Sub(couponDiscount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Round(2)
}
