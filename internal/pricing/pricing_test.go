package pricing_test

import (
	"testing"

	"github.com/ramyakv/ecom-store/internal/domain/models"
	"github.com/ramyakv/ecom-store/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func item(productID int64, price string, qty int) *models.CartItem {
	return &models.CartItem{
		ProductID: productID,
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

// сценарий из сквозного примера: 2 x 10.00 + 1 x 5.00 при налоге 8%
func TestPrice_TwoItemsWithTax(t *testing.T) {
	items := []*models.CartItem{
		item(1, "10.00", 2),
		item(2, "5.00", 1),
	}

	quote := pricing.Price(items, decimal.RequireFromString("0.08"))

	assert.True(t, quote.Subtotal.Equal(decimal.RequireFromString("25.00")), "Subtotal should be 25.00, got %s", quote.Subtotal)
	assert.True(t, quote.TaxAmount.Equal(decimal.RequireFromString("2.00")), "Tax should be 2.00, got %s", quote.TaxAmount)
	assert.True(t, quote.GrandTotal.Equal(decimal.RequireFromString("27.00")), "Grand total should be 27.00, got %s", quote.GrandTotal)
}

func TestPrice_EmptyItems(t *testing.T) {
	quote := pricing.Price(nil, decimal.RequireFromString("0.08"))

	assert.True(t, quote.Subtotal.IsZero(), "Subtotal of empty cart should be zero")
	assert.True(t, quote.TaxAmount.IsZero(), "Tax of empty cart should be zero")
	assert.True(t, quote.GrandTotal.IsZero(), "Grand total of empty cart should be zero")
}

func TestPrice_ZeroTaxRate(t *testing.T) {
	items := []*models.CartItem{item(1, "19.99", 3)}

	quote := pricing.Price(items, decimal.Zero)

	assert.True(t, quote.Subtotal.Equal(decimal.RequireFromString("59.97")))
	assert.True(t, quote.TaxAmount.IsZero())
	assert.True(t, quote.GrandTotal.Equal(quote.Subtotal))
}

// округление половины вверх только на выходе: 3 x 0.335 = 1.005 -> 1.01
func TestPrice_RoundsHalfUpAtBoundary(t *testing.T) {
	items := []*models.CartItem{item(1, "0.335", 3)}

	quote := pricing.Price(items, decimal.Zero)

	assert.True(t, quote.Subtotal.Equal(decimal.RequireFromString("1.01")), "1.005 should round half-up to 1.01, got %s", quote.Subtotal)
}

// накопление без округления: много позиций по 0.333 не теряют копейки
func TestPrice_NoCompoundingRoundingError(t *testing.T) {
	var items []*models.CartItem
	for i := int64(1); i <= 10; i++ {
		items = append(items, item(i, "0.333", 1))
	}

	quote := pricing.Price(items, decimal.Zero)

	// 10 x 0.333 = 3.33, а не 10 x round(0.333) = 3.30
	assert.True(t, quote.Subtotal.Equal(decimal.RequireFromString("3.33")), "Subtotal should be 3.33, got %s", quote.Subtotal)
}

func TestPrice_TaxRoundedSeparately(t *testing.T) {
	items := []*models.CartItem{item(1, "10.55", 1)}

	quote := pricing.Price(items, decimal.RequireFromString("0.08"))

	// 10.55 * 0.08 = 0.844 -> 0.84
	assert.True(t, quote.TaxAmount.Equal(decimal.RequireFromString("0.84")), "Tax should round to 0.84, got %s", quote.TaxAmount)
	assert.True(t, quote.GrandTotal.Equal(decimal.RequireFromString("11.39")))
}
