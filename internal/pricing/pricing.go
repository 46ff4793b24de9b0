package pricing

import (
	"github.com/ramyakv/ecom-store/internal/domain/models"
	"github.com/shopspring/decimal"
)

// currencyScale — количество знаков после запятой в денежных суммах
const currencyScale = 2

// Quote — результат расчета стоимости корзины
type Quote struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"taxAmount"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// Price считает стоимость позиций корзины с налогом.
// Ставка налога — доля в интервале [0, 1), её резолвит внешний слой.
// Накопление идет без округления, к валютной точности суммы приводятся
// только на выходе, чтобы ошибка округления не накапливалась по позициям.
func Price(items []*models.CartItem, taxRate decimal.Decimal) Quote {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	// Round у decimal — округление половины от нуля, для положительных
	// сумм это и есть требуемое round-half-up
	subtotal = subtotal.Round(currencyScale)
	taxAmount := subtotal.Mul(taxRate).Round(currencyScale)

	return Quote{
		Subtotal:   subtotal,
		TaxAmount:  taxAmount,
		GrandTotal: subtotal.Add(taxAmount),
	}
}
