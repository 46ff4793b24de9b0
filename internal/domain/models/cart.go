package models

import "github.com/shopspring/decimal"

// CartItem представляет позицию в корзине пользователя.
// Название и цена — снимок каталога на момент добавления, а не живая ссылка.
type CartItem struct {
	ID          int64           `json:"cartItemId"`
	UserID      int64           `json:"-"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

// CartTotal вычисляет сумму корзины как Σ цена × количество.
// Сумма нигде не хранится — она всегда выводится из позиций.
func CartTotal(items []*CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
