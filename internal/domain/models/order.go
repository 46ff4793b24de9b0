package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order представляет оформленный заказ — неизменяемый снимок корзины
// на момент покупки. Последующие изменения каталога его не затрагивают.
type Order struct {
	ID                   uuid.UUID       `json:"orderId"`
	UserID               int64           `json:"-"`
	Items                []*OrderItem    `json:"items"`
	DeliveryAddress      string          `json:"deliveryAddress"`
	CardLastFour         string          `json:"cardLastFour"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	TaxAmount            decimal.Decimal `json:"taxAmount"`
	GrandTotal           decimal.Decimal `json:"grandTotal"`
	OrderDate            time.Time       `json:"orderDate"`
	ExpectedDeliveryDate time.Time       `json:"expectedDeliveryDate"`
}

// OrderItem представляет позицию заказа с зафиксированной ценой покупки
type OrderItem struct {
	ProductID           int64           `json:"productId"`
	ProductName         string          `json:"productName"`
	Quantity            int             `json:"quantity"`
	UnitPriceAtPurchase decimal.Decimal `json:"unitPriceAtPurchase"`
}
