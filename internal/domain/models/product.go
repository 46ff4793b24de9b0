package models

import "github.com/shopspring/decimal"

// Product представляет товар каталога
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`
	Stock       int             `json:"stock"`
}

// Available — товар можно положить в корзину, только если он есть на складе
func (p *Product) Available() bool {
	return p.Stock > 0
}
