package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrTaxRateNotFound = errors.New("tax rate not found")

// TaxRateStorage описывает справочник налоговых ставок по странам доставки.
type TaxRateStorage interface {
	// GetRateByCountry возвращает ставку как долю в интервале [0, 1).
	GetRateByCountry(ctx context.Context, country string) (decimal.Decimal, error)
}

type taxRateRepository struct {
	db *sql.DB
}

func NewTaxRateRepository(db *sql.DB) TaxRateStorage {
	return &taxRateRepository{db: db}
}

func (r *taxRateRepository) GetRateByCountry(ctx context.Context, country string) (decimal.Decimal, error) {
	var rate decimal.Decimal
	row := r.db.QueryRowContext(ctx, "SELECT rate FROM tax_rates WHERE LOWER(country) = LOWER($1)", country)
	if err := row.Scan(&rate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrTaxRateNotFound
		}
		return decimal.Zero, err
	}
	return rate, nil
}
