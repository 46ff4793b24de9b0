package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ramyakv/ecom-store/internal/service"
	"github.com/shopspring/decimal"
)

// TaxResponse — ставка налога для страны доставки.
type TaxResponse struct {
	Country       string          `json:"country"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	TaxPercentage decimal.Decimal `json:"taxPercentage"`
	Resolved      bool            `json:"resolved"`
}

// TaxHandler обрабатывает запрос GET /api/tax/{country}
func TaxHandler(log *slog.Logger, taxService service.TaxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.TaxHandler"
		logger := log.With(slog.String("op", op))

		country := chi.URLParam(r, "country")
		if country == "" {
			logger.Error("country parameter is missing")
			http.Error(w, "country parameter is required", http.StatusBadRequest)
			return
		}

		rate, resolved, err := taxService.ResolveRate(r.Context(), country)
		if err != nil {
			logger.Error("failed to resolve tax rate", slog.Any("error", err))
			http.Error(w, "service temporarily unavailable, please retry", http.StatusServiceUnavailable)
			return
		}

		resp := TaxResponse{
			Country:       country,
			TaxRate:       rate,
			TaxPercentage: rate.Mul(decimal.NewFromInt(100)),
			Resolved:      resolved,
		}
		writeJSON(w, logger, http.StatusOK, resp)
	}
}
