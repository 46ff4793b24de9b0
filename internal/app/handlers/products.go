package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ramyakv/ecom-store/internal/service"
	"github.com/ramyakv/ecom-store/internal/storage"
)

// ProductsHandler обрабатывает запрос GET /api/products
// с параметрами поиска, фильтрации по цене/рейтингу и сортировки
func ProductsHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductsHandler"
		logger := log.With(slog.String("op", op))

		q := r.URL.Query()
		filter := storage.ProductFilter{
			Search: q.Get("search"),
			SortBy: q.Get("sortBy"),
			Order:  q.Get("order"),
		}

		var parseErr error
		filter.MinPrice, parseErr = parseFloatParam(q.Get("minPrice"), parseErr)
		filter.MaxPrice, parseErr = parseFloatParam(q.Get("maxPrice"), parseErr)
		filter.MinRating, parseErr = parseFloatParam(q.Get("minRating"), parseErr)
		filter.MaxRating, parseErr = parseFloatParam(q.Get("maxRating"), parseErr)
		if parseErr != nil {
			logger.Warn("invalid filter parameter", slog.Any("error", parseErr))
			http.Error(w, "invalid filter parameter", http.StatusBadRequest)
			return
		}

		products, err := catalogService.ListProducts(r.Context(), filter)
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, logger, http.StatusOK, products)
	}
}

// ProductHandler обрабатывает запрос GET /api/products/{id}
func ProductHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			logger.Warn("invalid product id", slog.Any("error", err))
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		product, err := catalogService.GetProduct(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				http.Error(w, "product not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to get product", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, logger, http.StatusOK, product)
	}
}

func parseFloatParam(raw string, prevErr error) (*float64, error) {
	if prevErr != nil {
		return nil, prevErr
	}
	if raw == "" {
		return nil, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &val, nil
}
