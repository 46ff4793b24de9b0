package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ramyakv/ecom-store/internal/jwt-new/jwtmiddleware"
	"github.com/ramyakv/ecom-store/internal/service"
	"github.com/ramyakv/ecom-store/internal/storage"
)

// AddToCartRequest представляет входной JSON для добавления товара в корзину.
type AddToCartRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

// AddToCartHandler обрабатывает запрос POST /api/cart.
// Ответом служит состояние корзины после мутации — повторный запрос
// за актуальным снимком клиенту не нужен.
func AddToCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddToCartHandler"
		logger := log.With(slog.String("op", op))

		var req AddToCartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		// Извлекаем userID из контекста (установленный JWT middleware)
		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		view, err := cartService.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrProductNotFound):
				http.Error(w, "product not found", http.StatusNotFound)
			case errors.Is(err, service.ErrInvalidQuantity), errors.Is(err, service.ErrProductUnavailable):
				logger.Warn("failed to add item", slog.Any("error", err))
				http.Error(w, userMessage(err), http.StatusBadRequest)
			default:
				logger.Error("failed to add item", slog.Any("error", err))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, logger, http.StatusOK, view)
	}
}

// GetCartHandler обрабатывает запрос GET /api/cart
func GetCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCartHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		view, err := cartService.GetCart(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get cart", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, logger, http.StatusOK, view)
	}
}

// RemoveFromCartHandler обрабатывает запрос DELETE /api/cart/{cartItemId}
func RemoveFromCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveFromCartHandler"
		logger := log.With(slog.String("op", op))

		itemID, err := strconv.ParseInt(chi.URLParam(r, "cartItemId"), 10, 64)
		if err != nil {
			logger.Warn("invalid cart item id", slog.Any("error", err))
			http.Error(w, "invalid cart item id", http.StatusBadRequest)
			return
		}

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		view, err := cartService.RemoveItem(r.Context(), userID, itemID)
		if err != nil {
			if errors.Is(err, storage.ErrItemNotFound) {
				http.Error(w, "cart item not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to remove item", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, logger, http.StatusOK, view)
	}
}

// userMessage возвращает пользовательский текст для известных ошибок
func userMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		return "quantity must be at least 1"
	case errors.Is(err, service.ErrProductUnavailable):
		return "product is out of stock"
	default:
		return "bad request"
	}
}
