package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ramyakv/ecom-store/internal/domain/models"
	"github.com/ramyakv/ecom-store/internal/jwt-new/jwtmiddleware"
	"github.com/ramyakv/ecom-store/internal/payment"
	"github.com/ramyakv/ecom-store/internal/service"
)

// CheckoutRequest представляет входной JSON оформления заказа.
// Проверка на пустоту полей здесь структурная; формат номера карты и CVV
// проверяет платежный валидатор внутри сервиса.
type CheckoutRequest struct {
	DeliveryAddress string `json:"deliveryAddress" validate:"required"`
	DeliveryCountry string `json:"deliveryCountry"`
	CardNumber      string `json:"cardNumber" validate:"required"`
	CardHolderName  string `json:"cardHolderName" validate:"required"`
	ExpiryDate      string `json:"expiryDate" validate:"required"`
	CVV             string `json:"cvv" validate:"required"`
}

// CheckoutResponse — подтверждение заказа с датой ожидаемой доставки.
type CheckoutResponse struct {
	*models.Order
	Message string `json:"message"`
}

// CheckoutHandler обрабатывает запрос POST /api/checkout.
func CheckoutHandler(log *slog.Logger, checkoutService service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		var req CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		order, err := checkoutService.Checkout(r.Context(), userID, service.CheckoutRequest{
			DeliveryAddress: req.DeliveryAddress,
			DeliveryCountry: req.DeliveryCountry,
			CardNumber:      req.CardNumber,
			CardHolderName:  req.CardHolderName,
			ExpiryDate:      req.ExpiryDate,
			CVV:             req.CVV,
		})
		if err != nil {
			writeCheckoutError(w, logger, err)
			return
		}

		resp := CheckoutResponse{
			Order:   order,
			Message: "Your order has been placed. Will arrive before " + order.ExpectedDeliveryDate.Format("2006-01-02"),
		}
		writeJSON(w, logger, http.StatusCreated, resp)
	}
}

// writeCheckoutError транслирует ошибки оформления в HTTP-статусы:
// исправимые пользователем — 400, временные сбои — 503 (можно повторить),
// нарушение инварианта — 500 без деталей наружу.
func writeCheckoutError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		logger.Warn("checkout rejected", slog.Any("error", err))
		http.Error(w, "cart is empty", http.StatusBadRequest)
	case errors.Is(err, payment.ErrMissingField):
		logger.Warn("checkout rejected", slog.Any("error", err))
		http.Error(w, "all payment fields are required", http.StatusBadRequest)
	case errors.Is(err, payment.ErrInvalidCardNumber):
		logger.Warn("checkout rejected", slog.Any("error", err))
		http.Error(w, "card number must be 16 digits", http.StatusBadRequest)
	case errors.Is(err, payment.ErrInvalidCVV):
		logger.Warn("checkout rejected", slog.Any("error", err))
		http.Error(w, "cvv must be 3 or 4 digits", http.StatusBadRequest)
	case errors.Is(err, service.ErrTaxResolution), errors.Is(err, service.ErrPersistence):
		logger.Error("checkout failed, retryable", slog.Any("error", err))
		http.Error(w, "service temporarily unavailable, please retry", http.StatusServiceUnavailable)
	default:
		logger.Error("checkout failed", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
