package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ramyakv/ecom-store/internal/domain/models"
	"github.com/ramyakv/ecom-store/internal/jwt-new/jwtmiddleware"
	"github.com/ramyakv/ecom-store/internal/service"
)

// OrdersResponse — история заказов пользователя.
type OrdersResponse struct {
	Orders []*models.Order `json:"orders"`
	Count  int             `json:"count"`
}

// OrdersHandler обрабатывает запрос GET /api/orders.
// Извлекает идентификатор пользователя из контекста (установленный JWT middleware)
// и возвращает его заказы, самые свежие первыми.
func OrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := orderService.ListOrders(r.Context(), userID)
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if orders == nil {
			orders = []*models.Order{}
		}

		writeJSON(w, logger, http.StatusOK, OrdersResponse{Orders: orders, Count: len(orders)})
	}
}
