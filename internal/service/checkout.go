package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ramyakv/ecom-store/internal/domain/models"
	"github.com/ramyakv/ecom-store/internal/payment"
	"github.com/ramyakv/ecom-store/internal/pricing"
	"github.com/ramyakv/ecom-store/internal/storage"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrPersistence = errors.New("order could not be persisted")
)

// CheckoutRequest — данные, передаваемые на оформление заказа.
// Страна доставки используется только для резолвинга налоговой ставки.
type CheckoutRequest struct {
	DeliveryAddress string
	DeliveryCountry string
	CardNumber      string
	CardHolderName  string
	ExpiryDate      string
	CVV             string
}

// CheckoutService определяет интерфейс оформления заказа.
type CheckoutService interface {
	Checkout(ctx context.Context, userID int64, req CheckoutRequest) (*models.Order, error)
}

type checkoutService struct {
	log              *slog.Logger
	db               *sql.DB
	userRepo         storage.UserStorage
	cartRepo         storage.CartStorage
	orderRepo        storage.OrderStorage
	taxService       TaxService
	deliveryLeadDays int
}

func NewCheckoutService(log *slog.Logger, db *sql.DB, userRepo storage.UserStorage, cartRepo storage.CartStorage,
	orderRepo storage.OrderStorage, taxService TaxService, deliveryLeadDays int) CheckoutService {
	return &checkoutService{
		log:              log,
		db:               db,
		userRepo:         userRepo,
		cartRepo:         cartRepo,
		orderRepo:        orderRepo,
		taxService:       taxService,
		deliveryLeadDays: deliveryLeadDays,
	}
}

// Checkout превращает корзину в неизменяемый заказ по принципу "всё или ничего".
// Вся последовательность — проверка корзины, валидация реквизитов, расчет,
// запись заказа и очистка корзины — выполняется в одной транзакции под
// блокировкой пользователя, так что между валидацией и очисткой не может
// вклиниться ни другая мутация корзины, ни параллельное оформление.
// Корзина очищается только после того, как заказ записан; любая более
// ранняя ошибка откатывает транзакцию и оставляет корзину нетронутой.
func (s *checkoutService) Checkout(ctx context.Context, userID int64, req CheckoutRequest) (*models.Order, error) {
	const op = "service.CheckoutService.Checkout"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("starting checkout transaction")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}

	order, err := s.checkoutTx(ctx, tx, userID, req, logger)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}

	logger.Info("checkout completed successfully",
		slog.String("orderID", order.ID.String()),
		slog.String("grandTotal", order.GrandTotal.String()),
	)
	return order, nil
}

func (s *checkoutService) checkoutTx(ctx context.Context, tx *sql.Tx, userID int64, req CheckoutRequest, logger *slog.Logger) (*models.Order, error) {
	if _, err := s.userRepo.LockUserByIDTx(ctx, tx, userID); err != nil {
		logger.Error("failed to lock user", slog.Any("error", err))
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	items, err := s.cartRepo.GetItemsByUserTx(ctx, tx, userID)
	if err != nil {
		logger.Error("failed to read cart", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to read cart: %w", ErrPersistence, err)
	}
	if len(items) == 0 {
		logger.Warn("cart is empty")
		return nil, ErrEmptyCart
	}

	// Валидация реквизитов — до любых изменений состояния
	details := payment.Details{
		DeliveryAddress: req.DeliveryAddress,
		CardNumber:      req.CardNumber,
		CardHolderName:  req.CardHolderName,
		ExpiryDate:      req.ExpiryDate,
		CVV:             req.CVV,
	}
	if err := payment.Validate(details); err != nil {
		logger.Warn("payment validation failed", slog.Any("error", err))
		return nil, err
	}

	taxRate, resolved, err := s.taxService.ResolveRate(ctx, req.DeliveryCountry)
	if err != nil {
		return nil, err
	}
	if !resolved {
		logger.Info("using fallback tax rate", slog.String("country", req.DeliveryCountry))
	}

	quote := pricing.Price(items, taxRate)

	// Цены позиций замораживаются из снимка корзины: покупатель платит то,
	// что видел при добавлении, а не текущую цену каталога
	orderItems := make([]*models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, &models.OrderItem{
			ProductID:           item.ProductID,
			ProductName:         item.ProductName,
			Quantity:            item.Quantity,
			UnitPriceAtPurchase: item.UnitPrice,
		})
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:                   uuid.New(),
		UserID:               userID,
		Items:                orderItems,
		DeliveryAddress:      req.DeliveryAddress,
		CardLastFour:         payment.LastFour(req.CardNumber),
		Subtotal:             quote.Subtotal,
		TaxAmount:            quote.TaxAmount,
		GrandTotal:           quote.GrandTotal,
		OrderDate:            now,
		ExpectedDeliveryDate: now.AddDate(0, 0, s.deliveryLeadDays),
	}

	if err := s.orderRepo.CreateOrderTx(ctx, tx, order); err != nil {
		if errors.Is(err, storage.ErrDuplicateOrderID) {
			// нарушение инварианта генерации идентификаторов — это баг, не
			// пользовательская ошибка
			logger.Error("duplicate order id", slog.String("orderID", order.ID.String()))
			return nil, err
		}
		logger.Error("failed to persist order", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	// Очистка корзины идет той же транзакцией строго после записи заказа:
	// неудавшееся оформление не может молча потерять корзину
	if err := s.cartRepo.ClearByUserTx(ctx, tx, userID); err != nil {
		logger.Error("failed to clear cart", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return order, nil
}
