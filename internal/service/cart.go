package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ramyakv/ecom-store/internal/domain/models"
	"github.com/ramyakv/ecom-store/internal/storage"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrProductUnavailable = errors.New("product is out of stock")
)

// CartView — снимок корзины после операции: позиции и выведенная из них сумма.
// Сервис всегда возвращает состояние после мутации, чтобы вызывающей стороне
// не требовался повторный запрос.
type CartView struct {
	Items []*models.CartItem `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

// CartService определяет интерфейс для работы с корзиной пользователя.
type CartService interface {
	AddItem(ctx context.Context, userID, productID int64, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, cartItemID int64) (*CartView, error)
	GetCart(ctx context.Context, userID int64) (*CartView, error)
}

type cartService struct {
	log         *slog.Logger
	db          *sql.DB
	userRepo    storage.UserStorage
	productRepo storage.ProductStorage
	cartRepo    storage.CartStorage
}

func NewCartService(log *slog.Logger, db *sql.DB, userRepo storage.UserStorage, productRepo storage.ProductStorage, cartRepo storage.CartStorage) CartService {
	return &cartService{
		log:         log,
		db:          db,
		userRepo:    userRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
	}
}

// AddItem добавляет товар в корзину с merge-семантикой: повторное добавление
// того же товара увеличивает количество существующей позиции и обновляет
// снимок названия/цены по текущему состоянию каталога, новая строка не создается.
// Мутации корзины одного пользователя сериализуются блокировкой строки
// пользователя, поэтому конкурирующие добавления не теряют обновлений.
func (s *cartService) AddItem(ctx context.Context, userID, productID int64, quantity int) (*CartView, error) {
	const op = "service.CartService.AddItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID), slog.Int("quantity", quantity))

	if quantity < 1 {
		logger.Warn("invalid quantity")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		logger.Warn("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !product.Available() {
		logger.Warn("product is out of stock")
		return nil, fmt.Errorf("%s: %w", op, ErrProductUnavailable)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	view, err := s.addItemTx(ctx, tx, userID, product, quantity)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to add item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("item added to cart")
	return view, nil
}

func (s *cartService) addItemTx(ctx context.Context, tx *sql.Tx, userID int64, product *models.Product, quantity int) (*CartView, error) {
	// Блокировка пользователя — точка сериализации всех мутаций его корзины
	if _, err := s.userRepo.LockUserByIDTx(ctx, tx, userID); err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	existing, err := s.cartRepo.FindItemByProductTx(ctx, tx, userID, product.ID)
	switch {
	case err == nil:
		newQuantity := existing.Quantity + quantity
		if err := s.cartRepo.UpdateItemTx(ctx, tx, existing.ID, newQuantity, product.Name, product.Price); err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	case errors.Is(err, storage.ErrItemNotFound):
		item := &models.CartItem{
			UserID:      userID,
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    quantity,
		}
		if _, err := s.cartRepo.InsertItemTx(ctx, tx, item); err != nil {
			return nil, fmt.Errorf("failed to insert cart item: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	return s.snapshotTx(ctx, tx, userID)
}

// RemoveItem удаляет позицию корзины. При неизвестном идентификаторе корзина
// остается нетронутой и возвращается ErrItemNotFound.
func (s *cartService) RemoveItem(ctx context.Context, userID, cartItemID int64) (*CartView, error) {
	const op = "service.CartService.RemoveItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("cartItemID", cartItemID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	view, err := s.removeItemTx(ctx, tx, userID, cartItemID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("failed to remove item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("item removed from cart")
	return view, nil
}

func (s *cartService) removeItemTx(ctx context.Context, tx *sql.Tx, userID, cartItemID int64) (*CartView, error) {
	if _, err := s.userRepo.LockUserByIDTx(ctx, tx, userID); err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	if err := s.cartRepo.DeleteItemTx(ctx, tx, userID, cartItemID); err != nil {
		return nil, err
	}

	return s.snapshotTx(ctx, tx, userID)
}

// GetCart возвращает снимок корзины без блокировок
func (s *cartService) GetCart(ctx context.Context, userID int64) (*CartView, error) {
	const op = "service.CartService.GetCart"

	items, err := s.cartRepo.GetItemsByUser(ctx, userID)
	if err != nil {
		s.log.Error("failed to get cart items", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart items: %w", op, err)
	}

	return &CartView{Items: items, Total: models.CartTotal(items)}, nil
}

func (s *cartService) snapshotTx(ctx context.Context, tx *sql.Tx, userID int64) (*CartView, error) {
	items, err := s.cartRepo.GetItemsByUserTx(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart snapshot: %w", err)
	}
	return &CartView{Items: items, Total: models.CartTotal(items)}, nil
}
