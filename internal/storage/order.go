package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/ramyakv/ecom-store/internal/domain/models"
)

// ErrDuplicateOrderID означает нарушение инварианта генерации идентификаторов,
// а не пользовательскую ошибку: при корректной генерации uuid дубликатов не бывает.
var ErrDuplicateOrderID = errors.New("duplicate order id")

// OrderStorage описывает журнал заказов: только вставка и чтение, заказы
// после записи не изменяются.
type OrderStorage interface {
	// CreateOrderTx вставляет заказ вместе с позициями в рамках транзакции.
	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error
	// GetOrdersByUserID возвращает заказы пользователя, самые свежие первыми.
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, delivery_address, card_last_four, subtotal, tax_amount, grand_total, order_date, expected_delivery_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.ID, order.UserID, order.DeliveryAddress, order.CardLastFour,
		order.Subtotal, order.TaxAmount, order.GrandTotal, order.OrderDate, order.ExpectedDeliveryDate)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return ErrDuplicateOrderID
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range order.Items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price_at_purchase)
			 VALUES ($1, $2, $3, $4, $5)`,
			order.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPriceAtPurchase)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	// id в сортировке — тай-брейкер для заказов с одинаковой датой,
	// чтобы порядок выдачи был стабильным между запросами
	query := `
		SELECT id, user_id, delivery_address, card_last_four, subtotal, tax_amount, grand_total, order_date, expected_delivery_date
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC, id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	byID := make(map[uuid.UUID]*models.Order)
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.DeliveryAddress, &order.CardLastFour,
			&order.Subtotal, &order.TaxAmount, &order.GrandTotal, &order.OrderDate, &order.ExpectedDeliveryDate); err != nil {
			return nil, err
		}
		orders = append(orders, order)
		byID[order.ID] = order
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	itemRows, err := r.db.QueryContext(ctx,
		`SELECT order_id, product_id, product_name, quantity, unit_price_at_purchase
		 FROM order_items WHERE order_id = ANY($1) ORDER BY id`,
		pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID uuid.UUID
		item := &models.OrderItem{}
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPriceAtPurchase); err != nil {
			return nil, err
		}
		if order, ok := byID[orderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
