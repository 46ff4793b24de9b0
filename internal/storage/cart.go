package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ramyakv/ecom-store/internal/domain/models"
	"github.com/shopspring/decimal"
)

var ErrItemNotFound = errors.New("cart item not found")

// CartStorage описывает методы для работы с позициями корзины.
// Все мутации выполняются в транзакции вызывающей стороны: сервис сам
// берет блокировку пользователя и решает, когда коммитить.
type CartStorage interface {
	// GetItemsByUser возвращает позиции корзины в порядке добавления.
	GetItemsByUser(ctx context.Context, userID int64) ([]*models.CartItem, error)
	// GetItemsByUserTx — то же самое, но внутри транзакции.
	GetItemsByUserTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartItem, error)
	// FindItemByProductTx ищет позицию по товару для merge-семантики добавления.
	FindItemByProductTx(ctx context.Context, tx *sql.Tx, userID, productID int64) (*models.CartItem, error)
	// InsertItemTx добавляет новую позицию и возвращает её идентификатор.
	InsertItemTx(ctx context.Context, tx *sql.Tx, item *models.CartItem) (int64, error)
	// UpdateItemTx обновляет количество и снимок названия/цены существующей позиции.
	UpdateItemTx(ctx context.Context, tx *sql.Tx, id int64, quantity int, name string, unitPrice decimal.Decimal) error
	// DeleteItemTx удаляет позицию пользователя.
	DeleteItemTx(ctx context.Context, tx *sql.Tx, userID, itemID int64) error
	// ClearByUserTx очищает корзину пользователя.
	ClearByUserTx(ctx context.Context, tx *sql.Tx, userID int64) error
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

const cartColumns = "id, user_id, product_id, product_name, unit_price, quantity"

func (r *cartRepository) GetItemsByUser(ctx context.Context, userID int64) ([]*models.CartItem, error) {
	query := fmt.Sprintf("SELECT %s FROM cart_items WHERE user_id = $1 ORDER BY id", cartColumns)
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func (r *cartRepository) GetItemsByUserTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartItem, error) {
	query := fmt.Sprintf("SELECT %s FROM cart_items WHERE user_id = $1 ORDER BY id", cartColumns)
	rows, err := tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func (r *cartRepository) FindItemByProductTx(ctx context.Context, tx *sql.Tx, userID, productID int64) (*models.CartItem, error) {
	item := &models.CartItem{}
	query := fmt.Sprintf("SELECT %s FROM cart_items WHERE user_id = $1 AND product_id = $2", cartColumns)
	row := tx.QueryRowContext(ctx, query, userID, productID)
	if err := scanItem(row, item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *cartRepository) InsertItemTx(ctx context.Context, tx *sql.Tx, item *models.CartItem) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, product_name, unit_price, quantity)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		item.UserID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert cart item: %w", err)
	}
	return id, nil
}

func (r *cartRepository) UpdateItemTx(ctx context.Context, tx *sql.Tx, id int64, quantity int, name string, unitPrice decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1, product_name = $2, unit_price = $3 WHERE id = $4",
		quantity, name, unitPrice, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *cartRepository) DeleteItemTx(ctx context.Context, tx *sql.Tx, userID, itemID int64) error {
	res, err := tx.ExecContext(ctx,
		"DELETE FROM cart_items WHERE id = $1 AND user_id = $2", itemID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *cartRepository) ClearByUserTx(ctx context.Context, tx *sql.Tx, userID int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func scanItem(row rowScanner, item *models.CartItem) error {
	return row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity)
}

func collectItems(rows *sql.Rows) ([]*models.CartItem, error) {
	var items []*models.CartItem
	for rows.Next() {
		item := &models.CartItem{}
		if err := scanItem(rows, item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
