package storage_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/ramyakv/ecom-store/internal/domain/models"
	"github.com/ramyakv/ecom-store/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err, "Failed to create sqlmock")
	return db, mock
}

var userColumns = []string{"id", "email", "pass_hash", "first_name", "last_name"}

// --- userRepository ---

func TestUserRepository_GetUserByEmail_Found(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, email, pass_hash, first_name, last_name FROM users WHERE email = $1")).
		WithArgs("buyer@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(1, "buyer@example.com", []byte("hash"), "Ramya", "KV"))

	user, err := repo.GetUserByEmail(context.Background(), "buyer@example.com")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "buyer@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetUserByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, email, pass_hash, first_name, last_name FROM users WHERE email = $1")).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateUser_Success(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO users (email, pass_hash, first_name, last_name) VALUES ($1, $2, $3, $4) RETURNING id")).
		WithArgs("new@example.com", []byte("hash"), "New", "User").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	user, err := repo.CreateUser(context.Background(), &models.User{
		Email: "new@example.com", PassHash: []byte("hash"), FirstName: "New", LastName: "User",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID, "New user id should come from RETURNING")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateUser_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO users (email, pass_hash, first_name, last_name) VALUES ($1, $2, $3, $4) RETURNING id")).
		WithArgs("existing@example.com", []byte("hash"), "New", "User").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.CreateUser(context.Background(), &models.User{
		Email: "existing@example.com", PassHash: []byte("hash"), FirstName: "New", LastName: "User",
	})
	assert.ErrorIs(t, err, storage.ErrUserExists, "Unique violation should map to ErrUserExists")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_LockUserByIDTx(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, email, pass_hash, first_name, last_name FROM users WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(1, "buyer@example.com", []byte("hash"), "Ramya", "KV"))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	assert.NoError(t, err)
	user, err := repo.LockUserByIDTx(context.Background(), tx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- productRepository ---

var productColumns = []string{"id", "name", "price", "rating", "category", "description", "image_url", "stock"}

func productRow(rows *sqlmock.Rows, id int64, name, price string, rating float64, stock int) *sqlmock.Rows {
	return rows.AddRow(id, name, price, rating, "Electronics", "desc", "http://img", stock)
}

func TestProductRepository_GetProductByID_Found(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewProductRepository(db)

	rows := productRow(sqlmock.NewRows(productColumns), 10, "Wireless Mouse", "34.99", 4.5, 75)
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, name, price, rating, category, description, image_url, stock FROM products WHERE id = $1")).
		WithArgs(int64(10)).
		WillReturnRows(rows)

	p, err := repo.GetProductByID(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, "Wireless Mouse", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("34.99")))
	assert.True(t, p.Available())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetProductByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).
		WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetProductByID(context.Background(), 999)
	assert.ErrorIs(t, err, storage.ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ListProducts_NoFilter(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewProductRepository(db)

	rows := sqlmock.NewRows(productColumns)
	productRow(rows, 1, "Laptop", "999.99", 4.8, 10)
	productRow(rows, 2, "Mouse", "34.99", 4.5, 75)

	// сортировка по умолчанию: name ASC
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, name, price, rating, category, description, image_url, stock FROM products ORDER BY name ASC")).
		WillReturnRows(rows)

	products, err := repo.ListProducts(context.Background(), storage.ProductFilter{})
	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ListProducts_SearchAndPriceRange(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewProductRepository(db)

	minPrice, maxPrice := 10.0, 100.0
	rows := productRow(sqlmock.NewRows(productColumns), 2, "Wireless Mouse", "34.99", 4.5, 75)

	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE (name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%') AND price >= $2 AND price <= $3 ORDER BY price DESC")).
		WithArgs("mouse", minPrice, maxPrice).
		WillReturnRows(rows)

	products, err := repo.ListProducts(context.Background(), storage.ProductFilter{
		Search:   "mouse",
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		SortBy:   "price",
		Order:    "desc",
	})
	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// неизвестная колонка сортировки заменяется на name, а не попадает в SQL
func TestProductRepository_ListProducts_SortWhitelist(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY name ASC")).
		WillReturnRows(sqlmock.NewRows(productColumns))

	_, err := repo.ListProducts(context.Background(), storage.ProductFilter{
		SortBy: "id; DROP TABLE products",
		Order:  "sideways",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- cartRepository ---

var cartColumns = []string{"id", "user_id", "product_id", "product_name", "unit_price", "quantity"}

func TestCartRepository_GetItemsByUser(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewCartRepository(db)

	rows := sqlmock.NewRows(cartColumns).
		AddRow(1, 1, 10, "Wireless Mouse", "34.99", 2).
		AddRow(2, 1, 11, "USB Hub", "29.99", 1)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, user_id, product_id, product_name, unit_price, quantity FROM cart_items WHERE user_id = $1 ORDER BY id")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	items, err := repo.GetItemsByUser(context.Background(), 1)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "Wireless Mouse", items[0].ProductName)
	assert.True(t, models.CartTotal(items).Equal(decimal.RequireFromString("99.97")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_FindItemByProductTx_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewCartRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM cart_items WHERE user_id = $1 AND product_id = $2")).
		WithArgs(int64(1), int64(999)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	assert.NoError(t, err)
	_, err = repo.FindItemByProductTx(context.Background(), tx, 1, 999)
	assert.ErrorIs(t, err, storage.ErrItemNotFound)
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_InsertItemTx(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewCartRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO cart_items").
		WithArgs(int64(1), int64(10), "Wireless Mouse", decimal.RequireFromString("34.99"), 2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	assert.NoError(t, err)
	id, err := repo.InsertItemTx(context.Background(), tx, &models.CartItem{
		UserID:      1,
		ProductID:   10,
		ProductName: "Wireless Mouse",
		UnitPrice:   decimal.RequireFromString("34.99"),
		Quantity:    2,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_UpdateItemTx_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewCartRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE cart_items SET quantity = $1, product_name = $2, unit_price = $3 WHERE id = $4")).
		WithArgs(5, "Wireless Mouse", decimal.RequireFromString("34.99"), int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	assert.NoError(t, err)
	err = repo.UpdateItemTx(context.Background(), tx, 999, 5, "Wireless Mouse", decimal.RequireFromString("34.99"))
	assert.ErrorIs(t, err, storage.ErrItemNotFound)
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_DeleteItemTx_WrongUser(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewCartRepository(db)

	// позиция существует, но принадлежит другому пользователю: 0 затронутых строк
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM cart_items WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(5), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	assert.NoError(t, err)
	err = repo.DeleteItemTx(context.Background(), tx, 2, 5)
	assert.ErrorIs(t, err, storage.ErrItemNotFound)
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_ClearByUserTx(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewCartRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart_items WHERE user_id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	assert.NoError(t, err)
	assert.NoError(t, repo.ClearByUserTx(context.Background(), tx, 1))
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- orderRepository ---

func TestOrderRepository_CreateOrderTx(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewOrderRepository(db)

	orderID := uuid.New()
	now := time.Now().UTC()
	order := &models.Order{
		ID:                   orderID,
		UserID:               1,
		DeliveryAddress:      "221B Baker Street",
		CardLastFour:         "1111",
		Subtotal:             decimal.RequireFromString("25.00"),
		TaxAmount:            decimal.RequireFromString("2.00"),
		GrandTotal:           decimal.RequireFromString("27.00"),
		OrderDate:            now,
		ExpectedDeliveryDate: now.AddDate(0, 0, 7),
		Items: []*models.OrderItem{
			{ProductID: 101, ProductName: "P1", Quantity: 2, UnitPriceAtPurchase: decimal.RequireFromString("10.00")},
			{ProductID: 102, ProductName: "P2", Quantity: 1, UnitPriceAtPurchase: decimal.RequireFromString("5.00")},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(orderID, int64(1), "221B Baker Street", "1111",
			order.Subtotal, order.TaxAmount, order.GrandTotal, now, order.ExpectedDeliveryDate).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(orderID, int64(101), "P1", 2, order.Items[0].UnitPriceAtPurchase).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(orderID, int64(102), "P2", 1, order.Items[1].UnitPriceAtPurchase).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	assert.NoError(t, err)
	assert.NoError(t, repo.CreateOrderTx(context.Background(), tx, order))
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_CreateOrderTx_DuplicateID(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	assert.NoError(t, err)
	err = repo.CreateOrderTx(context.Background(), tx, &models.Order{ID: uuid.New(), UserID: 1})
	assert.ErrorIs(t, err, storage.ErrDuplicateOrderID)
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetOrdersByUserID_MostRecentFirst(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewOrderRepository(db)

	newerID, olderID := uuid.New(), uuid.New()
	now := time.Now().UTC()
	orderCols := []string{"id", "user_id", "delivery_address", "card_last_four",
		"subtotal", "tax_amount", "grand_total", "order_date", "expected_delivery_date"}

	// сортировка с тай-брейкером по id: заказы с одинаковой датой
	// не должны менять порядок от запроса к запросу
	orderRows := sqlmock.NewRows(orderCols).
		AddRow(newerID, 1, "addr", "1111", "25.00", "2.00", "27.00", now, now.AddDate(0, 0, 7)).
		AddRow(olderID, 1, "addr", "2222", "10.00", "0.80", "10.80", now.Add(-time.Hour), now.AddDate(0, 0, 6))
	mock.ExpectQuery(`SELECT (.+) FROM orders\s+WHERE user_id = \$1\s+ORDER BY order_date DESC, id`).
		WithArgs(int64(1)).
		WillReturnRows(orderRows)

	itemRows := sqlmock.NewRows([]string{"order_id", "product_id", "product_name", "quantity", "unit_price_at_purchase"}).
		AddRow(newerID, 101, "P1", 2, "10.00").
		AddRow(olderID, 102, "P2", 1, "10.00")
	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(itemRows)

	orders, err := repo.GetOrdersByUserID(context.Background(), 1)
	assert.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, newerID, orders[0].ID, "Most recent order should come first")
	assert.Len(t, orders[0].Items, 1)
	assert.Equal(t, int64(101), orders[0].Items[0].ProductID)
	assert.Len(t, orders[1].Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetOrdersByUserID_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewOrderRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "delivery_address", "card_last_four",
			"subtotal", "tax_amount", "grand_total", "order_date", "expected_delivery_date"}))

	orders, err := repo.GetOrdersByUserID(context.Background(), 42)
	assert.NoError(t, err)
	assert.Empty(t, orders, "No second query should run for a user without orders")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- taxRateRepository ---

func TestTaxRateRepository_GetRateByCountry(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewTaxRateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT rate FROM tax_rates WHERE LOWER(country) = LOWER($1)")).
		WithArgs("UK").
		WillReturnRows(sqlmock.NewRows([]string{"rate"}).AddRow("0.20"))

	rate, err := repo.GetRateByCountry(context.Background(), "UK")
	assert.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.20")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaxRateRepository_GetRateByCountry_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := storage.NewTaxRateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT rate FROM tax_rates")).
		WithArgs("atlantis").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetRateByCountry(context.Background(), "atlantis")
	assert.ErrorIs(t, err, storage.ErrTaxRateNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
