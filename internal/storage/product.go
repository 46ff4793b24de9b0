package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ramyakv/ecom-store/internal/domain/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductFilter — параметры выборки каталога: поиск, диапазоны и сортировка
type ProductFilter struct {
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	MaxRating *float64
	SortBy    string // name | price | rating
	Order     string // asc | desc
}

// ProductStorage описывает методы для работы с каталогом товаров.
type ProductStorage interface {
	// GetProductByID возвращает товар по идентификатору.
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	// ListProducts возвращает товары каталога с учетом фильтра.
	ListProducts(ctx context.Context, filter ProductFilter) ([]*models.Product, error)
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = "id, name, price, rating, category, description, image_url, stock"

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p := &models.Product{}
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)
	row := r.db.QueryRowContext(ctx, query, id)
	if err := scanProduct(row, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListProducts собирает запрос динамически; имена колонок сортировки
// берутся только из белого списка, параметры — через плейсхолдеры.
func (r *productRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]*models.Product, error) {
	var conds []string
	var args []interface{}

	addCond := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Search != "" {
		args = append(args, filter.Search)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(name ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')", n, n))
	}
	if filter.MinPrice != nil {
		addCond("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		addCond("price <= $%d", *filter.MaxPrice)
	}
	if filter.MinRating != nil {
		addCond("rating >= $%d", *filter.MinRating)
	}
	if filter.MaxRating != nil {
		addCond("rating <= $%d", *filter.MaxRating)
	}

	query := fmt.Sprintf("SELECT %s FROM products", productColumns)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + sortColumn(filter.SortBy) + " " + sortOrder(filter.Order)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := scanProduct(rows, p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner, p *models.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Price, &p.Rating, &p.Category, &p.Description, &p.ImageURL, &p.Stock)
}

func sortColumn(sortBy string) string {
	switch strings.ToLower(sortBy) {
	case "price":
		return "price"
	case "rating":
		return "rating"
	default:
		return "name"
	}
}

func sortOrder(order string) string {
	if strings.EqualFold(order, "desc") {
		return "DESC"
	}
	return "ASC"
}
