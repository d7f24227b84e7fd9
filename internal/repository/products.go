package repository

import (
	"context"
	"errors"
	"time"

	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/metrics"
	"ecommerce/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductsRepo хранилище товаров в PostgreSQL
type ProductsRepo struct {
	pool    *pgxpool.Pool
	metrics *metrics.Metrics
}

// NewProductsRepo создает хранилище товаров
func NewProductsRepo(connStr string, m *metrics.Metrics) (*ProductsRepo, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to connect to products database")
	}
	return &ProductsRepo{pool: pool, metrics: m}, nil
}

// Close закрывает подключение
func (r *ProductsRepo) Close() {
	r.pool.Close()
}

// Pool доступ к пулу (для миграций и health-проверок)
func (r *ProductsRepo) Pool() *pgxpool.Pool {
	return r.pool
}

// AddProduct сохраняет новый товар
func (r *ProductsRepo) AddProduct(ctx context.Context, product *model.Product) error {
	defer observeQuery(r.metrics, "products_add", time.Now())

	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (product_id, product_name, category, unit_price, quantity_in_stock)
		VALUES ($1,$2,$3,$4,$5)`,
		product.ProductID, product.ProductName, product.Category, product.UnitPrice, product.QuantityInStock)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to insert product")
	}
	return nil
}

// UpdateProduct обновляет товар целиком
func (r *ProductsRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	defer observeQuery(r.metrics, "products_update", time.Now())

	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET product_name = $2, category = $3, unit_price = $4, quantity_in_stock = $5
		WHERE product_id = $1`,
		product.ProductID, product.ProductName, product.Category, product.UnitPrice, product.QuantityInStock)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to update product")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

// DeleteProduct удаляет товар
func (r *ProductsRepo) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	defer observeQuery(r.metrics, "products_delete", time.Now())

	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE product_id = $1`, productID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to delete product")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

// GetProductByID загружает товар по идентификатору
func (r *ProductsRepo) GetProductByID(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	defer observeQuery(r.metrics, "products_get", time.Now())

	var p model.Product
	err := r.pool.QueryRow(ctx, `
		SELECT product_id, product_name, category, unit_price, quantity_in_stock
		FROM products WHERE product_id = $1`, productID).
		Scan(&p.ProductID, &p.ProductName, &p.Category, &p.UnitPrice, &p.QuantityInStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to load product")
	}
	return &p, nil
}

// ListProducts загружает все товары
func (r *ProductsRepo) ListProducts(ctx context.Context) ([]*model.Product, error) {
	defer observeQuery(r.metrics, "products_list", time.Now())

	rows, err := r.pool.Query(ctx, `
		SELECT product_id, product_name, category, unit_price, quantity_in_stock
		FROM products ORDER BY product_name`)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to load products")
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.Category, &p.UnitPrice, &p.QuantityInStock); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to scan product row")
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "error iterating product rows")
	}

	return products, nil
}
