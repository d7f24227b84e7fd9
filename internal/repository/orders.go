package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/metrics"
	"ecommerce/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier поверхность пула нужная методам хранилища
// *pgxpool.Pool реализует ее целиком
type querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OrdersRepo хранилище заказов в PostgreSQL
type OrdersRepo struct {
	pool    *pgxpool.Pool
	db      querier
	metrics *metrics.Metrics
}

// NewOrdersRepo создает хранилище заказов
func NewOrdersRepo(connStr string, m *metrics.Metrics) (*OrdersRepo, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to connect to orders database")
	}
	return &OrdersRepo{pool: pool, db: pool, metrics: m}, nil
}

// Close закрывает подключение
func (r *OrdersRepo) Close() {
	r.pool.Close()
}

// Pool доступ к пулу (для миграций и health-проверок)
func (r *OrdersRepo) Pool() *pgxpool.Pool {
	return r.pool
}

// AddOrder сохраняет заказ вместе с позициями в одной транзакции
func (r *OrdersRepo) AddOrder(ctx context.Context, order *model.Order) error {
	defer observeQuery(r.metrics, "orders_add", time.Now())

	if order == nil {
		return apperrors.New(apperrors.ErrorTypeValidation, "order is nil")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to begin order transaction")
	}
	// Rollback после успешного Commit безвреден
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (order_id, user_id, order_date, total_bill)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (order_id) DO NOTHING`,
		order.OrderID, order.UserID, order.OrderDate, order.TotalBill)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to insert order")
	}

	for _, item := range order.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, unit_price, quantity, total_price)
			VALUES ($1,$2,$3,$4,$5)`,
			order.OrderID, item.ProductID, item.UnitPrice, item.Quantity, item.TotalPrice)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to insert order item")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to commit order transaction")
	}
	return nil
}

// UpdateOrder перезаписывает заказ: шапка обновляется, позиции пересоздаются
func (r *OrdersRepo) UpdateOrder(ctx context.Context, order *model.Order) error {
	defer observeQuery(r.metrics, "orders_update", time.Now())

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to begin order transaction")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE orders SET user_id = $2, order_date = $3, total_bill = $4
		WHERE order_id = $1`,
		order.OrderID, order.UserID, order.OrderDate, order.TotalBill)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to update order")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrOrderNotFound
	}

	_, err = tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.OrderID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to clear order items")
	}

	for _, item := range order.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, unit_price, quantity, total_price)
			VALUES ($1,$2,$3,$4,$5)`,
			order.OrderID, item.ProductID, item.UnitPrice, item.Quantity, item.TotalPrice)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to insert order item")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to commit order transaction")
	}
	return nil
}

// DeleteOrder удаляет заказ, позиции уходят каскадом
func (r *OrdersRepo) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	defer observeQuery(r.metrics, "orders_delete", time.Now())

	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to delete order")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrOrderNotFound
	}
	return nil
}

// GetOrderByID загружает заказ с позициями одним запросом
func (r *OrdersRepo) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	defer observeQuery(r.metrics, "orders_get", time.Now())

	query := `
	SELECT
	  o.order_id, o.user_id, o.order_date, o.total_bill,
	  COALESCE(json_agg(json_build_object(
	    'product_id', i.product_id,
	    'unit_price', i.unit_price,
	    'quantity', i.quantity,
	    'total_price', i.total_price
	  )) FILTER (WHERE i.product_id IS NOT NULL), '[]')
	FROM orders o
	LEFT JOIN order_items i ON i.order_id = o.order_id
	WHERE o.order_id = $1
	GROUP BY o.order_id
	`

	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to load order")
	}
	return order, nil
}

// GetOrdersByUserID загружает все заказы пользователя
func (r *OrdersRepo) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Order, error) {
	defer observeQuery(r.metrics, "orders_get_by_user", time.Now())

	query := `
	SELECT
	  o.order_id, o.user_id, o.order_date, o.total_bill,
	  COALESCE(json_agg(json_build_object(
	    'product_id', i.product_id,
	    'unit_price', i.unit_price,
	    'quantity', i.quantity,
	    'total_price', i.total_price
	  )) FILTER (WHERE i.product_id IS NOT NULL), '[]')
	FROM orders o
	LEFT JOIN order_items i ON i.order_id = o.order_id
	WHERE o.user_id = $1
	GROUP BY o.order_id
	ORDER BY o.order_date DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to load user orders")
	}
	defer rows.Close()

	var orders []*model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "failed to scan order row")
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeDatabase, "error iterating order rows")
	}

	return orders, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var itemsJSON []byte

	if err := row.Scan(&o.OrderID, &o.UserID, &o.OrderDate, &o.TotalBill, &itemsJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, err
	}
	return &o, nil
}
