package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"veneto-api/internal/domain"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAlreadyExists = errors.New("order with this id already exists")
)

// OrderRepository defines the interface for order data access.
// Listings are sorted by created_at descending; a limit of 0 means no limit.
type OrderRepository interface {
	// Create inserts the order and fails with ErrOrderAlreadyExists if the id is taken
	Create(ctx context.Context, order *domain.Order) error
	// Save inserts the order or fully replaces the one with the same id
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus, skip, limit int) ([]*domain.Order, error)
	ListAll(ctx context.Context, skip, limit int) ([]*domain.Order, error)
	// UpdateStatus sets the status and updated_at of one order and fails
	// with ErrOrderNotFound when no order matched
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates an OrderRepository backed by PostgreSQL
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, customer_name, customer_phone, customer_address, items, total_price,
		status, delivery_type, payment_method, created_at, updated_at, notes`

// Create inserts a new order using parameterized queries
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	args, err := orderArgs(order)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrOrderAlreadyExists
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// Save upserts an order keyed by id
func (r *orderRepository) Save(ctx context.Context, order *domain.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE
		SET customer_name = EXCLUDED.customer_name, customer_phone = EXCLUDED.customer_phone,
		    customer_address = EXCLUDED.customer_address, items = EXCLUDED.items,
		    total_price = EXCLUDED.total_price, status = EXCLUDED.status,
		    delivery_type = EXCLUDED.delivery_type, payment_method = EXCLUDED.payment_method,
		    created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at, notes = EXCLUDED.notes`

	args, err := orderArgs(order)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	return nil
}

// FindByID retrieves an order by ID
func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	return order, nil
}

// ListByStatus retrieves the orders in one status, newest first
func (r *orderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus, skip, limit int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE status = $1
		ORDER BY created_at DESC, id ASC
		LIMIT $2 OFFSET $3`

	return r.list(ctx, query, string(status), limitArg(limit), skip)
}

// ListAll retrieves every order, newest first
func (r *orderRepository) ListAll(ctx context.Context, skip, limit int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		ORDER BY created_at DESC, id ASC
		LIMIT $1 OFFSET $2`

	return r.list(ctx, query, limitArg(limit), skip)
}

// UpdateStatus performs a partial update of status and updated_at
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) error {
	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, string(status), domain.Timestamp(updatedAt))
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

func orderArgs(order *domain.Order) ([]interface{}, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items of order %s: %w", order.ID, err)
	}

	return []interface{}{
		order.ID,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerAddress,
		items,
		order.TotalPrice,
		string(order.Status),
		order.DeliveryType,
		order.PaymentMethod,
		domain.Timestamp(order.CreatedAt),
		domain.Timestamp(order.UpdatedAt),
		order.Notes,
	}, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order  domain.Order
		items  []byte
		status string
	)

	err := row.Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerPhone,
		&order.CustomerAddress,
		&items,
		&order.TotalPrice,
		&status,
		&order.DeliveryType,
		&order.PaymentMethod,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Notes,
	)
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatus(status)
	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items of order %s: %w", order.ID, err)
	}

	return &order, nil
}
