package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/store"
)

// OrderStore implements store.OrderStore using PostgreSQL.
// Line items are denormalized into a JSONB column; orders are immutable
// apart from status transitions.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore creates a new PostgreSQL-backed order store.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const orderColumns = `order_id, reference, user_id, status, total_cents, currency, items, created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	var status string
	var items []byte
	err := row.Scan(
		&order.OrderID,
		&order.Reference,
		&order.UserID,
		&status,
		&order.TotalCents,
		&order.Currency,
		&items,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Status = models.OrderStatus(status)
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	return &order, nil
}

// Create records a placed order.
func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}

	query := `
		INSERT INTO orders (
			order_id, reference, user_id, status, total_cents, currency,
			items, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err = s.pool.Exec(ctx, query,
		order.OrderID,
		order.Reference,
		order.UserID,
		string(order.Status),
		order.TotalCents,
		order.Currency,
		items,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", mapError(err))
	}

	log.Debug().
		Str("order_id", order.OrderID.String()).
		Str("reference", order.Reference).
		Msg("Created order")

	return nil
}

// GetByReference retrieves an order by its human-facing reference.
func (s *OrderStore) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE reference = $1`

	order, err := scanOrder(s.pool.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", mapError(err))
	}

	return order, nil
}

// ListByUser returns a user's orders, newest first.
func (s *OrderStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return s.list(ctx, query, userID)
}

// ListAll returns every order, newest first.
func (s *OrderStore) ListAll(ctx context.Context) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return s.list(ctx, query)
}

func (s *OrderStore) list(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", mapError(err))
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

// UpdateStatus moves an order to a new lifecycle status.
func (s *OrderStore) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE order_id = $1`

	tag, err := s.pool.Exec(ctx, query, orderID, string(status), time.Now())
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrOrderNotFound
	}

	return nil
}
