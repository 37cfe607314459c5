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

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/store"
)

// CartStore implements store.CartStore using PostgreSQL.
// Cart items are stored as a JSONB document; the cart is always replaced
// wholesale so there is no partial-update path to keep consistent.
type CartStore struct {
	pool *pgxpool.Pool
}

// NewCartStore creates a new PostgreSQL-backed cart store.
func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

// Get retrieves a user's cart.
func (s *CartStore) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	query := `SELECT user_id, items, updated_at FROM carts WHERE user_id = $1`

	var cart models.Cart
	var items []byte
	err := s.pool.QueryRow(ctx, query, userID).Scan(&cart.UserID, &items, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", mapError(err))
	}

	if err := json.Unmarshal(items, &cart.Items); err != nil {
		return nil, fmt.Errorf("failed to decode cart items: %w", err)
	}

	return &cart, nil
}

// Put replaces a user's cart wholesale.
func (s *CartStore) Put(ctx context.Context, cart *models.Cart) error {
	items, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("failed to encode cart items: %w", err)
	}

	query := `
		INSERT INTO carts (user_id, items, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET items = $2, updated_at = $3
	`

	if _, err := s.pool.Exec(ctx, query, cart.UserID, items, time.Now()); err != nil {
		return fmt.Errorf("failed to put cart: %w", mapError(err))
	}

	return nil
}

// Clear removes a user's cart.
func (s *CartStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", mapError(err))
	}
	return nil
}
