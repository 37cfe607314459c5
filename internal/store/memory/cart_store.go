package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/store"
)

// CartStore implements store.CartStore using in-memory storage.
type CartStore struct {
	mu sync.RWMutex

	carts map[uuid.UUID]*models.Cart
}

// NewCartStore creates a new in-memory cart store.
func NewCartStore() *CartStore {
	return &CartStore{
		carts: make(map[uuid.UUID]*models.Cart),
	}
}

// Get retrieves a user's cart.
func (s *CartStore) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, exists := s.carts[userID]
	if !exists {
		return nil, store.ErrCartNotFound
	}

	clone := *cart
	clone.Items = slices.Clone(cart.Items)
	return &clone, nil
}

// Put replaces a user's cart wholesale.
func (s *CartStore) Put(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *cart
	clone.Items = slices.Clone(cart.Items)
	clone.UpdatedAt = time.Now()
	s.carts[cart.UserID] = &clone
	return nil
}

// Clear removes a user's cart.
func (s *CartStore) Clear(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
	return nil
}
