package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/store"
)

// OrderStore implements store.OrderStore using in-memory storage.
type OrderStore struct {
	mu sync.RWMutex

	orders      map[uuid.UUID]*models.Order
	byReference map[string]uuid.UUID
	byUser      map[uuid.UUID][]uuid.UUID
}

// NewOrderStore creates a new in-memory order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:      make(map[uuid.UUID]*models.Order),
		byReference: make(map[string]uuid.UUID),
		byUser:      make(map[uuid.UUID][]uuid.UUID),
	}
}

func cloneOrder(order *models.Order) *models.Order {
	clone := *order
	clone.Items = slices.Clone(order.Items)
	return &clone
}

// Create records a placed order.
func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[order.OrderID] = cloneOrder(order)
	s.byReference[order.Reference] = order.OrderID
	s.byUser[order.UserID] = append(s.byUser[order.UserID], order.OrderID)
	return nil
}

// GetByReference retrieves an order by its human-facing reference.
func (s *OrderStore) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orderID, exists := s.byReference[reference]
	if !exists {
		return nil, store.ErrOrderNotFound
	}

	return cloneOrder(s.orders[orderID]), nil
}

// ListByUser returns a user's orders, newest first.
func (s *OrderStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orderIDs := s.byUser[userID]
	orders := make([]*models.Order, 0, len(orderIDs))
	for _, orderID := range orderIDs {
		orders = append(orders, cloneOrder(s.orders[orderID]))
	}

	sortNewestFirst(orders)
	return orders, nil
}

// ListAll returns every order, newest first.
func (s *OrderStore) ListAll(ctx context.Context) ([]*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]*models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, cloneOrder(order))
	}

	sortNewestFirst(orders)
	return orders, nil
}

// UpdateStatus moves an order to a new lifecycle status.
func (s *OrderStore) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.orders[orderID]
	if !exists {
		return store.ErrOrderNotFound
	}

	order.Status = status
	order.UpdatedAt = time.Now()
	return nil
}

func sortNewestFirst(orders []*models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
