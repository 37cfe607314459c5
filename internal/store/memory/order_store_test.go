package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/store"
)

func newTestOrder(t *testing.T, userID uuid.UUID, createdAt time.Time) *models.Order {
	orderID, err := uuid.NewV7()
	require.NoError(t, err)
	productID, err := uuid.NewV7()
	require.NoError(t, err)
	reference, err := models.NewOrderReference()
	require.NoError(t, err)
	return &models.Order{
		OrderID:    orderID,
		Reference:  reference,
		UserID:     userID,
		Status:     models.OrderStatusPending,
		TotalCents: 1999,
		Currency:   "USD",
		Items: []models.OrderItem{
			{ProductID: productID, Name: "Test Product", UnitCents: 1999, Quantity: 1},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestOrderStore_createAndGetByReference(t *testing.T) {
	ctx := context.Background()
	s := NewOrderStore()

	userID, err := uuid.NewV7()
	require.NoError(t, err)
	order := newTestOrder(t, userID, time.Now())

	require.NoError(t, s.Create(ctx, order))

	got, err := s.GetByReference(ctx, order.Reference)
	require.NoError(t, err)
	require.Equal(t, order.OrderID, got.OrderID)
	require.Len(t, got.Items, 1)

	_, err = s.GetByReference(ctx, "no-such-reference")
	require.ErrorIs(t, err, store.ErrOrderNotFound)
}

func TestOrderStore_listByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewOrderStore()

	userID, err := uuid.NewV7()
	require.NoError(t, err)
	otherID, err := uuid.NewV7()
	require.NoError(t, err)

	now := time.Now()
	older := newTestOrder(t, userID, now.Add(-time.Hour))
	newer := newTestOrder(t, userID, now)
	other := newTestOrder(t, otherID, now)

	require.NoError(t, s.Create(ctx, older))
	require.NoError(t, s.Create(ctx, newer))
	require.NoError(t, s.Create(ctx, other))

	orders, err := s.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, newer.OrderID, orders[0].OrderID)
	require.Equal(t, older.OrderID, orders[1].OrderID)
}

func TestOrderStore_listAll(t *testing.T) {
	ctx := context.Background()
	s := NewOrderStore()

	userID, err := uuid.NewV7()
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, newTestOrder(t, userID, time.Now())))
	require.NoError(t, s.Create(ctx, newTestOrder(t, userID, time.Now().Add(-time.Minute))))

	orders, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.True(t, orders[0].CreatedAt.After(orders[1].CreatedAt))
}

func TestOrderStore_updateStatus(t *testing.T) {
	ctx := context.Background()
	s := NewOrderStore()

	userID, err := uuid.NewV7()
	require.NoError(t, err)
	order := newTestOrder(t, userID, time.Now())
	require.NoError(t, s.Create(ctx, order))

	require.NoError(t, s.UpdateStatus(ctx, order.OrderID, models.OrderStatusPaid))

	got, err := s.GetByReference(ctx, order.Reference)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, got.Status)

	missingID, err := uuid.NewV7()
	require.NoError(t, err)
	require.ErrorIs(t, s.UpdateStatus(ctx, missingID, models.OrderStatusPaid), store.ErrOrderNotFound)
}

func TestOrderStore_cloneOnRead(t *testing.T) {
	ctx := context.Background()
	s := NewOrderStore()

	userID, err := uuid.NewV7()
	require.NoError(t, err)
	order := newTestOrder(t, userID, time.Now())
	require.NoError(t, s.Create(ctx, order))

	got, err := s.GetByReference(ctx, order.Reference)
	require.NoError(t, err)
	got.Items[0].Quantity = 99

	again, err := s.GetByReference(ctx, order.Reference)
	require.NoError(t, err)
	require.Equal(t, int32(1), again.Items[0].Quantity)
}
