package models

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// OrderStatus tracks an order through its lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a placed order. Reference is the human-facing identifier shown
// in confirmation emails and support tickets; OrderID stays internal.
type Order struct {
	OrderID    uuid.UUID // UUIDv7
	Reference  string    // base58, unique
	UserID     uuid.UUID
	Status     OrderStatus
	TotalCents int64
	Currency   string
	Items      []OrderItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem is a line item, denormalized so the order survives later
// catalogue edits.
type OrderItem struct {
	ProductID uuid.UUID
	Name      string
	UnitCents int64
	Quantity  int32
}

// NewOrderReference generates a random base58 order reference.
func NewOrderReference() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate order reference: %w", err)
	}
	return base58.Encode(buf), nil
}
