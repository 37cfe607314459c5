package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds a user's in-progress selections. One cart per user; replaced
// wholesale on update rather than patched item by item.
type Cart struct {
	UserID    uuid.UUID
	Items     []CartItem
	UpdatedAt time.Time
}

// CartItem references a catalogue product by ID only; pricing is resolved
// at checkout time against the live catalogue.
type CartItem struct {
	ProductID uuid.UUID
	Quantity  int32
}
