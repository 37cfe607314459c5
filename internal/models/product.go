package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalogue entry. Prices are stored in minor units (cents)
// to avoid floating point in money arithmetic.
type Product struct {
	ProductID   uuid.UUID // UUIDv7
	Slug        string    // URL-safe identifier, unique
	Name        string
	Description string
	PriceCents  int64
	Currency    string // ISO 4217, e.g. "USD"
	Stock       int32
	ImageURL    string

	CreatedAt time.Time
	UpdatedAt time.Time
}
