// Package store defines the persistence contracts for the storefront.
// Implementations map their driver errors onto the sentinel errors here so
// callers branch with errors.Is and never see driver types.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/quaymarket/storefront/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product already exists")

	ErrOrderNotFound = errors.New("order not found")

	ErrCartNotFound = errors.New("cart not found")
)

// UserStore manages storefront accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateRole(ctx context.Context, userID uuid.UUID, role models.Role) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// SessionStore records session issuance for audit. Nothing in the
// authorization path reads it; the signed token is authoritative.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
	UpdateLastUsed(ctx context.Context, sessionID uuid.UUID) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int, error)
}

// ProductStore manages the catalogue.
type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	Get(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, productID uuid.UUID) error
}

// CartStore manages per-user carts. Put replaces the cart wholesale.
type CartStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Put(ctx context.Context, cart *models.Cart) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// OrderStore manages placed orders.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetByReference(ctx context.Context, reference string) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Order, error)
	ListAll(ctx context.Context) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) error
}
