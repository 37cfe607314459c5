package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/store"
)

type seedFile struct {
	Users    []seedUser    `yaml:"users"`
	Products []seedProduct `yaml:"products"`
}

type seedUser struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
	Role  string `yaml:"role"`
}

type seedProduct struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	PriceCents  int64  `yaml:"price_cents"`
	Currency    string `yaml:"currency"`
	Stock       int32  `yaml:"stock"`
	ImageURL    string `yaml:"image_url"`
}

// seedStores loads users and products from a YAML file. Seeding is
// idempotent: records that already exist are left alone, so the file can
// stay configured across restarts.
func seedStores(ctx context.Context, path string, users store.UserStore, products store.ProductStore) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	now := time.Now()

	for _, su := range seed.Users {
		role, ok := models.ParseRole(su.Role)
		if !ok {
			return fmt.Errorf("seed user %q has invalid role %q", su.Email, su.Role)
		}
		userID, err := uuid.NewV7()
		if err != nil {
			return err
		}
		user := &models.User{
			UserID:    userID,
			Email:     su.Email,
			Name:      su.Name,
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := users.Create(ctx, user); err != nil && !errors.Is(err, store.ErrUserAlreadyExists) {
			return fmt.Errorf("failed to seed user %q: %w", su.Email, err)
		}
	}

	for _, sp := range seed.Products {
		currency := sp.Currency
		if currency == "" {
			currency = "USD"
		}
		productID, err := uuid.NewV7()
		if err != nil {
			return err
		}
		product := &models.Product{
			ProductID:   productID,
			Slug:        sp.Slug,
			Name:        sp.Name,
			Description: sp.Description,
			PriceCents:  sp.PriceCents,
			Currency:    currency,
			Stock:       sp.Stock,
			ImageURL:    sp.ImageURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := products.Create(ctx, product); err != nil && !errors.Is(err, store.ErrProductAlreadyExists) {
			return fmt.Errorf("failed to seed product %q: %w", sp.Slug, err)
		}
	}

	return nil
}
