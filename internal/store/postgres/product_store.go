package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/store"
)

// ProductStore implements store.ProductStore using PostgreSQL.
type ProductStore struct {
	pool *pgxpool.Pool
}

// NewProductStore creates a new PostgreSQL-backed product store.
func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

const productColumns = `product_id, slug, name, description, price_cents, currency, stock, image_url, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ProductID,
		&p.Slug,
		&p.Name,
		&p.Description,
		&p.PriceCents,
		&p.Currency,
		&p.Stock,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create adds a product to the catalogue.
func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (
			product_id, slug, name, description, price_cents, currency,
			stock, image_url, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := s.pool.Exec(ctx, query,
		product.ProductID,
		product.Slug,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Currency,
		product.Stock,
		product.ImageURL,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", mapError(err))
	}

	return nil
}

// Get retrieves a product by ID.
func (s *ProductStore) Get(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1`

	product, err := scanProduct(s.pool.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", mapError(err))
	}

	return product, nil
}

// GetBySlug retrieves a product by its URL slug.
func (s *ProductStore) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	product, err := scanProduct(s.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by slug: %w", mapError(err))
	}

	return product, nil
}

// List returns the catalogue ordered by slug.
func (s *ProductStore) List(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY slug`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", mapError(err))
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

// Update replaces a product's mutable fields.
func (s *ProductStore) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET slug = $2, name = $3, description = $4, price_cents = $5,
			currency = $6, stock = $7, image_url = $8, updated_at = $9
		WHERE product_id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		product.ProductID,
		product.Slug,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Currency,
		product.Stock,
		product.ImageURL,
		time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to update product: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the catalogue.
func (s *ProductStore) Delete(ctx context.Context, productID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrProductNotFound
	}

	return nil
}
