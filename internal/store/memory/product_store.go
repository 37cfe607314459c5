package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/store"
)

// ProductStore implements store.ProductStore using in-memory storage.
type ProductStore struct {
	mu sync.RWMutex

	products map[uuid.UUID]*models.Product
	bySlug   map[string]uuid.UUID
}

// NewProductStore creates a new in-memory product store.
func NewProductStore() *ProductStore {
	return &ProductStore{
		products: make(map[uuid.UUID]*models.Product),
		bySlug:   make(map[string]uuid.UUID),
	}
}

// Create adds a product to the catalogue.
func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySlug[product.Slug]; exists {
		return store.ErrProductAlreadyExists
	}
	if _, exists := s.products[product.ProductID]; exists {
		return store.ErrProductAlreadyExists
	}

	clone := *product
	s.products[product.ProductID] = &clone
	s.bySlug[product.Slug] = product.ProductID
	return nil
}

// Get retrieves a product by ID.
func (s *ProductStore) Get(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[productID]
	if !exists {
		return nil, store.ErrProductNotFound
	}

	clone := *product
	return &clone, nil
}

// GetBySlug retrieves a product by its URL slug.
func (s *ProductStore) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	productID, exists := s.bySlug[slug]
	if !exists {
		return nil, store.ErrProductNotFound
	}

	clone := *s.products[productID]
	return &clone, nil
}

// List returns the catalogue ordered by slug.
func (s *ProductStore) List(ctx context.Context) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]*models.Product, 0, len(s.products))
	for _, product := range s.products {
		clone := *product
		products = append(products, &clone)
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].Slug < products[j].Slug
	})
	return products, nil
}

// Update replaces a product's mutable fields.
func (s *ProductStore) Update(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.products[product.ProductID]
	if !exists {
		return store.ErrProductNotFound
	}

	// Slug changes must keep the index consistent.
	if existing.Slug != product.Slug {
		if _, taken := s.bySlug[product.Slug]; taken {
			return store.ErrProductAlreadyExists
		}
		delete(s.bySlug, existing.Slug)
		s.bySlug[product.Slug] = product.ProductID
	}

	clone := *product
	clone.UpdatedAt = time.Now()
	s.products[product.ProductID] = &clone
	return nil
}

// Delete removes a product from the catalogue.
func (s *ProductStore) Delete(ctx context.Context, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[productID]
	if !exists {
		return store.ErrProductNotFound
	}

	delete(s.bySlug, product.Slug)
	delete(s.products, productID)
	return nil
}
