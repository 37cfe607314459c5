package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/store"
)

type productResponse struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	Stock       int32  `json:"stock"`
	ImageURL    string `json:"image_url"`
}

func toProductResponse(p *models.Product) productResponse {
	return productResponse{
		ID:          p.ProductID.String(),
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Currency:    p.Currency,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
	}
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		writeJSONError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": out})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.products.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			writeJSONError(w, http.StatusNotFound, "product not found")
			return
		}
		log.Error().Err(err).Msg("Failed to get product")
		writeJSONError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

type productRequest struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	Stock       int32  `json:"stock"`
	ImageURL    string `json:"image_url"`
}

func (p *productRequest) validate() string {
	if p.Slug == "" {
		return "slug is required"
	}
	if p.Name == "" {
		return "name is required"
	}
	if p.PriceCents < 0 {
		return "price_cents must not be negative"
	}
	if p.Currency == "" {
		return "currency is required"
	}
	return ""
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSONError(w, http.StatusBadRequest, msg)
		return
	}

	productID, err := uuid.NewV7()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	now := time.Now()
	product := &models.Product{
		ProductID:   productID,
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(r.Context(), product); err != nil {
		if errors.Is(err, store.ErrProductAlreadyExists) {
			writeJSONError(w, http.StatusConflict, "product already exists")
			return
		}
		log.Error().Err(err).Msg("Failed to create product")
		writeJSONError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSONError(w, http.StatusBadRequest, msg)
		return
	}

	existing, err := s.products.Get(r.Context(), productID)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			writeJSONError(w, http.StatusNotFound, "product not found")
			return
		}
		log.Error().Err(err).Msg("Failed to get product")
		writeJSONError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	existing.Slug = req.Slug
	existing.Name = req.Name
	existing.Description = req.Description
	existing.PriceCents = req.PriceCents
	existing.Currency = req.Currency
	existing.Stock = req.Stock
	existing.ImageURL = req.ImageURL

	if err := s.products.Update(r.Context(), existing); err != nil {
		if errors.Is(err, store.ErrProductAlreadyExists) {
			writeJSONError(w, http.StatusConflict, "slug already in use")
			return
		}
		log.Error().Err(err).Msg("Failed to update product")
		writeJSONError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(existing))
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := s.products.Delete(r.Context(), productID); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			writeJSONError(w, http.StatusNotFound, "product not found")
			return
		}
		log.Error().Err(err).Msg("Failed to delete product")
		writeJSONError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
