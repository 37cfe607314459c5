package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/session"
	"github.com/quaymarket/storefront/internal/store"
)

type cartItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type cartResponse struct {
	Items []cartItemPayload `json:"items"`
}

func toCartResponse(cart *models.Cart) cartResponse {
	items := make([]cartItemPayload, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, cartItemPayload{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
		})
	}
	return cartResponse{Items: items}
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	claims := session.ClaimsFromContext(r.Context())

	cart, err := s.carts.Get(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrCartNotFound) {
			writeJSON(w, http.StatusOK, cartResponse{Items: []cartItemPayload{}})
			return
		}
		log.Error().Err(err).Msg("Failed to get cart")
		writeJSONError(w, http.StatusInternalServerError, "failed to get cart")
		return
	}

	writeJSON(w, http.StatusOK, toCartResponse(cart))
}

func (s *Server) putCart(w http.ResponseWriter, r *http.Request) {
	claims := session.ClaimsFromContext(r.Context())

	var req cartResponse
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]models.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid product id")
			return
		}
		if item.Quantity <= 0 {
			writeJSONError(w, http.StatusBadRequest, "quantity must be positive")
			return
		}
		if _, err := s.products.Get(r.Context(), productID); err != nil {
			if errors.Is(err, store.ErrProductNotFound) {
				writeJSONError(w, http.StatusBadRequest, "unknown product in cart")
				return
			}
			log.Error().Err(err).Msg("Failed to validate cart product")
			writeJSONError(w, http.StatusInternalServerError, "failed to update cart")
			return
		}
		items = append(items, models.CartItem{ProductID: productID, Quantity: item.Quantity})
	}

	cart := &models.Cart{UserID: claims.UserID, Items: items}
	if err := s.carts.Put(r.Context(), cart); err != nil {
		log.Error().Err(err).Msg("Failed to put cart")
		writeJSONError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	writeJSON(w, http.StatusOK, toCartResponse(cart))
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	claims := session.ClaimsFromContext(r.Context())

	if err := s.carts.Clear(r.Context(), claims.UserID); err != nil {
		log.Error().Err(err).Msg("Failed to clear cart")
		writeJSONError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
