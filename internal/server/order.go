package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/session"
	"github.com/quaymarket/storefront/internal/store"
)

type orderItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitCents int64  `json:"unit_cents"`
	Quantity  int32  `json:"quantity"`
}

type orderResponse struct {
	Reference  string              `json:"reference"`
	Status     string              `json:"status"`
	TotalCents int64               `json:"total_cents"`
	Currency   string              `json:"currency"`
	Items      []orderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"created_at"`
}

func toOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			UnitCents: item.UnitCents,
			Quantity:  item.Quantity,
		})
	}
	return orderResponse{
		Reference:  order.Reference,
		Status:     string(order.Status),
		TotalCents: order.TotalCents,
		Currency:   order.Currency,
		Items:      items,
		CreatedAt:  order.CreatedAt,
	}
}

// createOrder checks out the caller's cart: line items are priced against
// the live catalogue, the order is recorded, and the cart is cleared.
func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := session.ClaimsFromContext(ctx)

	cart, err := s.carts.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrCartNotFound) {
			writeJSONError(w, http.StatusBadRequest, "cart is empty")
			return
		}
		log.Error().Err(err).Msg("Failed to get cart for checkout")
		writeJSONError(w, http.StatusInternalServerError, "failed to create order")
		return
	}
	if len(cart.Items) == 0 {
		writeJSONError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	var (
		items    []models.OrderItem
		total    int64
		currency string
	)
	for _, item := range cart.Items {
		product, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrProductNotFound) {
				writeJSONError(w, http.StatusConflict, "product no longer available")
				return
			}
			log.Error().Err(err).Msg("Failed to price cart item")
			writeJSONError(w, http.StatusInternalServerError, "failed to create order")
			return
		}
		items = append(items, models.OrderItem{
			ProductID: product.ProductID,
			Name:      product.Name,
			UnitCents: product.PriceCents,
			Quantity:  item.Quantity,
		})
		total += product.PriceCents * int64(item.Quantity)
		currency = product.Currency
	}

	orderID, err := uuid.NewV7()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to create order")
		return
	}
	reference, err := models.NewOrderReference()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate order reference")
		writeJSONError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	now := time.Now()
	order := &models.Order{
		OrderID:    orderID,
		Reference:  reference,
		UserID:     claims.UserID,
		Status:     models.OrderStatusPending,
		TotalCents: total,
		Currency:   currency,
		Items:      items,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		log.Error().Err(err).Msg("Failed to create order")
		writeJSONError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	if err := s.carts.Clear(ctx, claims.UserID); err != nil {
		log.Warn().Err(err).Msg("Failed to clear cart after checkout")
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	claims := session.ClaimsFromContext(r.Context())

	orders, err := s.orders.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders")
		writeJSONError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderResponse(order))
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": out})
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	claims := session.ClaimsFromContext(r.Context())

	order, err := s.orders.GetByReference(r.Context(), r.PathValue("reference"))
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			writeJSONError(w, http.StatusNotFound, "order not found")
			return
		}
		log.Error().Err(err).Msg("Failed to get order")
		writeJSONError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	// Owners see their own orders; admins see all.
	if order.UserID != claims.UserID && claims.Role != models.RoleAdmin {
		writeJSONError(w, http.StatusNotFound, "order not found")
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// listAllOrders is the admin order report. It lives on /api/reports/orders
// rather than the admin prefix, so the role guard is its only protection.
func (s *Server) listAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.ListAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list all orders")
		writeJSONError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderResponse(order))
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": out})
}
