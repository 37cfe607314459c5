// Package server implements the storefront HTTP API and pages: the
// catalogue, cart, order and account endpoints the authorization gates
// protect.
package server

import (
	"net/http"

	"github.com/quaymarket/storefront/internal/authz"
	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/session"
	"github.com/quaymarket/storefront/internal/store"
)

// Server holds the stores and session manager the handlers depend on.
type Server struct {
	users    store.UserStore
	products store.ProductStore
	carts    store.CartStore
	orders   store.OrderStore
	sessions *session.Manager

	// devIssuer enables the development sign-in endpoint. Never enable
	// in production; real credential issuance lives outside this service.
	devIssuer bool
}

// Config carries the server's collaborators.
type Config struct {
	Users     store.UserStore
	Products  store.ProductStore
	Carts     store.CartStore
	Orders    store.OrderStore
	Sessions  *session.Manager
	DevIssuer bool
}

// New creates the storefront server.
func New(cfg Config) *Server {
	return &Server{
		users:     cfg.Users,
		products:  cfg.Products,
		carts:     cfg.Carts,
		orders:    cfg.Orders,
		sessions:  cfg.Sessions,
		devIssuer: cfg.DevIssuer,
	}
}

// Register wires every route into the mux. The guard wrapping here is
// deliberate defense in depth: admin data endpoints re-check the role even
// though the edge gate already covers the /api/admin/ prefix, and the
// order report endpoint sits on a non-admin path the edge rules do not
// reach.
func (s *Server) Register(mux *http.ServeMux) {
	// Public catalogue reads
	mux.Handle("GET /api/products", http.HandlerFunc(s.listProducts))
	mux.Handle("GET /api/products/{slug}", http.HandlerFunc(s.getProduct))

	// Authenticated storefront endpoints
	mux.Handle("GET /api/me", authz.RequireAuth(s.sessions, http.HandlerFunc(s.me)))
	mux.Handle("GET /api/cart", authz.RequireAuth(s.sessions, http.HandlerFunc(s.getCart)))
	mux.Handle("PUT /api/cart", authz.RequireAuth(s.sessions, http.HandlerFunc(s.putCart)))
	mux.Handle("DELETE /api/cart", authz.RequireAuth(s.sessions, http.HandlerFunc(s.clearCart)))
	mux.Handle("POST /api/orders", authz.RequireAuth(s.sessions, http.HandlerFunc(s.createOrder)))
	mux.Handle("GET /api/orders", authz.RequireAuth(s.sessions, http.HandlerFunc(s.listOrders)))
	mux.Handle("GET /api/orders/{reference}", authz.RequireAuth(s.sessions, http.HandlerFunc(s.getOrder)))

	// Admin endpoints under the admin API prefix
	mux.Handle("POST /api/admin/products", authz.RequireRole(s.sessions, models.RoleAdmin, http.HandlerFunc(s.createProduct)))
	mux.Handle("PUT /api/admin/products/{id}", authz.RequireRole(s.sessions, models.RoleAdmin, http.HandlerFunc(s.updateProduct)))
	mux.Handle("DELETE /api/admin/products/{id}", authz.RequireRole(s.sessions, models.RoleAdmin, http.HandlerFunc(s.deleteProduct)))
	mux.Handle("GET /api/admin/users", authz.RequireRole(s.sessions, models.RoleAdmin, http.HandlerFunc(s.listUsers)))
	mux.Handle("PUT /api/admin/users/{id}/role", authz.RequireRole(s.sessions, models.RoleAdmin, http.HandlerFunc(s.updateUserRole)))

	// Admin data on a non-admin path prefix; only the guard protects it.
	mux.Handle("GET /api/reports/orders", authz.RequireRole(s.sessions, models.RoleAdmin, http.HandlerFunc(s.listAllOrders)))

	// Session endpoints
	mux.Handle("GET /api/auth/session", http.HandlerFunc(s.currentSession))
	mux.Handle("POST /api/auth/signout", http.HandlerFunc(s.signOut))
	if s.devIssuer {
		mux.Handle("POST /api/auth/dev-signin", http.HandlerFunc(s.devSignIn))
	}

	s.registerPages(mux)
}
