package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/session"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFiles, "templates/*.html"))

type pageData struct {
	Title      string
	User       *session.Claims
	IsAdmin    bool
	RedirectTo string
	Products   []*models.Product
}

// registerPages wires the HTML pages. The edge gate middleware runs before
// the mux, so by the time these handlers execute the request has already
// passed the route's classification; handlers only shape the view.
func (s *Server) registerPages(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.homePage)
	mux.HandleFunc("GET /signin", s.signInPage)
	mux.HandleFunc("GET /account", s.accountPage)
	mux.HandleFunc("GET /admin", s.adminPage)
	mux.HandleFunc("GET /admin/", s.adminPage)
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Failed to render page")
	}
}

func (s *Server) homePage(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products for home page")
	}

	claims := s.optionalClaims(r)
	s.renderPage(w, "home.html", pageData{
		Title:    "Storefront",
		User:     claims,
		IsAdmin:  claims != nil && claims.Role == models.RoleAdmin,
		Products: products,
	})
}

func (s *Server) signInPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "signin.html", pageData{
		Title:      "Sign in",
		RedirectTo: r.URL.Query().Get("redirectTo"),
	})
}

func (s *Server) accountPage(w http.ResponseWriter, r *http.Request) {
	claims := s.optionalClaims(r)
	s.renderPage(w, "account.html", pageData{
		Title:   "Your account",
		User:    claims,
		IsAdmin: claims != nil && claims.Role == models.RoleAdmin,
	})
}

func (s *Server) adminPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "admin.html", pageData{
		Title:   "Admin",
		User:    s.optionalClaims(r),
		IsAdmin: true,
	})
}

// optionalClaims returns claims when the edge gate attached them, falling
// back to resolving the request directly. Pages never fail on a missing
// session; the edge gate already made the access decision.
func (s *Server) optionalClaims(r *http.Request) *session.Claims {
	if claims := session.ClaimsFromContext(r.Context()); claims != nil {
		return claims
	}
	claims, err := s.sessions.Resolve(r)
	if err != nil {
		return nil
	}
	return claims
}
