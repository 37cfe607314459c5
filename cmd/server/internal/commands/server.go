package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"filippo.io/csrf"
	"github.com/rs/cors"

	"github.com/quaymarket/storefront/internal/authz"
	"github.com/quaymarket/storefront/internal/httpx"
	"github.com/quaymarket/storefront/internal/logger"
	"github.com/quaymarket/storefront/internal/server"
	"github.com/quaymarket/storefront/internal/session"
	"github.com/quaymarket/storefront/internal/store"
	memorystore "github.com/quaymarket/storefront/internal/store/memory"
	postgresstore "github.com/quaymarket/storefront/internal/store/postgres"
)

type ServerCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"STOREFRONT_LISTEN"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:8080" env:"STOREFRONT_CORS_ORIGINS"`

	// Session configuration
	SessionSecret string        `help:"secret key for HMAC signing of session tokens" env:"STOREFRONT_SESSION_SECRET"`
	SessionTTL    time.Duration `help:"session TTL" default:"168h" env:"STOREFRONT_SESSION_TTL"`

	// Development modes
	DevIssuer   bool   `help:"enable the development sign-in endpoint (development only)" default:"false" env:"STOREFRONT_DEV_ISSUER"`
	SeedCatalog string `help:"path to a YAML seed file loaded into the stores on startup" default:"" env:"STOREFRONT_SEED_CATALOG"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"STOREFRONT_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"STOREFRONT_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if len(c.SessionSecret) < 32 {
		return errors.New("session secret must be at least 32 bytes (256 bits) for HMAC-SHA256 (--session-secret or STOREFRONT_SESSION_SECRET)")
	}

	// Create stores based on store type
	var (
		userStore    store.UserStore
		productStore store.ProductStore
		cartStore    store.CartStore
		orderStore   store.OrderStore
		sessionStore store.SessionStore
	)

	switch c.StoreType {
	case "postgres":
		if err := c.PostgresStore.Validate(); err != nil {
			return fmt.Errorf("failed to validate postgres flags: %w", err)
		}
		poolCfg := &postgresstore.PoolConfig{
			ConnString:      c.PostgresStore.ConnString,
			MaxConns:        c.PostgresStore.MaxConns,
			MinConns:        c.PostgresStore.MinConns,
			MaxConnLifetime: c.PostgresStore.MaxConnLifetime,
			MaxConnIdleTime: c.PostgresStore.MaxConnIdleTime,
		}
		pool, err := postgresstore.NewPool(ctx, poolCfg)
		if err != nil {
			return fmt.Errorf("failed to create store pool: %w", err)
		}
		defer pool.Close()

		if c.PostgresStore.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		userStore = postgresstore.NewUserStore(pool)
		productStore = postgresstore.NewProductStore(pool)
		cartStore = postgresstore.NewCartStore(pool)
		orderStore = postgresstore.NewOrderStore(pool)
		sessionStore = postgresstore.NewSessionStore(pool)
		log.Info().Msg("Using PostgreSQL stores")

	default:
		userStore = memorystore.NewUserStore()
		productStore = memorystore.NewProductStore()
		cartStore = memorystore.NewCartStore()
		orderStore = memorystore.NewOrderStore()
		sessionStore = memorystore.NewSessionStore()
		log.Info().Msg("Using in-memory stores")
	}

	if c.SeedCatalog != "" {
		if err := seedStores(ctx, c.SeedCatalog, userStore, productStore); err != nil {
			return fmt.Errorf("failed to seed stores: %w", err)
		}
		log.Info().Str("path", c.SeedCatalog).Msg("Seeded stores from catalogue file")
	}

	codec, err := session.NewCodec([]byte(c.SessionSecret))
	if err != nil {
		return fmt.Errorf("failed to create session codec: %w", err)
	}
	sessions := session.NewManager(codec, sessionStore, c.SessionTTL)

	srv := server.New(server.Config{
		Users:     userStore,
		Products:  productStore,
		Carts:     cartStore,
		Orders:    orderStore,
		Sessions:  sessions,
		DevIssuer: c.DevIssuer,
	})

	mux := http.NewServeMux()
	srv.Register(mux)

	// Serve static assets; these bypass the edge gate by path prefix.
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	gate := authz.NewEdgeGate(authz.DefaultRuleset(), sessions, "/signin", "/")
	gated := gate.Middleware()(mux)

	// CSRF protection for HTML pages (not applied to API routes)
	protection := csrf.New()

	// API routes get CORS, HTML routes get CSRF
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAPIRoute(r.URL.Path) {
			withCORS(c.CORSOrigins, gated).ServeHTTP(w, r)
		} else {
			protection.Handler(gated).ServeHTTP(w, r)
		}
	})

	wrapped := httpx.ClientIPMiddleware()(httpx.RequestLogger(log)(handler))

	if c.DevIssuer {
		log.Warn().Msg("Development sign-in endpoint is enabled (--dev-issuer). This should only be used in development!")
	}

	log.Info().Str("addr", c.Listen).Msg("Starting HTTP server")
	return configureHTTPServer(c.Listen, wrapped).ListenAndServe()
}

// isAPIRoute returns true if the path is an API route that needs CORS instead of CSRF
func isAPIRoute(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

// withCORS adds CORS support to the API routes.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true, // Required for cookie-based authentication
	})
	return middleware.Handler(h)
}
