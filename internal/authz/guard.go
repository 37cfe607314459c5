package authz

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/session"
)

// errorResponse is the structured body for guard denials.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: message}); err != nil {
		log.Debug().Err(err).Msg("Failed to write guard error response")
	}
}

// RequireAuth wraps a handler with a session requirement. Requests without
// a valid session get 401 and the handler is never invoked. Resolver
// failures fail closed as 401; the cause is logged, never surfaced.
func RequireAuth(resolver session.Resolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := resolver.Resolve(r)
		if err != nil {
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("Guard rejected unauthenticated request")
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		next.ServeHTTP(w, r.WithContext(session.WithClaims(r.Context(), claims)))
	})
}

// RequireRole wraps a handler with a role requirement, independent of the
// edge gate. Role satisfaction is exact match. On success the handler runs
// with the original request and owns the response entirely; the guard does
// not catch or transform anything the handler does.
func RequireRole(resolver session.Resolver, role models.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := resolver.Resolve(r)
		if err != nil {
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("Guard rejected unauthenticated request")
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		if claims.Role != role {
			log.Debug().
				Str("path", r.URL.Path).
				Str("role", string(claims.Role)).
				Str("required", string(role)).
				Msg("Guard rejected under-privileged request")
			writeError(w, http.StatusForbidden, "insufficient privileges")
			return
		}

		next.ServeHTTP(w, r.WithContext(session.WithClaims(r.Context(), claims)))
	})
}
