package authz

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/session"
)

// Outcome is the result of applying the access decision table.
type Outcome int

const (
	// Allow lets the request through to the application.
	Allow Outcome = iota
	// RedirectSignIn sends the actor to sign-in, preserving the original
	// path as a return target.
	RedirectSignIn
	// RedirectHome sends an authenticated but under-privileged actor home.
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectSignIn:
		return "redirect-sign-in"
	case RedirectHome:
		return "redirect-home"
	}
	return "unknown"
}

// Evaluate applies the access decision table. It is pure and total: every
// (classification, claims) pair maps to exactly one outcome. A nil claims
// means "no session", which already folds in every token verification
// failure upstream.
func Evaluate(class Classification, claims *session.Claims) Outcome {
	switch class {
	case Public:
		return Allow
	case Authenticated:
		if claims == nil {
			return RedirectSignIn
		}
		return Allow
	case AdminOnly:
		if claims == nil {
			return RedirectSignIn
		}
		if claims.Role != models.RoleAdmin {
			return RedirectHome
		}
		return Allow
	}
	// Unreachable while Classification stays closed; deny by redirecting
	// to sign-in rather than allowing through.
	return RedirectSignIn
}

// EdgeGate gates every inbound request before any page or handler runs.
// Its only side effect is the redirect response; it never mutates session
// or data state.
type EdgeGate struct {
	rules      Ruleset
	resolver   session.Resolver
	signInPath string
	homePath   string
}

// NewEdgeGate creates the edge gate.
func NewEdgeGate(rules Ruleset, resolver session.Resolver, signInPath, homePath string) *EdgeGate {
	return &EdgeGate{
		rules:      rules,
		resolver:   resolver,
		signInPath: signInPath,
		homePath:   homePath,
	}
}

// Decision is an outcome plus the redirect target when one applies.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Decide classifies the path and applies the decision table, producing the
// concrete redirect target for deny outcomes.
func (g *EdgeGate) Decide(path string, claims *session.Claims) Decision {
	switch Evaluate(g.rules.Classify(path), claims) {
	case RedirectSignIn:
		return Decision{Outcome: RedirectSignIn, Location: SignInRedirect(g.signInPath, path)}
	case RedirectHome:
		return Decision{Outcome: RedirectHome, Location: g.homePath}
	default:
		return Decision{Outcome: Allow}
	}
}

// Middleware returns the HTTP middleware form of the gate. Token
// verification failures and resolver failures are both treated as "no
// session" (fail closed); no decision is emitted before resolution
// settles, and allowed requests pass through with the verified claims on
// the request context.
func (g *EdgeGate) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsAssetPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := g.resolver.Resolve(r)
			if err != nil {
				// Absent, malformed, expired and unverifiable tokens all
				// land here and fall through as claims == nil.
				claims = nil
			}

			decision := g.Decide(r.URL.Path, claims)
			if decision.Outcome != Allow {
				log.Debug().
					Str("path", r.URL.Path).
					Str("outcome", decision.Outcome.String()).
					Msg("Edge gate denied request")
				http.Redirect(w, r, decision.Location, http.StatusFound)
				return
			}

			if claims != nil {
				r = r.WithContext(session.WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}
