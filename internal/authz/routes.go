// Package authz implements the layered authorization gates: route
// classification shared by every layer, the edge middleware that gates
// inbound requests, and the handler guard that re-checks roles on
// data-sensitive endpoints.
package authz

import (
	"net/url"
	"strings"
)

// Classification labels a request path by the access it requires.
type Classification int

const (
	// Public paths are reachable without a session.
	Public Classification = iota
	// Authenticated paths require any valid session.
	Authenticated
	// AdminOnly paths require a session with the ADMIN role.
	AdminOnly
)

func (c Classification) String() string {
	switch c {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case AdminOnly:
		return "admin-only"
	}
	return "unknown"
}

// Rule maps a path pattern to a classification. Exact rules match the path
// verbatim; prefix rules match any path that starts with the pattern.
type Rule struct {
	Pattern string
	Prefix  bool
	Class   Classification
}

// Ruleset is the ordered classification table shared by the edge gate and
// the client gate, so the two layers cannot diverge. Classification is a
// pure function of the path string: method, query and session never
// participate. Exact rules are evaluated before prefix rules; within each
// kind, declaration order wins. Unmatched paths default to Authenticated.
type Ruleset struct {
	rules []Rule
}

// NewRuleset builds a ruleset from an ordered list of rules.
func NewRuleset(rules ...Rule) Ruleset {
	return Ruleset{rules: rules}
}

// Classify maps a request path to exactly one classification.
func (rs Ruleset) Classify(path string) Classification {
	for _, r := range rs.rules {
		if !r.Prefix && path == r.Pattern {
			return r.Class
		}
	}
	for _, r := range rs.rules {
		if r.Prefix && strings.HasPrefix(path, r.Pattern) {
			return r.Class
		}
	}
	return Authenticated
}

// DefaultRuleset is the storefront classification table.
func DefaultRuleset() Ruleset {
	return NewRuleset(
		Rule{Pattern: "/", Class: Public},
		Rule{Pattern: "/signin", Class: Public},
		Rule{Pattern: "/register", Class: Public},
		Rule{Pattern: "/admin", Class: AdminOnly},
		Rule{Pattern: "/api/auth/", Prefix: true, Class: Public},
		Rule{Pattern: "/products/", Prefix: true, Class: Public},
		Rule{Pattern: "/api/products", Prefix: true, Class: Public},
		Rule{Pattern: "/admin/", Prefix: true, Class: AdminOnly},
		Rule{Pattern: "/api/admin/", Prefix: true, Class: AdminOnly},
	)
}

// assetPrefixes are framework-internal paths the edge gate never evaluates.
var assetPrefixes = []string{"/static/", "/favicon.ico"}

// IsAssetPath reports whether the path is served without any gate
// evaluation at all (static assets, favicon).
func IsAssetPath(path string) bool {
	for _, p := range assetPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// SignInRedirect builds the sign-in redirect target, preserving the
// originally requested path so the sign-in flow can forward the user back.
func SignInRedirect(signInPath, returnTo string) string {
	return signInPath + "?redirectTo=" + url.QueryEscape(returnTo)
}
