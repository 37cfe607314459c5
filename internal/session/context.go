package session

import "context"

type contextKey int

const claimsContextKey contextKey = iota

// WithClaims returns a context carrying the verified claim set.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext extracts the verified claim set from the request
// context. Returns nil for an unauthenticated request.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey).(*Claims)
	return claims
}
