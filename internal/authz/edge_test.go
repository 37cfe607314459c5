package authz

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/session"
)

// staticResolver returns a fixed claims/error pair for every request.
type staticResolver struct {
	claims *session.Claims
	err    error
}

func (r *staticResolver) Resolve(*http.Request) (*session.Claims, error) {
	return r.claims, r.err
}

func testClaims(t *testing.T, role models.Role) *session.Claims {
	userID, err := uuid.NewV7()
	require.NoError(t, err)
	return &session.Claims{
		UserID:    userID,
		Name:      "Test User",
		Email:     "test@example.com",
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestEvaluate(t *testing.T) {
	user := &session.Claims{Role: models.RoleUser}
	admin := &session.Claims{Role: models.RoleAdmin}

	tests := []struct {
		name     string
		class    Classification
		claims   *session.Claims
		expected Outcome
	}{
		{name: "public without session", class: Public, claims: nil, expected: Allow},
		{name: "public with session", class: Public, claims: user, expected: Allow},
		{name: "authenticated without session", class: Authenticated, claims: nil, expected: RedirectSignIn},
		{name: "authenticated with user session", class: Authenticated, claims: user, expected: Allow},
		{name: "authenticated with admin session", class: Authenticated, claims: admin, expected: Allow},
		{name: "admin-only without session", class: AdminOnly, claims: nil, expected: RedirectSignIn},
		{name: "admin-only with user session", class: AdminOnly, claims: user, expected: RedirectHome},
		{name: "admin-only with admin session", class: AdminOnly, claims: admin, expected: Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Evaluate(tt.class, tt.claims))
		})
	}
}

func TestEdgeGateDecide_redirectTargets(t *testing.T) {
	gate := NewEdgeGate(DefaultRuleset(), &staticResolver{}, "/signin", "/")

	d := gate.Decide("/account", nil)
	require.Equal(t, RedirectSignIn, d.Outcome)
	require.Equal(t, "/signin?redirectTo=%2Faccount", d.Location)

	d = gate.Decide("/admin/users", &session.Claims{Role: models.RoleUser})
	require.Equal(t, RedirectHome, d.Outcome)
	require.Equal(t, "/", d.Location)

	d = gate.Decide("/admin/users", &session.Claims{Role: models.RoleAdmin})
	require.Equal(t, Allow, d.Outcome)
	require.Empty(t, d.Location)
}

func newGateHandler(resolver session.Resolver, next http.Handler) http.Handler {
	gate := NewEdgeGate(DefaultRuleset(), resolver, "/signin", "/")
	return gate.Middleware()(next)
}

func TestEdgeGateMiddleware_anonymousRedirectsToSignIn(t *testing.T) {
	called := false
	handler := newGateHandler(&staticResolver{err: session.ErrInvalidSession}, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/account", nil))

	require.False(t, called)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/signin?redirectTo=%2Faccount", w.Header().Get("Location"))
}

func TestEdgeGateMiddleware_userOnAdminRedirectsHome(t *testing.T) {
	called := false
	resolver := &staticResolver{claims: testClaims(t, models.RoleUser)}
	handler := newGateHandler(resolver, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

	require.False(t, called)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))
}

func TestEdgeGateMiddleware_adminAllowedWithClaimsOnContext(t *testing.T) {
	claims := testClaims(t, models.RoleAdmin)
	var seen *session.Claims
	handler := newGateHandler(&staticResolver{claims: claims}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.ClaimsFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, claims, seen)
}

func TestEdgeGateMiddleware_publicPassesWithoutSession(t *testing.T) {
	called := false
	handler := newGateHandler(&staticResolver{err: session.ErrInvalidSession}, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/blue-mug", nil))

	require.True(t, called)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestEdgeGateMiddleware_resolverFailureFailsClosed(t *testing.T) {
	// A broken resolver is indistinguishable from "no session": the gate
	// redirects rather than letting the request through.
	handler := newGateHandler(&staticResolver{err: errors.New("store unavailable")}, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/account", nil))

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/signin?redirectTo=%2Faccount", w.Header().Get("Location"))
}

func TestEdgeGateMiddleware_assetsBypassEvaluation(t *testing.T) {
	called := false
	resolver := &staticResolver{err: errors.New("resolver must not be consulted")}
	handler := newGateHandler(resolver, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))

	require.True(t, called)
	require.Equal(t, http.StatusOK, w.Code)
}
