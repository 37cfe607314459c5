package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quaymarket/storefront/internal/httpx"
	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/store"
)

// Resolver resolves the validated claim set carried by a request.
// The contract has exactly two outcomes: a verified *Claims, or an error.
// There is no partial result, and callers must fail closed on error.
type Resolver interface {
	Resolve(r *http.Request) (*Claims, error)
}

// Manager issues session tokens and resolves them from requests. It owns
// the codec and, when a session store is configured, records issuance for
// audit. The audit record never participates in authorization decisions.
type Manager struct {
	codec    *Codec
	sessions store.SessionStore // optional
	ttl      time.Duration
}

// NewManager creates a session manager. sessions may be nil to disable
// audit records (tests, dev issuer without persistence).
func NewManager(codec *Codec, sessions store.SessionStore, ttl time.Duration) *Manager {
	return &Manager{codec: codec, sessions: sessions, ttl: ttl}
}

// Resolve implements Resolver by validating the token carried by r.
func (m *Manager) Resolve(r *http.Request) (*Claims, error) {
	return m.codec.Validate(TokenFromRequest(r))
}

// Issue signs a token for the user, sets the session cookie, and records
// the issuance. A failed audit write does not fail the sign-in; the token
// is already authoritative on its own.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) (string, error) {
	token, err := m.codec.Issue(user, m.ttl)
	if err != nil {
		return "", err
	}

	SetCookie(w, token, m.ttl)

	if m.sessions != nil {
		sessionID, err := uuid.NewV7()
		if err != nil {
			return token, nil
		}
		now := time.Now()
		record := &models.Session{
			SessionID:  sessionID,
			UserID:     user.UserID,
			CreatedAt:  now,
			ExpiresAt:  now.Add(m.ttl),
			LastUsedAt: now,
			UserAgent:  r.UserAgent(),
			IPAddress:  httpx.ClientIPFromContext(ctx),
		}
		if err := m.sessions.Create(ctx, record); err != nil {
			log.Warn().Err(err).Str("user_id", user.UserID.String()).Msg("Failed to record session issuance")
		}
	}

	return token, nil
}

// SignOut clears the session cookie. The token itself remains valid until
// expiry; revocation is not part of this subsystem.
func (m *Manager) SignOut(w http.ResponseWriter) {
	ClearCookie(w)
}
