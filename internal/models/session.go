package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record of an issued session token, kept for
// audit. The signed token carried by the browser is authoritative for
// authorization decisions; this record only tracks issuance metadata.
type Session struct {
	SessionID uuid.UUID // UUIDv7
	UserID    uuid.UUID

	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastUsedAt time.Time

	// Optional audit metadata
	UserAgent string
	IPAddress string
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
