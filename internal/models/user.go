package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the privilege tier attached to a user and carried in their
// session token. The set is closed; anything else fails validation.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts a wire string into a Role.
// Returns false for anything outside the closed set.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// User represents a storefront account.
type User struct {
	UserID uuid.UUID // UUIDv7
	Email  string
	Name   string
	Role   Role

	AvatarURL *string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time // Soft delete; deleted users cannot sign in
}

// IsDeleted returns true if the user account has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}
