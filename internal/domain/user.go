package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a stored account row. Accounts are never hard-deleted; deactivation
// clears IsActive instead.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	FullName     string
	Email        string
	Role         string
	CreatedAt    time.Time
	LastLogin    *time.Time
	IsActive     bool
}

// Identity is the in-memory session record returned by the auth gateway.
// The calling UI layer owns its lifetime; nothing is persisted beyond the
// last_login bump. SessionID correlates audit entries written during the
// session.
type Identity struct {
	UserID    int64     `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	SessionID uuid.UUID `json:"session_id"`
}
