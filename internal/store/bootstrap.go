package store

import (
	"context"
	"fmt"

	"github.com/qbacademy/qmscore/internal/domain"
)

// Default administrative account created on first run.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	defaultAdminFullName = "مدير النظام"
	defaultAdminEmail    = "admin@qbacademy.com"
	defaultAdminRole     = "admin"
)

// bootstrapAdmin inserts the default admin account on first-ever run.
// INSERT OR IGNORE keeps it a no-op when the username already exists.
func (s *Store) bootstrapAdmin(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO users (username, password_hash, full_name, email, role)
		VALUES (?, ?, ?, ?, ?)
	`,
		DefaultAdminUsername,
		domain.PasswordDigest(DefaultAdminPassword),
		defaultAdminFullName,
		defaultAdminEmail,
		defaultAdminRole,
	)
	if err != nil {
		return fmt.Errorf("insert default admin: %w", err)
	}
	return nil
}
