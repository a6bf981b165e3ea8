// Package auth validates credentials against stored digests and creates
// accounts.
//
// Passwords are digested with a single unsalted SHA-256 round (see
// domain.PasswordDigest). That is deliberately unchanged from the system this
// replaces - the fixed default admin credentials depend on reproducible
// digests - and deliberately documented as unfit for anything
// security-relevant.
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/qbacademy/qmscore/internal/audit"
	"github.com/qbacademy/qmscore/internal/domain"
	"github.com/qbacademy/qmscore/internal/store"
)

// DefaultMinPasswordLen is the minimum accepted password length.
const DefaultMinPasswordLen = 6

// Gateway is the authentication surface handed to the UI layer.
type Gateway struct {
	st     *store.Store
	log    *audit.Logger
	minLen int
}

// New creates a Gateway. minPasswordLen <= 0 selects DefaultMinPasswordLen.
func New(st *store.Store, log *audit.Logger, minPasswordLen int) *Gateway {
	if minPasswordLen <= 0 {
		minPasswordLen = DefaultMinPasswordLen
	}
	return &Gateway{st: st, log: log, minLen: minPasswordLen}
}

// Authenticate checks username/password against the stored digest and the
// account's active flag. On success it bumps last_login and returns the
// session identity; a failed match returns ok=false, not an error, so the
// login dialog can branch without guarding.
func (g *Gateway) Authenticate(ctx context.Context, username, password string) (*domain.Identity, bool, error) {
	var id domain.Identity
	err := g.st.DB().QueryRowContext(ctx, `
		SELECT id, username, full_name, role, is_active
		FROM users
		WHERE username = ? AND password_hash = ? AND is_active = 1
	`, username, domain.PasswordDigest(password)).Scan(
		&id.UserID,
		&id.Username,
		&id.FullName,
		&id.Role,
		&id.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("authenticate: %w", err)
	}

	id.SessionID = uuid.New()

	_, err = g.st.DB().ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE id = ?`,
		g.st.Now(), id.UserID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("authenticate: update last login: %w", err)
	}

	g.log.BestEffort(ctx, audit.Entry{
		Actor:    &id,
		Action:   "تسجيل الدخول",
		Table:    "users",
		RecordID: id.UserID,
	})

	return &id, true, nil
}

// CreateUserInput holds the fields for a new account. Role defaults to
// "user" when empty; the role set is open at the storage layer.
type CreateUserInput struct {
	Username string
	Password string
	FullName string
	Email    string
	Role     string
}

// CreateUser inserts a new account and returns its identity. It fails with
// domain.ErrDuplicateUser when the username is taken and with a
// domain.ValidationError before touching storage when the input is invalid.
func (g *Gateway) CreateUser(ctx context.Context, in CreateUserInput, actor *domain.Identity) (*domain.Identity, error) {
	if strings.TrimSpace(in.Username) == "" {
		return nil, domain.NewValidationError("username", "must not be empty")
	}
	if strings.TrimSpace(in.FullName) == "" {
		return nil, domain.NewValidationError("full_name", "must not be empty")
	}
	if len(in.Password) < g.minLen {
		return nil, domain.NewValidationError("password",
			fmt.Sprintf("must be at least %d characters", g.minLen))
	}
	role := in.Role
	if role == "" {
		role = "user"
	}

	res, err := g.st.DB().ExecContext(ctx, `
		INSERT INTO users (username, password_hash, full_name, email, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		in.Username,
		domain.PasswordDigest(in.Password),
		in.FullName,
		in.Email,
		role,
		g.st.Now(),
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("create user %q: %w", in.Username, domain.ErrDuplicateUser)
		}
		return nil, fmt.Errorf("create user %q: %w", in.Username, err)
	}

	userID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create user %q: %w", in.Username, err)
	}

	g.log.BestEffort(ctx, audit.Entry{
		Actor:    actor,
		Action:   "إنشاء مستخدم جديد",
		Table:    "users",
		RecordID: userID,
		New:      map[string]any{"username": in.Username, "role": role},
	})

	return &domain.Identity{
		UserID:    userID,
		Username:  in.Username,
		FullName:  in.FullName,
		Role:      role,
		IsActive:  true,
		SessionID: uuid.Nil,
	}, nil
}

// SetActive flips an account's active flag. Inactive accounts cannot
// authenticate. Returns false when the user id is unknown.
func (g *Gateway) SetActive(ctx context.Context, userID int64, active bool, actor *domain.Identity) (bool, error) {
	res, err := g.st.DB().ExecContext(ctx,
		`UPDATE users SET is_active = ? WHERE id = ?`, active, userID)
	if err != nil {
		return false, fmt.Errorf("set active: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set active: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	action := "تعطيل مستخدم"
	if active {
		action = "تفعيل مستخدم"
	}
	g.log.BestEffort(ctx, audit.Entry{
		Actor:    actor,
		Action:   action,
		Table:    "users",
		RecordID: userID,
	})

	return true, nil
}

// ListUsers returns all accounts ordered by username.
func (g *Gateway) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := g.st.DB().QueryContext(ctx, `
		SELECT id, username, full_name, COALESCE(email, ''), role, created_at, last_login, is_active
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var lastLogin sql.NullTime
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.Role,
			&u.CreatedAt, &lastLogin, &u.IsActive); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if lastLogin.Valid {
			t := lastLogin.Time
			u.LastLogin = &t
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
