// Package audit appends immutable activity records for every mutating
// operation.
//
// Entries are informational only. The logger runs on its own database handle,
// decoupled from the one serving primary writes, and offers a best-effort
// append that downgrades failures to warnings - log contention must never
// block or fail the operation being logged.
package audit

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qbacademy/qmscore/internal/domain"
	"github.com/qbacademy/qmscore/internal/store"
)

// DefaultRecentLimit caps Recent when the caller passes no limit.
const DefaultRecentLimit = 50

// Entry describes one activity to record.
type Entry struct {
	// Actor is the session identity performing the action; nil for system
	// actions (bootstrap, repairs).
	Actor *domain.Identity

	// Action is a free-text description.
	Action string

	// Table and RecordID optionally name the affected row.
	Table    string
	RecordID int64

	// Old and New are optional before/after snapshots, stored as JSON.
	Old any
	New any
}

// Logger appends rows to activity_log.
type Logger struct {
	st    *store.Store
	owned bool
}

// Open creates a Logger with its own database handle on the given path.
// Callers should Close it when done.
func Open(path string, opts store.Options) (*Logger, error) {
	opts.SkipBootstrap = true
	st, err := store.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	return &Logger{st: st, owned: true}, nil
}

// New wraps an existing store handle. The handle stays owned by the caller.
func New(st *store.Store) *Logger {
	return &Logger{st: st}
}

// Close releases the logger's database handle if it owns one.
func (l *Logger) Close() error {
	if !l.owned {
		return nil
	}
	return l.st.Close()
}

// Append inserts one activity row. This is the standalone log_activity
// surface: it reports errors so direct callers can see them.
func (l *Logger) Append(ctx context.Context, e Entry) error {
	oldJSON, err := marshalSnapshot(e.Old)
	if err != nil {
		return fmt.Errorf("log activity: %w", err)
	}
	newJSON, err := marshalSnapshot(e.New)
	if err != nil {
		return fmt.Errorf("log activity: %w", err)
	}

	var userID, sessionID any
	if e.Actor != nil {
		userID = e.Actor.UserID
		sessionID = e.Actor.SessionID.String()
	}

	var table, recordID any
	if e.Table != "" {
		table = e.Table
	}
	if e.RecordID != 0 {
		recordID = e.RecordID
	}

	_, err = l.st.DB().ExecContext(ctx, `
		INSERT INTO activity_log
		(user_id, action, table_name, record_id, old_values, new_values, timestamp, session_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		userID,
		e.Action,
		table,
		recordID,
		oldJSON,
		newJSON,
		l.st.Now(),
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("log activity: %w", err)
	}

	return nil
}

// BestEffort appends an entry and swallows any failure, surfacing it only as
// a warning. Primary operations call this so a broken log never rolls them
// back.
func (l *Logger) BestEffort(ctx context.Context, e Entry) {
	if err := l.Append(ctx, e); err != nil {
		slog.Warn("activity log append failed", "action", e.Action, "error", err)
	}
}

// Recent returns the newest entries, most recent first. limit <= 0 selects
// DefaultRecentLimit.
func (l *Logger) Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := l.st.DB().QueryContext(ctx, `
		SELECT id, user_id, action, table_name, record_id,
		       old_values, new_values, timestamp, COALESCE(ip_address, '')
		FROM activity_log
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("read activity log: %w", err)
	}
	defer rows.Close()

	var entries []domain.ActivityEntry
	for rows.Next() {
		var e domain.ActivityEntry
		var userID, recordID sql.NullInt64
		var table, oldJSON, newJSON sql.NullString
		if err := rows.Scan(&e.ID, &userID, &e.Action, &table, &recordID,
			&oldJSON, &newJSON, &e.Timestamp, &e.IPAddress); err != nil {
			return nil, fmt.Errorf("scan activity entry: %w", err)
		}
		if userID.Valid {
			v := userID.Int64
			e.UserID = &v
		}
		if recordID.Valid {
			v := recordID.Int64
			e.RecordID = &v
		}
		e.TableName = table.String
		if oldJSON.Valid {
			e.OldValues = oldJSON.String
		}
		if newJSON.Valid {
			e.NewValues = newJSON.String
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity log: %w", err)
	}

	if entries == nil {
		entries = []domain.ActivityEntry{}
	}
	return entries, nil
}

// marshalSnapshot encodes an optional before/after value as JSON TEXT.
// Returns nil (SQL NULL) for absent snapshots.
func marshalSnapshot(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
