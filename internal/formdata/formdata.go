// Package formdata is the name-keyed JSON document store behind every UI
// form.
//
// One row exists per form name (upsert semantics, enforced by a unique
// index); a save replaces the payload wholesale. Names are NFC-normalized so
// Arabic text typed in different normal forms keys the same record. Writes
// wait out lock contention (WAL mode, generous busy timeout) and pause
// briefly before touching the database to spread bursts of sequential saves.
package formdata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/qbacademy/qmscore/internal/audit"
	"github.com/qbacademy/qmscore/internal/domain"
	"github.com/qbacademy/qmscore/internal/store"
)

// Audit action descriptions, matching the records the academy already has.
const (
	actionCreate = "إضافة بيانات نموذج جديد"
	actionUpdate = "تحديث بيانات النموذج"
	actionDelete = "حذف بيانات النموذج"
)

// Store is the generic form-data store.
type Store struct {
	st        *store.Store
	log       *audit.Logger
	saveDelay time.Duration
}

// New creates a form-data store. saveDelay is the deliberate pre-write pause;
// zero disables it (tests do this).
func New(st *store.Store, log *audit.Logger, saveDelay time.Duration) *Store {
	return &Store{st: st, log: log, saveDelay: saveDelay}
}

// Save upserts the payload under name. A new name inserts (audited as a
// create); an existing one has its payload replaced and updated_at bumped
// (audited as an update). The audit append is best-effort and never fails
// the save.
func (s *Store) Save(ctx context.Context, name string, payload domain.Payload, actor *domain.Identity) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	text, err := domain.EncodePayload(payload)
	if err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}

	if err := s.pause(ctx); err != nil {
		return err
	}

	// Pre-read decides the audit action only; uniqueness itself is the
	// index's job, and the upsert below is race-free.
	existed, existingID, err := s.lookup(ctx, name)
	if err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}

	now := s.st.Now()
	var createdBy any
	if actor != nil {
		createdBy = actor.UserID
	}

	_, err = s.st.DB().ExecContext(ctx, `
		INSERT INTO form_data (form_name, form_data, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(form_name) DO UPDATE SET
			form_data = excluded.form_data,
			updated_at = excluded.updated_at
	`, name, text, createdBy, now, now)
	if err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}

	action := actionCreate
	recordID := existingID
	if existed {
		action = actionUpdate
	} else {
		if _, recordID, err = s.lookup(ctx, name); err != nil {
			recordID = 0
		}
	}

	s.log.BestEffort(ctx, audit.Entry{
		Actor:    actor,
		Action:   action,
		Table:    "form_data",
		RecordID: recordID,
	})

	return nil
}

// Load returns the payload stored under name, or ok=false when the name is
// unknown. Stored text that is not valid JSON comes back as RawText; the
// store guarantees nothing about payload shape.
func (s *Store) Load(ctx context.Context, name string) (domain.Payload, bool, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, false, err
	}

	var text string
	err = s.st.DB().QueryRowContext(ctx,
		`SELECT form_data FROM form_data WHERE form_name = ?`, name).Scan(&text)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %q: %w", name, err)
	}

	return domain.DecodePayload(text), true, nil
}

// ListAll returns every current record ordered by form name.
func (s *Store) ListAll(ctx context.Context) ([]domain.FormRecord, error) {
	rows, err := s.st.DB().QueryContext(ctx, `
		SELECT id, form_name, form_data, created_by, created_at, updated_at
		FROM form_data
		ORDER BY form_name
	`)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	var records []domain.FormRecord
	for rows.Next() {
		var rec domain.FormRecord
		var text string
		var createdBy sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.FormName, &text, &createdBy,
			&rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan form: %w", err)
		}
		rec.Payload = domain.DecodePayload(text)
		if createdBy.Valid {
			v := createdBy.Int64
			rec.CreatedBy = &v
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forms: %w", err)
	}

	if records == nil {
		records = []domain.FormRecord{}
	}
	return records, nil
}

// Update replaces the payload of an existing record. Unlike Save it refuses
// to create: an unknown name returns false and writes nothing.
func (s *Store) Update(ctx context.Context, name string, payload domain.Payload, actor *domain.Identity) (bool, error) {
	name, err := normalizeName(name)
	if err != nil {
		return false, err
	}
	text, err := domain.EncodePayload(payload)
	if err != nil {
		return false, fmt.Errorf("update %q: %w", name, err)
	}

	if err := s.pause(ctx); err != nil {
		return false, err
	}

	existed, recordID, err := s.lookup(ctx, name)
	if err != nil {
		return false, fmt.Errorf("update %q: %w", name, err)
	}
	if !existed {
		return false, nil
	}

	_, err = s.st.DB().ExecContext(ctx, `
		UPDATE form_data
		SET form_data = ?, updated_at = ?
		WHERE form_name = ?
	`, text, s.st.Now(), name)
	if err != nil {
		return false, fmt.Errorf("update %q: %w", name, err)
	}

	s.log.BestEffort(ctx, audit.Entry{
		Actor:    actor,
		Action:   actionUpdate,
		Table:    "form_data",
		RecordID: recordID,
	})

	return true, nil
}

// Delete removes the record under name. Returns false when the name is
// unknown.
func (s *Store) Delete(ctx context.Context, name string, actor *domain.Identity) (bool, error) {
	name, err := normalizeName(name)
	if err != nil {
		return false, err
	}

	existed, recordID, err := s.lookup(ctx, name)
	if err != nil {
		return false, fmt.Errorf("delete %q: %w", name, err)
	}
	if !existed {
		return false, nil
	}

	if _, err := s.st.DB().ExecContext(ctx,
		`DELETE FROM form_data WHERE form_name = ?`, name); err != nil {
		return false, fmt.Errorf("delete %q: %w", name, err)
	}

	s.log.BestEffort(ctx, audit.Entry{
		Actor:    actor,
		Action:   actionDelete,
		Table:    "form_data",
		RecordID: recordID,
	})

	return true, nil
}

// lookup returns whether a record exists for name and its id.
func (s *Store) lookup(ctx context.Context, name string) (bool, int64, error) {
	var id int64
	err := s.st.DB().QueryRowContext(ctx,
		`SELECT id FROM form_data WHERE form_name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	return true, id, nil
}

// pause waits out the configured pre-write delay, honoring cancellation.
func (s *Store) pause(ctx context.Context) error {
	if s.saveDelay <= 0 {
		return nil
	}
	t := time.NewTimer(s.saveDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// normalizeName NFC-normalizes a form name so visually identical Arabic keys
// hit the same record.
func normalizeName(name string) (string, error) {
	if name == "" {
		return "", domain.NewValidationError("form_name", "must not be empty")
	}
	return norm.NFC.String(name), nil
}
