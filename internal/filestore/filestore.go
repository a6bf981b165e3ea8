// Package filestore copies externally selected files into the category-scoped
// storage tree and registers them in the database.
//
// Stored names embed a UTC timestamp and a content-digest prefix, so two
// uploads of the same original name never collide while identical content is
// still detectable through the recorded hash.
package filestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/qbacademy/qmscore/internal/audit"
	"github.com/qbacademy/qmscore/internal/domain"
	"github.com/qbacademy/qmscore/internal/store"
)

const storedNameTimestampFormat = "20060102_150405"

// Store is the content-addressed file store.
type Store struct {
	st   *store.Store
	log  *audit.Logger
	root string
}

// New creates a file store rooted at rootDir and pre-creates the fixed
// category subdirectories.
func New(st *store.Store, log *audit.Logger, rootDir string) (*Store, error) {
	for _, c := range domain.Categories {
		if err := os.MkdirAll(filepath.Join(rootDir, c), 0o755); err != nil {
			return nil, fmt.Errorf("create storage tree: %w", err)
		}
	}
	return &Store{st: st, log: log, root: rootDir}, nil
}

// Root returns the storage tree root directory.
func (s *Store) Root() string {
	return s.root
}

// StoreOptions qualify a Store call. The zero value stores into the general
// category with no association, actor, or description.
type StoreOptions struct {
	Category    string
	Related     *domain.SoftRef
	Actor       *domain.Identity
	Description string
}

// Store copies the file at sourcePath into the storage tree and inserts one
// uploaded_files row. The copy happens first; if the insert then fails, the
// copy is removed before the error propagates, so a failed registration
// leaves no orphan file.
//
// The store enforces no size limit - rejecting oversized sources is the
// calling layer's job.
func (s *Store) Store(ctx context.Context, sourcePath string, opts StoreOptions) (*domain.FileRecord, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewValidationError("source_path",
				fmt.Sprintf("file does not exist: %s", sourcePath))
		}
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return nil, domain.NewValidationError("source_path", "source is a directory")
	}

	category := opts.Category
	if category == "" {
		category = domain.CategoryGeneral
	}
	if !domain.ValidCategory(category) {
		return nil, domain.NewValidationError("category",
			fmt.Sprintf("unknown category %q", category))
	}

	hash, err := hashFile(sourcePath)
	if err != nil {
		return nil, err
	}

	originalName := filepath.Base(sourcePath)
	fileType := strings.ToLower(filepath.Ext(originalName))
	now := s.st.Now()
	storedName := fmt.Sprintf("%s_%s_%s",
		now.Format(storedNameTimestampFormat), hash[:8], originalName)

	categoryDir := filepath.Join(s.root, category)
	if err := os.MkdirAll(categoryDir, 0o755); err != nil {
		return nil, fmt.Errorf("create category dir: %w", err)
	}
	finalPath := filepath.Join(categoryDir, storedName)

	if err := copyPreserving(sourcePath, finalPath, info); err != nil {
		return nil, err
	}

	rec := &domain.FileRecord{
		OriginalName: originalName,
		StoredName:   storedName,
		Path:         finalPath,
		Type:         fileType,
		Size:         info.Size(),
		Hash:         hash,
		Category:     category,
		Related:      opts.Related,
		UploadedAt:   now,
		Description:  opts.Description,
	}
	if opts.Actor != nil {
		id := opts.Actor.UserID
		rec.UploadedBy = &id
	}

	var relatedTable, relatedID, uploadedBy any
	if opts.Related != nil {
		relatedTable = opts.Related.Table
		relatedID = opts.Related.ID
	}
	if rec.UploadedBy != nil {
		uploadedBy = *rec.UploadedBy
	}

	res, err := s.st.DB().ExecContext(ctx, `
		INSERT INTO uploaded_files
		(original_name, stored_name, file_path, file_type, file_size, file_hash,
		 category, related_table, related_id, uploaded_by, upload_date, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.OriginalName, rec.StoredName, rec.Path, rec.Type, rec.Size, rec.Hash,
		rec.Category, relatedTable, relatedID, uploadedBy, now, rec.Description,
	)
	if err != nil {
		// No orphan files from a failed registration.
		os.Remove(finalPath)
		return nil, fmt.Errorf("register file: %w", err)
	}

	rec.ID, err = res.LastInsertId()
	if err != nil {
		os.Remove(finalPath)
		return nil, fmt.Errorf("register file: %w", err)
	}

	s.log.BestEffort(ctx, audit.Entry{
		Actor:    opts.Actor,
		Action:   "رفع ملف جديد",
		Table:    "uploaded_files",
		RecordID: rec.ID,
		New:      map[string]any{"stored_name": storedName, "category": category},
	})

	return rec, nil
}

// Get returns the record for a file id, or ok=false when the id is unknown.
func (s *Store) Get(ctx context.Context, id int64) (*domain.FileRecord, bool, error) {
	row := s.st.DB().QueryRowContext(ctx, `
		SELECT id, original_name, stored_name, file_path,
		       COALESCE(file_type, ''), COALESCE(file_size, 0), COALESCE(file_hash, ''),
		       COALESCE(category, 'general'), related_table, related_id,
		       uploaded_by, upload_date, COALESCE(description, '')
		FROM uploaded_files
		WHERE id = ?
	`, id)

	rec, err := scanFileRecord(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get file %d: %w", id, err)
	}
	return rec, true, nil
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Category string
	Related  *domain.SoftRef
}

// List returns matching records, newest upload first.
func (s *Store) List(ctx context.Context, f Filter) ([]domain.FileRecord, error) {
	qb := sq.Select(
		"id", "original_name", "stored_name", "file_path",
		"COALESCE(file_type, '')", "COALESCE(file_size, 0)", "COALESCE(file_hash, '')",
		"COALESCE(category, 'general')", "related_table", "related_id",
		"uploaded_by", "upload_date", "COALESCE(description, '')",
	).
		From("uploaded_files").
		OrderBy("upload_date DESC", "id DESC")

	if f.Category != "" {
		qb = qb.Where(sq.Eq{"category": f.Category})
	}
	if f.Related != nil {
		qb = qb.Where(sq.Eq{"related_table": f.Related.Table, "related_id": f.Related.ID})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build file query: %w", err)
	}

	rows, err := s.st.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	var records []domain.FileRecord
	for rows.Next() {
		rec, err := scanFileRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	if records == nil {
		records = []domain.FileRecord{}
	}
	return records, nil
}

// ListByCategory returns all files in a category, newest upload first.
func (s *Store) ListByCategory(ctx context.Context, category string) ([]domain.FileRecord, error) {
	return s.List(ctx, Filter{Category: category})
}

// Delete removes the filesystem object (tolerating one already absent) and
// the row. Returns false, not an error, when the id is unknown. Removal of
// the two resources is best-effort, not transactional: an error between the
// steps can leave one behind.
func (s *Store) Delete(ctx context.Context, id int64, actor *domain.Identity) (bool, error) {
	rec, ok, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if err := os.Remove(rec.Path); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("delete file %d: %w", id, err)
	}

	if _, err := s.st.DB().ExecContext(ctx,
		`DELETE FROM uploaded_files WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("delete file %d: %w", id, err)
	}

	s.log.BestEffort(ctx, audit.Entry{
		Actor:    actor,
		Action:   "حذف ملف",
		Table:    "uploaded_files",
		RecordID: id,
		Old:      map[string]any{"stored_name": rec.StoredName, "category": rec.Category},
	})

	return true, nil
}

// scanFileRecord reads one row produced by the shared column list.
func scanFileRecord(row interface{ Scan(...any) error }) (*domain.FileRecord, error) {
	var rec domain.FileRecord
	var relatedTable sql.NullString
	var relatedID, uploadedBy sql.NullInt64

	err := row.Scan(
		&rec.ID, &rec.OriginalName, &rec.StoredName, &rec.Path,
		&rec.Type, &rec.Size, &rec.Hash,
		&rec.Category, &relatedTable, &relatedID,
		&uploadedBy, &rec.UploadedAt, &rec.Description,
	)
	if err != nil {
		return nil, err
	}

	if relatedTable.Valid && relatedID.Valid {
		rec.Related = &domain.SoftRef{Table: relatedTable.String, ID: relatedID.Int64}
	}
	if uploadedBy.Valid {
		v := uploadedBy.Int64
		rec.UploadedBy = &v
	}
	return &rec, nil
}
