package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate brings the schema up to date. Versions are recorded in the
// goose_db_version table, so every repair and evolution is deterministic and
// auditable.
//
// One step runs before version tracking: databases written by the legacy
// application may carry a form_data table without the form_name column.
// That shape predates any version record, so it is detected by introspection
// and repaired by DROPPING the table. This is destructive - any rows in the
// old-shape table are lost. There is no way to map them onto the keyed
// schema, which is why the legacy application did the same.
func Migrate(ctx context.Context, db *sql.DB) error {
	if err := repairLegacyFormData(ctx, db); err != nil {
		return err
	}

	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// repairLegacyFormData drops a form_data table that lacks the form_name
// column. No-op for missing or correctly shaped tables.
func repairLegacyFormData(ctx context.Context, db *sql.DB) error {
	var ddl string
	err := db.QueryRowContext(ctx, `
		SELECT sql FROM sqlite_master
		WHERE type = 'table' AND name = 'form_data'
	`).Scan(&ddl)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect form_data: %w", err)
	}

	if strings.Contains(ddl, "form_name") {
		return nil
	}

	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS form_data`); err != nil {
		return fmt.Errorf("drop legacy form_data: %w", err)
	}
	return nil
}
