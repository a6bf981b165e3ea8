package store

import (
	"context"
	"fmt"
	"path/filepath"
)

// backupTimestampFormat matches the original snapshot naming.
const backupTimestampFormat = "20060102_150405"

// BackupTo writes a point-in-time snapshot of the whole database into dir as
// backup_qb_academy_<timestamp>.db and returns the snapshot path.
//
// Uses VACUUM INTO rather than copying the file: a raw copy of a WAL database
// can land mid-checkpoint, while VACUUM INTO produces a consistent,
// self-contained database file.
func (s *Store) BackupTo(ctx context.Context, dir string) (string, error) {
	name := fmt.Sprintf("backup_qb_academy_%s.db", s.Now().Format(backupTimestampFormat))
	dest := filepath.Join(dir, name)

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		return "", fmt.Errorf("backup database: %w", err)
	}

	return dest, nil
}
