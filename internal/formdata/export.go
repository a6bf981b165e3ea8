package formdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qbacademy/qmscore/internal/domain"
)

const (
	exportFileTimestampFormat  = "20060102_150405"
	exportValueTimestampFormat = "2006-01-02 15:04:05"
)

// exportEntry is one form in the export snapshot.
type exportEntry struct {
	Data      any    `json:"data"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Snapshot renders the current contents of the store as the export JSON
// document: a mapping from form name to payload plus timestamps.
func (s *Store) Snapshot(ctx context.Context) ([]byte, error) {
	records, err := s.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export forms: %w", err)
	}

	doc := make(map[string]exportEntry, len(records))
	for _, rec := range records {
		var data any
		switch p := rec.Payload.(type) {
		case domain.Structured:
			data = p.Value
		case domain.RawText:
			data = string(p)
		}
		doc[rec.FormName] = exportEntry{
			Data:      data,
			CreatedAt: rec.CreatedAt.UTC().Format(exportValueTimestampFormat),
			UpdatedAt: rec.UpdatedAt.UTC().Format(exportValueTimestampFormat),
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("export forms: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportTo writes a point-in-time snapshot of all form data into dir as
// forms_backup_<timestamp>.json and returns the file path.
func (s *Store) ExportTo(ctx context.Context, dir string) (string, error) {
	data, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("forms_backup_%s.json",
		s.st.Now().Format(exportFileTimestampFormat))
	dest := filepath.Join(dir, name)

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("export forms: %w", err)
	}
	return dest, nil
}
