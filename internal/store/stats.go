package store

import (
	"context"
	"fmt"
)

// DatabaseStats are the aggregate counters shown on the dashboard.
type DatabaseStats struct {
	ActiveUsers   int64 `json:"active_users"`
	Procedures    int64 `json:"procedures"`
	Forms         int64 `json:"forms"`
	UploadedFiles int64 `json:"uploaded_files"`
	TotalFileSize int64 `json:"total_file_size"`
	Certificates  int64 `json:"certificates"`
}

// Stats returns row counts and the total stored file bytes.
func (s *Store) Stats(ctx context.Context) (DatabaseStats, error) {
	var stats DatabaseStats

	counts := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM users WHERE is_active = 1", &stats.ActiveUsers},
		{"SELECT COUNT(*) FROM procedures", &stats.Procedures},
		{"SELECT COUNT(*) FROM forms", &stats.Forms},
		{"SELECT COUNT(*) FROM uploaded_files", &stats.UploadedFiles},
		{"SELECT COALESCE(SUM(file_size), 0) FROM uploaded_files", &stats.TotalFileSize},
		{"SELECT COUNT(*) FROM certificates", &stats.Certificates},
	}

	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return DatabaseStats{}, fmt.Errorf("stats: %w", err)
		}
	}

	return stats, nil
}
