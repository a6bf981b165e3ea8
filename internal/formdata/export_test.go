package formdata

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbacademy/qmscore/internal/domain"
	"github.com/qbacademy/qmscore/internal/testutil"
)

// seedExportFixture saves three forms at known instants so the snapshot is
// byte-for-byte reproducible.
func seedExportFixture(t *testing.T, fd *Store, cl interface{ Advance(time.Duration) time.Time }) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, fd.Save(ctx, "تقييم_المدربين", domain.NewStructured(map[string]any{
		"trainer": "أحمد",
		"score":   95,
	}), nil))

	cl.Advance(time.Minute)
	require.NoError(t, fd.Save(ctx, "training_plan", domain.NewStructured([]any{
		"مراجعة", "تدقيق",
	}), nil))

	cl.Advance(time.Minute)
	require.NoError(t, fd.Save(ctx, "weekly_note", domain.RawText("مسودة أولى"), nil))
}

func TestSnapshot_Golden(t *testing.T) {
	cl := testutil.NewClock()
	fd, _ := newFormStore(t, cl)
	seedExportFixture(t, fd, cl)

	data, err := fd.Snapshot(context.Background())
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "export", data)
}

func TestSnapshot_EmptyStore(t *testing.T) {
	fd, _ := newFormStore(t, nil)

	data, err := fd.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestExportTo_WritesTimestampedFile(t *testing.T) {
	cl := testutil.NewClock()
	fd, _ := newFormStore(t, cl)
	seedExportFixture(t, fd, cl)

	dir := t.TempDir()
	dest, err := fd.ExportTo(context.Background(), dir)
	require.NoError(t, err)

	// Clock stands at 08:02:00 after the fixture saves.
	assert.Equal(t, filepath.Join(dir, "forms_backup_20250310_080200.json"), dest)

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)

	var doc map[string]struct {
		Data      any    `json:"data"`
		CreatedAt string `json:"created_at"`
		UpdatedAt string `json:"updated_at"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc, 3)

	entry := doc["weekly_note"]
	assert.Equal(t, "مسودة أولى", entry.Data)
	assert.Equal(t, "2025-03-10 08:02:00", entry.CreatedAt)
	assert.Equal(t, "2025-03-10 08:02:00", entry.UpdatedAt)
}
