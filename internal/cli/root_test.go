package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the CLI against a throwaway database and returns
// captured stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// pinTestEnv points every path-bearing setting into t.TempDir() so commands
// never touch the working directory.
func pinTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	t.Setenv("QMS_CONFIG", "")
	os.Unsetenv("QMS_CONFIG")
	t.Setenv("QMS_DATABASE_PATH", filepath.Join(dir, "test.db"))
	t.Setenv("QMS_FILES_DIR", filepath.Join(dir, "uploads"))
	t.Setenv("QMS_FORMS_SAVE_DELAY", "0s")

	return dir
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	pinTestEnv(t)

	_, err := runCommand(t, "--format", "xml", "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInitCommand_CreatesDatabaseAndTree(t *testing.T) {
	dir := pinTestEnv(t)

	out, err := runCommand(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "database ready")

	if _, err := os.Stat(filepath.Join(dir, "test.db")); err != nil {
		t.Errorf("database file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "uploads", "general")); err != nil {
		t.Errorf("storage tree missing: %v", err)
	}
}

func TestStatsCommand_JSON(t *testing.T) {
	pinTestEnv(t)

	_, err := runCommand(t, "init")
	require.NoError(t, err)

	out, err := runCommand(t, "--format", "json", "stats")
	require.NoError(t, err)

	var stats struct {
		ActiveUsers int64 `json:"active_users"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, int64(1), stats.ActiveUsers, "fresh database holds the bootstrap admin")
}

func TestBackupCommand_WritesSnapshot(t *testing.T) {
	pinTestEnv(t)
	backups := t.TempDir()

	_, err := runCommand(t, "init")
	require.NoError(t, err)

	out, err := runCommand(t, "backup", "--dir", backups)
	require.NoError(t, err)

	dest := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(filepath.Base(dest), "backup_qb_academy_"))
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("snapshot missing: %v", err)
	}
}

func TestUserCommands_CreateAndList(t *testing.T) {
	pinTestEnv(t)

	_, err := runCommand(t, "user", "create",
		"--new-username", "sara",
		"--new-password", "s3cret1",
		"--full-name", "سارة أحمد",
	)
	require.NoError(t, err)

	// Duplicate username surfaces as a friendly error.
	_, err = runCommand(t, "user", "create",
		"--new-username", "sara",
		"--new-password", "s3cret1",
		"--full-name", "سارة أحمد",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, err := runCommand(t, "user", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "admin")
	assert.Contains(t, out, "sara")
}

func TestLogCommand_ShowsRecentActivity(t *testing.T) {
	pinTestEnv(t)

	_, err := runCommand(t, "user", "create",
		"--new-username", "sara",
		"--new-password", "s3cret1",
		"--full-name", "سارة أحمد",
	)
	require.NoError(t, err)

	out, err := runCommand(t, "log")
	require.NoError(t, err)
	assert.Contains(t, out, "إنشاء مستخدم جديد")
}

func TestFormsCommands_SetGetRm(t *testing.T) {
	pinTestEnv(t)

	payload := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(payload, []byte(`{"weeks": 4}`), 0o644))

	_, err := runCommand(t, "forms", "set", "training_plan", "--file", payload)
	require.NoError(t, err)

	out, err := runCommand(t, "forms", "get", "training_plan")
	require.NoError(t, err)
	assert.Contains(t, out, `"weeks": 4`)

	out, err = runCommand(t, "forms", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "training_plan")

	_, err = runCommand(t, "forms", "rm", "training_plan")
	require.NoError(t, err)

	_, err = runCommand(t, "forms", "get", "training_plan")
	require.Error(t, err)
}

func TestFilesAdd_EnforcesSizeLimitAtBoundary(t *testing.T) {
	pinTestEnv(t)
	t.Setenv("QMS_MAX_UPLOAD_SIZE", "10")

	src := filepath.Join(t.TempDir(), "big.bin")
	require.NoError(t, os.WriteFile(src, bytes.Repeat([]byte{'x'}, 64), 0o644))

	_, err := runCommand(t, "files", "add", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file too large")
}

func TestFilesCommands_AddListRm(t *testing.T) {
	pinTestEnv(t)

	src := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(src, []byte("pdf"), 0o644))

	out, err := runCommand(t, "files", "add", src, "--category", "reports")
	require.NoError(t, err)
	assert.Contains(t, out, "stored report.pdf")

	out, err = runCommand(t, "--format", "json", "files", "list", "--category", "reports")
	require.NoError(t, err)

	var records []struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)

	_, err = runCommand(t, "files", "rm", "--id", "1")
	require.NoError(t, err)

	out, err = runCommand(t, "--format", "json", "files", "list")
	require.NoError(t, err)
	records = nil
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Empty(t, records)
}
