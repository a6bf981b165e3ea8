package audit

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbacademy/qmscore/internal/domain"
	"github.com/qbacademy/qmscore/internal/store"
	"github.com/qbacademy/qmscore/internal/testutil"
)

func TestAppend_WritesRow(t *testing.T) {
	st := testutil.OpenStore(t, nil)
	log := New(st)

	actor := &domain.Identity{
		UserID:    1,
		Username:  "admin",
		SessionID: uuid.New(),
	}
	err := log.Append(context.Background(), Entry{
		Actor:    actor,
		Action:   "تحديث بيانات النموذج",
		Table:    "form_data",
		RecordID: 7,
		Old:      map[string]any{"weeks": 4},
		New:      map[string]any{"weeks": 6},
	})
	require.NoError(t, err)

	var userID int64
	var action, table, oldJSON, newJSON, sessionID string
	var recordID int64
	err = st.DB().QueryRow(`
		SELECT user_id, action, table_name, record_id, old_values, new_values, session_id
		FROM activity_log ORDER BY id DESC LIMIT 1
	`).Scan(&userID, &action, &table, &recordID, &oldJSON, &newJSON, &sessionID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), userID)
	assert.Equal(t, "تحديث بيانات النموذج", action)
	assert.Equal(t, "form_data", table)
	assert.Equal(t, int64(7), recordID)
	assert.JSONEq(t, `{"weeks": 4}`, oldJSON)
	assert.JSONEq(t, `{"weeks": 6}`, newJSON)
	assert.Equal(t, actor.SessionID.String(), sessionID)
}

func TestAppend_SystemActionHasNullActor(t *testing.T) {
	st := testutil.OpenStore(t, nil)
	log := New(st)

	err := log.Append(context.Background(), Entry{Action: "إصلاح تلقائي"})
	require.NoError(t, err)

	var userID, table, recordID, oldJSON, newJSON, sessionID sql.NullString
	err = st.DB().QueryRow(`
		SELECT user_id, table_name, record_id, old_values, new_values, session_id
		FROM activity_log ORDER BY id DESC LIMIT 1
	`).Scan(&userID, &table, &recordID, &oldJSON, &newJSON, &sessionID)
	require.NoError(t, err)

	assert.False(t, userID.Valid, "user_id must be NULL for system actions")
	assert.False(t, table.Valid)
	assert.False(t, recordID.Valid)
	assert.False(t, oldJSON.Valid)
	assert.False(t, newJSON.Valid)
	assert.False(t, sessionID.Valid)
}

func TestAppend_SnapshotKeepsArabicReadable(t *testing.T) {
	st := testutil.OpenStore(t, nil)
	log := New(st)

	err := log.Append(context.Background(), Entry{
		Action: "إنشاء مستخدم جديد",
		New:    map[string]any{"full_name": "سارة <مسؤول>"},
	})
	require.NoError(t, err)

	var newJSON string
	err = st.DB().QueryRow(
		`SELECT new_values FROM activity_log ORDER BY id DESC LIMIT 1`,
	).Scan(&newJSON)
	require.NoError(t, err)

	assert.Contains(t, newJSON, "سارة <مسؤول>")
	assert.NotContains(t, newJSON, `\u003c`)
}

func TestOpen_DecoupledHandle(t *testing.T) {
	st := testutil.OpenStore(t, nil)

	log, err := Open(st.Path(), store.Options{})
	require.NoError(t, err)
	defer log.Close()

	// The secondary handle must not bootstrap a second admin.
	var users int
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM users").Scan(&users))
	assert.Equal(t, 1, users)

	// And appends through it are visible on the primary handle.
	require.NoError(t, log.Append(context.Background(), Entry{Action: "تسجيل الدخول"}))
	var entries int
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM activity_log").Scan(&entries))
	assert.Equal(t, 1, entries)
}

func TestBestEffort_SwallowsFailure(t *testing.T) {
	st := testutil.OpenStore(t, nil)

	log, err := Open(st.Path(), store.Options{})
	require.NoError(t, err)
	require.NoError(t, log.Close())

	// Closed handle: Append fails, BestEffort must not panic or propagate.
	log.BestEffort(context.Background(), Entry{Action: "حذف ملف"})

	err = log.Append(context.Background(), Entry{Action: "حذف ملف"})
	assert.Error(t, err)
}

func TestRecent_NewestFirst(t *testing.T) {
	st := testutil.OpenStore(t, nil)
	log := New(st)
	ctx := context.Background()

	for _, action := range []string{"first", "second", "third"} {
		require.NoError(t, log.Append(ctx, Entry{Action: action}))
	}

	entries, err := log.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[0].Action)
	assert.Equal(t, "second", entries[1].Action)
}

func TestRecent_EmptyLogIsNotNil(t *testing.T) {
	st := testutil.OpenStore(t, nil)

	entries, err := New(st).Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestClose_DoesNotCloseBorrowedHandle(t *testing.T) {
	st := testutil.OpenStore(t, nil)
	log := New(st)

	require.NoError(t, log.Close())

	// The wrapped store must still be usable.
	var count int
	assert.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
}
