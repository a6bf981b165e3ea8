package domain

import "time"

// ActivityEntry is one append-only row of the activity log. Entries are
// informational: they are never updated or deleted by the core, and a failed
// append never fails the operation that triggered it.
type ActivityEntry struct {
	ID        int64
	UserID    *int64
	Action    string
	TableName string
	RecordID  *int64
	OldValues any
	NewValues any
	Timestamp time.Time
	IPAddress string
}
