package domain

import "time"

// FormRecord is one row of the generic form-data store. FormName is the
// natural key: exactly one current row exists per name (upsert semantics,
// enforced by a unique index). Payload is replaced wholesale on every save.
type FormRecord struct {
	ID        int64
	FormName  string
	Payload   Payload
	CreatedBy *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
