package domain

import "time"

// File categories. Each category maps to a fixed subdirectory of the storage
// tree; CategoryGeneral is the catch-all default.
const (
	CategoryDocuments    = "documents"
	CategoryProcedures   = "procedures"
	CategoryForms        = "forms"
	CategoryCertificates = "certificates"
	CategoryReports      = "reports"
	CategoryGeneral      = "general"
)

// Categories lists every valid file category.
var Categories = []string{
	CategoryDocuments,
	CategoryProcedures,
	CategoryForms,
	CategoryCertificates,
	CategoryReports,
	CategoryGeneral,
}

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// SoftRef is a weak (table, id) reference to any other entity. Integrity is
// NOT enforced by the database; the referenced row may not exist.
type SoftRef struct {
	Table string
	ID    int64
}

// FileRecord is a registered upload: a row in uploaded_files plus the copied
// object at Path. Hash is the SHA-256 digest of the content at the moment of
// storage; StoredName embeds a UTC timestamp and the first 8 hex digits of the
// digest so identical original names never collide.
type FileRecord struct {
	ID           int64
	OriginalName string
	StoredName   string
	Path         string
	Type         string
	Size         int64
	Hash         string
	Category     string
	Related      *SoftRef
	UploadedBy   *int64
	UploadedAt   time.Time
	Description  string
}
