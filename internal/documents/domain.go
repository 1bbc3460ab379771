package documents

import "time"

// Document represents stored document metadata. The blob itself lives in an
// external object store addressed by StorageKey.
type Document struct {
	ID          int64
	EmployeeID  *int64
	Title       string
	FileName    string
	ContentType string
	StorageKey  string
	UploadedBy  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
