package model

import (
	"time"
)

// Report is a captured medical report image owned by a user.
type Report struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"-"`
	Filename    string    `db:"filename" json:"filename"` // report_<unix-ms><ext>
	MimeType    string    `db:"mime_type" json:"mimeType"`
	Size        int64     `db:"size" json:"size"`
	StoragePath string    `db:"storage_path" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`

	// Computed fields (not in database)
	URL string `db:"-" json:"url"`
}
