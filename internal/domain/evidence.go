package domain

import (
	"time"

	"github.com/google/uuid"
)

// Evidence is a file a department attaches to a compliance verdict. The
// object itself lives in object storage; this row is the pointer.
type Evidence struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	ComplianceStatusID uuid.UUID  `json:"compliance_status_id" db:"compliance_status_id"`
	FileName           string     `json:"file_name" db:"file_name"`
	ObjectKey          string     `json:"-" db:"object_key"`
	ContentType        string     `json:"content_type" db:"content_type"`
	SizeBytes          int64      `json:"size_bytes" db:"size_bytes"`
	URL                string     `json:"url,omitempty" db:"-"`
	UploadedBy         *uuid.UUID `json:"uploaded_by,omitempty" db:"uploaded_by"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
}
