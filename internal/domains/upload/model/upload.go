package model

import (
	"time"

	"github.com/google/uuid"
)

// Upload statuses: pending until the worker post-processes the object.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

// Upload records an object stored on behalf of a user.
type Upload struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	ObjectKey   string    `json:"-" db:"object_key"`
	URL         string    `json:"url" db:"url"`
	FileName    string    `json:"file_name" db:"file_name"`
	ContentType string    `json:"content_type" db:"content_type"`
	SizeBytes   int64     `json:"size_bytes" db:"size_bytes"`
	Checksum    *string   `json:"checksum,omitempty" db:"checksum"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
