package model

import (
	"time"

	"github.com/google/uuid"
)

// Action classifies what an audit entry records.
type Action string

const (
	ActionCreate             Action = "create"
	ActionUpdate             Action = "update"
	ActionDelete             Action = "delete"
	ActionPublish            Action = "publish"
	ActionArchive            Action = "archive"
	ActionRestore            Action = "restore"
	ActionRead               Action = "read"
	ActionLogin              Action = "login"
	ActionUpload             Action = "upload"
	ActionSubscriptionChange Action = "subscription_change"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionPublish, ActionArchive,
		ActionRestore, ActionRead, ActionLogin, ActionUpload, ActionSubscriptionChange:
		return true
	}
	return false
}

// FieldChange is one before/after pair in an update diff.
type FieldChange struct {
	Before interface{} `json:"before"`
	After  interface{} `json:"after"`
}

// Entry is one immutable audit record. Rows are append-only: nothing in the
// application updates or deletes them; only the retention job prunes by age.
type Entry struct {
	ID           uuid.UUID              `json:"id" db:"id"`
	ActorID      *uuid.UUID             `json:"actor_id" db:"actor_id"`
	ActorEmail   *string                `json:"actor_email" db:"actor_email"`
	Action       Action                 `json:"action" db:"action"`
	ResourceType string                 `json:"resource_type" db:"resource_type"`
	ResourceID   string                 `json:"resource_id" db:"resource_id"`
	Changes      map[string]FieldChange `json:"changes,omitempty" db:"changes"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	IPAddress    string                 `json:"ip_address" db:"ip_address"`
	UserAgent    string                 `json:"user_agent" db:"user_agent"`
	RequestID    string                 `json:"request_id" db:"request_id"`
	StatusCode   int                    `json:"status_code" db:"status_code"`
	DurationMS   int                    `json:"duration_ms" db:"duration_ms"`
	CreatedAt    time.Time              `json:"created_at" db:"created_at"`
}

// ListFilter narrows the admin audit listing.
type ListFilter struct {
	ActorID      uuid.UUID
	ResourceType string
	ResourceID   string
	Action       Action
	Limit        int
	Offset       int
}
