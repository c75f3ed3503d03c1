package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Status is the snippet lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Snippet is the primary user-owned resource.
type Snippet struct {
	ID          uuid.UUID              `json:"id" db:"id"`
	UserID      uuid.UUID              `json:"user_id" db:"user_id"`
	Name        string                 `json:"name" db:"name"`
	Description *string                `json:"description,omitempty" db:"description"`
	Status      Status                 `json:"status" db:"status"`
	Tags        pq.StringArray         `json:"tags" db:"tags"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	IsPublic    bool                   `json:"is_public" db:"is_public"`
	PublishedAt *time.Time             `json:"published_at,omitempty" db:"published_at"`
	ViewCount   int                    `json:"view_count" db:"view_count"`
	DeletedAt   *time.Time             `json:"-" db:"deleted_at"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at" db:"updated_at"`
}

func (s *Snippet) IsDeleted() bool {
	return s.DeletedAt != nil
}

// CanEdit reports whether userID owns this snippet.
func (s *Snippet) CanEdit(userID uuid.UUID) bool {
	return s.UserID == userID
}

// CanPublish reports whether the lifecycle allows publishing. Archived is
// terminal; published is idempotent-rejected at the service layer.
func (s *Snippet) CanPublish() bool {
	return s.Status == StatusDraft
}

// Publish moves a draft to published and stamps published_at.
func (s *Snippet) Publish(makePublic bool) {
	now := time.Now()
	s.Status = StatusPublished
	s.PublishedAt = &now
	if makePublic {
		s.IsPublic = true
	}
}

// Archive retires a snippet. Archived snippets are never publicly visible.
func (s *Snippet) Archive() {
	s.Status = StatusArchived
	s.IsPublic = false
}

// SoftDelete marks the row deleted without removing it.
func (s *Snippet) SoftDelete() {
	now := time.Now()
	s.DeletedAt = &now
}
