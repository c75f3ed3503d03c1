package shared

import "github.com/google/uuid"

// Asynq task type names shared between the API (enqueue side) and the worker.
const (
	TypeSendWelcomeEmail   = "email:welcome"
	TypeSendPublishedEmail = "email:snippet_published"
	TypeProcessUpload      = "upload:process"
	TypePruneAuditLogs     = "audit:prune"
)

// WelcomeEmailPayload is enqueued when a user is first provisioned.
type WelcomeEmailPayload struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
}

// PublishedEmailPayload is enqueued when a snippet is published.
type PublishedEmailPayload struct {
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email"`
	SnippetID   uuid.UUID `json:"snippetId"`
	SnippetName string    `json:"snippetName"`
}

// ProcessUploadPayload is enqueued after a file lands in object storage.
type ProcessUploadPayload struct {
	UploadID uuid.UUID `json:"uploadId"`
}

// PruneAuditLogsPayload carries the retention window for the cleanup job.
type PruneAuditLogsPayload struct {
	RetentionDays int `json:"retentionDays"`
}

// RequestMeta carries request attribution from handlers into audit entries.
type RequestMeta struct {
	ActorID    uuid.UUID
	ActorEmail string
	IPAddress  string
	UserAgent  string
	RequestID  string
}
