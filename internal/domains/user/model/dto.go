package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"snippethub-backend/internal/shared/validator"
)

// UpdateProfileRequest updates the caller's own mutable fields. Identity
// fields (email, external id) are owned by the auth provider and synced
// through webhooks, never edited here.
type UpdateProfileRequest struct {
	Name     *string                `json:"name"`
	ImageURL *string                `json:"image_url"`
	Metadata map[string]interface{} `json:"metadata"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.ImageURL, validator.URLRule),
	)
}

func (r UpdateProfileRequest) IsEmpty() bool {
	return r.Name == nil && r.ImageURL == nil && r.Metadata == nil
}

// ProviderWebhookRequest is the auth provider's event envelope.
type ProviderWebhookRequest struct {
	Type string              `json:"type"`
	Data ProviderWebhookData `json:"data"`
}

type ProviderWebhookData struct {
	ExternalID    string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	ImageURL      string `json:"image_url"`
	EmailVerified bool   `json:"email_verified"`
}

func (r ProviderWebhookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(
			WebhookUserCreated, WebhookUserUpdated, WebhookUserDeleted, WebhookSessionCreated,
		).Error("unsupported event type")),
		validation.Field(&r.Data),
	)
}

func (d ProviderWebhookData) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ExternalID, validation.Required),
		validation.Field(&d.Email, validator.EmailRule),
	)
}

// Auth provider webhook event types.
const (
	WebhookUserCreated    = "user.created"
	WebhookUserUpdated    = "user.updated"
	WebhookUserDeleted    = "user.deleted"
	WebhookSessionCreated = "session.created"
)

// ListFilter narrows the admin user listing.
type ListFilter struct {
	Role         string
	Subscription string
	Search       string
	Limit        int
	Offset       int
}
