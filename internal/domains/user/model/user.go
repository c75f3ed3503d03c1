package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles form a strict hierarchy: admin > moderator > user.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Subscription tiers mirror the billing provider's plan names.
const (
	SubscriptionFree = "free"
	SubscriptionPro  = "pro"
	SubscriptionTeam = "team"
)

func IsValidSubscription(tier string) bool {
	switch tier {
	case SubscriptionFree, SubscriptionPro, SubscriptionTeam:
		return true
	}
	return false
}

// User is a local account mirroring an identity at the auth provider.
// ExternalID is the provider-side user id carried in token subjects.
type User struct {
	ID                uuid.UUID              `json:"id" db:"id"`
	ExternalID        string                 `json:"external_id" db:"external_id"`
	Email             string                 `json:"email" db:"email"`
	Name              string                 `json:"name" db:"name"`
	Role              string                 `json:"role" db:"role"`
	Subscription      string                 `json:"subscription" db:"subscription"`
	BillingCustomerID *string                `json:"-" db:"billing_customer_id"`
	Metadata          map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	EmailVerified     bool                   `json:"email_verified" db:"email_verified"`
	ImageURL          *string                `json:"image_url,omitempty" db:"image_url"`
	LastLoginAt       *time.Time             `json:"last_login_at,omitempty" db:"last_login_at"`
	DeletedAt         *time.Time             `json:"-" db:"deleted_at"`
	CreatedAt         time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at" db:"updated_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
