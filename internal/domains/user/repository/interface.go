package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"snippethub-backend/internal/domains/user/model"
)

// RepositoryInterface scopes reads to active accounts unless the method name
// says otherwise. Soft-deleted rows are invisible everywhere else.
type RepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
	GetByBillingCustomerID(ctx context.Context, customerID string) (*model.User, error)

	// UpsertByExternalID creates the account on first sight or refreshes
	// provider-owned fields on an existing one. created reports which.
	UpsertByExternalID(ctx context.Context, user *model.User) (created bool, err error)

	UpdateProfile(ctx context.Context, user *model.User) error
	UpdateLastLogin(ctx context.Context, externalID string, at time.Time) error
	SetBillingCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
	SetSubscription(ctx context.Context, id uuid.UUID, tier string) error

	SoftDeleteByExternalID(ctx context.Context, externalID string) error
	List(ctx context.Context, filter model.ListFilter) ([]model.User, int, error)
}
