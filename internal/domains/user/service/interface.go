package service

import (
	"context"

	"github.com/google/uuid"

	"snippethub-backend/internal/domains/user/model"
	"snippethub-backend/internal/shared"
	"snippethub-backend/internal/shared/middleware"
	"snippethub-backend/pkg/jwt"
)

type ServiceInterface interface {
	// EnsureUser satisfies middleware.UserProvisioner.
	EnsureUser(ctx context.Context, claims *jwt.Claims) (*middleware.AuthedUser, error)

	GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest, meta shared.RequestMeta) (*model.User, error)
	HandleProviderWebhook(ctx context.Context, req model.ProviderWebhookRequest) error
	List(ctx context.Context, filter model.ListFilter) ([]model.User, int, error)
}
