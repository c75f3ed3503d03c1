package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	auditmodel "snippethub-backend/internal/domains/audit/model"
	auditservice "snippethub-backend/internal/domains/audit/service"
	"snippethub-backend/internal/domains/user/model"
	"snippethub-backend/internal/domains/user/repository"
	"snippethub-backend/internal/infrastructure/queue"
	"snippethub-backend/internal/shared"
	"snippethub-backend/internal/shared/apperror"
	"snippethub-backend/internal/shared/middleware"
	"snippethub-backend/pkg/jwt"
	"snippethub-backend/pkg/logger"
)

type userService struct {
	repo  repository.RepositoryInterface
	audit auditservice.ServiceInterface
	queue *queue.Client // nil when the jobs integration is disabled
}

func NewUserService(
	repo repository.RepositoryInterface,
	audit auditservice.ServiceInterface,
	queueClient *queue.Client,
) ServiceInterface {
	return &userService{
		repo:  repo,
		audit: audit,
		queue: queueClient,
	}
}

// EnsureUser resolves token claims to a local account, creating it on first
// sight. Called on every authenticated request, so the common path is a
// single upsert.
func (s *userService) EnsureUser(ctx context.Context, claims *jwt.Claims) (*middleware.AuthedUser, error) {
	user := &model.User{
		ExternalID: claims.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
		Role:       claims.Role,
	}

	created, err := s.repo.UpsertByExternalID(ctx, user)
	if err != nil {
		return nil, apperror.From(err)
	}

	if created {
		logger.Info().
			Str("user_id", user.ID.String()).
			Str("external_id", user.ExternalID).
			Msg("Provisioned new user")

		s.audit.Record(ctx, &auditmodel.Entry{
			ActorID:      &user.ID,
			ActorEmail:   &user.Email,
			Action:       auditmodel.ActionCreate,
			ResourceType: "user",
			ResourceID:   user.ID.String(),
		})

		if s.queue != nil && user.Email != "" {
			if err := s.queue.EnqueueWelcomeEmail(ctx, shared.WelcomeEmailPayload{
				UserID: user.ID,
				Email:  user.Email,
				Name:   user.Name,
			}); err != nil {
				logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("Failed to enqueue welcome email")
			}
		}
	}

	return &middleware.AuthedUser{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	}, nil
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.From(err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest, meta shared.RequestMeta) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.From(err)
	}
	if req.IsEmpty() {
		return nil, apperror.Validation("no fields to update", nil)
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	changes := map[string]auditmodel.FieldChange{}
	if req.Name != nil && *req.Name != user.Name {
		changes["name"] = auditmodel.FieldChange{Before: user.Name, After: *req.Name}
		user.Name = *req.Name
	}
	if req.ImageURL != nil {
		changes["image_url"] = auditmodel.FieldChange{Before: user.ImageURL, After: req.ImageURL}
		user.ImageURL = req.ImageURL
	}
	if req.Metadata != nil {
		changes["metadata"] = auditmodel.FieldChange{Before: user.Metadata, After: req.Metadata}
		user.Metadata = req.Metadata
	}

	if len(changes) == 0 {
		return user, nil
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, apperror.From(err)
	}

	s.audit.Record(ctx, &auditmodel.Entry{
		ActorID:      &user.ID,
		ActorEmail:   &user.Email,
		Action:       auditmodel.ActionUpdate,
		ResourceType: "user",
		ResourceID:   user.ID.String(),
		Changes:      changes,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		RequestID:    meta.RequestID,
	})

	return user, nil
}

// HandleProviderWebhook syncs account state pushed by the auth provider.
// Events are idempotent: replays converge on the same row state.
func (s *userService) HandleProviderWebhook(ctx context.Context, req model.ProviderWebhookRequest) error {
	if err := req.Validate(); err != nil {
		return apperror.From(err)
	}

	switch req.Type {
	case model.WebhookUserCreated, model.WebhookUserUpdated:
		user := &model.User{
			ExternalID:    req.Data.ExternalID,
			Email:         req.Data.Email,
			Name:          req.Data.Name,
			EmailVerified: req.Data.EmailVerified,
		}
		if req.Data.ImageURL != "" {
			user.ImageURL = &req.Data.ImageURL
		}
		if _, err := s.repo.UpsertByExternalID(ctx, user); err != nil {
			return apperror.From(err)
		}

	case model.WebhookUserDeleted:
		if err := s.repo.SoftDeleteByExternalID(ctx, req.Data.ExternalID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Already deleted or never provisioned; nothing to do.
				return nil
			}
			return apperror.From(err)
		}
		s.audit.Record(ctx, &auditmodel.Entry{
			Action:       auditmodel.ActionDelete,
			ResourceType: "user",
			ResourceID:   req.Data.ExternalID,
			Metadata:     map[string]interface{}{"source": "provider_webhook"},
		})

	case model.WebhookSessionCreated:
		if err := s.repo.UpdateLastLogin(ctx, req.Data.ExternalID, time.Now()); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return apperror.From(err)
		}
	}

	return nil
}

func (s *userService) List(ctx context.Context, filter model.ListFilter) ([]model.User, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperror.From(err)
	}
	return users, total, nil
}
