package service

import (
	"context"

	"github.com/google/uuid"

	"snippethub-backend/internal/domains/snippet/model"
	"snippethub-backend/internal/shared"
)

type ServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, req model.CreateSnippetRequest, meta shared.RequestMeta) (*model.Snippet, error)

	// GetByID enforces visibility and counts a view when the requester is
	// not the owner and countView is set.
	GetByID(ctx context.Context, id, requesterID uuid.UUID, countView bool) (*model.Snippet, error)

	List(ctx context.Context, query model.ListQuery) ([]model.Snippet, int, error)
	ListMine(ctx context.Context, userID uuid.UUID, opts model.ListOptions) ([]model.Snippet, int, error)
	GetPopular(ctx context.Context, limit int) ([]model.Snippet, error)
	GetUserStats(ctx context.Context, userID uuid.UUID) (*model.UserStats, error)

	Update(ctx context.Context, id, userID uuid.UUID, req model.UpdateSnippetRequest, meta shared.RequestMeta) (*model.Snippet, error)
	Delete(ctx context.Context, id, userID uuid.UUID, meta shared.RequestMeta) error
	Publish(ctx context.Context, id, userID uuid.UUID, req model.PublishRequest, meta shared.RequestMeta) (*model.Snippet, error)
	Archive(ctx context.Context, id, userID uuid.UUID, meta shared.RequestMeta) (*model.Snippet, error)
	BulkDelete(ctx context.Context, userID uuid.UUID, req model.BulkDeleteRequest, meta shared.RequestMeta) (*model.BulkDeleteResult, error)

	// Admin scope.
	ListAllIncludingDeleted(ctx context.Context, limit, offset int) ([]model.Snippet, int, error)
	Restore(ctx context.Context, id uuid.UUID, meta shared.RequestMeta) (*model.Snippet, error)
}
