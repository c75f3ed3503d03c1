package repository

import (
	"context"

	"github.com/google/uuid"

	"snippethub-backend/internal/domains/snippet/model"
)

// RepositoryInterface reads active rows only unless the method name says
// IncludingDeleted. The two scopes are separate methods on purpose: callers
// state which visibility they want instead of toggling a flag.
type RepositoryInterface interface {
	Create(ctx context.Context, snippet *model.Snippet) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Snippet, error)
	GetByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*model.Snippet, error)

	ListByUser(ctx context.Context, userID uuid.UUID, opts model.ListOptions) ([]model.Snippet, int, error)
	List(ctx context.Context, query model.ListQuery) ([]model.Snippet, int, error)
	Search(ctx context.Context, term string, requesterID uuid.UUID, limit, offset int) ([]model.Snippet, int, error)
	GetPopular(ctx context.Context, limit int) ([]model.Snippet, error)
	ListAllIncludingDeleted(ctx context.Context, limit, offset int) ([]model.Snippet, int, error)

	NameExists(ctx context.Context, userID uuid.UUID, name string, excludeID uuid.UUID) (bool, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error

	Update(ctx context.Context, snippet *model.Snippet) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error

	GetUserStats(ctx context.Context, userID uuid.UUID) (*model.UserStats, error)
}
