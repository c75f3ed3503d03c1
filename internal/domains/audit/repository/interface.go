package repository

import (
	"context"
	"time"

	"snippethub-backend/internal/domains/audit/model"
)

// RepositoryInterface is the audit data access contract.
// Create is the only write; DeleteOlderThan exists solely for the
// retention job and is never called from request handling.
type RepositoryInterface interface {
	Create(ctx context.Context, entry *model.Entry) error
	List(ctx context.Context, filter model.ListFilter) ([]model.Entry, int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
