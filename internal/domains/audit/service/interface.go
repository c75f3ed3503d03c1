package service

import (
	"context"

	"snippethub-backend/internal/domains/audit/model"
)

type ServiceInterface interface {
	// Record writes an audit entry. Failures are logged, never returned:
	// an audit miss must not fail the request that triggered it.
	Record(ctx context.Context, entry *model.Entry)
	List(ctx context.Context, filter model.ListFilter) ([]model.Entry, int, error)
	Prune(ctx context.Context, retentionDays int) (int64, error)
}
