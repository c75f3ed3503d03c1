package repository

import (
	"context"

	"github.com/google/uuid"

	"snippethub-backend/internal/domains/upload/model"
)

type RepositoryInterface interface {
	Create(ctx context.Context, upload *model.Upload) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Upload, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Upload, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, checksum *string) error
}
