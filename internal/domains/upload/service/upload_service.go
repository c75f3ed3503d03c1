package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	auditmodel "snippethub-backend/internal/domains/audit/model"
	auditservice "snippethub-backend/internal/domains/audit/service"
	"snippethub-backend/internal/domains/upload/model"
	"snippethub-backend/internal/domains/upload/repository"
	"snippethub-backend/internal/infrastructure/queue"
	"snippethub-backend/internal/infrastructure/storage"
	"snippethub-backend/internal/shared"
	"snippethub-backend/internal/shared/apperror"
	"snippethub-backend/pkg/logger"
)

const maxUploadSize = 10 << 20 // 10 MiB

var allowedContentTypes = map[string]struct{}{
	"image/png":        {},
	"image/jpeg":       {},
	"image/gif":        {},
	"image/webp":       {},
	"text/plain":       {},
	"application/json": {},
	"application/pdf":  {},
}

type ServiceInterface interface {
	Upload(ctx context.Context, userID uuid.UUID, fileName, contentType string, data []byte, meta shared.RequestMeta) (*model.Upload, error)
	GetByID(ctx context.Context, id, requesterID uuid.UUID) (*model.Upload, error)
	ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Upload, int, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, checksum string) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

type uploadService struct {
	repo    repository.RepositoryInterface
	storage *storage.MinIOStorage
	audit   auditservice.ServiceInterface
	queue   *queue.Client // nil when jobs are disabled
}

func NewUploadService(
	repo repository.RepositoryInterface,
	store *storage.MinIOStorage,
	audit auditservice.ServiceInterface,
	queueClient *queue.Client,
) ServiceInterface {
	return &uploadService{
		repo:    repo,
		storage: store,
		audit:   audit,
		queue:   queueClient,
	}
}

func (s *uploadService) Upload(ctx context.Context, userID uuid.UUID, fileName, contentType string, data []byte, meta shared.RequestMeta) (*model.Upload, error) {
	if len(data) == 0 {
		return nil, apperror.Validation("empty file", nil)
	}
	if len(data) > maxUploadSize {
		return nil, apperror.Validation("file exceeds the 10MB limit", nil)
	}
	if _, ok := allowedContentTypes[contentType]; !ok {
		return nil, apperror.Validation("unsupported content type", []apperror.FieldError{
			{Field: "file", Message: fmt.Sprintf("content type %q is not allowed", contentType), Code: "invalid"},
		})
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	key := fmt.Sprintf("uploads/%s/%s%s", userID, uuid.New(), ext)

	url, err := s.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, apperror.BadGateway("Storage upload failed", err)
	}

	upload := &model.Upload{
		UserID:      userID,
		ObjectKey:   key,
		URL:         url,
		FileName:    filepath.Base(fileName),
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Status:      model.StatusPending,
	}

	if err := s.repo.Create(ctx, upload); err != nil {
		// Row failed after the object landed; remove the orphan.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			logger.Warn().Err(delErr).Str("object_key", key).Msg("Failed to remove orphaned object")
		}
		return nil, apperror.From(err)
	}

	s.audit.Record(ctx, &auditmodel.Entry{
		ActorID:      actorPtr(meta.ActorID),
		Action:       auditmodel.ActionUpload,
		ResourceType: "upload",
		ResourceID:   upload.ID.String(),
		Metadata: map[string]interface{}{
			"file_name":    upload.FileName,
			"content_type": upload.ContentType,
			"size_bytes":   upload.SizeBytes,
		},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		RequestID: meta.RequestID,
	})

	if s.queue != nil {
		if err := s.queue.EnqueueProcessUpload(ctx, shared.ProcessUploadPayload{UploadID: upload.ID}); err != nil {
			logger.Warn().Err(err).Str("upload_id", upload.ID.String()).Msg("Failed to enqueue upload processing")
		}
	}

	return upload, nil
}

func (s *uploadService) GetByID(ctx context.Context, id, requesterID uuid.UUID) (*model.Upload, error) {
	upload, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Upload not found")
		}
		return nil, apperror.From(err)
	}

	if upload.UserID != requesterID {
		return nil, apperror.NotFound("Upload not found")
	}
	return upload, nil
}

func (s *uploadService) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Upload, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	uploads, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, apperror.From(err)
	}
	return uploads, total, nil
}

func (s *uploadService) MarkProcessed(ctx context.Context, id uuid.UUID, checksum string) error {
	return s.repo.UpdateStatus(ctx, id, model.StatusProcessed, &checksum)
}

func (s *uploadService) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return s.repo.UpdateStatus(ctx, id, model.StatusFailed, nil)
}

func actorPtr(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
