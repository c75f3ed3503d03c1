package service

import (
	"context"
	"time"

	"snippethub-backend/internal/domains/audit/model"
	"snippethub-backend/internal/domains/audit/repository"
	"snippethub-backend/internal/shared/apperror"
	"snippethub-backend/pkg/logger"
)

const recordTimeout = 3 * time.Second

type auditService struct {
	repo repository.RepositoryInterface
}

func NewAuditService(repo repository.RepositoryInterface) ServiceInterface {
	return &auditService{repo: repo}
}

func (s *auditService) Record(ctx context.Context, entry *model.Entry) {
	if !entry.Action.IsValid() {
		logger.Warn().
			Str("action", string(entry.Action)).
			Str("resource_type", entry.ResourceType).
			Msg("Dropping audit entry with unknown action")
		return
	}

	// Detach from the request context so a cancelled request still gets
	// its trail written.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := s.repo.Create(writeCtx, entry); err != nil {
		logger.Error().
			Err(err).
			Str("action", string(entry.Action)).
			Str("resource_type", entry.ResourceType).
			Str("resource_id", entry.ResourceID).
			Msg("Failed to write audit entry")
	}
}

func (s *auditService) List(ctx context.Context, filter model.ListFilter) ([]model.Entry, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Action != "" && !filter.Action.IsValid() {
		return nil, 0, apperror.Validation("invalid action filter", []apperror.FieldError{
			{Field: "action", Message: "unknown action", Code: "invalid"},
		})
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperror.From(err)
	}
	return entries, total, nil
}

func (s *auditService) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		logger.Info().
			Int64("deleted", deleted).
			Time("cutoff", cutoff).
			Msg("Pruned audit entries")
	}
	return deleted, nil
}
