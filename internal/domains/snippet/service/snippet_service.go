package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	auditmodel "snippethub-backend/internal/domains/audit/model"
	auditservice "snippethub-backend/internal/domains/audit/service"
	"snippethub-backend/internal/domains/snippet/model"
	"snippethub-backend/internal/domains/snippet/repository"
	"snippethub-backend/internal/infrastructure/queue"
	"snippethub-backend/internal/infrastructure/realtime"
	"snippethub-backend/internal/shared"
	"snippethub-backend/internal/shared/apperror"
	"snippethub-backend/internal/shared/utils"
	"snippethub-backend/pkg/logger"
)

const resourceType = "snippet"

type snippetService struct {
	repo  repository.RepositoryInterface
	audit auditservice.ServiceInterface
	queue *queue.Client // nil when jobs are disabled
	hub   *realtime.Hub // nil when realtime is disabled
}

func NewSnippetService(
	repo repository.RepositoryInterface,
	audit auditservice.ServiceInterface,
	queueClient *queue.Client,
	hub *realtime.Hub,
) ServiceInterface {
	return &snippetService{
		repo:  repo,
		audit: audit,
		queue: queueClient,
		hub:   hub,
	}
}

func (s *snippetService) Create(ctx context.Context, userID uuid.UUID, req model.CreateSnippetRequest, meta shared.RequestMeta) (*model.Snippet, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.From(err)
	}

	// Advisory probe for a friendly error. The partial unique index is the
	// real guard; a lost race surfaces as 23505 and maps to Conflict anyway.
	exists, err := s.repo.NameExists(ctx, userID, req.Name, uuid.Nil)
	if err != nil {
		return nil, apperror.From(err)
	}
	if exists {
		return nil, apperror.Conflict("A snippet with this name already exists")
	}

	snippet := &model.Snippet{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Status:      model.StatusDraft,
		Tags:        normalizedTags(req.Tags),
		Metadata:    req.Metadata,
		IsPublic:    req.IsPublic,
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		return nil, apperror.From(err)
	}

	s.recordAudit(ctx, auditmodel.ActionCreate, snippet.ID, nil, meta)
	return snippet, nil
}

func (s *snippetService) GetByID(ctx context.Context, id, requesterID uuid.UUID, countView bool) (*model.Snippet, error) {
	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Snippet not found")
		}
		return nil, apperror.From(err)
	}

	isOwner := snippet.CanEdit(requesterID)
	if !isOwner && !snippet.IsPublic {
		return nil, apperror.Forbidden("You do not have access to this snippet")
	}

	// Owners reading their own work never move the counter.
	if countView && !isOwner {
		if err := s.repo.IncrementViewCount(ctx, id); err != nil {
			logger.Warn().Err(err).Str("snippet_id", id.String()).Msg("Failed to increment view count")
		} else {
			snippet.ViewCount++
		}
	}

	return snippet, nil
}

func (s *snippetService) List(ctx context.Context, query model.ListQuery) ([]model.Snippet, int, error) {
	if err := query.Validate(); err != nil {
		return nil, 0, apperror.Validation(err.Error(), nil)
	}
	normalizeLimits(&query.Limit, &query.Offset)

	// Text search is a dedicated ranked path and composes with nothing else.
	if term, ok := query.SearchTerm(); ok {
		if len(query.Filters) > 1 {
			return nil, 0, apperror.Validation("search cannot be combined with other filters", nil)
		}
		snippets, total, err := s.repo.Search(ctx, term, query.RequesterID, query.Limit, query.Offset)
		if err != nil {
			return nil, 0, apperror.From(err)
		}
		return snippets, total, nil
	}

	snippets, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, 0, apperror.From(err)
	}
	return snippets, total, nil
}

func (s *snippetService) ListMine(ctx context.Context, userID uuid.UUID, opts model.ListOptions) ([]model.Snippet, int, error) {
	if err := opts.Validate(); err != nil {
		return nil, 0, apperror.Validation(err.Error(), nil)
	}
	normalizeLimits(&opts.Limit, &opts.Offset)
	snippets, total, err := s.repo.ListByUser(ctx, userID, opts)
	if err != nil {
		return nil, 0, apperror.From(err)
	}
	return snippets, total, nil
}

func (s *snippetService) GetPopular(ctx context.Context, limit int) ([]model.Snippet, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	snippets, err := s.repo.GetPopular(ctx, limit)
	if err != nil {
		return nil, apperror.From(err)
	}
	return snippets, nil
}

func (s *snippetService) GetUserStats(ctx context.Context, userID uuid.UUID) (*model.UserStats, error) {
	stats, err := s.repo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, apperror.From(err)
	}
	return stats, nil
}

func (s *snippetService) Update(ctx context.Context, id, userID uuid.UUID, req model.UpdateSnippetRequest, meta shared.RequestMeta) (*model.Snippet, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.From(err)
	}
	if req.IsEmpty() {
		return nil, apperror.Validation("no fields to update", nil)
	}

	snippet, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	changes := map[string]auditmodel.FieldChange{}

	if req.Name != nil && *req.Name != snippet.Name {
		exists, err := s.repo.NameExists(ctx, userID, *req.Name, id)
		if err != nil {
			return nil, apperror.From(err)
		}
		if exists {
			return nil, apperror.Conflict("A snippet with this name already exists")
		}
		changes["name"] = auditmodel.FieldChange{Before: snippet.Name, After: *req.Name}
		snippet.Name = *req.Name
	}
	if req.Description != nil {
		changes["description"] = auditmodel.FieldChange{Before: snippet.Description, After: req.Description}
		snippet.Description = req.Description
	}
	if req.Tags != nil {
		tags := normalizedTags(*req.Tags)
		changes["tags"] = auditmodel.FieldChange{Before: snippet.Tags, After: tags}
		snippet.Tags = tags
	}
	if req.Metadata != nil {
		changes["metadata"] = auditmodel.FieldChange{Before: snippet.Metadata, After: req.Metadata}
		snippet.Metadata = req.Metadata
	}
	if req.IsPublic != nil && *req.IsPublic != snippet.IsPublic {
		if *req.IsPublic && snippet.Status == model.StatusArchived {
			return nil, apperror.Conflict("Archived snippets cannot be made public")
		}
		changes["is_public"] = auditmodel.FieldChange{Before: snippet.IsPublic, After: *req.IsPublic}
		snippet.IsPublic = *req.IsPublic
	}

	if len(changes) == 0 {
		return snippet, nil
	}

	if err := s.repo.Update(ctx, snippet); err != nil {
		return nil, apperror.From(err)
	}

	s.recordAudit(ctx, auditmodel.ActionUpdate, snippet.ID, changes, meta)
	return snippet, nil
}

func (s *snippetService) Delete(ctx context.Context, id, userID uuid.UUID, meta shared.RequestMeta) error {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NotFound("Snippet not found")
		}
		return apperror.From(err)
	}

	s.recordAudit(ctx, auditmodel.ActionDelete, id, nil, meta)
	return nil
}

// Publish moves draft → published. The lifecycle is one-way: published can
// only be archived, and archived is terminal.
func (s *snippetService) Publish(ctx context.Context, id, userID uuid.UUID, req model.PublishRequest, meta shared.RequestMeta) (*model.Snippet, error) {
	snippet, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	switch snippet.Status {
	case model.StatusPublished:
		return nil, apperror.Conflict("Snippet is already published")
	case model.StatusArchived:
		return nil, apperror.Conflict("Archived snippets cannot be published")
	}

	snippet.Publish(req.MakePublic)
	if err := s.repo.Update(ctx, snippet); err != nil {
		return nil, apperror.From(err)
	}

	s.recordAudit(ctx, auditmodel.ActionPublish, snippet.ID, nil, meta)

	if s.hub != nil {
		s.hub.Publish(userID, realtime.EventSnippetPublished, map[string]interface{}{
			"snippet_id": snippet.ID,
			"name":       snippet.Name,
		})
	}
	if s.queue != nil && meta.ActorEmail != "" {
		if err := s.queue.EnqueuePublishedEmail(ctx, shared.PublishedEmailPayload{
			UserID:      userID,
			Email:       meta.ActorEmail,
			SnippetID:   snippet.ID,
			SnippetName: snippet.Name,
		}); err != nil {
			logger.Warn().Err(err).Str("snippet_id", snippet.ID.String()).Msg("Failed to enqueue published email")
		}
	}

	return snippet, nil
}

func (s *snippetService) Archive(ctx context.Context, id, userID uuid.UUID, meta shared.RequestMeta) (*model.Snippet, error) {
	snippet, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if snippet.Status == model.StatusArchived {
		return nil, apperror.Conflict("Snippet is already archived")
	}

	snippet.Archive()
	if err := s.repo.Update(ctx, snippet); err != nil {
		return nil, apperror.From(err)
	}

	s.recordAudit(ctx, auditmodel.ActionArchive, snippet.ID, nil, meta)

	if s.hub != nil {
		s.hub.Publish(userID, realtime.EventSnippetArchived, map[string]interface{}{
			"snippet_id": snippet.ID,
			"name":       snippet.Name,
		})
	}

	return snippet, nil
}

// BulkDelete deletes each id independently. One bad id never rolls back the
// others; the result lists both outcomes.
func (s *snippetService) BulkDelete(ctx context.Context, userID uuid.UUID, req model.BulkDeleteRequest, meta shared.RequestMeta) (*model.BulkDeleteResult, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.From(err)
	}

	result := &model.BulkDeleteResult{
		Deleted: []uuid.UUID{},
		Failed:  []model.BulkDeleteError{},
	}

	for _, raw := range req.IDs {
		id := utils.ParseStringToUUID(raw)
		if id == uuid.Nil {
			result.Failed = append(result.Failed, model.BulkDeleteError{ID: raw, Reason: "invalid id"})
			continue
		}

		if err := s.Delete(ctx, id, userID, meta); err != nil {
			reason := "delete failed"
			var appErr *apperror.Error
			if errors.As(err, &appErr) {
				reason = appErr.Message
			}
			result.Failed = append(result.Failed, model.BulkDeleteError{ID: raw, Reason: reason})
			continue
		}

		result.Deleted = append(result.Deleted, id)
	}

	return result, nil
}

func (s *snippetService) ListAllIncludingDeleted(ctx context.Context, limit, offset int) ([]model.Snippet, int, error) {
	normalizeLimits(&limit, &offset)
	snippets, total, err := s.repo.ListAllIncludingDeleted(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperror.From(err)
	}
	return snippets, total, nil
}

func (s *snippetService) Restore(ctx context.Context, id uuid.UUID, meta shared.RequestMeta) (*model.Snippet, error) {
	snippet, err := s.repo.GetByIDIncludingDeleted(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Snippet not found")
		}
		return nil, apperror.From(err)
	}
	if !snippet.IsDeleted() {
		return nil, apperror.Conflict("Snippet is not deleted")
	}

	if err := s.repo.Restore(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.Conflict("Snippet is not deleted")
		}
		return nil, apperror.From(err)
	}
	snippet.DeletedAt = nil

	s.recordAudit(ctx, auditmodel.ActionRestore, snippet.ID, nil, meta)
	return snippet, nil
}

// getOwned loads an active snippet and checks ownership. Non-owners of
// private rows get NotFound from reads but Forbidden from writes: the write
// paths confirm the row exists before refusing.
func (s *snippetService) getOwned(ctx context.Context, id, userID uuid.UUID) (*model.Snippet, error) {
	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Snippet not found")
		}
		return nil, apperror.From(err)
	}
	if !snippet.CanEdit(userID) {
		return nil, apperror.Forbidden("You do not own this snippet")
	}
	return snippet, nil
}

func (s *snippetService) recordAudit(ctx context.Context, action auditmodel.Action, snippetID uuid.UUID, changes map[string]auditmodel.FieldChange, meta shared.RequestMeta) {
	entry := &auditmodel.Entry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   snippetID.String(),
		Changes:      changes,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		RequestID:    meta.RequestID,
	}
	if meta.ActorID != uuid.Nil {
		actorID := meta.ActorID
		entry.ActorID = &actorID
	}
	if meta.ActorEmail != "" {
		email := meta.ActorEmail
		entry.ActorEmail = &email
	}
	s.audit.Record(ctx, entry)
}

func normalizedTags(tags []string) pq.StringArray {
	normalized := utils.NormalizeTags(tags)
	if normalized == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(normalized)
}

func normalizeLimits(limit, offset *int) {
	if *limit <= 0 {
		*limit = 20
	}
	if *limit > 100 {
		*limit = 100
	}
	if *offset < 0 {
		*offset = 0
	}
}
