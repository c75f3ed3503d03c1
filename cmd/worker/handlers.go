package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"

	auditservice "snippethub-backend/internal/domains/audit/service"
	uploadmodel "snippethub-backend/internal/domains/upload/model"
	uploadrepo "snippethub-backend/internal/domains/upload/repository"
	"snippethub-backend/internal/infrastructure/email"
	"snippethub-backend/internal/infrastructure/storage"
	"snippethub-backend/internal/shared"
	"snippethub-backend/pkg/logger"
)

// taskHandlers holds the worker-side dependencies. Optional integrations are
// nil when disabled; their handlers then drop the task without retrying.
type taskHandlers struct {
	audit   auditservice.ServiceInterface
	uploads uploadrepo.RepositoryInterface
	email   email.EmailService
	storage *storage.MinIOStorage
}

func (h *taskHandlers) HandleWelcomeEmail(ctx context.Context, task *asynq.Task) error {
	var p shared.WelcomeEmailPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal welcome payload: %v: %w", err, asynq.SkipRetry)
	}

	if h.email == nil {
		logger.Debug().Str("email", p.Email).Msg("Email disabled, dropping welcome task")
		return nil
	}

	return h.email.SendWelcomeEmail(ctx, email.WelcomeEmailData{
		Email: p.Email,
		Name:  p.Name,
	})
}

func (h *taskHandlers) HandlePublishedEmail(ctx context.Context, task *asynq.Task) error {
	var p shared.PublishedEmailPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal published payload: %v: %w", err, asynq.SkipRetry)
	}

	if h.email == nil {
		logger.Debug().Str("email", p.Email).Msg("Email disabled, dropping published task")
		return nil
	}

	return h.email.SendPublishedEmail(ctx, email.PublishedEmailData{
		Email:       p.Email,
		SnippetName: p.SnippetName,
		SnippetURL:  fmt.Sprintf("/snippets/%s", p.SnippetID),
	})
}

// HandleProcessUpload verifies the stored object and records its checksum.
func (h *taskHandlers) HandleProcessUpload(ctx context.Context, task *asynq.Task) error {
	var p shared.ProcessUploadPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal upload payload: %v: %w", err, asynq.SkipRetry)
	}

	if h.storage == nil {
		logger.Debug().Str("upload_id", p.UploadID.String()).Msg("Storage disabled, dropping upload task")
		return nil
	}

	upload, err := h.uploads.GetByID(ctx, p.UploadID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("upload %s not found: %w", p.UploadID, asynq.SkipRetry)
		}
		return err
	}
	if upload.Status != uploadmodel.StatusPending {
		return nil
	}

	data, err := h.storage.Download(ctx, upload.ObjectKey)
	if err != nil {
		if markErr := h.uploads.UpdateStatus(ctx, upload.ID, uploadmodel.StatusFailed, nil); markErr != nil {
			logger.Error().Err(markErr).Str("upload_id", upload.ID.String()).Msg("Failed to mark upload failed")
		}
		return err
	}

	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])

	if err := h.uploads.UpdateStatus(ctx, upload.ID, uploadmodel.StatusProcessed, &checksum); err != nil {
		return err
	}

	logger.Info().
		Str("upload_id", upload.ID.String()).
		Str("checksum", checksum).
		Msg("Upload processed")
	return nil
}

func (h *taskHandlers) HandlePruneAuditLogs(ctx context.Context, task *asynq.Task) error {
	var p shared.PruneAuditLogsPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal prune payload: %v: %w", err, asynq.SkipRetry)
	}

	_, err := h.audit.Prune(ctx, p.RetentionDays)
	return err
}
