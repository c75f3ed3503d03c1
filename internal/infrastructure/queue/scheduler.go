package queue

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"snippethub-backend/internal/shared"
)

// Scheduler registers periodic tasks (cron-style) on top of asynq.
type Scheduler struct {
	inner *asynq.Scheduler
}

func NewScheduler(redisAddr, redisPassword string, redisDB int) *Scheduler {
	return &Scheduler{
		inner: asynq.NewScheduler(
			asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword, DB: redisDB},
			&asynq.SchedulerOpts{},
		),
	}
}

// RegisterCleanupJobs wires the audit retention prune.
// Runs nightly; the retention policy lives here, never in request handlers.
func (s *Scheduler) RegisterCleanupJobs(retentionDays int) error {
	payload, err := json.Marshal(shared.PruneAuditLogsPayload{RetentionDays: retentionDays})
	if err != nil {
		return fmt.Errorf("marshal prune payload: %w", err)
	}

	entryID, err := s.inner.Register(
		"0 3 * * *",
		asynq.NewTask(shared.TypePruneAuditLogs, payload),
		asynq.Queue("low"),
	)
	if err != nil {
		return fmt.Errorf("register audit prune: %w", err)
	}

	log.Printf("[Scheduler] Registered audit prune job (entry %s, retention %dd)", entryID, retentionDays)
	return nil
}

func (s *Scheduler) Start() error {
	return s.inner.Run()
}

func (s *Scheduler) Shutdown() {
	s.inner.Shutdown()
}
