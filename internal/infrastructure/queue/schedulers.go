package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"bookshelf-backend/internal/domains/audit/model"
	"bookshelf-backend/internal/shared"
	"bookshelf-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redis asynq.RedisClientOpt) *Scheduler {
	scheduler := asynq.NewScheduler(
		redis,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

// ================================================
// Link audit (AUDIT_CRON, default daily at 3 AM)
// ================================================
func (s *Scheduler) RegisterLinkAudit(cronspec, queueName string) error {
	payload, err := json.Marshal(model.LinkAuditPayload{RequestedBy: "scheduler"})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeLinkAudit, payload)

	_, err = s.scheduler.Register(
		cronspec,
		task,
		asynq.Queue(queueName),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register LinkAudit job", err)
		return err
	}

	logger.Info("✓ Registered LinkAudit", map[string]interface{}{
		"cron":  cronspec,
		"queue": queueName,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
