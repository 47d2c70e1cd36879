package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/audit/model"
	authorRepo "bookshelf-backend/internal/domains/author/repository"
	bookRepo "bookshelf-backend/internal/domains/book/repository"
	"bookshelf-backend/internal/domains/link"
	"bookshelf-backend/internal/shared"
	"bookshelf-backend/internal/shared/observability"
	"bookshelf-backend/pkg/cache"
)

const lastReportKey = "links:audit:last"

var (
	ErrNoReport      = link.NotFoundf("no link audit has run yet")
	ErrQueueDisabled = errors.New("task queue is not configured")
)

// Enqueuer is the part of *asynq.Client the service uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Service runs the link audit. It never writes relationship fields; fixing
// a mismatch is left to a normal update through the entity services.
type Service struct {
	authors   authorRepo.RepositoryInterface
	books     bookRepo.RepositoryInterface
	cache     cache.Cache
	queue     Enqueuer
	queueName string
	reportTTL time.Duration
}

func NewService(
	authors authorRepo.RepositoryInterface,
	books bookRepo.RepositoryInterface,
	cache cache.Cache,
	queue Enqueuer,
	queueName string,
	reportTTL time.Duration,
) *Service {
	if queueName == "" {
		queueName = shared.QueueLow
	}
	return &Service{
		authors:   authors,
		books:     books,
		cache:     cache,
		queue:     queue,
		queueName: queueName,
		reportTTL: reportTTL,
	}
}

// Run loads both collections, checks them and stores the report.
func (s *Service) Run(ctx context.Context) (*model.Report, error) {
	started := time.Now().UTC()

	authors, err := s.authors.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	books, err := s.books.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}

	report := model.Check(authors, books)
	report.ID = uuid.NewString()
	report.StartedAt = started
	report.FinishedAt = time.Now().UTC()

	observability.AuditMismatches.Set(float64(len(report.Mismatches)))

	if err := s.cache.Set(ctx, lastReportKey, &report, s.reportTTL); err != nil {
		log.Warn().Err(err).Str("report_id", report.ID).Msg("Failed to store link audit report")
	}

	event := log.Info()
	if !report.Consistent {
		event = log.Warn()
	}
	event.
		Str("report_id", report.ID).
		Int("authors", report.Authors).
		Int("books", report.Books).
		Int("mismatches", len(report.Mismatches)).
		Dur("took", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Link audit finished")

	return &report, nil
}

// Last returns the most recent stored report.
func (s *Service) Last(ctx context.Context) (*model.Report, error) {
	var report model.Report
	found, err := s.cache.Get(ctx, lastReportKey, &report)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoReport
	}
	return &report, nil
}

// Enqueue schedules an audit on the worker and returns the task id.
func (s *Service) Enqueue(ctx context.Context, requestedBy string) (string, error) {
	if s.queue == nil {
		return "", ErrQueueDisabled
	}

	payload, err := json.Marshal(model.LinkAuditPayload{
		RequestedBy: requestedBy,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}

	info, err := s.queue.EnqueueContext(ctx,
		asynq.NewTask(shared.TypeLinkAudit, payload),
		asynq.Queue(s.queueName),
		asynq.MaxRetry(1),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		return "", fmt.Errorf("enqueue link audit: %w", err)
	}
	return info.ID, nil
}
