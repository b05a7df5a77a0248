package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/pricelist-review-api/internal/models"
	appErrors "github.com/noah-isme/pricelist-review-api/pkg/errors"
	"github.com/noah-isme/pricelist-review-api/pkg/jobs"
)

type auditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

// AuditService writes reviewer decisions in the background. A nil
// *AuditService, or one without a store, records nothing.
type AuditService struct {
	repo    auditStore
	queue   *jobs.Queue[models.AuditLog]
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAuditService wires the store behind a retrying worker queue.
func NewAuditService(repo auditStore, metrics *MetricsService, logger *zap.Logger, cfg jobs.Config) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{repo: repo, metrics: metrics, logger: logger}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	s.queue = jobs.New[models.AuditLog]("audit", s.write, cfg)
	return s
}

// Start launches the writers.
func (s *AuditService) Start(ctx context.Context) {
	if s == nil || s.repo == nil {
		return
	}
	s.queue.Start(ctx)
}

// Stop waits for the writers to exit.
func (s *AuditService) Stop() {
	if s == nil || s.repo == nil {
		return
	}
	s.queue.Stop()
}

// Record queues entry. Failures are logged, never returned.
func (s *AuditService) Record(entry models.AuditLog) {
	if s == nil || s.repo == nil {
		return
	}
	if err := s.queue.Enqueue(jobs.Task[models.AuditLog]{ID: entry.JobID, Payload: entry}); err != nil {
		s.metrics.RecordAuditWrite(false)
		s.logger.Warn("audit entry dropped", zap.String("job_id", entry.JobID), zap.Error(err))
	}
}

// List returns recorded decisions, newest first.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	if s == nil || s.repo == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "audit trail is disabled")
	}
	logs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit trail")
	}
	return logs, nil
}

func (s *AuditService) write(ctx context.Context, task jobs.Task[models.AuditLog]) error {
	entry := task.Payload
	err := s.repo.Create(ctx, &entry)
	s.metrics.RecordAuditWrite(err == nil)
	return err
}
