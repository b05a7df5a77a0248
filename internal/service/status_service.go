package service

import (
	"context"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/internal/realtime"
	"github.com/noah-isme/pricelist-review-api/internal/review"
	appErrors "github.com/noah-isme/pricelist-review-api/pkg/errors"
)

// InFlight tracks jobs with a status change under way.
type InFlight struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewInFlight returns an empty tracker.
func NewInFlight() *InFlight {
	return &InFlight{ids: make(map[string]struct{})}
}

// Acquire marks id busy; it returns false if id already was.
func (f *InFlight) Acquire(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.ids[id]; busy {
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

// Release clears id.
func (f *InFlight) Release(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ids, id)
}

// Has reports whether id is busy.
func (f *InFlight) Has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, busy := f.ids[id]
	return busy
}

type jobStatusStore interface {
	Get(ctx context.Context, id string) (*models.AnalysisJob, error)
	UpdateStatus(ctx context.Context, id string, action models.StatusAction) (*models.StatusChangeResult, error)
}

type auditRecorder interface {
	Record(entry models.AuditLog)
}

// EventPublisher broadcasts live feed events.
type EventPublisher interface {
	Publish(eventType string, payload interface{})
}

// StatusServiceParams groups constructor dependencies.
type StatusServiceParams struct {
	Jobs      jobStatusStore
	Cache     *CacheService
	InFlight  *InFlight
	Audit     auditRecorder
	Publisher EventPublisher
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
}

// StatusService runs the approve/reject protocol against the backend.
type StatusService struct {
	jobs      jobStatusStore
	cache     *CacheService
	inFlight  *InFlight
	audit     auditRecorder
	publisher EventPublisher
	metrics   *MetricsService
	validate  *validator.Validate
	logger    *zap.Logger
}

// StatusChange identifies who asked for a transition.
type StatusChange struct {
	JobID     string
	Actor     string
	RequestID string
	Request   dto.StatusChangeRequest
}

// NewStatusService constructs a StatusService.
func NewStatusService(params StatusServiceParams) *StatusService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	inFlight := params.InFlight
	if inFlight == nil {
		inFlight = NewInFlight()
	}
	return &StatusService{
		jobs:      params.Jobs,
		cache:     params.Cache,
		inFlight:  inFlight,
		audit:     params.Audit,
		publisher: params.Publisher,
		metrics:   params.Metrics,
		validate:  validate,
		logger:    logger,
	}
}

// Change approves or rejects a pending job with exactly one backend call.
// While the call is outstanding further changes to the same job are refused.
func (s *StatusService) Change(ctx context.Context, change StatusChange) (*dto.StatusChangeResponse, error) {
	req := change.Request
	req.Action = strings.ToLower(strings.TrimSpace(req.Action))
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "action must be approve or reject")
	}
	if !req.Confirmed {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status change must be confirmed")
	}
	jobID := strings.TrimSpace(change.JobID)
	if jobID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "job id is required")
	}
	action := models.StatusAction(req.Action)

	if !s.inFlight.Acquire(jobID) {
		s.metrics.RecordTransition(req.Action, "busy")
		return nil, appErrors.Clone(appErrors.ErrConflict, "job is already being updated")
	}
	defer s.inFlight.Release(jobID)

	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		s.metrics.RecordTransition(req.Action, "failed")
		return nil, err
	}
	if !review.CanTransition(job.Status, action) {
		s.metrics.RecordTransition(req.Action, "conflict")
		return nil, appErrors.Clone(appErrors.ErrConflict, "job is no longer pending")
	}

	result, err := s.jobs.UpdateStatus(ctx, jobID, action)
	if err != nil {
		s.metrics.RecordTransition(req.Action, "failed")
		s.logger.Warn("status change failed", zap.String("job_id", jobID), zap.String("action", req.Action), zap.Error(err))
		return nil, err
	}
	s.metrics.RecordTransition(req.Action, "success")

	status := string(review.TargetStatus(action))
	if slug := review.NormalizeStatus(result.Status); slug != review.StatusUnknown {
		status = string(slug)
	}
	message := strings.TrimSpace(result.Message)
	if message == "" {
		message = defaultStatusMessage(action)
	}

	s.cache.InvalidatePattern(ctx, JobCachePattern(jobID))
	if s.audit != nil {
		s.audit.Record(models.AuditLog{
			JobID:      jobID,
			Action:     auditAction(action),
			FromStatus: string(review.NormalizeStatus(job.Status)),
			ToStatus:   status,
			Actor:      change.Actor,
			Message:    message,
			RequestID:  change.RequestID,
		})
	}
	if s.publisher != nil {
		s.publisher.Publish(realtime.EventJobStatus, realtime.JobStatusPayload{
			JobID:   jobID,
			Status:  status,
			Actor:   change.Actor,
			Message: message,
		})
	}
	s.logger.Info("job status changed", zap.String("job_id", jobID), zap.String("status", status), zap.String("actor", change.Actor))

	return &dto.StatusChangeResponse{
		JobID:      jobID,
		Status:     review.Badge(status),
		Message:    message,
		Actionable: false,
	}, nil
}

func defaultStatusMessage(action models.StatusAction) string {
	if action == models.StatusActionApprove {
		return "Job approved successfully"
	}
	return "Job rejected successfully"
}

func auditAction(action models.StatusAction) string {
	if action == models.StatusActionApprove {
		return models.AuditActionJobApprove
	}
	return models.AuditActionJobReject
}
