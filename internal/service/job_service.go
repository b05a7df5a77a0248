package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/internal/review"
	"github.com/noah-isme/pricelist-review-api/pkg/cache"
	appErrors "github.com/noah-isme/pricelist-review-api/pkg/errors"
)

type jobReader interface {
	List(ctx context.Context) ([]models.AnalysisJob, error)
	Get(ctx context.Context, id string) (*models.AnalysisJob, error)
}

type clientSource interface {
	List(ctx context.Context) ([]models.Client, bool, error)
}

// JobServiceConfig tunes the review tables.
type JobServiceConfig struct {
	PageSize    int
	MaxPageSize int
	JobTTL      time.Duration
}

// JobServiceParams groups constructor dependencies.
type JobServiceParams struct {
	Jobs     jobReader
	Clients  clientSource
	Cache    *CacheService
	InFlight *InFlight
	Logger   *zap.Logger
	Config   JobServiceConfig
}

// JobService assembles the job history and job review views.
type JobService struct {
	jobs     jobReader
	clients  clientSource
	cache    *CacheService
	inFlight *InFlight
	logger   *zap.Logger
	cfg      JobServiceConfig
}

// NewJobService constructs a JobService with sane defaults.
func NewJobService(params JobServiceParams) *JobService {
	cfg := params.Config
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.MaxPageSize < cfg.PageSize {
		cfg.MaxPageSize = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 2 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	inFlight := params.InFlight
	if inFlight == nil {
		inFlight = NewInFlight()
	}
	return &JobService{
		jobs:     params.Jobs,
		clients:  params.Clients,
		cache:    params.Cache,
		inFlight: inFlight,
		logger:   logger,
		cfg:      cfg,
	}
}

// JobCacheKey is the cache key of a job detail as fetched with the token on ctx.
func JobCacheKey(ctx context.Context, id string) (string, bool) {
	return ScopedKey(ctx, "job", id)
}

// JobCachePattern matches every caller's cached copy of a job.
func JobCachePattern(id string) string {
	return cache.Key("job", id, "*")
}

// List filters, sorts and pages the job history.
func (s *JobService) List(ctx context.Context, query dto.JobListQuery) (*dto.JobListResponse, error) {
	jobs, err := s.jobs.List(ctx)
	if err != nil {
		return nil, err
	}
	s.warnUnparsedTimes(jobs)

	filters := query.Filters
	if filters.CurrentPage < 1 {
		filters.CurrentPage = 1
	}
	if filters.Sort.Key == "" {
		filters.Sort = models.DefaultFilterState().Sort
	}

	visible := review.SortJobs(review.ApplyFilters(jobs, filters), filters.Sort)
	page := review.Paginate(len(visible), s.pageSize(query.PageSize), filters.CurrentPage, review.MaxVisiblePages)

	rows := review.Slice(visible, page)
	summaries := make([]dto.JobSummary, 0, len(rows))
	for _, job := range rows {
		summaries = append(summaries, s.summarize(job))
	}
	return &dto.JobListResponse{
		Jobs:       summaries,
		Filters:    filters,
		Total:      len(visible),
		Pagination: page.Pagination(),
	}, nil
}

// warnUnparsedTimes logs jobs whose created_time could not be read. Those
// jobs stay listed with an empty date.
func (s *JobService) warnUnparsedTimes(jobs []models.AnalysisJob) {
	for _, job := range jobs {
		if job.CreatedTime.Unparsed != "" {
			s.logger.Warn("unparseable job created_time",
				zap.String("job_id", job.JobID.String()),
				zap.String("created_time", job.CreatedTime.Unparsed))
		}
	}
}

// Search runs a job history query with the default page size.
func (s *JobService) Search(ctx context.Context, filters models.FilterState) (*dto.JobListResponse, error) {
	return s.List(ctx, dto.JobListQuery{Filters: filters})
}

// Dashboard loads the history and the client list concurrently.
func (s *JobService) Dashboard(ctx context.Context, query dto.JobListQuery) (*dto.DashboardResponse, error) {
	var (
		jobs    *dto.JobListResponse
		clients []models.Client
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		jobs, err = s.List(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		clients, _, err = s.clients.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		Jobs:    *jobs,
		Clients: clients,
		Badges: []review.StatusBadge{
			review.Badge(string(review.StatusPending)),
			review.Badge(string(review.StatusApproved)),
			review.Badge(string(review.StatusRejected)),
		},
	}, nil
}

// Job returns one job with its modifications and whether it came from cache.
func (s *JobService) Job(ctx context.Context, id string) (*models.AnalysisJob, bool, error) {
	if id == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "job id is required")
	}
	key, scoped := JobCacheKey(ctx, id)
	var cached models.AnalysisJob
	if scoped && s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if scoped {
		s.cache.Set(ctx, key, job, s.cfg.JobTTL)
	}
	return job, false, nil
}

// Categorized returns a job and its bucketed changes.
func (s *JobService) Categorized(ctx context.Context, id string) (*models.AnalysisJob, review.Bucketed, error) {
	job, _, err := s.Job(ctx, id)
	if err != nil {
		return nil, review.Bucketed{}, err
	}
	bucketed := review.Bucketize(job.Modifications)
	if bucketed.Dropped > 0 {
		s.logger.Warn("unrecognised change records dropped", zap.String("job_id", id), zap.Int("dropped", bucketed.Dropped))
	}
	return job, bucketed, nil
}

// Detail returns a job with counts and the first page of every category table.
func (s *JobService) Detail(ctx context.Context, id string, pageSize int) (*dto.JobDetailResponse, bool, error) {
	job, cached, err := s.Job(ctx, id)
	if err != nil {
		return nil, false, err
	}
	bucketed := review.Bucketize(job.Modifications)
	size := s.pageSize(pageSize)

	tables := make(map[review.Category]dto.CategoryPage, len(review.Categories))
	for _, category := range review.Categories {
		tables[category] = categoryPage(category, bucketed.Actions[category], 1, size)
	}
	return &dto.JobDetailResponse{
		Job:      s.summarize(*job),
		Counts:   bucketed.Actions.Counts(),
		Total:    bucketed.Actions.Total(),
		Dropped:  bucketed.Dropped,
		Tables:   tables,
		PageSize: size,
	}, cached, nil
}

// Table returns one page of one category table.
func (s *JobService) Table(ctx context.Context, id string, category review.Category, page, pageSize int) (*dto.CategoryPage, error) {
	_, bucketed, err := s.Categorized(ctx, id)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	result := categoryPage(category, bucketed.Actions[category], page, s.pageSize(pageSize))
	return &result, nil
}

// Confirmation returns the approve/reject dialog for a pending job.
func (s *JobService) Confirmation(ctx context.Context, id, rawAction string) (*review.Confirmation, error) {
	action, ok := review.ParseStatusAction(rawAction)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "action must be approve or reject")
	}
	job, _, err := s.Job(ctx, id)
	if err != nil {
		return nil, err
	}
	if !review.CanTransition(job.Status, action) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "job is no longer pending")
	}
	confirmation := review.BuildConfirmation(*job, action)
	return &confirmation, nil
}

func (s *JobService) pageSize(requested int) int {
	switch {
	case requested <= 0:
		return s.cfg.PageSize
	case requested > s.cfg.MaxPageSize:
		return s.cfg.MaxPageSize
	}
	return requested
}

func (s *JobService) summarize(job models.AnalysisJob) dto.JobSummary {
	id := job.JobID.String()
	updating := s.inFlight.Has(id)
	return dto.JobSummary{
		JobID:          id,
		ClientID:       job.ClientID.String(),
		Client:         job.Client,
		ContractNumber: job.ContractNumber,
		User:           job.User,
		Status:         review.Badge(job.Status),
		ActionSummary:  job.ActionSummary,
		CreatedTime:    timePtr(job.CreatedTime),
		UpdatedTime:    timePtr(job.UpdatedTime),
		Actionable:     !updating && review.NormalizeStatus(job.Status) == review.StatusPending,
		Updating:       updating,
	}
}

func categoryPage(category review.Category, changes []models.Change, current, size int) dto.CategoryPage {
	page := review.Paginate(len(changes), size, current, review.MaxVisiblePages)
	return dto.CategoryPage{
		Table:      review.RenderTable(category, review.Slice(changes, page)),
		Pagination: page.Pagination(),
	}
}

func timePtr(ts models.Timestamp) *time.Time {
	if ts.IsZero() {
		return nil
	}
	t := ts.UTC()
	return &t
}
