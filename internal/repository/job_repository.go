package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/noah-isme/pricelist-review-api/internal/models"
)

// JobRepository reads and transitions analysis jobs on the backend.
type JobRepository struct {
	remote Remote
}

// NewJobRepository constructs the repository.
func NewJobRepository(remote Remote) *JobRepository {
	return &JobRepository{remote: remote}
}

// List returns every job the backend exposes for the caller.
func (r *JobRepository) List(ctx context.Context) ([]models.AnalysisJob, error) {
	var raw json.RawMessage
	if err := r.remote.Get(ctx, "/jobs", nil, &raw); err != nil {
		return nil, upstreamError(err)
	}
	jobs := make([]models.AnalysisJob, 0)
	if err := decodeList(raw, &jobs); err != nil {
		return nil, decodeFailure(err)
	}
	return jobs, nil
}

// jobDetail tolerates the modification list under either key.
type jobDetail struct {
	models.AnalysisJob
	Actions []models.ModificationAction `json:"actions"`
}

// Get returns one job with its full modification list.
func (r *JobRepository) Get(ctx context.Context, id string) (*models.AnalysisJob, error) {
	var detail jobDetail
	if err := r.remote.Get(ctx, fmt.Sprintf("/jobs/%s", url.PathEscape(id)), nil, &detail); err != nil {
		return nil, upstreamError(err)
	}
	job := detail.AnalysisJob
	if len(job.Modifications) == 0 && len(detail.Actions) > 0 {
		job.Modifications = detail.Actions
	}
	if job.JobID == "" {
		job.JobID = models.FlexibleID(id)
	}
	return &job, nil
}

// UpdateStatus issues the single approve/reject call for a job.
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, action models.StatusAction) (*models.StatusChangeResult, error) {
	var result models.StatusChangeResult
	query := url.Values{"action": {string(action)}}
	if err := r.remote.Post(ctx, fmt.Sprintf("/jobs/%s/status", url.PathEscape(id)), query, nil, &result); err != nil {
		return nil, upstreamError(err)
	}
	if result.JobID == "" {
		result.JobID = models.FlexibleID(id)
	}
	return &result, nil
}
