package dto

import (
	"time"

	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/internal/review"
)

// JobListQuery is the parsed query string of GET /jobs.
type JobListQuery struct {
	Filters  models.FilterState
	PageSize int
}

// JobSummary is one row of the job history table.
type JobSummary struct {
	JobID          string                    `json:"job_id"`
	ClientID       string                    `json:"client_id"`
	Client         string                    `json:"client"`
	ContractNumber string                    `json:"contract_number"`
	User           string                    `json:"user"`
	Status         review.StatusBadge        `json:"status"`
	ActionSummary  map[models.ActionType]int `json:"action_summary,omitempty"`
	CreatedTime    *time.Time                `json:"created_time"`
	UpdatedTime    *time.Time                `json:"updated_time"`
	// Actionable is true while the job can still be approved or rejected.
	Actionable bool `json:"actionable"`
	Updating   bool `json:"updating"`
}

// JobListResponse is the filtered, sorted and paged history.
type JobListResponse struct {
	Jobs       []JobSummary       `json:"jobs"`
	Filters    models.FilterState `json:"filters"`
	Total      int                `json:"total"`
	Pagination *models.Pagination `json:"pagination"`
}

// JobDetailResponse is a job with its categorized changes.
type JobDetailResponse struct {
	Job      JobSummary                       `json:"job"`
	Counts   map[review.Category]int          `json:"counts"`
	Total    int                              `json:"total"`
	Dropped  int                              `json:"dropped"`
	Tables   map[review.Category]CategoryPage `json:"tables"`
	PageSize int                              `json:"page_size"`
}

// CategoryPage is one page of a category table.
type CategoryPage struct {
	Table      review.Table       `json:"table"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

// StatusChangeRequest is the body of POST /jobs/:id/status.
type StatusChangeRequest struct {
	Action    string `json:"action" validate:"required,oneof=approve reject"`
	Confirmed bool   `json:"confirmed"`
}

// StatusChangeResponse reports the new state of a job.
type StatusChangeResponse struct {
	JobID      string             `json:"job_id"`
	Status     review.StatusBadge `json:"status"`
	Message    string             `json:"message"`
	Actionable bool               `json:"actionable"`
}

// DashboardResponse feeds the job history screen in one call.
type DashboardResponse struct {
	Jobs    JobListResponse      `json:"jobs"`
	Clients []models.Client      `json:"clients"`
	Badges  []review.StatusBadge `json:"status_options"`
}

// ExportLink is a signed, short-lived download URL.
type ExportLink struct {
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	ExpiresAt time.Time `json:"expires_at"`
}
