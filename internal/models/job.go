package models

// JobStatus is the review state of an analysis job.
type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusApproved JobStatus = "approved"
	JobStatusRejected JobStatus = "rejected"
)

// StatusAction is a reviewer decision sent to the backend.
type StatusAction string

const (
	StatusActionApprove StatusAction = "approve"
	StatusActionReject  StatusAction = "reject"
)

// AnalysisJob is one upload-and-compare operation.
type AnalysisJob struct {
	JobID          FlexibleID           `json:"job_id"`
	ClientID       FlexibleID           `json:"client_id"`
	ContractNumber string               `json:"contract_number"`
	Client         string               `json:"client"`
	User           string               `json:"user"`
	Status         string               `json:"status"`
	ActionSummary  map[ActionType]int   `json:"action_summary,omitempty"`
	CreatedTime    Timestamp            `json:"created_time"`
	UpdatedTime    Timestamp            `json:"updated_time"`
	Modifications  []ModificationAction `json:"modifications,omitempty"`
}

// StatusChangeResult is the backend reply to an approve/reject call.
type StatusChangeResult struct {
	JobID   FlexibleID `json:"job_id"`
	Status  string     `json:"status"`
	Message string     `json:"message"`
}

// UploadSummary counts the changes detected by an upload.
type UploadSummary struct {
	NewProducts        int `json:"new_products"`
	RemovedProducts    int `json:"removed_products"`
	PriceIncrease      int `json:"price_increase"`
	PriceDecrease      int `json:"price_decrease"`
	DescriptionChanged int `json:"description_changed"`
}

// PricelistUploadResult is returned after a commercial pricelist is analysed.
type PricelistUploadResult struct {
	JobID    FlexibleID    `json:"job_id"`
	Summary  UploadSummary `json:"summary"`
	NextStep string        `json:"next_step"`
}

// CatalogImportResult is returned after a GSA catalog import.
type CatalogImportResult struct {
	Inserted    int `json:"inserted"`
	Updated     int `json:"updated"`
	Reactivated int `json:"reactivated"`
	Deleted     int `json:"deleted"`
	Skipped     int `json:"skipped"`
}
