package models

import "time"

// Audit actions recorded for status decisions.
const (
	AuditActionJobApprove = "JOB_APPROVE"
	AuditActionJobReject  = "JOB_REJECT"
)

// AuditLog is a persisted record of a reviewer decision.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	JobID      string    `db:"job_id" json:"job_id"`
	Action     string    `db:"action" json:"action"`
	FromStatus string    `db:"from_status" json:"from_status"`
	ToStatus   string    `db:"to_status" json:"to_status"`
	Actor      string    `db:"actor" json:"actor"`
	Message    string    `db:"message" json:"message"`
	RequestID  string    `db:"request_id" json:"request_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AuditFilter constrains audit listings.
type AuditFilter struct {
	JobID  string
	Limit  int
	Offset int
}
