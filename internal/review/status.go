package review

import (
	"strings"

	"github.com/noah-isme/pricelist-review-api/internal/models"
)

// StatusSlug is a normalized status value.
type StatusSlug string

const (
	StatusPending  StatusSlug = "pending"
	StatusApproved StatusSlug = "approved"
	StatusRejected StatusSlug = "rejected"
	StatusActive   StatusSlug = "active"
	StatusInactive StatusSlug = "inactive"
	StatusUnknown  StatusSlug = "unknown"
)

// Tone is the visual treatment of a status badge.
type Tone string

const (
	ToneWarning Tone = "warning"
	ToneSuccess Tone = "success"
	ToneDanger  Tone = "danger"
	ToneNeutral Tone = "neutral"
)

// StatusBadge is the display form of a status.
type StatusBadge struct {
	Slug  StatusSlug `json:"slug"`
	Label string     `json:"label"`
	Tone  Tone       `json:"tone"`
}

var statusRegistry = map[StatusSlug]StatusBadge{
	StatusPending:  {Slug: StatusPending, Label: "Pending", Tone: ToneWarning},
	StatusApproved: {Slug: StatusApproved, Label: "Approved", Tone: ToneSuccess},
	StatusRejected: {Slug: StatusRejected, Label: "Rejected", Tone: ToneDanger},
	StatusActive:   {Slug: StatusActive, Label: "Active", Tone: ToneSuccess},
	StatusInactive: {Slug: StatusInactive, Label: "Inactive", Tone: ToneNeutral},
	StatusUnknown:  {Slug: StatusUnknown, Label: "Unknown", Tone: ToneNeutral},
}

// NormalizeStatus lower-cases raw and maps it onto the registry; anything
// else becomes StatusUnknown. It never fails and is idempotent.
func NormalizeStatus(raw string) StatusSlug {
	slug := StatusSlug(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := statusRegistry[slug]; ok {
		return slug
	}
	return StatusUnknown
}

// Badge returns the display badge for raw.
func Badge(raw string) StatusBadge {
	return statusRegistry[NormalizeStatus(raw)]
}

// ParseStatusAction validates an approve/reject action.
func ParseStatusAction(raw string) (models.StatusAction, bool) {
	switch models.StatusAction(strings.ToLower(strings.TrimSpace(raw))) {
	case models.StatusActionApprove:
		return models.StatusActionApprove, true
	case models.StatusActionReject:
		return models.StatusActionReject, true
	}
	return "", false
}

// TargetStatus is the terminal state an action leads to.
func TargetStatus(action models.StatusAction) StatusSlug {
	if action == models.StatusActionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// CanTransition reports whether action is allowed from the current status.
// Only pending jobs can be approved or rejected; both outcomes are terminal.
func CanTransition(current string, action models.StatusAction) bool {
	if _, ok := ParseStatusAction(string(action)); !ok {
		return false
	}
	return NormalizeStatus(current) == StatusPending
}

// Confirmation is the content of the approve/reject dialog.
type Confirmation struct {
	JobID          string              `json:"job_id"`
	Action         models.StatusAction `json:"action"`
	Client         string              `json:"client"`
	ContractNumber string              `json:"contract_number"`
	Title          string              `json:"title"`
	Warning        string              `json:"warning"`
	ConfirmLabel   string              `json:"confirm_label"`
}

// BuildConfirmation summarises the job and the consequence of action.
func BuildConfirmation(job models.AnalysisJob, action models.StatusAction) Confirmation {
	c := Confirmation{
		JobID:          job.JobID.String(),
		Action:         action,
		Client:         placeholder(job.Client, "Unknown Client"),
		ContractNumber: placeholder(job.ContractNumber, "N/A"),
	}
	if action == models.StatusActionApprove {
		c.Title = "Approve Analysis"
		c.Warning = "Approving this analysis will apply all detected changes to the GSA catalog. This action cannot be undone."
		c.ConfirmLabel = "Approve"
	} else {
		c.Title = "Reject Analysis"
		c.Warning = "Rejecting this analysis means the GSA catalog will not be updated with these changes."
		c.ConfirmLabel = "Reject"
	}
	return c
}
