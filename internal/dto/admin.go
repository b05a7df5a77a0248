package dto

import "github.com/noah-isme/pricelist-review-api/internal/models"

// UserSummary is one row of the user administration table.
type UserSummary struct {
	ID     string          `json:"id"`
	Email  string          `json:"email"`
	Name   string          `json:"name"`
	Role   models.UserRole `json:"role"`
	Status string          `json:"status"`
}

// UserApprovalRequest carries the activation decision.
type UserApprovalRequest struct {
	Action string `json:"action" form:"action" validate:"required,oneof=approve reject"`
}

// ChangeRoleRequest is the body of PUT /users/:id/role.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

// UploadPreview is the head of an uploaded spreadsheet.
type UploadPreview struct {
	Filename string     `json:"filename"`
	Sheet    string     `json:"sheet"`
	Headers  []string   `json:"headers"`
	Rows     [][]string `json:"rows"`
}
