package models

import "strings"

// UserRole is a dashboard role managed by the backend.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// Valid reports whether r is a role the backend accepts.
func (r UserRole) Valid() bool {
	switch UserRole(strings.ToLower(string(r))) {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

// UserApproval is the activation decision for a dashboard account.
type UserApproval string

const (
	UserApprovalApprove UserApproval = "approve"
	UserApprovalReject  UserApproval = "reject"
)

// User is a dashboard account as listed by the backend.
type User struct {
	ID       FlexibleID `json:"id"`
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Role     UserRole   `json:"role"`
	Status   string     `json:"status,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
	Created  Timestamp  `json:"created_at"`
}

// EffectiveStatus resolves the account state from whichever field the backend set.
func (u User) EffectiveStatus() string {
	if strings.TrimSpace(u.Status) != "" {
		return u.Status
	}
	if u.IsActive == nil {
		return string(JobStatusPending)
	}
	if *u.IsActive {
		return "active"
	}
	return "inactive"
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Search   string
	Status   string
	Page     int
	PageSize int
}
