package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the identity provider's access token payload.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor returns the most descriptive identifier for audit trails.
func (c *JWTClaims) Actor() string {
	if c == nil {
		return "anonymous"
	}
	switch {
	case c.Email != "":
		return c.Email
	case c.UserID != "":
		return c.UserID
	default:
		return c.Subject
	}
}
