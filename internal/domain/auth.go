package domain

import "errors"

// Role is the caller role resolved by the upstream auth provider.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Caller is the authenticated principal attached to a request.
type Caller struct {
	AccountID string
	Role      Role
}

// IsAdmin reports whether the caller has the admin role.
func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// Authentication errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
