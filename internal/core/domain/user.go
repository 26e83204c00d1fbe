package domain

import "time"

// UserRole is the capability level of a user. Receipt approval/rejection and
// rate adjustments require RoleAdmin; the check lives in one place
// (UserSvcFacade.RequireAdmin) rather than ad hoc string comparisons.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleMember UserRole = "MEMBER"
)

// User represents a user of the application in the domain.
type User struct {
	UserID string   `json:"userID"` // Primary Key (UUID)
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Soft delete
}

// IsAdmin reports whether the user carries the admin capability.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
