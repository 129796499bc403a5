package models

import "time"

// UserRole represents the two roles known to the platform.
type UserRole string

const (
	RoleVolunteer UserRole = "volunteer"
	RoleAdmin     UserRole = "admin"
)

// Valid reports whether the role is recognised.
func (r UserRole) Valid() bool {
	return r == RoleVolunteer || r == RoleAdmin
}

// User represents an identity record joined with its role.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
