package auth

import "time"

// DefaultRoleName is the system role assigned at registration.
const DefaultRoleName = "User"

// User represents an authenticated user account as stored.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	RoleID       int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
