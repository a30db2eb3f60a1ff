package users

import "time"

// RoleRef is the role a user is assigned to.
type RoleRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User represents a managed user account. Password material never leaves
// the repository layer.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      RoleRef   `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
