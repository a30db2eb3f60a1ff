package roles

import (
	"errors"
	"time"

	"github.com/warden-admin/warden/internal/rbac"
)

// ErrNameTaken indicates a role name collision.
var ErrNameTaken = errors.New("roles: name already in use")

// Role represents a named permission bundle. System roles are seeded and
// protected from edit and delete.
type Role struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	IsSystem    bool              `json:"is_system"`
	Permissions []rbac.Permission `json:"permissions"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
