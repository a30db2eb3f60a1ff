package roles

import (
	"context"
	"strings"

	"github.com/warden-admin/warden/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (*Role, error)
	CreateRole(ctx context.Context, name, description string, permissionIDs []int64) (int64, error)
	UpdateRole(ctx context.Context, id int64, name, description string, permissionIDs []int64) error
	DeleteRole(ctx context.Context, id int64) error
}

// Service handles role business logic, including system role protection.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// RoleInput carries the fields for role creation and edit. PermissionIDs is
// the complete new set; on update it replaces the old set wholesale.
type RoleInput struct {
	Name          string
	Description   string
	PermissionIDs []int64
}

// ListRoles returns all roles with their permission sets.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole returns a single role.
func (s *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	return s.repo.GetRole(ctx, id)
}

// CreateRole inserts a new non-system role with its permission set.
func (s *Service) CreateRole(ctx context.Context, in RoleInput) (*Role, error) {
	id, err := s.repo.CreateRole(ctx, strings.TrimSpace(in.Name), strings.TrimSpace(in.Description), in.PermissionIDs)
	if err != nil {
		return nil, err
	}
	return s.repo.GetRole(ctx, id)
}

// UpdateRole edits a role and replaces its permission set. System roles
// reject the edit regardless of the caller's permissions.
func (s *Service) UpdateRole(ctx context.Context, id int64, in RoleInput) (*Role, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.IsSystem {
		return nil, shared.ErrSystemRoleProtected
	}
	if err := s.repo.UpdateRole(ctx, id, strings.TrimSpace(in.Name), strings.TrimSpace(in.Description), in.PermissionIDs); err != nil {
		return nil, err
	}
	return s.repo.GetRole(ctx, id)
}

// DeleteRole removes a role. System roles reject the delete regardless of
// the caller's permissions.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return shared.ErrSystemRoleProtected
	}
	return s.repo.DeleteRole(ctx, id)
}
