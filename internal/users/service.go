package users

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/warden-admin/warden/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, name, email, passwordHash string, roleID int64, isActive bool) (int64, error)
	UpdateUser(ctx context.Context, id int64, name, email string, passwordHash *string, roleID int64, isActive bool) error
	UpdateProfile(ctx context.Context, id int64, name, email string, passwordHash *string) error
	GetPasswordHash(ctx context.Context, id int64) (string, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Service handles user management business logic. Permission gating happens
// on the routes; the rules here are the ones that hold regardless of the
// actor's permissions.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateUserInput carries the fields for admin user creation.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	RoleID   int64
	IsActive bool
}

// UpdateUserInput carries the fields for admin user edits. A nil Password
// keeps the existing credential.
type UpdateUserInput struct {
	Name     string
	Email    string
	Password *string
	RoleID   int64
	IsActive bool
}

// UpdateProfileInput carries self-service profile changes. Changing the
// password requires the current one.
type UpdateProfileInput struct {
	Name            string
	Email           string
	CurrentPassword string
	NewPassword     string
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns a single user.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser hashes the password and inserts the account.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}
	id, err := s.repo.CreateUser(ctx, in.Name, in.Email, string(hash), in.RoleID, in.IsActive)
	if err != nil {
		return nil, err
	}
	return s.repo.GetUser(ctx, id)
}

// UpdateUser applies an admin edit, re-hashing the credential only when a
// new password was supplied.
func (s *Service) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*User, error) {
	var hash *string
	if in.Password != nil && *in.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("users: hash password: %w", err)
		}
		hs := string(h)
		hash = &hs
	}
	if err := s.repo.UpdateUser(ctx, id, in.Name, in.Email, hash, in.RoleID, in.IsActive); err != nil {
		return nil, err
	}
	return s.repo.GetUser(ctx, id)
}

// DeleteUser removes an account. Deleting the acting user's own account is
// rejected regardless of permission level.
func (s *Service) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return shared.ErrCannotDeleteSelf
	}
	return s.repo.DeleteUser(ctx, id)
}

// UpdateProfile lets the authenticated user change their own name, email
// and optionally password. A password change verifies the current password
// against the stored hash first.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (*User, error) {
	var hash *string
	if in.NewPassword != "" {
		stored, err := s.repo.GetPasswordHash(ctx, userID)
		if err != nil {
			return nil, err
		}
		if bcrypt.CompareHashAndPassword([]byte(stored), []byte(in.CurrentPassword)) != nil {
			return nil, shared.ErrInvalidCredentials
		}
		h, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("users: hash password: %w", err)
		}
		hs := string(h)
		hash = &hs
	}
	if err := s.repo.UpdateProfile(ctx, userID, in.Name, in.Email, hash); err != nil {
		return nil, err
	}
	return s.repo.GetUser(ctx, userID)
}
