package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/warden-admin/warden/internal/shared"
)

// TokenIssuer mints a signed session token for a user id.
type TokenIssuer interface {
	Issue(ctx context.Context, userID int64) (string, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	issuer TokenIssuer
}

// NewService constructs a new Service.
func NewService(repo Repository, issuer TokenIssuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

// Login validates email/password credentials and issues a session token.
// Unknown email and wrong password produce the identical error value so the
// response never reveals whether the account exists.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", shared.ErrInvalidCredentials
		}
		return "", fmt.Errorf("auth: find by email: %w", err)
	}
	if !user.IsActive {
		return "", shared.ErrAccountInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", shared.ErrInvalidCredentials
	}
	return s.issuer.Issue(ctx, user.ID)
}

// Register creates a user with the default role. It does not log the user
// in; callers authenticate afterwards via Login.
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return shared.ErrEmailInUse
	} else if !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("auth: check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}

	roleID, err := s.repo.FindRoleIDByName(ctx, DefaultRoleName)
	if err != nil {
		return fmt.Errorf("auth: default role lookup: %w", err)
	}

	// The email precheck races with concurrent registration; the unique
	// index is the authority and surfaces as ErrEmailInUse here too.
	if _, err := s.repo.CreateUser(ctx, name, email, string(hash), roleID); err != nil {
		return err
	}
	return nil
}
