package rbac

import (
	"context"
	"strings"
)

// Store defines the persistence operations the resolver needs.
type Store interface {
	EffectivePermissions(ctx context.Context, userID int64) ([]string, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
}

// Service resolves effective permissions and answers guard checks. It is
// the single enforcement primitive: every protected operation goes through
// HasPermission or HasAnyPermission, and the set is always re-derived live
// from the store by user id, never from a session's embedded role snapshot.
type Service struct {
	store Store
}

// NewService constructs a Service backed by the provided store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// EffectivePermissions returns the deduplicated permission names granted
// via the user's role. The result is a set; order carries no meaning.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	perms, err := s.store.EffectivePermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(perms))
	set := perms[:0]
	for _, p := range perms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		set = append(set, p)
	}
	return set, nil
}

// HasPermission reports whether the user holds the named permission. A nil
// userID means unauthenticated and is always false. Unknown permission
// names resolve to false, never to an error.
func (s *Service) HasPermission(ctx context.Context, userID *int64, permission string) (bool, error) {
	return s.HasAnyPermission(ctx, userID, permission)
}

// HasAnyPermission reports whether the user holds at least one of the named
// permissions. Checks are OR'd: a coarse manage permission and its
// fine-grained variants are interchangeable authority for an operation.
func (s *Service) HasAnyPermission(ctx context.Context, userID *int64, permissions ...string) (bool, error) {
	if userID == nil {
		return false, nil
	}
	required := normalizePermissions(permissions)
	if len(required) == 0 {
		return false, nil
	}
	granted, err := s.store.EffectivePermissions(ctx, *userID)
	if err != nil {
		return false, err
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[strings.ToLower(p)] = struct{}{}
	}
	for _, p := range required {
		if _, ok := set[p]; ok {
			return true, nil
		}
	}
	return false, nil
}

// ListPermissions returns the permission catalog.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.store.ListPermissions(ctx)
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if _, ok := unique[p]; ok {
			continue
		}
		unique[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}
