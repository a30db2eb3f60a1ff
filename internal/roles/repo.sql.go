package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warden-admin/warden/internal/platform/db"
	"github.com/warden-admin/warden/internal/rbac"
	"github.com/warden-admin/warden/internal/shared"
)

// txRunner executes fn inside a transaction. It exists so tests can drive
// the failure paths of multi-statement writes without a live pool.
type txRunner func(ctx context.Context, fn func(pgx.Tx) error) error

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool  *pgxpool.Pool
	runTx txRunner
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
		runTx: func(ctx context.Context, fn func(pgx.Tx) error) error {
			return db.WithTx(ctx, pool, fn)
		},
	}
}

// ListRoles returns all roles with their permission sets, ordered by name.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, is_system, created_at, updated_at
		FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	index := make(map[int64]int)
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.IsSystem,
			&role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		role.Permissions = []rbac.Permission{}
		index[role.ID] = len(roles)
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	permRows, err := r.pool.Query(ctx, `
		SELECT rp.role_id, p.id, p.name, p.description
		FROM role_permissions rp
		JOIN permissions p ON rp.permission_id = p.id
		ORDER BY p.name`)
	if err != nil {
		return nil, err
	}
	defer permRows.Close()
	for permRows.Next() {
		var roleID int64
		var perm rbac.Permission
		if err := permRows.Scan(&roleID, &perm.ID, &perm.Name, &perm.Description); err != nil {
			return nil, err
		}
		if i, ok := index[roleID]; ok {
			roles[i].Permissions = append(roles[i].Permissions, perm)
		}
	}
	if err := permRows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetRole fetches a role with its permission set.
func (r *Repository) GetRole(ctx context.Context, id int64) (*Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, is_system, created_at, updated_at
		FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, &role.Description, &role.IsSystem,
			&role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	role.Permissions = []rbac.Permission{}

	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.description
		FROM role_permissions rp
		JOIN permissions p ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var perm rbac.Permission
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.Description); err != nil {
			return nil, err
		}
		role.Permissions = append(role.Permissions, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &role, nil
}

// CreateRole inserts a role and attaches its permission set in one
// transaction. Application-created roles are never system roles.
func (r *Repository) CreateRole(ctx context.Context, name, description string, permissionIDs []int64) (int64, error) {
	var id int64
	err := r.runTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO roles (name, description, is_system)
			VALUES ($1, $2, FALSE)
			RETURNING id`, name, description).Scan(&id); err != nil {
			return mapRoleError(err)
		}
		return attachPermissions(ctx, tx, id, permissionIDs)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateRole updates role fields and replaces the permission set wholesale.
// The delete and re-insert of join rows share one transaction: a failure
// between them rolls the role back to its previous full set.
func (r *Repository) UpdateRole(ctx context.Context, id int64, name, description string, permissionIDs []int64) error {
	return r.runTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE roles
			SET name = $1, description = $2, updated_at = now()
			WHERE id = $3 AND NOT is_system`, name, description, id)
		if err != nil {
			return mapRoleError(err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
			return err
		}
		return attachPermissions(ctx, tx, id, permissionIDs)
	})
}

// DeleteRole removes a role and its permission assignments.
func (r *Repository) DeleteRole(ctx context.Context, id int64) error {
	return r.runTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1 AND NOT is_system`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func attachPermissions(ctx context.Context, tx pgx.Tx, roleID int64, permissionIDs []int64) error {
	for _, pid := range permissionIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO role_permissions (role_id, permission_id)
			VALUES ($1, $2)`, roleID, pid); err != nil {
			return err
		}
	}
	return nil
}

func mapRoleError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrNameTaken
	}
	return err
}
