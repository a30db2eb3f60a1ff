package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warden-admin/warden/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindSessionUser(ctx context.Context, userID int64) (*shared.SessionUser, error)
	FindRoleIDByName(ctx context.Context, name string) (int64, error)
	CreateUser(ctx context.Context, name, email, passwordHash string, roleID int64) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role_id, is_active, created_at, updated_at
		FROM users WHERE email = $1`, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.RoleID,
			&user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindSessionUser loads the session snapshot for an active user, joining in
// the role so tokens can embed it.
func (r *PGRepository) FindSessionUser(ctx context.Context, userID int64) (*shared.SessionUser, error) {
	var su shared.SessionUser
	err := r.pool.QueryRow(ctx, `
		SELECT u.id, u.name, u.email, r.id, r.name
		FROM users u
		JOIN roles r ON u.role_id = r.id
		WHERE u.id = $1 AND u.is_active`, userID).
		Scan(&su.ID, &su.Name, &su.Email, &su.RoleID, &su.RoleName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrUserNotFoundOrInactive
		}
		return nil, err
	}
	return &su, nil
}

// FindRoleIDByName resolves a role id by its unique name.
func (r *PGRepository) FindRoleIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

// CreateUser inserts a new active user record.
func (r *PGRepository) CreateUser(ctx context.Context, name, email, passwordHash string, roleID int64) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role_id, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id`, name, email, passwordHash, roleID).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, shared.ErrEmailInUse
		}
		return 0, err
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repository = (*PGRepository)(nil)
