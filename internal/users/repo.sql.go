package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warden-admin/warden/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `
	u.id, u.name, u.email, r.id, r.name, u.is_active, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role.ID, &user.Role.Name,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users with their role, ordered by name.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+userColumns+`
		FROM users u
		JOIN roles r ON u.role_id = r.id
		ORDER BY u.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches a single user by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT`+userColumns+`
		FROM users u
		JOIN roles r ON u.role_id = r.id
		WHERE u.id = $1`, id))
}

// CreateUser inserts a new user record.
func (r *Repository) CreateUser(ctx context.Context, name, email, passwordHash string, roleID int64, isActive bool) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role_id, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`, name, email, passwordHash, roleID, isActive).Scan(&id)
	if err != nil {
		return 0, mapWriteError(err)
	}
	return id, nil
}

// UpdateUser updates account fields. A nil passwordHash leaves the stored
// credential untouched.
func (r *Repository) UpdateUser(ctx context.Context, id int64, name, email string, passwordHash *string, roleID int64, isActive bool) error {
	var tag pgconn.CommandTag
	var err error
	if passwordHash != nil {
		tag, err = r.pool.Exec(ctx, `
			UPDATE users
			SET name = $1, email = $2, password_hash = $3, role_id = $4, is_active = $5, updated_at = now()
			WHERE id = $6`, name, email, *passwordHash, roleID, isActive, id)
	} else {
		tag, err = r.pool.Exec(ctx, `
			UPDATE users
			SET name = $1, email = $2, role_id = $3, is_active = $4, updated_at = now()
			WHERE id = $5`, name, email, roleID, isActive, id)
	}
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateProfile updates the fields a user may change on their own account.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, name, email string, passwordHash *string) error {
	var tag pgconn.CommandTag
	var err error
	if passwordHash != nil {
		tag, err = r.pool.Exec(ctx, `
			UPDATE users
			SET name = $1, email = $2, password_hash = $3, updated_at = now()
			WHERE id = $4`, name, email, *passwordHash, id)
	} else {
		tag, err = r.pool.Exec(ctx, `
			UPDATE users
			SET name = $1, email = $2, updated_at = now()
			WHERE id = $3`, name, email, id)
	}
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GetPasswordHash fetches the stored credential for verification.
func (r *Repository) GetPasswordHash(ctx context.Context, id int64) (string, error) {
	var hash string
	err := r.pool.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return hash, nil
}

// DeleteUser removes a user record.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrEmailInUse
	}
	return err
}
