package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mnb-billing/mnb-pos/internal/platform/db"
	"github.com/mnb-billing/mnb-pos/internal/shared"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	// CreateUser inserts the user unless the username exists; it reports whether a row was written.
	CreateUser(ctx context.Context, username, passwordHash, fullName, role string) (bool, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

const selectUser = `SELECT u.id, u.username, u.password_hash, COALESCE(u.full_name, ''), r.name, u.created_at
FROM users u
JOIN roles r ON r.id = u.role_id`

func scanUser(row pgx.Row) (*User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.FullName, &user.Role, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByUsername fetches a user by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, selectUser+` WHERE u.username = $1`, username))
}

// FindByID fetches a user by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, selectUser+` WHERE u.id = $1`, id))
}

// CreateUser inserts a user with the named role.
func (r *PGRepository) CreateUser(ctx context.Context, username, passwordHash, fullName, role string) (bool, error) {
	tag, err := r.db.Exec(ctx, `INSERT INTO users (username, password_hash, full_name, role_id)
SELECT $1, $2, NULLIF($3, ''), id FROM roles WHERE name = $4
ON CONFLICT (username) DO NOTHING`, username, passwordHash, fullName, role)
	if err != nil {
		return false, fmt.Errorf("auth: create user: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

var _ Repository = (*PGRepository)(nil)
