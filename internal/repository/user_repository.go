package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/garage-auth/internal/domain"
)

const uniqueViolation = "23505"

var (
	// ErrStoreNotConfigured is returned when no database pool is available.
	ErrStoreNotConfigured = errors.New("user store not configured")
	// ErrUsernameTaken is returned by Create for a duplicate username.
	ErrUsernameTaken = errors.New("username already exists")
)

// UserRepository defines persistence access for stored credentials.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if r.pool == nil {
		return nil, ErrStoreNotConfigured
	}

	const query = `
        SELECT u.id::text, u.username, u.password_hash,
               COALESCE(u.email, ''), COALESCE(u.full_name, ''),
               COALESCE(array_agg(up.permission_name ORDER BY up.position, up.permission_name)
                        FILTER (WHERE up.permission_name IS NOT NULL), '{}') AS roles,
               u.created_at, u.updated_at
        FROM users u
        LEFT JOIN user_permissions up ON up.user_id = u.id
        WHERE u.username = $1
        GROUP BY u.id`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Email,
		&user.FullName,
		&user.Roles,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if r.pool == nil {
		return ErrStoreNotConfigured
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insertUser = `
            INSERT INTO users (username, password_hash, email, full_name)
            VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
            RETURNING id::text, created_at, updated_at`

		err := tx.QueryRow(ctx, insertUser,
			user.Username,
			user.PasswordHash,
			user.Email,
			user.FullName,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return ErrUsernameTaken
			}
			return fmt.Errorf("insert user: %w", err)
		}

		for position, role := range user.Roles {
			if _, err := tx.Exec(ctx, `INSERT INTO permissions (name) VALUES ($1) ON CONFLICT DO NOTHING`, role); err != nil {
				return fmt.Errorf("insert permission %s: %w", role, err)
			}
			if _, err := tx.Exec(ctx, `
                INSERT INTO user_permissions (user_id, permission_name, position)
                VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, user.ID, role, position); err != nil {
				return fmt.Errorf("grant permission %s: %w", role, err)
			}
		}
		return nil
	})
}
