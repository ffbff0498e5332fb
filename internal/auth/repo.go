package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courseloop/courseloop/internal/rbac"
	"github.com/courseloop/courseloop/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	CreateUser(ctx context.Context, fields NewUser) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const uniqueViolation = "23505"

// CreateUser inserts a new account. A unique-email conflict surfaces
// as shared.ErrDuplicateEmail.
func (r *PGRepository) CreateUser(ctx context.Context, fields NewUser) (*User, error) {
	user := &User{
		FirstName:    fields.FirstName,
		LastName:     fields.LastName,
		Email:        strings.ToLower(fields.Email),
		PasswordHash: fields.PasswordHash,
		Role:         fields.Role,
		Department:   fields.Department,
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (first_name, last_name, email, password_hash, role, department)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		user.FirstName, user.LastName, user.Email, user.PasswordHash, string(user.Role), user.Department,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, shared.ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// FindByEmail fetches a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, email, password_hash, role, department, created_at, updated_at
		 FROM users WHERE email = $1`,
		strings.ToLower(email)))
}

// FindByID fetches a user by identity id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, email, password_hash, role, department, created_at, updated_at
		 FROM users WHERE id = $1`,
		id))
}

func (r *PGRepository) scanOne(row pgx.Row) (*User, error) {
	var user User
	var role string
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email,
		&user.PasswordHash, &role, &user.Department, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	parsed, ok := rbac.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("auth: user %d has unknown role %q", user.ID, role)
	}
	user.Role = parsed
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
