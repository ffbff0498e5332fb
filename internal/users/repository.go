package users

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courseloop/courseloop/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns one page of users, optionally filtered by role.
func (r *Repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]User, error) {
	query := `SELECT id, first_name, last_name, email, role, created_at FROM users`
	args := []any{}
	if filter.Role != "" {
		query += ` WHERE role = $1`
		args = append(args, string(filter.Role))
	}
	query += ` ORDER BY id LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Role, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the total number of users matching the filter.
func (r *Repository) Count(ctx context.Context, filter ListFilter) (int, error) {
	query := `SELECT count(*) FROM users`
	args := []any{}
	if filter.Role != "" {
		query += ` WHERE role = $1`
		args = append(args, string(filter.Role))
	}
	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// UpdateRole changes a user's role. Returns shared.ErrNotFound when no
// row matched.
func (r *Repository) UpdateRole(ctx context.Context, id int64, role string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = now() WHERE id = $1`,
		id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
