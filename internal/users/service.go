package users

import (
	"context"
	"errors"

	"github.com/courseloop/courseloop/internal/rbac"
	"github.com/courseloop/courseloop/internal/shared"
)

// ErrSelfDemotion is returned when an admin tries to change their own
// role away from admin.
var ErrSelfDemotion = errors.New("users: admins may not demote themselves")

// RepositoryPort defines data access methods for user management.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]User, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	UpdateRole(ctx context.Context, id int64, role string) error
}

// Service handles user management business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns one page of sanitized user projections plus
// pagination metadata.
func (s *Service) ListUsers(ctx context.Context, filter ListFilter) ([]User, shared.Pagination, error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	meta := shared.NewPagination(filter.Page, filter.PerPage, total)
	users, err := s.repo.List(ctx, filter, meta.PerPage, meta.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return users, meta, nil
}

// UpdateRole changes the target user's role. The role must come from
// the closed set, and the acting admin may not demote themselves away
// from admin.
func (s *Service) UpdateRole(ctx context.Context, actor rbac.Principal, targetID int64, newRole string) error {
	role, ok := rbac.ParseRole(newRole)
	if !ok {
		return shared.FieldErrors{"role": "Unknown role"}
	}
	if actor.ID == targetID && actor.Role == rbac.RoleAdmin && role != rbac.RoleAdmin {
		return ErrSelfDemotion
	}
	return s.repo.UpdateRole(ctx, targetID, string(role))
}
