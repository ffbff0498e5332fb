package courses

import (
	"context"
	"strings"

	"github.com/courseloop/courseloop/internal/shared"
)

// RepositoryPort defines data access methods for courses.
type RepositoryPort interface {
	ListCourses(ctx context.Context) ([]Course, error)
	CreateCourse(ctx context.Context, title, description string, teacherID int64) (Course, error)
}

// Service handles course business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListCourses returns all courses.
func (s *Service) ListCourses(ctx context.Context) ([]Course, error) {
	return s.repo.ListCourses(ctx)
}

// CreateCourse validates and stores a new course owned by teacherID.
func (s *Service) CreateCourse(ctx context.Context, title, description string, teacherID int64) (Course, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Course{}, shared.FieldErrors{"title": "Please enter a title"}
	}
	return s.repo.CreateCourse(ctx, title, strings.TrimSpace(description), teacherID)
}
