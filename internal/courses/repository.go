package courses

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListCourses returns all courses.
func (r *Repository) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, teacher_id, created_at FROM courses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var courses []Course
	for rows.Next() {
		var course Course
		if err := rows.Scan(&course.ID, &course.Title, &course.Description, &course.TeacherID, &course.CreatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}

// CreateCourse inserts a new course.
func (r *Repository) CreateCourse(ctx context.Context, title, description string, teacherID int64) (Course, error) {
	course := Course{Title: title, Description: description, TeacherID: teacherID}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO courses (title, description, teacher_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		title, description, teacherID,
	).Scan(&course.ID, &course.CreatedAt)
	if err != nil {
		return Course{}, err
	}
	return course, nil
}
