package courses

import "time"

// Course is a published course owned by a teacher.
type Course struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TeacherID   int64     `json:"teacherId"`
	CreatedAt   time.Time `json:"createdAt"`
}
