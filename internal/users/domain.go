package users

import (
	"time"

	"github.com/courseloop/courseloop/internal/rbac"
)

// User is the sanitized management projection of an account. It never
// carries the password hash.
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      rbac.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListFilter narrows and pages a user listing.
type ListFilter struct {
	Role    rbac.Role
	Page    int
	PerPage int
}
