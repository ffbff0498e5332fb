package auth

import (
	"time"

	"github.com/courseloop/courseloop/internal/rbac"
)

// User represents a stored user account.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         rbac.Role
	// Department is teacher-specific metadata, empty for other roles.
	Department string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Principal projects the stored record into the per-request actor.
func (u *User) Principal() rbac.Principal {
	return rbac.Principal{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
	}
}

// PublicUser is the sanitized projection returned to clients. It never
// includes the password hash.
type PublicUser struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

// Public returns the sanitized projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Role:       string(u.Role),
		Department: u.Department,
	}
}

// NewUser carries the fields persisted at signup.
type NewUser struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         rbac.Role
	Department   string
}
