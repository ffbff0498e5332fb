package auth

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/courseloop/courseloop/internal/rbac"
	"github.com/courseloop/courseloop/internal/shared"
)

// selfAssignableRoles is the allow-list honored at signup. Anything
// else silently downgrades to the default role.
var selfAssignableRoles = map[rbac.Role]bool{
	rbac.RoleUser:    true,
	rbac.RoleTeacher: true,
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	throttle *Throttle
	validate *validator.Validate
}

// NewService constructs a new Service. throttle may be nil when no
// redis is available; login throttling is then disabled.
func NewService(repo Repository, throttle *Throttle) *Service {
	return &Service{repo: repo, throttle: throttle, validate: validator.New()}
}

// SignupInput carries the raw signup form fields.
type SignupInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	TermsAgreed     bool
	Role            string
	Department      string
}

// Signup validates and creates an account. Checks run in a fixed
// order: password confirmation, terms acceptance, then store-level
// constraints (email format, password length, uniqueness). No store
// write happens before all earlier checks pass.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*User, error) {
	if in.Password != in.ConfirmPassword {
		return nil, shared.FieldErrors{"confirmPassword": "Passwords do not match"}
	}
	if !in.TermsAgreed {
		return nil, shared.FieldErrors{"termsAgreed": "You must agree to the terms and conditions"}
	}
	if err := s.validate.Var(in.Email, "required,email"); err != nil {
		return nil, shared.FieldErrors{"email": "Please enter a valid email"}
	}
	if len(in.Password) < 6 {
		return nil, shared.FieldErrors{"password": "Minimum password length is 6 characters"}
	}

	role := rbac.RoleUser
	if requested, ok := rbac.ParseRole(in.Role); ok && selfAssignableRoles[requested] {
		role = requested
	}
	department := ""
	if role == rbac.RoleTeacher {
		department = in.Department
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, NewUser{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		Department:   department,
	})
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateEmail) {
			return nil, shared.FieldErrors{"email": "That email is already registered"}
		}
		return nil, err
	}
	return user, nil
}

// Authenticate validates email/password credentials. An unknown email
// and a wrong password return distinct field keys; callers depend on
// that shape.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if s.throttle != nil {
		locked, err := s.throttle.Locked(ctx, email)
		if err == nil && locked {
			return nil, shared.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.recordFailure(ctx, email)
			return nil, shared.FieldErrors{"email": "Incorrect email"}
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordFailure(ctx, email)
		return nil, shared.FieldErrors{"password": "Incorrect password"}
	}
	if s.throttle != nil {
		_ = s.throttle.Reset(ctx, email)
	}
	return user, nil
}

// FindPrincipal implements rbac.IdentityStore: the resolver's single
// store lookup per request.
func (s *Service) FindPrincipal(ctx context.Context, id int64) (rbac.Principal, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return rbac.Principal{}, err
	}
	return user.Principal(), nil
}

func (s *Service) recordFailure(ctx context.Context, email string) {
	if s.throttle != nil {
		_ = s.throttle.RecordFailure(ctx, email)
	}
}

var _ rbac.IdentityStore = (*Service)(nil)
