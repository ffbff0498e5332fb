package rbac

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/courseloop/courseloop/internal/shared"
)

// ErrNotOwner indicates the principal is neither the resource owner
// nor an admin.
var ErrNotOwner = errors.New("rbac: not resource owner")

// InsufficientRoleError is returned when none of the required roles is
// satisfied by the principal's role.
type InsufficientRoleError struct {
	Required []Role
	Actual   Role
}

func (e *InsufficientRoleError) Error() string {
	return fmt.Sprintf("rbac: role %q does not satisfy any of %v", e.Actual, e.Required)
}

// InsufficientPermissionError is returned when the principal's derived
// permission set does not intersect the required set.
type InsufficientPermissionError struct {
	Required []Permission
	Role     Role
}

func (e *InsufficientPermissionError) Error() string {
	return fmt.Sprintf("rbac: role %q grants none of %v", e.Role, e.Required)
}

// ResourceLookupError wraps a failure inside an ownership resolver.
// Distinct from ErrNotOwner: the target could not be determined at all.
type ResourceLookupError struct {
	Err error
}

func (e *ResourceLookupError) Error() string {
	return "rbac: resource lookup failed: " + e.Err.Error()
}

func (e *ResourceLookupError) Unwrap() error {
	return e.Err
}

// Guard is a pure allow/deny decision over (principal, request). A nil
// return allows; guards in a chain run in order and the first denial
// short-circuits.
type Guard func(ctx context.Context, p Principal, r *http.Request) error

// AuthenticationGuard denies guests on routes that forbid them. It
// re-checks the same allowGuest flag the resolver consumed so each
// guard stays independently testable.
func AuthenticationGuard(allowGuest bool) Guard {
	return func(ctx context.Context, p Principal, r *http.Request) error {
		if p.IsGuest() && !allowGuest {
			return shared.ErrUnauthenticated
		}
		return nil
	}
}

// RoleGuard allows when the principal's role satisfies at least one of
// the required roles, hierarchy-aware: a higher role always satisfies
// a lower requirement.
func RoleGuard(required ...Role) Guard {
	return func(ctx context.Context, p Principal, r *http.Request) error {
		for _, role := range required {
			if HasAtLeastRole(p.Role, role) {
				return nil
			}
		}
		return &InsufficientRoleError{Required: required, Actual: p.Role}
	}
}

// PermissionGuard allows when the principal's permission set intersects
// the required set. Admin always passes.
func PermissionGuard(required ...Permission) Guard {
	return func(ctx context.Context, p Principal, r *http.Request) error {
		for _, perm := range required {
			if HasPermission(p.Role, perm) {
				return nil
			}
		}
		return &InsufficientPermissionError{Required: required, Role: p.Role}
	}
}

// OwnershipOrAdminGuard allows admins unconditionally, otherwise allows
// only the owner of the target resource. A failing owner resolution
// propagates as ResourceLookupError, not as a denial.
func OwnershipOrAdminGuard(resolveOwnerID func(r *http.Request) (int64, error)) Guard {
	return func(ctx context.Context, p Principal, r *http.Request) error {
		if p.Role == RoleAdmin {
			return nil
		}
		ownerID, err := resolveOwnerID(r)
		if err != nil {
			return &ResourceLookupError{Err: err}
		}
		if p.ID == ownerID {
			return nil
		}
		return ErrNotOwner
	}
}

// Policy declares a route's protection requirements. Empty requirement
// sets mean no constraint of that kind.
type Policy struct {
	Roles       []Role
	Permissions []Permission
	AllowGuest  bool
}

// BuildChain assembles the ordered guard chain for a policy: always
// the authentication guard first, then role and permission guards for
// non-empty requirement sets.
func BuildChain(policy Policy) []Guard {
	chain := []Guard{AuthenticationGuard(policy.AllowGuest)}
	if len(policy.Roles) > 0 {
		chain = append(chain, RoleGuard(policy.Roles...))
	}
	if len(policy.Permissions) > 0 {
		chain = append(chain, PermissionGuard(policy.Permissions...))
	}
	return chain
}

// Evaluate runs the chain in order, returning the first denial.
func Evaluate(ctx context.Context, chain []Guard, p Principal, r *http.Request) error {
	for _, guard := range chain {
		if err := guard(ctx, p, r); err != nil {
			return err
		}
	}
	return nil
}
