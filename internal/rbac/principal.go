package rbac

import "context"

// Principal describes the resolved actor for one request. It is built
// fresh by the resolver on every request and never persisted.
type Principal struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Role      Role
}

// Guest returns the zero-privilege sentinel principal used when no
// valid credential is required. A principal with ID 0 always carries
// the guest role.
func Guest() Principal {
	return Principal{Role: RoleGuest}
}

// IsGuest reports whether the principal is the guest sentinel.
func (p Principal) IsGuest() bool {
	return p.ID == 0
}

// Permissions returns the principal's derived permission set.
func (p Principal) Permissions() []Permission {
	return PermissionsOf(p.Role)
}

type principalContextKey struct{}

// ContextWithPrincipal stores the resolved principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the resolved principal. The guard
// middleware always installs one, so handlers behind it may rely on ok.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
