package rbac

import "fmt"

// Role is one of the closed, ordered set of access levels. The set and
// its order are fixed at compile time; there are no dynamic roles.
type Role string

const (
	RoleGuest   Role = "guest"
	RoleUser    Role = "user"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Permission is a fine-grained capability tag derived from a role.
type Permission string

const (
	PermViewPublicContent    Permission = "view_public_content"
	PermReadCourses          Permission = "read_courses"
	PermManageCart           Permission = "manage_cart"
	PermCreateCourses        Permission = "create_courses"
	PermManageStudents       Permission = "manage_students"
	PermViewTeacherDashboard Permission = "view_teacher_dashboard"
)

var roleRanks = map[Role]int{
	RoleGuest:   0,
	RoleUser:    1,
	RoleTeacher: 2,
	RoleAdmin:   3,
}

var rolePermissions = map[Role][]Permission{
	RoleGuest: {PermViewPublicContent},
	RoleUser:  {PermViewPublicContent, PermReadCourses, PermManageCart},
	RoleTeacher: {
		PermViewPublicContent, PermReadCourses, PermManageCart,
		PermCreateCourses, PermManageStudents, PermViewTeacherDashboard,
	},
	// Admin matches any permission query; see HasPermission. The entry
	// exists so PermissionsOf stays total over the closed role set.
	RoleAdmin: {
		PermViewPublicContent, PermReadCourses, PermManageCart,
		PermCreateCourses, PermManageStudents, PermViewTeacherDashboard,
	},
}

// ParseRole validates a string against the closed role set.
func ParseRole(s string) (Role, bool) {
	role := Role(s)
	_, ok := roleRanks[role]
	return role, ok
}

// Rank returns the position of a role in the total order. A role
// outside the closed set is a programming error.
func Rank(role Role) int {
	rank, ok := roleRanks[role]
	if !ok {
		panic(fmt.Sprintf("rbac: unknown role %q", role))
	}
	return rank
}

// HasAtLeastRole reports whether actual sits at or above required in
// the hierarchy.
func HasAtLeastRole(actual, required Role) bool {
	return Rank(actual) >= Rank(required)
}

// PermissionsOf returns the static permission set for a role.
func PermissionsOf(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		panic(fmt.Sprintf("rbac: unknown role %q", role))
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether a role grants a permission. Admin
// matches every permission, including tags absent from the static
// tables.
func HasPermission(role Role, perm Permission) bool {
	if role == RoleAdmin {
		return true
	}
	for _, p := range PermissionsOf(role) {
		if p == perm {
			return true
		}
	}
	return false
}
