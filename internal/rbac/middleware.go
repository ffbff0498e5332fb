package rbac

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/courseloop/courseloop/internal/platform/httpx"
	"github.com/courseloop/courseloop/internal/shared"
)

// CookieName is the credential cookie shared by the resolver middleware
// and the auth handlers.
const CookieName = "jwt"

// Middleware wires the resolver and guard chains into HTTP handlers.
type Middleware struct {
	Resolver *Resolver
	Logger   *slog.Logger
}

// Protect resolves the caller and runs the policy's guard chain before
// the wrapped handler. On allow the principal is injected into the
// request context; the first denial short-circuits into a structured
// 401/403 response and the handler never runs.
func (m Middleware) Protect(policy Policy) func(http.Handler) http.Handler {
	return m.ProtectWith(policy)
}

// ProtectWith behaves like Protect with extra guards appended after the
// policy chain, in order.
func (m Middleware) ProtectWith(policy Policy, extra ...Guard) func(http.Handler) http.Handler {
	chain := append(BuildChain(policy), extra...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := ""
			if cookie, err := r.Cookie(CookieName); err == nil {
				raw = cookie.Value
			}
			principal, err := m.Resolver.Resolve(r.Context(), raw, policy.AllowGuest)
			if err != nil {
				m.writeDenial(w, r, err)
				return
			}
			if err := Evaluate(r.Context(), chain, principal, r); err != nil {
				m.writeDenial(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

type denialBody struct {
	Title    string   `json:"title"`
	Status   int      `json:"status"`
	Detail   string   `json:"detail,omitempty"`
	Required []string `json:"required,omitempty"`
	Current  string   `json:"current,omitempty"`
}

func (m Middleware) writeDenial(w http.ResponseWriter, r *http.Request, err error) {
	var roleErr *InsufficientRoleError
	var permErr *InsufficientPermissionError
	var lookupErr *ResourceLookupError

	switch {
	case errors.Is(err, shared.ErrUnauthenticated):
		httpx.JSON(w, http.StatusUnauthorized, denialBody{
			Title:  "Unauthorized",
			Status: http.StatusUnauthorized,
			Detail: "authentication required",
		})
	case errors.Is(err, shared.ErrAuthInvalid):
		httpx.JSON(w, http.StatusUnauthorized, denialBody{
			Title:  "Unauthorized",
			Status: http.StatusUnauthorized,
			Detail: "credential invalid or expired",
		})
	case errors.As(err, &roleErr):
		httpx.JSON(w, http.StatusForbidden, denialBody{
			Title:    "Forbidden",
			Status:   http.StatusForbidden,
			Detail:   "insufficient role",
			Required: roleStrings(roleErr.Required),
			Current:  string(roleErr.Actual),
		})
	case errors.As(err, &permErr):
		httpx.JSON(w, http.StatusForbidden, denialBody{
			Title:    "Forbidden",
			Status:   http.StatusForbidden,
			Detail:   "insufficient permission",
			Required: permissionStrings(permErr.Required),
			Current:  string(permErr.Role),
		})
	case errors.Is(err, ErrNotOwner):
		httpx.JSON(w, http.StatusForbidden, denialBody{
			Title:  "Forbidden",
			Status: http.StatusForbidden,
			Detail: "you can only access your own resources",
		})
	case errors.As(err, &lookupErr), errors.Is(err, shared.ErrLookupFailed):
		if m.Logger != nil {
			m.Logger.Error("principal resolution failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		}
		httpx.JSON(w, http.StatusInternalServerError, denialBody{
			Title:  "Internal Error",
			Status: http.StatusInternalServerError,
		})
	default:
		if m.Logger != nil {
			m.Logger.Error("guard chain failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		}
		httpx.JSON(w, http.StatusInternalServerError, denialBody{
			Title:  "Internal Error",
			Status: http.StatusInternalServerError,
		})
	}
}

func roleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func permissionStrings(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
