package app

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/courseloop/courseloop/internal/auth"
	"github.com/courseloop/courseloop/internal/courses"
	"github.com/courseloop/courseloop/internal/platform/httpx"
	"github.com/courseloop/courseloop/internal/rbac"
	"github.com/courseloop/courseloop/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	AuthHandler    *auth.Handler
	UsersHandler   *users.Handler
	CoursesHandler *courses.Handler
	Guard          rbac.Middleware
}

// NewRouter constructs the chi.Router with Courseloop defaults. Call
// sites declare route policy; the guard middleware does the rest.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			httpx.JSON(w, http.StatusOK, map[string]any{
				"success":   true,
				"message":   "API is healthy",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
		})

		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountRoutes(r)
			params.UsersHandler.MountRoutes(r)
		})

		r.Route("/courses", func(r chi.Router) {
			params.CoursesHandler.MountRoutes(r)
		})

		// Guest-accessible content: the payload grows with the caller's
		// role.
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.Protect(rbac.Policy{AllowGuest: true}))
			r.Get("/content", handleContent)
		})

		r.Group(func(r chi.Router) {
			r.Use(params.Guard.Protect(rbac.Policy{Roles: []rbac.Role{rbac.RoleUser}}))
			r.Get("/cart", handleCart)
		})

		r.Group(func(r chi.Router) {
			r.Use(params.Guard.Protect(rbac.Policy{Roles: []rbac.Role{rbac.RoleTeacher}}))
			r.Get("/teacher/dashboard", handleDashboard("Teacher dashboard accessed"))
		})

		r.Group(func(r chi.Router) {
			r.Use(params.Guard.Protect(rbac.Policy{Roles: []rbac.Role{rbac.RoleAdmin}}))
			r.Get("/admin/dashboard", handleDashboard("Admin dashboard accessed"))
		})

		// Profile access: any authenticated role, but only the owner or
		// an admin gets through.
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.ProtectWith(
				rbac.Policy{Roles: []rbac.Role{rbac.RoleUser}},
				rbac.OwnershipOrAdminGuard(profileOwnerID),
			))
			r.Get("/user/{userID}/profile", handleProfile)
		})
	})

	return r
}

func profileOwnerID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
}

func handleContent(w http.ResponseWriter, r *http.Request) {
	principal, _ := rbac.PrincipalFromContext(r.Context())
	content := map[string]any{
		"public": "This content is available to everyone",
	}
	if rbac.HasAtLeastRole(principal.Role, rbac.RoleUser) {
		content["user"] = "Course list available"
	}
	if rbac.HasAtLeastRole(principal.Role, rbac.RoleTeacher) {
		content["teacher"] = "Course creation available"
	}
	if rbac.HasAtLeastRole(principal.Role, rbac.RoleAdmin) {
		content["admin"] = "Admin panel available"
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"content":  content,
		"userRole": string(principal.Role),
	})
}

func handleCart(w http.ResponseWriter, r *http.Request) {
	principal, _ := rbac.PrincipalFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "User cart accessed",
		"user":    auth.PrincipalPayload(principal),
	})
}

func handleDashboard(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := rbac.PrincipalFromContext(r.Context())
		httpx.JSON(w, http.StatusOK, map[string]any{
			"message": message,
			"user":    auth.PrincipalPayload(principal),
		})
	}
}

func handleProfile(w http.ResponseWriter, r *http.Request) {
	principal, _ := rbac.PrincipalFromContext(r.Context())
	targetID, _ := profileOwnerID(r)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":        "Profile access granted for user " + strconv.FormatInt(targetID, 10),
		"requestingUser": principal.ID,
	})
}
