package courses

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/courseloop/courseloop/internal/platform/httpx"
	"github.com/courseloop/courseloop/internal/rbac"
	"github.com/courseloop/courseloop/internal/shared"
)

// Handler wires course endpoints behind the route guards.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers course routes. Listing requires the
// read_courses permission; creation requires the teacher role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Protect(rbac.Policy{Permissions: []rbac.Permission{rbac.PermReadCourses}}))
		r.Get("/", h.listCourses)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Protect(rbac.Policy{Roles: []rbac.Role{rbac.RoleTeacher}}))
		r.Post("/", h.createCourse)
	})
}

func (h *Handler) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListCourses(r.Context())
	if err != nil {
		h.logger.Error("list courses failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if courses == nil {
		courses = []Course{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"courses": courses})
}

type createCourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *Handler) createCourse(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed request body")
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	course, err := h.service.CreateCourse(r.Context(), req.Title, req.Description, principal.ID)
	if err != nil {
		if _, ok := shared.AsFieldErrors(err); !ok {
			h.logger.Error("create course failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"course": course})
}
