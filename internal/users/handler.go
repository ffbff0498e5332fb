package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/courseloop/courseloop/internal/platform/httpx"
	"github.com/courseloop/courseloop/internal/rbac"
	"github.com/courseloop/courseloop/internal/shared"
)

// Handler manages the admin-guarded user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers user management routes. Both are admin-only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Protect(rbac.Policy{Roles: []rbac.Role{rbac.RoleAdmin}}))
		r.Get("/users", h.listUsers)
		r.Post("/update-role", h.updateRole)
	})
}

type listResponse struct {
	Users      []User            `json:"users"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Page:    queryInt(r, "page", 1),
		PerPage: queryInt(r, "perPage", 20),
	}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role, ok := rbac.ParseRole(raw)
		if !ok {
			httpx.RespondError(w, shared.FieldErrors{"role": "Unknown role"})
			return
		}
		filter.Role = role
	}

	users, meta, err := h.service.ListUsers(r.Context(), filter)
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if users == nil {
		users = []User{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Users: users, Pagination: meta})
}

type updateRoleRequest struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed request body")
		return
	}
	actor, _ := rbac.PrincipalFromContext(r.Context())
	if err := h.service.UpdateRole(r.Context(), actor, req.UserID, req.Role); err != nil {
		if errors.Is(err, ErrSelfDemotion) {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "admins may not demote themselves")
			return
		}
		if !errors.Is(err, shared.ErrNotFound) {
			if _, ok := shared.AsFieldErrors(err); !ok {
				h.logger.Error("update role failed", slog.Any("error", err))
			}
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"userId": req.UserID, "role": req.Role})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
