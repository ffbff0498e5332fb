package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/courseloop/courseloop/internal/platform/httpx"
	"github.com/courseloop/courseloop/internal/rbac"
	"github.com/courseloop/courseloop/internal/shared"
	"github.com/courseloop/courseloop/internal/token"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	tokens    *token.Service
	resolver  *rbac.Resolver
	cookies   CookieWriter
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, tokens *token.Service, resolver *rbac.Resolver, cookies CookieWriter) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		tokens:    tokens,
		resolver:  resolver,
		cookies:   cookies,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/signup", h.handleSignup)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
}

type signupRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	TermsAgreed     bool   `json:"termsAgreed"`
	Role            string `json:"role"`
	Department      string `json:"department"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed request body")
		return
	}

	user, err := h.service.Signup(r.Context(), SignupInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		TermsAgreed:     req.TermsAgreed,
		Role:            req.Role,
		Department:      req.Department,
	})
	if err != nil {
		if _, ok := shared.AsFieldErrors(err); !ok {
			h.logger.Error("signup failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	h.issueSession(w, user, http.StatusCreated)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		fields := make(shared.FieldErrors)
		for _, fieldErr := range err.(validator.ValidationErrors) {
			switch fieldErr.Field() {
			case "Email":
				fields["email"] = "Please enter a valid email"
			case "Password":
				fields["password"] = "Please enter a password"
			}
		}
		httpx.RespondError(w, fields)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if _, ok := shared.AsFieldErrors(err); !ok {
			h.logger.Warn("login failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	h.issueSession(w, user, http.StatusOK)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// handleMe returns the resolved principal for the caller's credential.
// It never errors for an absent or invalid credential; those degrade
// to the guest principal.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	raw := ""
	if cookie, err := r.Cookie(rbac.CookieName); err == nil {
		raw = cookie.Value
	}
	principal, err := h.resolver.Resolve(r.Context(), raw, true)
	if err != nil {
		h.logger.Error("resolve current principal", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": PrincipalPayload(principal)})
}

func (h *Handler) issueSession(w http.ResponseWriter, user *User, status int) {
	signed, err := h.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	h.cookies.Write(w, signed)
	httpx.JSON(w, status, sessionResponse{User: user.Public(), Token: signed})
}

// principalBody is the wire shape of a resolved principal. The id is
// null for the guest sentinel.
type principalBody struct {
	ID          *int64   `json:"id"`
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	Email       string   `json:"email,omitempty"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// PrincipalPayload projects a principal for JSON responses.
func PrincipalPayload(p rbac.Principal) any {
	body := principalBody{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Role:      string(p.Role),
	}
	if !p.IsGuest() {
		id := p.ID
		body.ID = &id
	}
	for _, perm := range p.Permissions() {
		body.Permissions = append(body.Permissions, string(perm))
	}
	return body
}
