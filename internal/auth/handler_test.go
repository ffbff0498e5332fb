package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/courseloop/courseloop/internal/auth"
	"github.com/courseloop/courseloop/internal/rbac"
	"github.com/courseloop/courseloop/internal/shared"
	"github.com/courseloop/courseloop/internal/token"
)

type memoryRepo struct {
	users  map[string]*auth.User
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]*auth.User), nextID: 1}
}

func (m *memoryRepo) CreateUser(ctx context.Context, fields auth.NewUser) (*auth.User, error) {
	email := strings.ToLower(fields.Email)
	if _, exists := m.users[email]; exists {
		return nil, shared.ErrDuplicateEmail
	}
	user := &auth.User{
		ID:           m.nextID,
		FirstName:    fields.FirstName,
		LastName:     fields.LastName,
		Email:        email,
		PasswordHash: fields.PasswordHash,
		Role:         fields.Role,
	}
	m.nextID++
	m.users[email] = user
	return user, nil
}

func (m *memoryRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	user, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (m *memoryRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, shared.ErrNotFound
}

func newTestHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *token.Service) {
	t.Helper()
	tokens := token.NewService("handler-test-secret", 72*time.Hour)
	service := auth.NewService(repo, nil)
	resolver := rbac.NewResolver(tokens, service)
	cookies := auth.NewCookieWriter(false, tokens.TTL())
	return auth.NewHandler(discardLogger(), service, tokens, resolver, cookies), tokens
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func mountedRouter(t *testing.T, handler *auth.Handler) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSignupSetsCredentialCookie(t *testing.T) {
	handler, _ := newTestHandler(t, newMemoryRepo())
	router := mountedRouter(t, handler)

	res := postJSON(t, router, "/signup",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","password":"abc123","confirmPassword":"abc123","termsAgreed":true}`)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}

	cookie := findCookie(t, res, "jwt")
	if cookie == nil {
		t.Fatal("jwt cookie not set")
	}
	if !cookie.HttpOnly {
		t.Fatal("jwt cookie must be HttpOnly")
	}
	if cookie.MaxAge != int((72 * time.Hour).Seconds()) {
		t.Fatalf("cookie Max-Age = %d, want token lifetime in seconds", cookie.MaxAge)
	}
	if cookie.Secure {
		t.Fatal("non-production cookie must not be Secure")
	}

	var body struct {
		User  map[string]any `json:"user"`
		Token string         `json:"token"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Token == "" {
		t.Fatal("token missing from body")
	}
	if _, leaked := body.User["passwordHash"]; leaked {
		t.Fatal("password hash leaked in response")
	}
	if body.User["role"] != "user" {
		t.Fatalf("expected default role user, got %v", body.User["role"])
	}
}

func TestSignupPasswordMismatchIs400(t *testing.T) {
	repo := newMemoryRepo()
	handler, _ := newTestHandler(t, repo)
	router := mountedRouter(t, handler)

	res := postJSON(t, router, "/signup",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","password":"abc123","confirmPassword":"abc124","termsAgreed":true}`)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Errors["confirmPassword"] != "Passwords do not match" {
		t.Fatalf("unexpected errors: %v", body.Errors)
	}
	if len(repo.users) != 0 {
		t.Fatal("no store write must happen")
	}
}

func TestLoginFieldKeys(t *testing.T) {
	repo := newMemoryRepo()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo.users["ada@example.com"] = &auth.User{ID: 1, Email: "ada@example.com", PasswordHash: string(hashed), Role: rbac.RoleUser}

	handler, _ := newTestHandler(t, repo)
	router := mountedRouter(t, handler)

	res := postJSON(t, router, "/login", `{"email":"nobody@example.com","password":"correctpass"}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("unknown email: expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `"email"`) {
		t.Fatalf("unknown email must key on email: %s", res.Body.String())
	}

	res = postJSON(t, router, "/login", `{"email":"ada@example.com","password":"wrongpass"}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("wrong password: expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `"password"`) {
		t.Fatalf("wrong password must key on password: %s", res.Body.String())
	}

	res = postJSON(t, router, "/login", `{"email":"ada@example.com","password":"correctpass"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("valid login: expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if findCookie(t, res, "jwt") == nil {
		t.Fatal("login must set the jwt cookie")
	}
}

func TestLogoutExpiresCookie(t *testing.T) {
	handler, _ := newTestHandler(t, newMemoryRepo())
	router := mountedRouter(t, handler)

	res := postJSON(t, router, "/logout", "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	cookie := findCookie(t, res, "jwt")
	if cookie == nil {
		t.Fatal("logout must overwrite the jwt cookie")
	}
	if cookie.Value != "" || cookie.MaxAge != 1 {
		t.Fatalf("logout cookie must be empty and immediately expiring, got value=%q maxage=%d", cookie.Value, cookie.MaxAge)
	}
}

func TestMeDegradesToGuest(t *testing.T) {
	handler, _ := newTestHandler(t, newMemoryRepo())
	router := mountedRouter(t, handler)

	for _, tc := range []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"garbage token", &http.Cookie{Name: "jwt", Value: "not-a-token"}},
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.cookie != nil {
			req.AddCookie(tc.cookie)
		}
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)

		if res.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.name, res.Code)
		}
		var body struct {
			User struct {
				ID          *int64   `json:"id"`
				Role        string   `json:"role"`
				Permissions []string `json:"permissions"`
			} `json:"user"`
		}
		if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if body.User.ID != nil {
			t.Fatalf("%s: guest id must be null", tc.name)
		}
		if body.User.Role != "guest" {
			t.Fatalf("%s: expected guest role, got %q", tc.name, body.User.Role)
		}
		if len(body.User.Permissions) != 1 || body.User.Permissions[0] != "view_public_content" {
			t.Fatalf("%s: unexpected guest permissions %v", tc.name, body.User.Permissions)
		}
	}
}

func TestMeReturnsRealPrincipal(t *testing.T) {
	repo := newMemoryRepo()
	handler, tokens := newTestHandler(t, repo)
	router := mountedRouter(t, handler)

	repo.users["ada@example.com"] = &auth.User{ID: 7, FirstName: "Ada", Email: "ada@example.com", Role: rbac.RoleTeacher}
	signed, err := tokens.Issue(7, "teacher")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: signed})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `"teacher"`) {
		t.Fatalf("expected teacher role in %s", res.Body.String())
	}
}

func findCookie(t *testing.T, res *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range res.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
