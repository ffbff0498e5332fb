package users

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/courseloop/courseloop/internal/rbac"
	"github.com/courseloop/courseloop/internal/shared"
	"github.com/courseloop/courseloop/internal/token"
)

type stubIdentityStore struct {
	principals map[int64]rbac.Principal
}

func (s *stubIdentityStore) FindPrincipal(ctx context.Context, id int64) (rbac.Principal, error) {
	principal, ok := s.principals[id]
	if !ok {
		return rbac.Principal{}, shared.ErrNotFound
	}
	return principal, nil
}

func newTestRouter(t *testing.T, repo *stubRepo) (http.Handler, *token.Service) {
	t.Helper()
	tokens := token.NewService("users-test-secret", time.Hour)
	identities := &stubIdentityStore{principals: map[int64]rbac.Principal{
		1: {ID: 1, Role: rbac.RoleAdmin},
		2: {ID: 2, Role: rbac.RoleUser},
	}}
	guard := rbac.Middleware{
		Resolver: rbac.NewResolver(tokens, identities),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(repo), guard)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, tokens
}

func doRequest(t *testing.T, router http.Handler, tokens *token.Service, method, path, body string, asUser int64, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if asUser != 0 {
		signed, err := tokens.Issue(asUser, role)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: rbac.CookieName, Value: signed})
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestListUsersRequiresAdmin(t *testing.T) {
	router, tokens := newTestRouter(t, seededRepo(3))

	res := doRequest(t, router, tokens, http.MethodGet, "/users", "", 0, "")
	require.Equal(t, http.StatusUnauthorized, res.Code)

	res = doRequest(t, router, tokens, http.MethodGet, "/users", "", 2, "user")
	require.Equal(t, http.StatusForbidden, res.Code)

	res = doRequest(t, router, tokens, http.MethodGet, "/users", "", 1, "admin")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"pagination"`)
}

func TestUpdateRoleSelfDemotionIs403(t *testing.T) {
	repo := seededRepo(3)
	repo.users = append(repo.users, User{ID: 1, Role: rbac.RoleAdmin})
	router, tokens := newTestRouter(t, repo)

	res := doRequest(t, router, tokens, http.MethodPost, "/update-role",
		`{"userId":1,"role":"user"}`, 1, "admin")
	require.Equal(t, http.StatusForbidden, res.Code)
	require.Zero(t, repo.updates, "store must stay unchanged")
}

func TestUpdateRolePromotion(t *testing.T) {
	repo := seededRepo(3)
	router, tokens := newTestRouter(t, repo)

	res := doRequest(t, router, tokens, http.MethodPost, "/update-role",
		`{"userId":2,"role":"teacher"}`, 1, "admin")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, 1, repo.updates)
}
