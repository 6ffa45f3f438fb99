package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mnb-billing/mnb-pos/internal/auth"
	"github.com/mnb-billing/mnb-pos/internal/shared"
	_ "github.com/mnb-billing/mnb-pos/testing"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(_ context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateUser(context.Context, string, string, string, string) (bool, error) {
	return false, nil
}

func newRouter(t *testing.T) (http.Handler, *auth.Middleware) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubRepo{user: &auth.User{ID: 1, Username: "admin", PasswordHash: string(hash), FullName: "Administrator", Role: auth.RoleAdmin}}
	tokens := auth.NewTokenManager("handler-secret", time.Hour)
	mw := auth.NewMiddleware(tokens)
	handler := auth.NewHandler(nil, auth.NewService(repo, tokens), mw)

	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate)
		r.With(mw.RequireRole(auth.RoleAdmin)).Get("/admin-only", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(mw.RequireRole(auth.RoleCashier)).Get("/cashier-only", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	return r, mw
}

func login(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestLoginAndMe(t *testing.T) {
	router, _ := newRouter(t)

	rr := login(t, router, `{"username":"admin","password":"admin123"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var payload struct {
		Success bool             `json:"success"`
		Data    auth.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	require.NotEmpty(t, payload.Data.Token)
	assert.Equal(t, "Administrator", payload.Data.User.FullName)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+payload.Data.Token)
	me := httptest.NewRecorder()
	router.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"username":"admin"`)
}

func TestLoginFailureReturns401(t *testing.T) {
	router, _ := newRouter(t)
	rr := login(t, router, `{"username":"admin","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid credentials")

	rr = login(t, router, `{"username":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProtectedRoutes(t *testing.T) {
	router, _ := newRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin-only", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	bad := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	bad.Header.Set("Authorization", "Bearer not-a-token")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, bad)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	loginRR := login(t, router, `{"username":"admin","password":"admin123"}`)
	var payload struct {
		Data auth.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(loginRR.Body.Bytes(), &payload))

	ok := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	ok.Header.Set("Authorization", "Bearer "+payload.Data.Token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, ok)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	forbidden := httptest.NewRequest(http.MethodGet, "/cashier-only", nil)
	forbidden.Header.Set("Authorization", "Bearer "+payload.Data.Token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, forbidden)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
