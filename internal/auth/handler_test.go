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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/warden-admin/warden/internal/auth"
	"github.com/warden-admin/warden/internal/shared"
	_ "github.com/warden-admin/warden/testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memRepo is an in-memory Repository that keeps registered users loginable,
// so handler tests can run the register-then-login flow end to end.
type memRepo struct {
	users  map[string]*auth.User
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*auth.User{}, nextID: 1}
}

func (m *memRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if user, ok := m.users[email]; ok {
		return user, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memRepo) FindSessionUser(ctx context.Context, userID int64) (*shared.SessionUser, error) {
	for _, user := range m.users {
		if user.ID == userID && user.IsActive {
			return &shared.SessionUser{
				ID:       user.ID,
				Name:     user.Name,
				Email:    user.Email,
				RoleID:   user.RoleID,
				RoleName: auth.DefaultRoleName,
			}, nil
		}
	}
	return nil, shared.ErrUserNotFoundOrInactive
}

func (m *memRepo) FindRoleIDByName(ctx context.Context, name string) (int64, error) {
	if name == auth.DefaultRoleName {
		return 1, nil
	}
	return 0, shared.ErrNotFound
}

func (m *memRepo) CreateUser(ctx context.Context, name, email, passwordHash string, roleID int64) (int64, error) {
	if _, ok := m.users[email]; ok {
		return 0, shared.ErrEmailInUse
	}
	id := m.nextID
	m.nextID++
	m.users[email] = &auth.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		RoleID:       roleID,
		IsActive:     true,
	}
	return id, nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	sessions := shared.NewSessionManager(repo, "test_session", "0123456789abcdef0123456789abcdef", time.Hour, false)
	handler := auth.NewHandler(testLogger(), auth.NewService(repo, sessions), sessions)
	return handler, sessions
}

func postJSON(handler http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func mountAuth(handler *auth.Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r
}

func TestRegisterThenLogin(t *testing.T) {
	repo := newMemRepo()
	handler, sessions := newAuthHandler(t, repo)
	router := mountAuth(handler)

	res := postJSON(router, "/auth/register", `{"name":"Ann","email":"ann@x.com","password":"pw123456"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = postJSON(router, "/auth/login", `{"email":"ann@x.com","password":"pw123456"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		UserID   int64  `json:"user_id"`
		RoleName string `json:"role_name"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Equal(t, auth.DefaultRoleName, payload.RoleName)

	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == sessions.CookieName() {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "login must set the session cookie")
	assert.True(t, sessionCookie.HttpOnly)

	sess := sessions.Parse(sessionCookie.Value)
	require.NotNil(t, sess)
	assert.Equal(t, payload.UserID, sess.UserID)
	assert.Equal(t, "ann@x.com", sess.Email)
}

func TestLoginInvalidCredentialsResponse(t *testing.T) {
	repo := newMemRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users["user@test.local"] = &auth.User{
		ID: 1, Email: "user@test.local", PasswordHash: string(hash), RoleID: 1, IsActive: true,
	}
	handler, _ := newAuthHandler(t, repo)
	router := mountAuth(handler)

	wrongPassword := postJSON(router, "/auth/login", `{"email":"user@test.local","password":"wrongpass"}`)
	unknownEmail := postJSON(router, "/auth/login", `{"email":"ghost@test.local","password":"whatever1"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	// The two bodies must be byte-identical so responses cannot be used to
	// probe which accounts exist.
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLoginInactiveAccountResponse(t *testing.T) {
	repo := newMemRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users["user@test.local"] = &auth.User{
		ID: 1, Email: "user@test.local", PasswordHash: string(hash), RoleID: 1, IsActive: false,
	}
	handler, _ := newAuthHandler(t, repo)
	router := mountAuth(handler)

	res := postJSON(router, "/auth/login", `{"email":"user@test.local","password":"correctpass"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMemRepo()
	handler, _ := newAuthHandler(t, repo)
	router := mountAuth(handler)

	res := postJSON(router, "/auth/register", `{"name":"Ann","email":"ann@x.com","password":"pw123456"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = postJSON(router, "/auth/register", `{"name":"Ann Again","email":"ann@x.com","password":"pw123456"}`)
	assert.Equal(t, http.StatusConflict, res.Code)
}

func TestRegisterValidation(t *testing.T) {
	handler, _ := newAuthHandler(t, newMemRepo())
	router := mountAuth(handler)

	res := postJSON(router, "/auth/register", `{"name":"Ann","email":"not-an-email","password":"pw123456"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = postJSON(router, "/auth/register", `{"name":"Ann","email":"ann@x.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	handler, sessions := newAuthHandler(t, newMemRepo())
	router := mountAuth(handler)

	res := postJSON(router, "/auth/logout", ``)
	require.Equal(t, http.StatusNoContent, res.Code)

	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, sessions.CookieName(), cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
