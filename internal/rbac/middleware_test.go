package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warden-admin/warden/internal/rbac"
	"github.com/warden-admin/warden/internal/shared"
)

func protectedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithSession(userID int64) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	ctx := shared.ContextWithSession(req.Context(), &shared.Session{UserID: userID})
	return req.WithContext(ctx)
}

func TestRequireAnyUnauthenticated(t *testing.T) {
	mw := rbac.Middleware{Service: rbac.NewService(&stubStore{})}
	handler := mw.RequireAny("manage_users")(protectedHandler())

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequireAnyDenied(t *testing.T) {
	mw := rbac.Middleware{Service: rbac.NewService(&stubStore{perms: map[int64][]string{
		1: {"manage_roles"},
	}})}
	handler := mw.RequireAny("manage_users")(protectedHandler())

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithSession(1))
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestRequireAnyGranted(t *testing.T) {
	mw := rbac.Middleware{Service: rbac.NewService(&stubStore{perms: map[int64][]string{
		1: {"edit_users"},
	}})}
	handler := mw.RequireAny("manage_users", "edit_users")(protectedHandler())

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithSession(1))
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestRequireSession(t *testing.T) {
	mw := rbac.Middleware{Service: rbac.NewService(&stubStore{})}
	handler := mw.RequireSession(protectedHandler())

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithSession(1))
	assert.Equal(t, http.StatusOK, res.Code)
}
