package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/middleware"
)

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newTestApp(t)

	resp := env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin", "password": testAdminPassword})
	var login struct {
		Token   string `json:"token"`
		Account struct {
			Role string `json:"role"`
		} `json:"account"`
	}
	var session *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.AuthCookieName {
			session = cookie
		}
	}
	decode(t, resp, http.StatusOK, &login)
	require.Equal(t, "admin", login.Account.Role)
	require.NotNil(t, session)
	require.Equal(t, login.Token, session.Value)
	require.True(t, session.HttpOnly)
	require.False(t, session.Secure)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: session.Value})
	var me struct {
		Username string `json:"username"`
	}
	decode(t, env.do(t, req), http.StatusOK, &me)
	require.Equal(t, "admin", me.Username)

	resp = env.request(t, http.MethodPost, "/api/v1/auth/logout", "", nil)
	cleared := false
	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.AuthCookieName {
			cleared = cookie.Value == ""
		}
	}
	decode(t, resp, http.StatusOK, nil)
	require.True(t, cleared)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestApp(t)

	resp := env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin", "password": "wrong"})
	decode(t, resp, http.StatusUnauthorized, nil)

	resp = env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "ghost", "password": "wrong"})
	decode(t, resp, http.StatusUnauthorized, nil)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestApp(t)

	for _, path := range []string{"/api/v1/auth/me", "/api/v1/enrollments", "/api/v1/documents", "/api/v1/dashboard/student", "/api/v1/admin/settings"} {
		decode(t, env.request(t, http.MethodGet, path, "", nil), http.StatusUnauthorized, nil)
	}
	decode(t, env.request(t, http.MethodGet, "/api/v1/enrollments", "not-a-jwt", nil), http.StatusUnauthorized, nil)
}

func TestRegistrationErrors(t *testing.T) {
	env := newTestApp(t)
	unza := env.universityID(t, "UNZA")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register/tutor", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	decode(t, env.do(t, req), http.StatusBadRequest, nil)

	resp := env.request(t, http.MethodPost, "/api/v1/auth/register/tutor", "", map[string]interface{}{
		"username":      "x",
		"email":         "not-an-email",
		"full_name":     "  ",
		"password":      "123",
		"university_id": unza,
	})
	out := decode(t, resp, http.StatusBadRequest, nil)
	require.Equal(t, "validation failed", out.Message)
	var details map[string]string
	require.NoError(t, json.Unmarshal(out.Details, &details))
	require.Contains(t, details, "username")
	require.Contains(t, details, "email")
	require.Contains(t, details, "password")

	tutor := map[string]interface{}{
		"username":      "chanda",
		"email":         "chanda@example.com",
		"full_name":     "Chanda Mwale",
		"password":      "secret123",
		"university_id": unza,
	}
	decode(t, env.request(t, http.MethodPost, "/api/v1/auth/register/tutor", "", tutor), http.StatusCreated, nil)
	decode(t, env.request(t, http.MethodPost, "/api/v1/auth/register/tutor", "", tutor), http.StatusConflict, nil)

	var pending []idOnly
	decode(t, env.request(t, http.MethodGet, "/api/v1/admin/tutors", env.login(t, "admin", testAdminPassword), nil), http.StatusOK, &pending)
	require.Len(t, pending, 1)

	resp = env.request(t, http.MethodPost, "/api/v1/auth/register/student", "", map[string]interface{}{
		"username":      "mwila",
		"email":         "mwila@example.com",
		"full_name":     "Mwila Tembo",
		"password":      "secret123",
		"university_id": unza,
		"tutor_id":      pending[0].ID,
	})
	out = decode(t, resp, http.StatusBadRequest, nil)
	require.Contains(t, string(out.Details), "tutor_id")
}

func TestUnknownResourcesMapToNotFound(t *testing.T) {
	env := newTestApp(t)
	admin := env.login(t, "admin", testAdminPassword)

	decode(t, env.request(t, http.MethodGet, "/api/v1/enrollments/9999", admin, nil), http.StatusNotFound, nil)
	decode(t, env.request(t, http.MethodPost, "/api/v1/admin/tutors/9999/approve", admin, nil), http.StatusNotFound, nil)
	decode(t, env.request(t, http.MethodGet, "/api/v1/universities/9999/categories", "", nil), http.StatusNotFound, nil)
	decode(t, env.request(t, http.MethodGet, "/api/v1/enrollments/abc", admin, nil), http.StatusBadRequest, nil)
	decode(t, env.request(t, http.MethodGet, "/api/v1/enrollments/0", admin, nil), http.StatusBadRequest, nil)
}
