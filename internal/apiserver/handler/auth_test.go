package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flotillahq/flotilla/internal/account"
)

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.seedSuperAdmin(t)

	w := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "Root@Acme.Test", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[map[string]any](t, w)
	assert.NotEmpty(t, resp["token"])
	acct := resp["account"].(map[string]any)
	assert.Equal(t, "root@acme.test", acct["email"])
	assert.Equal(t, "super_admin", acct["role"])
	// The secret digest must never appear in a response.
	assert.NotContains(t, w.Body.String(), "$2a$")
}

func TestLoginIndistinguishableFailures(t *testing.T) {
	env := newTestEnv(t)
	env.seedSuperAdmin(t)

	unknown := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ghost@acme.test", "password": "hunter22",
	})
	wrong := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "root@acme.test", "password": "not-the-password",
	})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestLoginLockedAccount(t *testing.T) {
	env := newTestEnv(t)
	env.seedSuperAdmin(t)

	for i := 0; i < account.DefaultMaxFailedAttempts; i++ {
		w := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "root@acme.test", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	// The correct password is rejected with the lockout error once locked.
	w := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "root@acme.test", "password": "hunter22",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "E2002")
}

func TestLoginInactiveAccount(t *testing.T) {
	env := newTestEnv(t)
	env.seedSuperAdmin(t)

	acct, err := env.db.GetAccountByEmail(context.Background(), "root@acme.test")
	require.NoError(t, err)
	require.NoError(t, env.svc.Deactivate(context.Background(), acct.ID))

	w := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "root@acme.test", "password": "hunter22",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "E2003")
}

func TestMeRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedSuperAdmin(t)

	w := env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/auth/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, "root@acme.test", resp["email"])
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedSuperAdmin(t)

	w := env.do(t, http.MethodPost, "/api/auth/change-password", token, gin.H{
		"oldPassword": "wrong-old", "newPassword": "next-secret",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/change-password", token, gin.H{
		"oldPassword": "hunter22", "newPassword": "next-secret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	env.login(t, "root@acme.test", "next-secret")
}

func TestChangePasswordTooShort(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedSuperAdmin(t)

	w := env.do(t, http.MethodPost, "/api/auth/change-password", token, gin.H{
		"oldPassword": "hunter22", "newPassword": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "E1002")
}
