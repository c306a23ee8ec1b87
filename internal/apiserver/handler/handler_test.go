package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/flotillahq/flotilla/internal/account"
	"github.com/flotillahq/flotilla/internal/account/storage"
	"github.com/flotillahq/flotilla/internal/apiserver/middleware"
	"github.com/flotillahq/flotilla/internal/auth/jwt"
	"github.com/flotillahq/flotilla/internal/common/config"
	"github.com/flotillahq/flotilla/pkg/metrics"
)

// memoryDB adapts the in-memory store to the Database interface for handler
// tests. The store has no transactions, so fn just runs on the same context.
type memoryDB struct {
	*storage.MemoryStore
}

func (m *memoryDB) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *memoryDB) Close() error { return nil }

type testEnv struct {
	router *gin.Engine
	svc    *account.Service
	db     *memoryDB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := &memoryDB{storage.NewMemoryStore()}
	svc := account.NewService(db, nil, account.Options{BcryptCost: bcrypt.MinCost})

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: "0123456789abcdef0123456789abcdef",
		Duration:  time.Hour,
	})
	require.NoError(t, err)

	h := New(svc, db, jwtService, metrics.New(config.MetricsConfig{}), nil)

	r := gin.New()
	r.POST("/api/auth/login", h.Login)
	authed := r.Group("/api", middleware.JWTAuth(jwtService))
	{
		authed.GET("/auth/me", h.Me)
		authed.POST("/auth/change-password", h.ChangePassword)
		authed.POST("/users", h.CreateUser)
		authed.GET("/users", h.ListUsers)
		authed.GET("/users/:id", h.GetUser)
		authed.PUT("/users/:id", h.UpdateUser)
		authed.DELETE("/users/:id", h.DeleteUser)
		authed.POST("/companies", h.CreateCompany)
		authed.GET("/companies", h.ListCompanies)
		authed.GET("/companies/:id", h.GetCompany)
		authed.PUT("/companies/:id", h.UpdateCompany)
		authed.POST("/companies/:id/admin", h.CreateCompanyAdmin)
		authed.POST("/branches", h.CreateBranch)
		authed.GET("/branches", h.ListBranches)
		authed.GET("/branches/:id", h.GetBranch)
		authed.PUT("/branches/:id", h.UpdateBranch)
	}

	return &testEnv{router: r, svc: svc, db: db}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) seedSuperAdmin(t *testing.T) string {
	t.Helper()
	_, err := e.svc.EnsureSuperAdmin(context.Background(), "root@acme.test", "hunter22")
	require.NoError(t, err)
	return e.login(t, "root@acme.test", "hunter22")
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
