package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartpyme-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test_jwt_secret_32_chars_minimum!")

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTenants map[models.TenantID]*models.Tenant

func (f fakeTenants) Get(_ context.Context, id models.TenantID) (*models.Tenant, error) {
	if t, ok := f[id]; ok {
		return t, nil
	}
	return nil, errors.New("not found")
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user":   GetUserID(c),
			"tenant": GetTenantID(c),
			"role":   GetRole(c).String(),
		})
	})
	r.GET("/x", chain...)
	return r
}

func do(r http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, user *models.User) string {
	t.Helper()
	tok, err := GenerateToken(user, testSecret, 1)
	require.NoError(t, err)
	return tok
}

func TestAuthRequired_ValidToken(t *testing.T) {
	user := &models.User{ID: 5, TenantID: 3, Role: models.RoleEmployee}
	r := newRouter(AuthRequired(testSecret))

	w := do(r, "Authorization", "Bearer "+token(t, user))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":5,"tenant":3,"role":"employee"}`, w.Body.String())
}

func TestAuthRequired_Rejects(t *testing.T) {
	r := newRouter(AuthRequired(testSecret))
	user := &models.User{ID: 5, TenantID: 3, Role: models.RoleAdmin}

	otherSecret, err := GenerateToken(user, []byte("another-secret"), 1)
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 5, TenantID: 3, Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
	})
	expiredStr, err := expired.SignedString(testSecret)
	require.NoError(t, err)

	noTenant, err := GenerateToken(&models.User{ID: 5, Role: models.RoleAdmin}, testSecret, 1)
	require.NoError(t, err)

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer not-a-jwt",
		"wrong secret":   "Bearer " + otherSecret,
		"expired":        "Bearer " + expiredStr,
		"no tenant":      "Bearer " + noTenant,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(r, "Authorization", header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestRoleRequired(t *testing.T) {
	r := newRouter(AuthRequired(testSecret), RoleRequired(models.StaffRoles...))

	staff := do(r, "Authorization", "Bearer "+token(t, &models.User{ID: 1, TenantID: 1, Role: models.RoleAdmin}))
	assert.Equal(t, http.StatusOK, staff.Code)

	customer := do(r, "Authorization", "Bearer "+token(t, &models.User{ID: 2, TenantID: 1, Role: models.RoleCustomer}))
	assert.Equal(t, http.StatusForbidden, customer.Code)
	assert.Contains(t, customer.Body.String(), "admin, employee")
}

func TestTenantActive(t *testing.T) {
	tenants := fakeTenants{
		1: {ID: 1, Active: true},
		2: {ID: 2, Active: false},
	}
	r := newRouter(AuthRequired(testSecret), TenantActive(tenants))

	active := do(r, "Authorization", "Bearer "+token(t, &models.User{ID: 1, TenantID: 1, Role: models.RoleAdmin}))
	assert.Equal(t, http.StatusOK, active.Code)

	inactive := do(r, "Authorization", "Bearer "+token(t, &models.User{ID: 1, TenantID: 2, Role: models.RoleAdmin}))
	assert.Equal(t, http.StatusForbidden, inactive.Code)

	missing := do(r, "Authorization", "Bearer "+token(t, &models.User{ID: 1, TenantID: 9, Role: models.RoleAdmin}))
	assert.Equal(t, http.StatusForbidden, missing.Code)
}

func TestPlatformKeyRequired(t *testing.T) {
	r := newRouter(PlatformKeyRequired("s3cret"))
	assert.Equal(t, http.StatusOK, do(r, PlatformKeyHeader, "s3cret").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, PlatformKeyHeader, "guess").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "", "").Code)

	disabled := newRouter(PlatformKeyRequired(""))
	assert.Equal(t, http.StatusForbidden, do(disabled, PlatformKeyHeader, "").Code)
}

func TestRecoveryHidesPanics(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/x", func(c *gin.Context) { panic("db password is hunter2") })

	w := do(r, "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), PlatformKeyHeader)
}
