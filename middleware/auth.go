package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"smartpyme-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	PlatformKeyHeader = "X-Platform-Key"

	userIDKey   = "userID"
	tenantIDKey = "tenantID"
	roleKey     = "role"
)

// Claims carry the caller's tenant; every tenant-scoped handler takes it from here.
type Claims struct {
	UserID   uint            `json:"user_id"`
	TenantID models.TenantID `json:"tenant_id"`
	Role     string          `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a given user
func GenerateToken(user *models.User, secret []byte, hours int) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(hours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// AuthRequired validates the JWT and injects claims into context
func AuthRequired(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, http.StatusUnauthorized, "Authorization header required (Bearer <token>)")
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		role, err := models.ParseRole(claims.Role)
		if err != nil || claims.TenantID.Validate() != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Set(tenantIDKey, claims.TenantID)
		c.Set(roleKey, role)
		c.Next()
	}
}

// TenantLookup finds a tenant by id
type TenantLookup interface {
	Get(ctx context.Context, id models.TenantID) (*models.Tenant, error)
}

// TenantActive rejects tokens of tenants that were deactivated after the
// token was issued. Must run after AuthRequired.
func TenantActive(tenants TenantLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := tenants.Get(c.Request.Context(), GetTenantID(c))
		if err != nil || !t.Active {
			abort(c, http.StatusForbidden, "Tenant is not active")
			return
		}
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		val, exists := c.Get(roleKey)
		if !exists {
			abort(c, http.StatusForbidden, "Role not found in context")
			return
		}
		caller, _ := val.(models.Role)
		for _, r := range roles {
			if caller == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "Access denied. Required role(s): "+rolesString(roles))
	}
}

// PlatformKeyRequired guards platform administration. An empty configured key
// disables those routes entirely.
func PlatformKeyRequired(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			abort(c, http.StatusForbidden, "Platform administration is disabled")
			return
		}
		got := c.GetHeader(PlatformKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			abort(c, http.StatusUnauthorized, "Invalid platform key")
			return
		}
		c.Next()
	}
}

func rolesString(roles []models.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	val, _ := c.Get(userIDKey)
	id, _ := val.(uint)
	return id
}

// GetTenantID extracts the caller's tenant from context
func GetTenantID(c *gin.Context) models.TenantID {
	val, _ := c.Get(tenantIDKey)
	id, _ := val.(models.TenantID)
	return id
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.Role {
	val, _ := c.Get(roleKey)
	r, _ := val.(models.Role)
	return r
}
