package middleware

import (
	"strings"

	"referral-server/internal/config"
	"referral-server/internal/model"
	"referral-server/internal/pkg/crypto"
	"referral-server/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the session token and stores the acting
// identity in the request context. Every handler reads identity from
// here; there is no global current-user state.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing credentials")
			c.Abort()
			return
		}

		// Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := crypto.ParseToken(parts[1], config.Get().JWT.Secret)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("name", claims.Name)
		c.Set("role", claims.Role)
		c.Set("organization", claims.Organization)

		c.Next()
	}
}

// PermissionMiddleware gates a route on the role permission table
func PermissionMiddleware(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !model.HasPermission(GetUserRole(c), permission) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminMiddleware restricts a route to Administrators
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != model.RoleAdministrator {
			response.Forbidden(c, "administrator role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID reads the acting user id from the context
func GetUserID(c *gin.Context) string {
	return getString(c, "user_id")
}

// GetUserEmail reads the acting user email from the context
func GetUserEmail(c *gin.Context) string {
	return getString(c, "email")
}

// GetUserName reads the acting user display name from the context
func GetUserName(c *gin.Context) string {
	return getString(c, "name")
}

// GetUserRole reads the acting user role from the context
func GetUserRole(c *gin.Context) string {
	return getString(c, "role")
}

// GetUserOrg reads the acting user organization from the context
func GetUserOrg(c *gin.Context) string {
	return getString(c, "organization")
}

func getString(c *gin.Context, key string) string {
	v, _ := c.Get(key)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
