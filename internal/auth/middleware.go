package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/constructhq/defect-tracker/internal/database"
	"github.com/constructhq/defect-tracker/internal/models"
	pkgauth "github.com/constructhq/defect-tracker/pkg/auth"
)

const userContextKey = "currentUser"

// Per-operation allow-sets. Roles are not a linear hierarchy (observer and
// user sit outside the admin/manager/engineer chain), so admin is listed
// explicitly instead of implied by rank.
var (
	AdminRoles    = []models.UserRole{models.UserRoleAdmin}
	ManagerRoles  = []models.UserRole{models.UserRoleAdmin, models.UserRoleManager}
	EngineerRoles = []models.UserRole{models.UserRoleAdmin, models.UserRoleManager, models.UserRoleEngineer}
)

// Authenticate resolves the bearer token to a user record and stores it in
// the request context. The user is loaded from the store on every request so
// role changes take effect immediately.
func Authenticate(db *database.Database, jwtManager *pkgauth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		token = strings.TrimSpace(token)

		claims, err := jwtManager.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		user, err := db.GetUserByID(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireRoles gates a route on an explicit role allow-set.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		if !user.HasAnyRole(roles...) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by Authenticate, or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
