package middleware

import (
	"jotshi_backend/internal/domain" // Importing domain models
	"net/http"                       // HTTP status codes
	"slices"                         // Role membership

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// HasRole reports whether the profile holds the role
func HasRole(db *gorm.DB, userID, role string) (bool, error) {
	var count int64
	err := db.Model(&domain.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	return count > 0, err
}

// RequireRole checks the user's role from the database on each request
func RequireRole(db *gorm.DB, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID") // Get userID from context
		// Check if userID exists in context
		if userID == "" {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var ok bool
		var err error
		if _, loaded := c.Get("roles"); loaded {
			ok = slices.Contains(c.GetStringSlice("roles"), role) // Loaded by JWTAuthMiddleware this request
		} else {
			ok, err = HasRole(db, userID, role)
		}
		if err != nil || !ok {
			// If the role is missing or the lookup failed, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access requires the " + role + " role"})
			return
		}
		c.Next() // Role present, proceed to the next handler
	}
}

// AdminOnlyMiddleware restricts a route group to administrators
func AdminOnlyMiddleware(db *gorm.DB) gin.HandlerFunc {
	return RequireRole(db, domain.RoleAdmin)
}
