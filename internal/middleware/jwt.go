package middleware

import (
	"errors"                         // Not-found detection
	"jotshi_backend/internal/domain" // Importing domain models
	"jotshi_backend/internal/utils"  // JWT utility functions
	"net/http"                       // HTTP status codes
	"strings"                        // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// JWTAuthMiddleware resolves the bearer token to a live profile and loads its roles.
// Tokens issued to profiles that have since been removed are rejected.
func JWTAuthMiddleware(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		var profile domain.Profile
		err = db.Select("id").First(&profile, "id = ?", claims.UserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			return
		}
		var roles []string
		if err == nil {
			err = db.Model(&domain.UserRole{}).Where("user_id = ?", profile.ID).Pluck("role", &roles).Error
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": claims.UserID, // Token subject
				"error":   err.Error(),   // Error message
			}).Error("Failed to resolve authenticated profile")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
			return
		}
		c.Set("userID", profile.ID) // Profile ID for handlers
		c.Set("roles", roles)       // Roles as of this request
		c.Next()
	}
}
