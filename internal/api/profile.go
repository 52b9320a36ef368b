package api

import (
	"bytes"                           // Buffered upload body
	"io"                              // Reading the upload
	"jotshi_backend/internal/domain"  // Importing domain models
	"jotshi_backend/internal/kundli"  // Birth detail validation
	"jotshi_backend/internal/storage" // Avatar uploads
	"net/http"                        // HTTP status codes
	"strings"                         // String manipulation

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// maxAvatarBytes bounds avatar uploads
const maxAvatarBytes = 5 << 20

// avatarTypes maps sniffed content types to stored extensions
var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// ProfileResponse is the signed-in profile with its roles
type ProfileResponse struct {
	Profile domain.Profile `json:"profile"` // Profile row
	Roles   []string       `json:"roles"`   // Granted roles
}

// UpdateProfileRequest carries editable profile fields
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"` // Display name
	Phone    *string `json:"phone"`     // Contact number
	Gender   *string `json:"gender"`    // male, female, other
}

// BirthDetailsRequest carries the onboarding birth data
type BirthDetailsRequest struct {
	DateOfBirth    string   `json:"date_of_birth" binding:"required"` // YYYY-MM-DD
	TimeOfBirth    string   `json:"time_of_birth" binding:"required"` // HH:MM
	PlaceOfBirth   string   `json:"place_of_birth"`                   // Free-text place
	Latitude       float64  `json:"latitude"`                         // Birth latitude
	Longitude      float64  `json:"longitude"`                        // Birth longitude
	TimezoneOffset *float64 `json:"timezone_offset"`                  // Hours east of UTC, IST when omitted
}

// loadProfile fetches the authenticated profile or writes an error response
func loadProfile(c *gin.Context, db *gorm.DB) (domain.Profile, bool) {
	var profile domain.Profile
	userID, ok := currentUserID(c) // Get userID from context
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return profile, false
	}
	if err := db.First(&profile, "id = ?", userID).Error; err != nil {
		// If profile not found, return not found
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return profile, false
	}
	return profile, true
}

// GetProfileHandler returns the signed-in profile
func GetProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := loadProfile(c, db)
		if !ok {
			return
		}
		roles, err := rolesOf(db, profile.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load roles"})
			return
		}
		c.JSON(http.StatusOK, ProfileResponse{Profile: profile, Roles: roles})
	}
}

// UpdateProfileHandler edits the name, phone and gender of the signed-in profile
func UpdateProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := loadProfile(c, db)
		if !ok {
			return
		}
		var req UpdateProfileRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		updates := map[string]any{}
		if req.FullName != nil {
			updates["full_name"] = strings.TrimSpace(*req.FullName)
		}
		if req.Phone != nil {
			updates["phone"] = strings.TrimSpace(*req.Phone)
		}
		if req.Gender != nil {
			g := strings.ToLower(strings.TrimSpace(*req.Gender))
			if g != "" && g != "male" && g != "female" && g != "other" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Gender must be male, female or other"})
				return
			}
			updates["gender"] = g
		}
		if len(updates) == 0 {
			c.JSON(http.StatusOK, profile) // Nothing to change
			return
		}
		if err := db.Model(&profile).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// UpdateBirthDetailsHandler stores birth data and completes onboarding
func UpdateBirthDetailsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := loadProfile(c, db)
		if !ok {
			return
		}
		var req BirthDetailsRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Date and time of birth are required"})
			return
		}
		tz := defaultTimezone
		if req.TimezoneOffset != nil {
			tz = *req.TimezoneOffset
		}
		// Reject anything a chart cannot be built from
		if _, err := kundli.ParseBirthDetails(req.DateOfBirth, req.TimeOfBirth, tz, req.Latitude, req.Longitude); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		err := db.Model(&profile).Updates(map[string]any{
			"date_of_birth":       req.DateOfBirth,
			"time_of_birth":       req.TimeOfBirth,
			"place_of_birth":      strings.TrimSpace(req.PlaceOfBirth),
			"latitude":            req.Latitude,
			"longitude":           req.Longitude,
			"timezone_offset":     tz,
			"onboarding_complete": true,
		}).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save birth details"})
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// UploadAvatarHandler stores an avatar image and records its public URL
func UploadAvatarHandler(db *gorm.DB, rdb *redis.Client, store storage.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage is not configured"})
			return
		}
		profile, ok := loadProfile(c, db)
		if !ok {
			return
		}
		file, err := c.FormFile("file") // Multipart field "file"
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
			return
		}
		if file.Size > maxAvatarBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar must be at most 5MB"})
			return
		}
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read file"})
			return
		}
		defer src.Close()
		data, err := io.ReadAll(io.LimitReader(src, maxAvatarBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read file"})
			return
		}
		// Trust the bytes, not the file name
		contentType := http.DetectContentType(data)
		ext, allowed := avatarTypes[contentType]
		if !allowed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar must be a JPG or PNG image"})
			return
		}
		url, err := store.Upload(c.Request.Context(), profile.ID+"/avatar"+ext, contentType, bytes.NewReader(data))
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": profile.ID,  // Uploader
				"error":   err.Error(), // Error message
			}).Error("Avatar upload failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Avatar upload failed"})
			return
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&profile).Update("avatar_url", url).Error; err != nil {
				return err
			}
			// Keep the marketplace card in sync for providers
			return tx.Model(&domain.JotshiProfile{}).Where("user_id = ?", profile.ID).Update("avatar_url", url).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save avatar"})
			return
		}
		invalidateJotshis(rdb)
		c.JSON(http.StatusOK, gin.H{"avatar_url": url})
	}
}
