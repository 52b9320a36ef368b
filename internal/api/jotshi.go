package api

import (
	"context"                        // Context for Redis operations
	"jotshi_backend/internal/domain" // Importing domain models
	"jotshi_backend/internal/utils"  // Utility functions
	"net/http"                       // HTTP status codes
	"strings"                        // String manipulation

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // Slug suffixes
	"github.com/gosimple/slug"     // URL-safe handles
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// jotshiListPrefix namespaces cached marketplace listings
const jotshiListPrefix = "jotshis:"

// JotshiApplyRequest is a provider application
type JotshiApplyRequest struct {
	DisplayName     string   `json:"display_name" binding:"required"`           // Marketplace name
	Bio             string   `json:"bio"`                                       // About text
	Specialties     []string `json:"specialties"`                               // e.g. Vedic, Tarot
	Languages       []string `json:"languages"`                                 // e.g. Hindi, English
	ExperienceYears int      `json:"experience_years" binding:"gte=0,lte=80"`   // Years of practice
	PricePerMinute  float64  `json:"price_per_minute" binding:"required,gt=0"` // Rate charged
}

// JotshiUpdateRequest edits a provider's own listing
type JotshiUpdateRequest struct {
	DisplayName     *string   `json:"display_name"`
	Bio             *string   `json:"bio"`
	Specialties     *[]string `json:"specialties"`
	Languages       *[]string `json:"languages"`
	ExperienceYears *int      `json:"experience_years"`
	PricePerMinute  *float64  `json:"price_per_minute"`
}

// OnlineRequest toggles availability
type OnlineRequest struct {
	Online bool `json:"online"`
}

// joinList normalizes a tag list into its stored comma-separated form
func joinList(vals []string) string {
	out := make([]string, 0, len(vals))
	seen := map[string]bool{}
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		out = append(out, v)
	}
	return strings.Join(out, ",")
}

// uniqueSlug derives a handle from the display name, suffixing it on collision
func uniqueSlug(db *gorm.DB, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "jotshi"
	}
	candidate := base
	for i := 0; i < 5; i++ {
		var count int64
		if err := db.Model(&domain.JotshiProfile{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = base + "-" + uuid.NewString()[:6] // Random suffix
	}
	return base + "-" + uuid.NewString(), nil
}

// invalidateJotshis drops every cached marketplace listing
func invalidateJotshis(rdb *redis.Client) {
	if rdb == nil {
		return
	}
	_ = utils.DeletePrefix(context.Background(), rdb, jotshiListPrefix)
}

// ListJotshisHandler lists approved providers, online first
func ListJotshisHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		page := utils.ParsePage(c)  // Pagination parameters
		specialty := strings.TrimSpace(c.Query("specialty"))
		language := strings.TrimSpace(c.Query("language"))
		onlineOnly := c.Query("online") == "true"
		// Create a cache key based on filters and pagination
		cacheKey := jotshiListPrefix + "specialty=" + strings.ToLower(specialty) + ":language=" + strings.ToLower(language) +
			":online=" + c.Query("online") + ":" + page.Key()
		var cached struct {
			Jotshis    []domain.JotshiProfile `json:"jotshis"`     // Listing page
			Page       int                    `json:"page"`        // Current page
			PageSize   int                    `json:"page_size"`   // Page size
			Total      int64                  `json:"total"`       // Total matches
			TotalPages int                    `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"jotshis":     cached.Jotshis,
				"page":        cached.Page,
				"page_size":   cached.PageSize,
				"total":       cached.Total,
				"total_pages": cached.TotalPages,
				"cached":      true, // Indicate response is from cache
			})
			return
		}
		query := db.Model(&domain.JotshiProfile{}).Where("status = ?", domain.JotshiApproved)
		if specialty != "" {
			query = query.Where("LOWER(specialties) LIKE ?", "%"+strings.ToLower(specialty)+"%") // Filter by specialty
		}
		if language != "" {
			query = query.Where("LOWER(languages) LIKE ?", "%"+strings.ToLower(language)+"%") // Filter by language
		}
		if onlineOnly {
			query = query.Where("is_online = ?", true) // Only available providers
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count jotshis"})
			return
		}
		jotshis := []domain.JotshiProfile{}
		err := query.Order("is_online desc").Order("rating desc").Order("total_consultations desc").
			Offset(page.Offset()).Limit(page.PageSize).Find(&jotshis).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch jotshis"})
			return
		}
		respData := gin.H{
			"jotshis":     jotshis,
			"page":        page.Page,
			"page_size":   page.PageSize,
			"total":       total,
			"total_pages": page.TotalPages(total),
			"cached":      false, // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, cacheTTL)
		c.JSON(http.StatusOK, respData)
	}
}

// GetJotshiHandler returns one approved provider by slug
func GetJotshiHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var j domain.JotshiProfile
		err := db.Where("slug = ? AND status = ?", c.Param("slug"), domain.JotshiApproved).First(&j).Error
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Jotshi not found"})
			return
		}
		c.JSON(http.StatusOK, j)
	}
}

// ApplyJotshiHandler submits a provider application for admin review
func ApplyJotshiHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := loadProfile(c, db)
		if !ok {
			return
		}
		var req JotshiApplyRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.DisplayName) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Display name and a positive price are required"})
			return
		}
		var existing int64
		db.Model(&domain.JotshiProfile{}).Where("user_id = ?", profile.ID).Count(&existing)
		if existing > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Application already submitted"})
			return
		}
		s, err := uniqueSlug(db, req.DisplayName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create application"})
			return
		}
		j := domain.JotshiProfile{
			UserID:          profile.ID,
			DisplayName:     strings.TrimSpace(req.DisplayName),
			Slug:            s,
			Bio:             strings.TrimSpace(req.Bio),
			Specialties:     joinList(req.Specialties),
			Languages:       joinList(req.Languages),
			ExperienceYears: req.ExperienceYears,
			PricePerMinute:  round2(req.PricePerMinute),
			Status:          domain.JotshiPending, // Awaiting admin approval
			AvatarURL:       profile.AvatarURL,
		}
		if err := db.Create(&j).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Application already submitted"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   profile.ID, // Applicant
			"jotshi_id": j.ID,       // New provider profile
			"slug":      j.Slug,     // Public handle
		}).Info("Jotshi application submitted")
		c.JSON(http.StatusCreated, j)
	}
}

// myJotshi loads the provider profile owned by the signed-in user
func myJotshi(c *gin.Context, db *gorm.DB) (domain.JotshiProfile, bool) {
	var j domain.JotshiProfile
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return j, false
	}
	if err := db.Where("user_id = ?", userID).First(&j).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No jotshi profile, apply first"})
		return j, false
	}
	return j, true
}

// GetMyJotshiHandler returns the signed-in user's provider profile in any status
func GetMyJotshiHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if j, ok := myJotshi(c, db); ok {
			c.JSON(http.StatusOK, j)
		}
	}
}

// UpdateMyJotshiHandler edits the signed-in provider's listing
func UpdateMyJotshiHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		j, ok := myJotshi(c, db)
		if !ok {
			return
		}
		var req JotshiUpdateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		updates := map[string]any{}
		if req.DisplayName != nil {
			name := strings.TrimSpace(*req.DisplayName)
			if name == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Display name cannot be empty"})
				return
			}
			updates["display_name"] = name // Slug stays stable
		}
		if req.Bio != nil {
			updates["bio"] = strings.TrimSpace(*req.Bio)
		}
		if req.Specialties != nil {
			updates["specialties"] = joinList(*req.Specialties)
		}
		if req.Languages != nil {
			updates["languages"] = joinList(*req.Languages)
		}
		if req.ExperienceYears != nil {
			if *req.ExperienceYears < 0 || *req.ExperienceYears > 80 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Experience must be between 0 and 80 years"})
				return
			}
			updates["experience_years"] = *req.ExperienceYears
		}
		if req.PricePerMinute != nil {
			if *req.PricePerMinute <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be positive"})
				return
			}
			updates["price_per_minute"] = round2(*req.PricePerMinute) // Applies to new consultations only
		}
		if len(updates) > 0 {
			if err := db.Model(&j).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
				return
			}
			invalidateJotshis(rdb)
		}
		c.JSON(http.StatusOK, j)
	}
}

// SetOnlineHandler toggles whether an approved provider accepts consultations
func SetOnlineHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		j, ok := myJotshi(c, db)
		if !ok {
			return
		}
		var req OnlineRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.Online && j.Status != domain.JotshiApproved {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only approved jotshis can go online"})
			return
		}
		if err := db.Model(&j).Update("is_online", req.Online).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
			return
		}
		invalidateJotshis(rdb)
		c.JSON(http.StatusOK, gin.H{"is_online": req.Online})
	}
}
