package api

import (
	"context"                        // Context for Redis operations
	"jotshi_backend/internal/domain" // Importing domain models
	"jotshi_backend/internal/utils"  // Utility functions
	"net/http"                       // HTTP status codes
	"strings"                        // String manipulation
	"time"                           // Date filters

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/sync/errgroup"   // Parallel counts
	"gorm.io/gorm"                 // GORM ORM library
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID            string    `json:"id"`             // Profile ID
	Email         string    `json:"email"`          // Login email
	FullName      string    `json:"full_name"`      // Display name
	Roles         []string  `json:"roles"`          // Granted roles
	WalletBalance float64   `json:"wallet_balance"` // Consultation credit
	CreatedAt     time.Time `json:"created_at"`     // Signup time
}

// Stats summarizes the platform for the admin dashboard
type Stats struct {
	Users                  int64   `json:"users"`
	PendingJotshis         int64   `json:"pending_jotshis"`
	ApprovedJotshis        int64   `json:"approved_jotshis"`
	OnlineJotshis          int64   `json:"online_jotshis"`
	ActiveConsultations    int64   `json:"active_consultations"`
	CompletedConsultations int64   `json:"completed_consultations"`
	Revenue                float64 `json:"revenue"` // Total billed to clients
}

// ListUsersHandler returns all profiles with their roles and balances
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		page := utils.ParsePage(c)  // Pagination parameters
		search := strings.ToLower(strings.TrimSpace(c.Query("q")))
		// Create a cache key based on pagination parameters
		cacheKey := "admin:users:q=" + search + ":" + page.Key()
		// Try to get cached response
		var cached struct {
			Users      []UserAdminResponse `json:"users"`       // List of users
			Page       int                 `json:"page"`        // Current page
			PageSize   int                 `json:"page_size"`   // Page size
			Total      int64               `json:"total"`       // Total number of users
			TotalPages int                 `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of users
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of users
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		query := db.Model(&domain.Profile{})
		if search != "" {
			query = query.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", "%"+search+"%", "%"+search+"%")
		}
		var total int64 // Total user count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"}) // Return on error
			return
		}
		var profiles []domain.Profile // Slice to hold profiles
		if err := query.Order("created_at desc").Offset(page.Offset()).Limit(page.PageSize).Find(&profiles).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"}) // Return on error
			return
		}
		ids := make([]string, len(profiles))
		for i, p := range profiles {
			ids[i] = p.ID
		}
		var roles []domain.UserRole
		if len(ids) > 0 {
			if err := db.Where("user_id IN ?", ids).Order("role").Find(&roles).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch roles"})
				return
			}
		}
		byUser := map[string][]string{}
		for _, r := range roles {
			byUser[r.UserID] = append(byUser[r.UserID], r.Role)
		}
		// Map profiles to response format
		resp := make([]UserAdminResponse, len(profiles))
		for i, p := range profiles {
			resp[i] = UserAdminResponse{
				ID:            p.ID,
				Email:         p.Email,
				FullName:      p.FullName,
				Roles:         byUser[p.ID],
				WalletBalance: p.WalletBalance,
				CreatedAt:     p.CreatedAt,
			}
		}
		// Prepare final response data
		respData := gin.H{
			"users":       resp,                   // List of users
			"page":        page.Page,              // Current page
			"page_size":   page.PageSize,          // Page size
			"total":       total,                  // Total number of users
			"total_pages": page.TotalPages(total), // Total pages
			"cached":      false,                  // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, cacheTTL)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// ListJotshiApplicationsHandler lists provider profiles, optionally filtered by status
func ListJotshiApplicationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePage(c)
		query := db.Model(&domain.JotshiProfile{})
		switch status := c.Query("status"); status {
		case "":
		case domain.JotshiPending, domain.JotshiApproved, domain.JotshiSuspended:
			query = query.Where("status = ?", status) // Filter by status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be pending, approved or suspended"})
			return
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count jotshis"})
			return
		}
		jotshis := []domain.JotshiProfile{}
		if err := query.Order("created_at asc").Offset(page.Offset()).Limit(page.PageSize).Find(&jotshis).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch jotshis"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"jotshis":     jotshis,
			"page":        page.Page,
			"page_size":   page.PageSize,
			"total":       total,
			"total_pages": page.TotalPages(total),
		})
	}
}

// ApproveJotshiHandler approves a provider and grants the jotshi role
func ApproveJotshiHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var j domain.JotshiProfile
		if err := db.First(&j, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Jotshi not found"})
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&j).Update("status", domain.JotshiApproved).Error; err != nil {
				return err
			}
			role := domain.UserRole{UserID: j.UserID, Role: domain.RoleJotshi}
			// Idempotent grant
			return tx.Where(domain.UserRole{UserID: j.UserID, Role: domain.RoleJotshi}).FirstOrCreate(&role).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve jotshi"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"jotshi_id":   j.ID,                  // Provider
			"approved_by": c.GetString("userID"), // Admin
		}).Info("Jotshi approved")
		invalidateJotshis(rdb)
		_ = utils.DeletePrefix(context.Background(), rdb, "admin:users:") // Roles changed
		c.JSON(http.StatusOK, gin.H{"message": "Jotshi approved", "jotshi": j})
	}
}

// SuspendJotshiHandler hides a provider from the marketplace and forces them offline
func SuspendJotshiHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var j domain.JotshiProfile
		if err := db.First(&j, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Jotshi not found"})
			return
		}
		err := db.Model(&j).Updates(map[string]any{"status": domain.JotshiSuspended, "is_online": false}).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to suspend jotshi"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"jotshi_id":    j.ID,                  // Provider
			"suspended_by": c.GetString("userID"), // Admin
		}).Warn("Jotshi suspended")
		invalidateJotshis(rdb)
		c.JSON(http.StatusOK, gin.H{"message": "Jotshi suspended", "jotshi": j})
	}
}

// parseDay converts YYYY-MM-DD into epoch milliseconds at the start of that UTC day
func parseDay(s string) (int64, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, false
	}
	return t.UnixMilli(), true
}

// ListTransactionsHandler returns all wallet transactions, with optional filtering by user, type, or date
func ListTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		// Build cache key from all query params
		var keyParts []string // Parts of the cache key
		// Append each query parameter to the key parts
		for _, k := range []string{"user_id", "type", "from", "to", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, "")) // Append key-value pair
		}
		// Join key parts to form the final cache key
		cacheKey := "admin:txs:" + strings.Join(keyParts, ":")
		var cached struct {
			Transactions []domain.WalletTransaction `json:"transactions"` // List of transactions
			Page         int                        `json:"page"`         // Current page
			PageSize     int                        `json:"page_size"`    // Page size
			Total        int64                      `json:"total"`        // Total number of transactions
			TotalPages   int                        `json:"total_pages"`  // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // List of transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total number of transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,                // Indicate response is from cache
			})
			return
		}
		page := utils.ParsePage(c)                     // Pagination parameters
		query := db.Model(&domain.WalletTransaction{}) // Start building the query
		if userID := c.Query("user_id"); userID != "" {
			query = query.Where("user_id = ?", userID) // Filter by user ID
		}
		if txType := c.Query("type"); txType != "" {
			query = query.Where("type = ?", txType) // Filter by transaction type
		}
		if from, ok := parseDay(c.Query("from")); ok {
			query = query.Where("created_at >= ?", from) // Filter by start date
		}
		if to, ok := parseDay(c.Query("to")); ok {
			query = query.Where("created_at < ?", to+24*time.Hour.Milliseconds()) // Filter by end date, inclusive
		}
		var total int64 // Total transaction count
		// Get total count of transactions matching the filters
		if err := query.Count(&total).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		txs := []domain.WalletTransaction{} // Slice to hold transactions
		// Fetch paginated transactions with filters applied
		if err := query.Order("created_at desc").Offset(page.Offset()).Limit(page.PageSize).Find(&txs).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		respData := gin.H{
			"transactions": txs,                    // List of transactions
			"page":         page.Page,              // Current page
			"page_size":    page.PageSize,          // Page size
			"total":        total,                  // Total number of transactions
			"total_pages":  page.TotalPages(total), // Total pages
			"cached":       false,                  // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, cacheTTL)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// StatsHandler gathers dashboard counts in parallel
func StatsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var s Stats
		g, ctx := errgroup.WithContext(c.Request.Context())
		count := func(dest *int64, model any, where string, args ...any) {
			g.Go(func() error {
				q := db.WithContext(ctx).Model(model)
				if where != "" {
					q = q.Where(where, args...)
				}
				return q.Count(dest).Error
			})
		}
		count(&s.Users, &domain.Profile{}, "")
		count(&s.PendingJotshis, &domain.JotshiProfile{}, "status = ?", domain.JotshiPending)
		count(&s.ApprovedJotshis, &domain.JotshiProfile{}, "status = ?", domain.JotshiApproved)
		count(&s.OnlineJotshis, &domain.JotshiProfile{}, "status = ? AND is_online = ?", domain.JotshiApproved, true)
		count(&s.ActiveConsultations, &domain.Consultation{}, "status = ?", domain.ConsultationActive)
		count(&s.CompletedConsultations, &domain.Consultation{}, "status = ?", domain.ConsultationCompleted)
		g.Go(func() error {
			return db.WithContext(ctx).Model(&domain.Consultation{}).
				Where("status = ?", domain.ConsultationCompleted).
				Select("COALESCE(SUM(total_cost), 0)").Scan(&s.Revenue).Error
		})
		if err := g.Wait(); err != nil {
			logrus.WithError(err).Error("Failed to gather stats")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to gather stats"})
			return
		}
		s.Revenue = round2(s.Revenue)
		c.JSON(http.StatusOK, s)
	}
}
