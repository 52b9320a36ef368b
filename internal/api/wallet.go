package api

import (
	"context"                        // Context for Redis operations
	"jotshi_backend/internal/domain" // Importing domain models
	"jotshi_backend/internal/utils"  // Utility functions
	"net/http"                       // HTTP status codes
	"time"                           // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// maxRecharge caps a single top-up
const maxRecharge = 100000

// RechargeRequest represents a wallet top-up
type RechargeRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"` // Recharge amount
}

// Wallet is the balance view of a profile
type Wallet struct {
	UserID  string  `json:"user_id"` // Owning profile
	Balance float64 `json:"balance"` // Consultation credit
}

// RechargeHandler credits the authenticated user's wallet
func RechargeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		// Check if userID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req RechargeRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 || req.Amount > maxRecharge {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be between 1 and 100000"})
			return
		}
		amount := round2(req.Amount)
		var balance float64
		// Update balance atomically
		err := db.Transaction(func(tx *gorm.DB) error {
			// Increment wallet balance
			res := tx.Model(&domain.Profile{}).Where("id = ?", userID).
				Update("wallet_balance", gorm.Expr("wallet_balance + ?", amount))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			var profile domain.Profile
			if err := tx.Select("wallet_balance").First(&profile, "id = ?", userID).Error; err != nil {
				return err
			}
			balance = profile.WalletBalance
			// Create transaction record
			t := domain.WalletTransaction{
				UserID:       userID,            // Credited profile
				Amount:       amount,            // Recharge amount
				Type:         domain.TxRecharge, // Transaction type
				Description:  "Wallet recharge",
				BalanceAfter: round2(balance),
			}
			return tx.Create(&t).Error // Commit or rollback
		})
		// Handle transaction result
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"amount":  amount,      // Recharge amount
				"error":   err.Error(), // Error message
			}).Error("Recharge failed") // Log recharge failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Recharge failed"}) // Return internal server error
			return
		}
		// Log successful recharge
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,                          // User ID
			"amount":    amount,                          // Recharge amount
			"type":      domain.TxRecharge,               // Transaction type
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Recharge transaction") // Log recharge success
		invalidateWallet(context.Background(), rdb, userID) // Invalidate wallet and history cache
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Recharge successful", "balance": round2(balance)})
	}
}

// GetWalletHandler returns wallet info for the authenticated user
func GetWalletHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		// Check if userID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()                               // Context for Redis operations
		cacheKey := walletKey(userID)                             // Cache key for wallet
		var wallet Wallet                                         // Wallet struct to hold data
		found, err := utils.GetCache(ctx, rdb, cacheKey, &wallet) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			// Return cached wallet
			c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": true})
			return
		}
		var profile domain.Profile
		// If not in cache, fetch from DB
		if err := db.Select("id", "wallet_balance").First(&profile, "id = ?", userID).Error; err != nil {
			// Return not found if profile doesn't exist
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		wallet = Wallet{UserID: profile.ID, Balance: profile.WalletBalance}
		_ = utils.SetCache(ctx, rdb, cacheKey, wallet, cacheTTL)        // Cache the wallet
		c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": false}) // Return wallet info
	}
}

// GetTransactionHistoryHandler returns the authenticated user's wallet ledger, newest first
func GetTransactionHistoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		// Check if userID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page := utils.ParsePage(c) // Pagination parameters
		// Redis cache key
		cacheKey := "txhistory:user:" + userID + ":" + page.Key()
		ctx := context.Background() // Context for Redis operations
		var cached struct {
			Transactions []domain.WalletTransaction `json:"transactions"` // List of transactions
			Page         int                        `json:"page"`         // Current page
			PageSize     int                        `json:"page_size"`    // Page size
			Total        int64                      `json:"total"`        // Total transactions
			TotalPages   int                        `json:"total_pages"`  // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // Cached transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,
			})
			return
		}
		var total int64 // Total count of transactions
		// Count total transactions for pagination
		if err := db.Model(&domain.WalletTransaction{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
			// If counting fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		transactions := []domain.WalletTransaction{} // Slice to hold transactions
		// Fetch paginated transactions
		if err := db.Where("user_id = ?", userID).
			Order("created_at desc").
			Offset(page.Offset()).
			Limit(page.PageSize).
			Find(&transactions).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		resp := gin.H{
			"transactions": transactions,           // List of transactions
			"page":         page.Page,              // Current page
			"page_size":    page.PageSize,          // Page size
			"total":        total,                  // Total transactions
			"total_pages":  page.TotalPages(total), // Total pages
			"cached":       false,                  // Not from cache
		}
		// Cache the result
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, cacheTTL)
		c.JSON(http.StatusOK, resp) // Return transaction history
	}
}
