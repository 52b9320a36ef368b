package api

import (
	"context"                       // Context for Redis operations
	"errors"                        // Error inspection
	"jotshi_backend/internal/ai"    // Model error values
	"jotshi_backend/internal/utils" // Utility functions
	"math"                          // Rounding
	"net/http"                      // HTTP status codes
	"time"                          // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// cacheTTL is how long listing responses stay cached
const cacheTTL = 60 * time.Second

// currentUserID returns the authenticated profile ID set by the JWT middleware
func currentUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("userID") // Get userID from context
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// respondAIError maps model failures onto HTTP statuses the client understands
func respondAIError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, ai.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded, please try again later."})
	case errors.Is(err, ai.ErrCreditsExhausted):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "AI credits exhausted, please add funds."})
	case errors.Is(err, ai.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI service is not configured"})
	default:
		// Log the error with context
		logrus.WithFields(logrus.Fields{
			"action": action,      // What was being attempted
			"error":  err.Error(), // Error message
		}).Error("AI request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": action + " failed"})
	}
}

// invalidateWallet drops the cached wallet and every cached history page for the profiles
func invalidateWallet(ctx context.Context, rdb *redis.Client, userIDs ...string) {
	if rdb == nil {
		return
	}
	for _, id := range userIDs {
		_ = utils.DeleteCache(ctx, rdb, walletKey(id))              // Invalidate wallet cache
		_ = utils.DeletePrefix(ctx, rdb, "txhistory:user:"+id+":") // Invalidate all history pages
	}
	_ = utils.DeletePrefix(ctx, rdb, "admin:txs:") // Admin ledger view
}

// walletKey is the cache key for a profile's wallet
func walletKey(userID string) string {
	return "wallet:user:" + userID
}

// round2 rounds money to paise
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
