package api

import (
	"context"                        // Lock release
	"encoding/json"                  // Error frame encoding
	"io"                             // Stream writing
	"jotshi_backend/internal/ai"     // Chat message type
	"jotshi_backend/internal/astro"  // AstroBot
	"jotshi_backend/internal/domain" // Importing domain models
	"net/http"                       // HTTP status codes
	"time"                           // Lock expiry

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // Lock tokens
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// chatLockTTL releases a stuck in-flight lock
const chatLockTTL = 2 * time.Minute

// releaseChatLock deletes the in-flight lock only while it still holds this request's token
var releaseChatLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// maxChatHistory bounds how many turns are forwarded to the model
const maxChatHistory = 20

// ChatRequest carries the conversation so far
type ChatRequest struct {
	Messages     []ai.Message `json:"messages" binding:"required,min=1"` // Conversation, oldest first
	IncludeChart bool         `json:"include_chart"`                     // Ground answers in the user's chart
}

// ChatStreamHandler relays an AstroBot answer as server-sent events
func ChatStreamHandler(db *gorm.DB, svc *astro.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req ChatRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Messages are required"})
			return
		}
		for _, m := range req.Messages {
			if m.Role != "user" && m.Role != "assistant" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Message role must be user or assistant"})
				return
			}
		}
		history := req.Messages
		if len(history) > maxChatHistory {
			history = history[len(history)-maxChatHistory:] // Keep the latest turns
		}
		ctx := c.Request.Context()
		// One stream per user at a time
		lockKey := "chat:inflight:" + userID
		lockToken := uuid.NewString()
		acquired, err := rdb.SetNX(ctx, lockKey, lockToken, chatLockTTL).Result()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start chat"})
			return
		}
		if !acquired {
			c.JSON(http.StatusConflict, gin.H{"error": "A reply is already being generated"})
			return
		}
		// Released even if the client disconnects; a lock that expired and was retaken is left alone
		defer releaseChatLock.Run(context.Background(), rdb, []string{lockKey}, lockToken)

		var chart string
		if req.IncludeChart {
			var profile domain.Profile
			if err := db.First(&profile, "id = ?", userID).Error; err == nil && profile.HasBirthDetails() {
				if k, err := profileKundli(profile); err == nil {
					chart = k.Summary()
				}
			}
		}

		started := false
		begin := func() {
			c.Header("Content-Type", "text/event-stream")
			c.Header("Cache-Control", "no-cache")
			c.Header("Connection", "keep-alive")
			c.Status(http.StatusOK)
			started = true
		}
		err = svc.Chat(ctx, chart, history, func(delta string) error {
			if !started {
				begin()
			}
			if _, err := io.WriteString(c.Writer, ai.DeltaFrame(delta)); err != nil {
				return err // Client went away
			}
			c.Writer.Flush()
			return nil
		})
		if err != nil && !started {
			respondAIError(c, err, "Chat")
			return
		}
		if err != nil {
			// Stream already open, report in-band
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // Requesting user
				"error":   err.Error(), // Error message
			}).Error("Chat stream interrupted")
			frame, _ := json.Marshal(gin.H{"error": gin.H{"message": "Stream interrupted"}})
			_, _ = io.WriteString(c.Writer, "data: "+string(frame)+"\n\n")
		}
		if !started {
			begin() // Empty answer still ends cleanly
		}
		_, _ = io.WriteString(c.Writer, "data: [DONE]\n\n")
		c.Writer.Flush()
	}
}
