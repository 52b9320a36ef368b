package api

import (
	"errors"                         // Sentinel errors
	"fmt"                            // Description formatting
	"jotshi_backend/internal/domain" // Importing domain models
	"jotshi_backend/internal/utils"  // Utility functions
	"math"                           // Minute rounding
	"net/http"                       // HTTP status codes
	"strings"                        // String manipulation
	"time"                           // Session timing
	"unicode/utf8"                   // Message length in characters

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
	"gorm.io/gorm/clause"          // Row locking
)

var (
	errNotActive    = errors.New("consultation is not active")
	errNotRated     = errors.New("consultation cannot be rated")
	errBalanceMoved = errors.New("client balance changed during settlement")
)

// maxSettleAttempts bounds re-capping when the client balance moves mid-settlement
const maxSettleAttempts = 3

// maxMessageLength bounds a single chat message
const maxMessageLength = 2000

// StartConsultationRequest opens a session with a provider
type StartConsultationRequest struct {
	JotshiID string `json:"jotshi_id" binding:"required"` // JotshiProfile ID
	Type     string `json:"type"`                         // chat, call or video
}

// SendMessageRequest is one chat message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"` // Message body
}

// RateRequest rates a finished session
type RateRequest struct {
	Rating int    `json:"rating" binding:"required,gte=1,lte=5"` // 1 to 5 stars
	Review string `json:"review"`                                // Optional text
}

// Bill is the outcome of ending a consultation
type Bill struct {
	Minutes int     // Whole minutes charged
	Cost    float64 // Amount moved from client to provider
}

// ComputeBill rounds the session up to whole minutes and caps the cost at the client's balance
func ComputeBill(started, ended time.Time, pricePerMinute, balance float64) Bill {
	minutes := int(math.Ceil(ended.Sub(started).Minutes()))
	if minutes < 1 {
		minutes = 1 // Any session bills at least one minute
	}
	cost := round2(float64(minutes) * pricePerMinute)
	if cost > balance {
		cost = math.Floor(math.Max(balance, 0)*100) / 100 // Never overdraw, not even by rounding
	}
	return Bill{Minutes: minutes, Cost: cost}
}

// participant loads a consultation visible to the signed-in user along with its provider
func participant(c *gin.Context, db *gorm.DB) (domain.Consultation, domain.JotshiProfile, string, bool) {
	var cons domain.Consultation
	var j domain.JotshiProfile
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return cons, j, "", false
	}
	if err := db.First(&cons, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Consultation not found"})
		return cons, j, "", false
	}
	if err := db.First(&j, "id = ?", cons.JotshiID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Consultation not found"})
		return cons, j, "", false
	}
	// Only the client and the provider may see the session
	if cons.UserID != userID && j.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Consultation not found"})
		return cons, j, "", false
	}
	return cons, j, userID, true
}

// StartConsultationHandler opens a session with an approved, online provider
func StartConsultationHandler(db *gorm.DB, minMinutes int) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := loadProfile(c, db)
		if !ok {
			return
		}
		var req StartConsultationRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Jotshi is required"})
			return
		}
		kind := strings.ToLower(strings.TrimSpace(req.Type))
		if kind == "" {
			kind = "chat"
		}
		if kind != "chat" && kind != "call" && kind != "video" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Type must be chat, call or video"})
			return
		}
		var j domain.JotshiProfile
		if err := db.Where("id = ? AND status = ?", req.JotshiID, domain.JotshiApproved).First(&j).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Jotshi not found"})
			return
		}
		if j.UserID == profile.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot consult yourself"})
			return
		}
		if !j.IsOnline {
			c.JSON(http.StatusConflict, gin.H{"error": "Jotshi is offline"})
			return
		}
		required := round2(j.PricePerMinute * float64(minMinutes))
		if profile.WalletBalance < required {
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":    fmt.Sprintf("Insufficient balance, at least ₹%.2f is required for %d minutes", required, minMinutes),
				"required": required,
				"balance":  profile.WalletBalance,
			})
			return
		}
		// One open session per client and provider
		var open domain.Consultation
		err := db.Where("user_id = ? AND jotshi_id = ? AND status = ?", profile.ID, j.ID, domain.ConsultationActive).First(&open).Error
		if err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Consultation already in progress", "consultation": open})
			return
		}
		cons := domain.Consultation{
			UserID:         profile.ID,
			JotshiID:       j.ID,
			Type:           kind,
			Status:         domain.ConsultationActive,
			PricePerMinute: j.PricePerMinute, // Rate locked for the session
			StartedAt:      time.Now(),
		}
		if err := db.Create(&cons).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start consultation"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"consultation_id": cons.ID,    // New session
			"user_id":         profile.ID, // Client
			"jotshi_id":       j.ID,       // Provider
			"price":           j.PricePerMinute,
		}).Info("Consultation started")
		c.JSON(http.StatusCreated, cons)
	}
}

// ListConsultationsHandler lists sessions where the user is client or provider
func ListConsultationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page := utils.ParsePage(c) // Pagination parameters
		query := db.Model(&domain.Consultation{}).
			Where("(user_id = ? OR jotshi_id IN (?))", userID,
				db.Model(&domain.JotshiProfile{}).Select("id").Where("user_id = ?", userID))
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status) // Filter by status
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count consultations"})
			return
		}
		consultations := []domain.Consultation{}
		if err := query.Order("started_at desc").Offset(page.Offset()).Limit(page.PageSize).Find(&consultations).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch consultations"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"consultations": consultations,
			"page":          page.Page,
			"page_size":     page.PageSize,
			"total":         total,
			"total_pages":   page.TotalPages(total),
		})
	}
}

// ListMessagesHandler returns a session's messages, oldest first
func ListMessagesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cons, _, _, ok := participant(c, db)
		if !ok {
			return
		}
		query := db.Where("consultation_id = ?", cons.ID)
		if after := c.Query("after"); after != "" {
			// Incremental polling from the last seen timestamp
			if t, err := time.Parse(time.RFC3339Nano, after); err == nil {
				query = query.Where("created_at > ?", t)
			}
		}
		messages := []domain.Message{}
		if err := query.Order("created_at asc").Limit(500).Find(&messages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": messages, "status": cons.Status})
	}
}

// SendMessageHandler posts a message to an active session
func SendMessageHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cons, _, userID, ok := participant(c, db)
		if !ok {
			return
		}
		var req SendMessageRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
			return
		}
		content := strings.TrimSpace(req.Content)
		if content == "" || utf8.RuneCountInString(content) > maxMessageLength {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message must be 1-2000 characters"})
			return
		}
		if cons.Status != domain.ConsultationActive {
			c.JSON(http.StatusConflict, gin.H{"error": "Consultation has ended"})
			return
		}
		msg := domain.Message{ConsultationID: cons.ID, SenderID: userID, Content: content}
		if err := db.Create(&msg).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}

// EndConsultationHandler closes a session and settles it between the wallets
func EndConsultationHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		cons, j, userID, ok := participant(c, db)
		if !ok {
			return
		}
		if cons.Status != domain.ConsultationActive {
			c.JSON(http.StatusConflict, gin.H{"error": "Consultation has already ended"})
			return
		}
		ended := time.Now()
		var bill Bill
		// Atomic settlement
		err := db.Transaction(func(tx *gorm.DB) error {
			// Status guard makes a concurrent second end a no-op
			res := tx.Model(&domain.Consultation{}).
				Where("id = ? AND status = ?", cons.ID, domain.ConsultationActive).
				Updates(map[string]any{"status": domain.ConsultationCompleted, "ended_at": ended})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errNotActive
			}
			var client domain.Profile
			for attempt := 1; ; attempt++ {
				if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&client, "id = ?", cons.UserID).Error; err != nil {
					return err
				}
				bill = ComputeBill(cons.StartedAt, ended, cons.PricePerMinute, client.WalletBalance)
				if bill.Cost <= 0 {
					break // Nothing to move
				}
				// Deduct from client only while the balance still covers the capped cost
				res := tx.Model(&domain.Profile{}).
					Where("id = ? AND wallet_balance >= ?", client.ID, bill.Cost).
					Update("wallet_balance", gorm.Expr("wallet_balance - ?", bill.Cost))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 1 {
					break
				}
				if attempt == maxSettleAttempts {
					return errBalanceMoved
				}
			}
			if err := tx.Model(&domain.Consultation{}).Where("id = ?", cons.ID).Updates(map[string]any{
				"duration_minutes": bill.Minutes,
				"total_cost":       bill.Cost,
			}).Error; err != nil {
				return err
			}
			if err := tx.Model(&domain.JotshiProfile{}).Where("id = ?", j.ID).
				Update("total_consultations", gorm.Expr("total_consultations + ?", 1)).Error; err != nil {
				return err
			}
			if bill.Cost <= 0 {
				return nil
			}
			// Credit provider
			if err := tx.Model(&domain.Profile{}).Where("id = ?", j.UserID).
				Update("wallet_balance", gorm.Expr("wallet_balance + ?", bill.Cost)).Error; err != nil {
				return err
			}
			var provider domain.Profile
			if err := tx.First(&client, "id = ?", cons.UserID).Error; err != nil {
				return err
			}
			if err := tx.First(&provider, "id = ?", j.UserID).Error; err != nil {
				return err
			}
			consID := cons.ID
			records := []domain.WalletTransaction{
				{
					UserID:         client.ID,
					Amount:         -bill.Cost,
					Type:           domain.TxDebit,
					Description:    fmt.Sprintf("%d min %s with %s", bill.Minutes, cons.Type, j.DisplayName),
					ConsultationID: &consID,
					BalanceAfter:   round2(client.WalletBalance),
				},
				{
					UserID:         j.UserID,
					Amount:         bill.Cost,
					Type:           domain.TxEarning,
					Description:    fmt.Sprintf("%d min %s consultation", bill.Minutes, cons.Type),
					ConsultationID: &consID,
					BalanceAfter:   round2(provider.WalletBalance),
				},
			}
			return tx.Create(&records).Error
		})
		if errors.Is(err, errNotActive) {
			c.JSON(http.StatusConflict, gin.H{"error": "Consultation has already ended"})
			return
		}
		if errors.Is(err, errBalanceMoved) {
			c.JSON(http.StatusConflict, gin.H{"error": "Wallet balance changed, please try again"})
			return
		}
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"consultation_id": cons.ID,     // Session
				"ended_by":        userID,      // Who ended it
				"error":           err.Error(), // Error message
			}).Error("Consultation settlement failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end consultation"})
			return
		}
		// Log successful settlement
		logrus.WithFields(logrus.Fields{
			"consultation_id": cons.ID,     // Session
			"ended_by":        userID,      // Who ended it
			"minutes":         bill.Minutes, // Billed minutes
			"cost":            bill.Cost,    // Amount moved
			"timestamp":       ended.Format(time.RFC3339),
		}).Info("Consultation completed")
		invalidateWallet(c.Request.Context(), rdb, cons.UserID, j.UserID)
		invalidateJotshis(rdb)
		c.JSON(http.StatusOK, gin.H{
			"consultation_id":  cons.ID,
			"status":           domain.ConsultationCompleted,
			"duration_minutes": bill.Minutes,
			"total_cost":       bill.Cost,
		})
	}
}

// RateConsultationHandler records the client's rating and refreshes the provider average
func RateConsultationHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		cons, j, userID, ok := participant(c, db)
		if !ok {
			return
		}
		if cons.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the client can rate a consultation"})
			return
		}
		var req RateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
			return
		}
		var summary struct {
			Avg   float64
			Count int
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			// Completed and unrated only
			res := tx.Model(&domain.Consultation{}).
				Where("id = ? AND status = ? AND rating IS NULL", cons.ID, domain.ConsultationCompleted).
				Updates(map[string]any{"rating": req.Rating, "review": strings.TrimSpace(req.Review)})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errNotRated
			}
			if err := tx.Model(&domain.Consultation{}).
				Select("COALESCE(AVG(rating), 0) AS avg, COUNT(rating) AS count").
				Where("jotshi_id = ? AND rating IS NOT NULL", j.ID).
				Scan(&summary).Error; err != nil {
				return err
			}
			return tx.Model(&domain.JotshiProfile{}).Where("id = ?", j.ID).Updates(map[string]any{
				"rating":       round2(summary.Avg),
				"rating_count": summary.Count,
			}).Error
		})
		if errors.Is(err, errNotRated) {
			c.JSON(http.StatusConflict, gin.H{"error": "Only completed, unrated consultations can be rated"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save rating"})
			return
		}
		invalidateJotshis(rdb)
		c.JSON(http.StatusOK, gin.H{"rating": round2(summary.Avg), "rating_count": summary.Count})
	}
}
