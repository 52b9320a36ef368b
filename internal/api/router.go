package api

import (
	"jotshi_backend/internal/astro"      // Chart readings
	"jotshi_backend/internal/middleware" // Auth middleware
	"jotshi_backend/internal/storage"    // Avatar uploads
	"net/http"                           // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps are the collaborators shared by every handler
type Deps struct {
	DB                *gorm.DB         // Primary store
	Redis             *redis.Client    // Cache and locks
	Astro             *astro.Service   // Chart readings
	Storage           storage.Uploader // Object storage, nil disables avatar upload
	JWTSecret         string           // Token signing key
	MinConsultMinutes int              // Balance required to start, in minutes of the provider's rate
}

// RegisterRoutes mounts the HTTP surface on r
func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Auth routes
	r.POST("/auth/register", RegisterHandler(d.DB, d.JWTSecret)) // Registration endpoint
	r.POST("/auth/login", LoginHandler(d.DB, d.JWTSecret))       // Login endpoint

	// Public marketplace and almanac
	r.GET("/jotshis", ListJotshisHandler(d.DB, d.Redis))
	r.GET("/jotshis/:slug", GetJotshiHandler(d.DB))
	r.GET("/panchang", PanchangHandler(d.Astro))

	// Everything else requires a signed-in user
	authed := r.Group("")
	authed.Use(middleware.JWTAuthMiddleware(d.DB, d.JWTSecret))

	authed.GET("/profile", GetProfileHandler(d.DB))
	authed.PUT("/profile", UpdateProfileHandler(d.DB))
	authed.PUT("/profile/birth-details", UpdateBirthDetailsHandler(d.DB))
	authed.POST("/profile/avatar", UploadAvatarHandler(d.DB, d.Redis, d.Storage))

	authed.GET("/kundli", GetKundliHandler(d.DB))
	authed.POST("/kundli", CreateKundliHandler())
	authed.GET("/kundli/charts/:kind", GetChartHandler(d.DB))
	authed.POST("/kundli/analysis", AnalysisHandler(d.DB, d.Astro))
	authed.POST("/kundli/report", ReportHandler(d.DB, d.Astro))
	authed.POST("/kundli/scan", ScanHandler(d.Astro))
	authed.POST("/compatibility", CompatibilityHandler(d.DB, d.Astro))
	authed.POST("/chat/stream", ChatStreamHandler(d.DB, d.Astro, d.Redis))

	authed.POST("/jotshis/apply", ApplyJotshiHandler(d.DB))
	authed.GET("/jotshis/me", GetMyJotshiHandler(d.DB))
	authed.PUT("/jotshis/me", UpdateMyJotshiHandler(d.DB, d.Redis))
	authed.POST("/jotshis/me/online", SetOnlineHandler(d.DB, d.Redis))

	authed.POST("/consultations", StartConsultationHandler(d.DB, d.MinConsultMinutes))
	authed.GET("/consultations", ListConsultationsHandler(d.DB))
	authed.GET("/consultations/:id/messages", ListMessagesHandler(d.DB))
	authed.POST("/consultations/:id/messages", SendMessageHandler(d.DB))
	authed.POST("/consultations/:id/end", EndConsultationHandler(d.DB, d.Redis))
	authed.POST("/consultations/:id/rate", RateConsultationHandler(d.DB, d.Redis))

	// Wallet routes
	walletGroup := authed.Group("/wallet")
	walletGroup.GET("", GetWalletHandler(d.DB, d.Redis))                          // Get wallet endpoint
	walletGroup.POST("/recharge", RechargeHandler(d.DB, d.Redis))                 // Recharge endpoint
	walletGroup.GET("/transactions", GetTransactionHistoryHandler(d.DB, d.Redis)) // Transaction history endpoint

	// Admin routes (protected, admin only)
	adminGroup := authed.Group("/admin")
	adminGroup.Use(middleware.AdminOnlyMiddleware(d.DB))
	adminGroup.GET("/users", ListUsersHandler(d.DB, d.Redis))               // List users endpoint
	adminGroup.GET("/jotshis", ListJotshiApplicationsHandler(d.DB))         // Provider review queue
	adminGroup.POST("/jotshis/:id/approve", ApproveJotshiHandler(d.DB, d.Redis))
	adminGroup.POST("/jotshis/:id/suspend", SuspendJotshiHandler(d.DB, d.Redis))
	adminGroup.GET("/transactions", ListTransactionsHandler(d.DB, d.Redis)) // List transactions endpoint
	adminGroup.GET("/stats", StatsHandler(d.DB))                            // Dashboard counts
}
