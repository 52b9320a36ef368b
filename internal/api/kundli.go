package api

import (
	"errors"                         // Error inspection
	"io"                             // Body reading
	"jotshi_backend/internal/astro"  // Chart readings
	"jotshi_backend/internal/domain" // Importing domain models
	"jotshi_backend/internal/kundli" // Chart calculation
	"net/http"                       // HTTP status codes
	"strings"                        // String manipulation
	"time"                           // Date parsing

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// defaultTimezone is IST, used when no offset is supplied
const defaultTimezone = 5.5

// maxScanBytes bounds chart photo uploads
const maxScanBytes = 8 << 20

// BirthRequest describes a person whose chart should be cast
type BirthRequest struct {
	Name           string   `json:"name"`                             // Person's name
	DateOfBirth    string   `json:"date_of_birth" binding:"required"` // YYYY-MM-DD
	TimeOfBirth    string   `json:"time_of_birth"`                    // HH:MM, noon when omitted
	PlaceOfBirth   string   `json:"place_of_birth"`                   // Free-text place
	Latitude       float64  `json:"latitude"`                         // Birth latitude
	Longitude      float64  `json:"longitude"`                        // Birth longitude
	TimezoneOffset *float64 `json:"timezone_offset"`                  // Hours east of UTC, IST when omitted
}

// Kundli casts the chart for the request
func (r BirthRequest) Kundli() (*kundli.Kundli, error) {
	tz := defaultTimezone
	if r.TimezoneOffset != nil {
		tz = *r.TimezoneOffset
	}
	b, err := kundli.ParseBirthDetails(r.DateOfBirth, r.TimeOfBirth, tz, r.Latitude, r.Longitude)
	if err != nil {
		return nil, err
	}
	b.Name = strings.TrimSpace(r.Name)
	b.Place = strings.TrimSpace(r.PlaceOfBirth)
	return kundli.New(b), nil
}

// AnalysisRequest asks for a reading of the given or stored chart
type AnalysisRequest struct {
	Birth *BirthRequest `json:"birth"` // Stored birth details when omitted
}

// ReportRequest asks for one section of the detailed report
type ReportRequest struct {
	Section string        `json:"section" binding:"required"` // overview, career, marriage, health, finance, dasha
	Birth   *BirthRequest `json:"birth"`                      // Stored birth details when omitted
}

// CompatibilityRequest pairs two charts for Guna Milan
type CompatibilityRequest struct {
	Groom *BirthRequest `json:"groom"`                    // Stored birth details when omitted
	Bride *BirthRequest `json:"bride" binding:"required"` // Partner's birth details
}

// KundliResponse is a chart with every divisional view
type KundliResponse struct {
	Kundli *kundli.Kundli                      `json:"kundli"` // Positions and summary
	Charts map[kundli.ChartKind]kundli.Chart `json:"charts"` // Divisional charts
}

// profileKundli casts the chart from a profile's stored birth details
func profileKundli(p domain.Profile) (*kundli.Kundli, error) {
	b, err := kundli.ParseBirthDetails(p.DateOfBirth, p.TimeOfBirth, p.TimezoneOffset, p.Latitude, p.Longitude)
	if err != nil {
		return nil, err
	}
	b.Name = p.FullName
	b.Place = p.PlaceOfBirth
	return kundli.New(b), nil
}

// resolveKundli uses the supplied birth details or falls back to the signed-in profile
func resolveKundli(c *gin.Context, db *gorm.DB, birth *BirthRequest) (*kundli.Kundli, bool) {
	if birth != nil {
		k, err := birth.Kundli()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		return k, true
	}
	profile, ok := loadProfile(c, db)
	if !ok {
		return nil, false
	}
	if !profile.HasBirthDetails() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Birth details are missing, complete onboarding first"})
		return nil, false
	}
	k, err := profileKundli(profile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return k, true
}

// bindOptionalJSON binds a body that may be empty
func bindOptionalJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return false
	}
	return true
}

// GetKundliHandler returns the chart for the stored birth details
func GetKundliHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		k, ok := resolveKundli(c, db, nil)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, KundliResponse{Kundli: k, Charts: k.Charts()})
	}
}

// CreateKundliHandler casts a chart for arbitrary birth details
func CreateKundliHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BirthRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Date of birth is required"})
			return
		}
		k, err := req.Kundli()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, KundliResponse{Kundli: k, Charts: k.Charts()})
	}
}

// GetChartHandler returns one divisional chart of the stored birth details
func GetChartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, err := kundli.ParseChartKind(c.Param("kind"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		k, ok := resolveKundli(c, db, nil)
		if !ok {
			return
		}
		chart, err := k.Chart(kind)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, chart)
	}
}

// AnalysisHandler returns the AI reading of a chart
func AnalysisHandler(db *gorm.DB, svc *astro.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AnalysisRequest
		if !bindOptionalJSON(c, &req) {
			return
		}
		k, ok := resolveKundli(c, db, req.Birth)
		if !ok {
			return
		}
		analysis, err := svc.AnalyzeKundli(c.Request.Context(), k, k.Birth.Name)
		if err != nil {
			respondAIError(c, err, "Kundli analysis")
			return
		}
		c.JSON(http.StatusOK, analysis)
	}
}

// ReportHandler returns one section of the detailed report
func ReportHandler(db *gorm.DB, svc *astro.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReportRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Section is required"})
			return
		}
		k, ok := resolveKundli(c, db, req.Birth)
		if !ok {
			return
		}
		report, err := svc.GenerateReport(c.Request.Context(), k, strings.ToLower(req.Section))
		if errors.Is(err, astro.ErrUnknownSection) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown section", "sections": astro.ReportSections})
			return
		}
		if err != nil {
			respondAIError(c, err, "Report generation")
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// CompatibilityHandler scores two charts with Guna Milan
func CompatibilityHandler(db *gorm.DB, svc *astro.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CompatibilityRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Partner birth details are required"})
			return
		}
		groom, ok := resolveKundli(c, db, req.Groom)
		if !ok {
			return
		}
		bride, err := req.Bride.Kundli()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		match, err := svc.Compatibility(c.Request.Context(), groom, bride)
		if err != nil {
			respondAIError(c, err, "Compatibility")
			return
		}
		c.JSON(http.StatusOK, match)
	}
}

// ScanHandler reads a photographed chart
func ScanHandler(svc *astro.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("image") // Multipart field "image"
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image is required"})
			return
		}
		if file.Size > maxScanBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image must be at most 8MB"})
			return
		}
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read image"})
			return
		}
		defer src.Close()
		data, err := io.ReadAll(io.LimitReader(src, maxScanBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read image"})
			return
		}
		mimeType := http.DetectContentType(data)
		if !strings.HasPrefix(mimeType, "image/") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Upload must be an image"})
			return
		}
		result, err := svc.ScanKundli(c.Request.Context(), data, mimeType)
		if err != nil {
			respondAIError(c, err, "Kundli scan")
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// PanchangHandler returns the almanac for a date and place, today by default
func PanchangHandler(svc *astro.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := time.Now().UTC()
		if d := c.Query("date"); d != "" {
			parsed, err := time.Parse("2006-01-02", d)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be YYYY-MM-DD"})
				return
			}
			date = parsed
		}
		p, cached, err := svc.Panchang(c.Request.Context(), date, c.Query("place"))
		if err != nil {
			respondAIError(c, err, "Panchang")
			return
		}
		c.JSON(http.StatusOK, gin.H{"panchang": p, "cached": cached})
	}
}
