package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Jotshi provider statuses
const (
	JotshiPending   = "pending"
	JotshiApproved  = "approved"
	JotshiSuspended = "suspended"
)

// JotshiProfile Model
type JotshiProfile struct {
	ID                 string    `gorm:"type:char(36);primaryKey" json:"id"`               // UUID primary key
	UserID             string    `gorm:"type:char(36);uniqueIndex;not null" json:"user_id"` // Owning profile
	DisplayName        string    `gorm:"not null" json:"display_name"`                      // Marketplace name
	Slug               string    `gorm:"uniqueIndex;size:191;not null" json:"slug"`         // Public handle
	Bio                string    `gorm:"type:text" json:"bio"`                              // About text
	Specialties        string    `json:"specialties"`                                       // Comma separated
	Languages          string    `json:"languages"`                                         // Comma separated
	ExperienceYears    int       `json:"experience_years"`                                  // Years of practice
	PricePerMinute     float64   `gorm:"not null" json:"price_per_minute"`                  // Rate charged
	Rating             float64   `gorm:"not null;default:0" json:"rating"`                  // Average rating
	RatingCount        int       `gorm:"not null;default:0" json:"rating_count"`            // Number of ratings
	TotalConsultations int       `gorm:"not null;default:0" json:"total_consultations"`     // Completed sessions
	IsOnline           bool      `gorm:"not null;default:false" json:"is_online"`           // Available now
	Status             string    `gorm:"size:16;index;not null;default:pending" json:"status"`
	AvatarURL          string    `json:"avatar_url"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	User               *Profile  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Owning profile
}

// BeforeCreate assigns a UUID when none is set
func (j *JotshiProfile) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}
