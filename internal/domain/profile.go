package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile Model
type Profile struct {
	ID                 string    `gorm:"type:char(36);primaryKey" json:"id"`        // UUID primary key
	Email              string    `gorm:"uniqueIndex;size:191;not null" json:"email"` // Unique login email
	Password           string    `gorm:"not null" json:"-"`                          // Hashed password
	FullName           string    `json:"full_name"`                                  // Display name
	Phone              string    `json:"phone"`                                      // Contact number
	Gender             string    `json:"gender"`                                     // male, female, other
	DateOfBirth        string    `json:"date_of_birth"`                              // YYYY-MM-DD
	TimeOfBirth        string    `json:"time_of_birth"`                              // HH:MM, local time
	PlaceOfBirth       string    `json:"place_of_birth"`                             // Free-text place
	Latitude           float64   `json:"latitude"`                                   // Birth latitude
	Longitude          float64   `json:"longitude"`                                  // Birth longitude
	TimezoneOffset     float64   `json:"timezone_offset"`                            // Hours east of UTC
	AvatarURL          string    `json:"avatar_url"`                                 // Public avatar URL
	WalletBalance      float64   `gorm:"not null;default:0" json:"wallet_balance"`   // Consultation credit
	OnboardingComplete bool      `gorm:"not null;default:false" json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none is set
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// HasBirthDetails reports whether a chart can be generated for the profile
func (p *Profile) HasBirthDetails() bool {
	return p.DateOfBirth != "" && p.TimeOfBirth != ""
}
