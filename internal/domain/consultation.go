package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Consultation statuses
const (
	ConsultationActive    = "active"
	ConsultationCompleted = "completed"
	ConsultationCancelled = "cancelled"
)

// Consultation Model
type Consultation struct {
	ID              string     `gorm:"type:char(36);primaryKey" json:"id"`           // UUID primary key
	UserID          string     `gorm:"type:char(36);index;not null" json:"user_id"`   // Client profile
	JotshiID        string     `gorm:"type:char(36);index;not null" json:"jotshi_id"` // JotshiProfile ID
	Type            string     `gorm:"size:16;not null;default:chat" json:"type"`     // chat, call or video
	Status          string     `gorm:"size:16;index;not null" json:"status"`          // active, completed, cancelled
	PricePerMinute  float64    `gorm:"not null" json:"price_per_minute"`              // Rate locked at start
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationMinutes int        `json:"duration_minutes"`
	TotalCost       float64    `json:"total_cost"`
	Rating          *int       `json:"rating"`
	Review          string     `gorm:"type:text" json:"review"`
	CreatedAt       time.Time  `json:"created_at"`

	User   *Profile       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"` // Client
	Jotshi *JotshiProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"` // Provider
}

// BeforeCreate assigns a UUID when none is set
func (c *Consultation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Message Model
type Message struct {
	ID             string    `gorm:"type:char(36);primaryKey" json:"id"`                 // UUID primary key
	ConsultationID string    `gorm:"type:char(36);index;not null" json:"consultation_id"` // Parent consultation
	SenderID       string    `gorm:"type:char(36);not null" json:"sender_id"`             // Profile that sent it
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`

	Consultation *Consultation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Parent session
	Sender       *Profile      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Author
}

// BeforeCreate assigns a UUID when none is set
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
