package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application roles
const (
	RoleUser   = "user"
	RoleJotshi = "jotshi"
	RoleAdmin  = "admin"
)

// UserRole Model
type UserRole struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`                           // UUID primary key
	UserID    string    `gorm:"type:char(36);uniqueIndex:idx_user_role;not null" json:"user_id"` // Foreign key to Profile
	Role      string    `gorm:"size:16;uniqueIndex:idx_user_role;not null" json:"role"`        // user, jotshi or admin
	CreatedAt time.Time `json:"created_at"`
	User      *Profile  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Owning profile
}

// BeforeCreate assigns a UUID when none is set
func (r *UserRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
