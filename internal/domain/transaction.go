package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wallet transaction types
const (
	TxRecharge = "recharge"
	TxDebit    = "consultation_debit"
	TxEarning  = "consultation_earning"
)

// WalletTransaction Model
type WalletTransaction struct {
	ID             string  `gorm:"type:char(36);primaryKey" json:"id"`         // UUID primary key
	UserID         string  `gorm:"type:char(36);index;not null" json:"user_id"` // Profile whose balance moved
	Amount         float64 `gorm:"not null" json:"amount"`                      // Signed amount
	Type           string  `gorm:"size:32;index;not null" json:"type"`          // recharge, consultation_debit, consultation_earning
	Description    string  `json:"description"`
	ConsultationID *string `gorm:"type:char(36)" json:"consultation_id"`                // Set for consultation billing
	BalanceAfter   float64 `json:"balance_after"`                                       // Balance once applied
	CreatedAt      int64   `gorm:"autoCreateTime:milli;index" json:"created_at"` // Timestamp of creation in milliseconds

	User         *Profile      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"` // Ledger owner
	Consultation *Consultation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"` // Billed session
}

// BeforeCreate assigns a UUID when none is set
func (t *WalletTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
