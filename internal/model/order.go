package model

import (
	"time"
)

// Order tracks the payment state for a buyer, keyed by the platform user id
// that checkout sessions carry as their client reference. The webhook handler
// flips HasPaid when Stripe reports the session as completed.
type Order struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"type:varchar(255);uniqueIndex;not null"`
	SessionID   string     `json:"session_id" gorm:"type:varchar(255)"`
	HasPaid     bool       `json:"has_paid" gorm:"default:false"`
	PaymentDate *time.Time `json:"payment_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
