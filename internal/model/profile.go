package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile represents a platform user's merchant profile. StripeAccountID is
// null until the user has been provisioned with a Connect Express account,
// and StripeAccountDetailsSubmitted stays false until Stripe reports the
// onboarding as complete.
type Profile struct {
	ID                            string         `json:"id" gorm:"type:uuid;primaryKey"`
	Email                         string         `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Role                          string         `json:"role" gorm:"type:varchar(50);default:'store_owner'"`
	StripeAccountID               *string        `json:"stripe_account_id" gorm:"type:varchar(255);uniqueIndex"`
	StripeAccountDetailsSubmitted bool           `json:"stripe_account_details_submitted" gorm:"default:false"`
	CreatedAt                     time.Time      `json:"created_at"`
	UpdatedAt                     time.Time      `json:"updated_at"`
	DeletedAt                     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Stores []Store `json:"stores,omitempty" gorm:"foreignKey:MerchantID"`
}

// BeforeCreate sets the UUID before creating the record.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
