package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlatformProduct represents a product listed on a storefront. The Stripe ids
// are null when the merchant had not completed Connect onboarding at the time
// the product was created; such products cannot be checked out until synced.
type PlatformProduct struct {
	ID                   string         `json:"id" gorm:"type:uuid;primaryKey"`
	StoreID              string         `json:"store_id" gorm:"type:uuid;index;not null"`
	Name                 string         `json:"name" gorm:"type:varchar(255);not null"`
	Description          string         `json:"description" gorm:"type:text"`
	Images               []string       `json:"images" gorm:"serializer:json"`
	StripeProductID      *string        `json:"stripe_product_id" gorm:"type:varchar(255)"`
	StripeDefaultPriceID *string        `json:"stripe_default_price_id" gorm:"type:varchar(255)"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Store *Store `json:"store,omitempty" gorm:"foreignKey:StoreID"`
}

// BeforeCreate sets the UUID before creating the record.
func (p *PlatformProduct) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
