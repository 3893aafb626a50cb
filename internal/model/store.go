package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store represents a generated storefront owned by a merchant profile.
// This service only ever reads stores; they are created and managed by the
// storefront builder.
type Store struct {
	ID         string         `json:"id" gorm:"type:uuid;primaryKey"`
	MerchantID string         `json:"merchant_id" gorm:"type:uuid;index;not null"`
	Name       string         `json:"name" gorm:"type:varchar(100);not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Merchant *Profile          `json:"merchant,omitempty" gorm:"foreignKey:MerchantID"`
	Products []PlatformProduct `json:"products,omitempty" gorm:"foreignKey:StoreID"`
}

// BeforeCreate sets the UUID before creating the record.
func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
