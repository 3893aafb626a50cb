package model

import (
	"time"
)

// WebhookEvent records a processed Stripe event id. Stripe retries webhook
// deliveries, so inserting the id before acting on the event keeps replays
// from being applied twice.
type WebhookEvent struct {
	EventID    string    `json:"event_id" gorm:"type:varchar(255);primaryKey"`
	Type       string    `json:"type" gorm:"type:varchar(100);not null"`
	ReceivedAt time.Time `json:"received_at"`
}
