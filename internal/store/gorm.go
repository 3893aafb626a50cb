package store

import (
	"context"
	"errors"
	"time"

	"payments-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements all persistence ports over a single gorm connection.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by the given database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// GetByID returns the profile for a platform user id.
func (s *GormStore) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	var profile model.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// AttachStripeAccount performs a conditional write: the account id only lands
// when the profile has none yet, which closes the race between two
// provisioner invocations for the same user.
func (s *GormStore) AttachStripeAccount(ctx context.Context, userID, accountID string) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ? AND stripe_account_id IS NULL", userID).
		Updates(map[string]interface{}{
			"stripe_account_id":                accountID,
			"stripe_account_details_submitted": false,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetDetailsSubmitted updates the onboarding flag by Stripe account id.
func (s *GormStore) SetDetailsSubmitted(ctx context.Context, accountID string, submitted bool) error {
	result := s.db.WithContext(ctx).Model(&model.Profile{}).
		Where("stripe_account_id = ?", accountID).
		Update("stripe_account_details_submitted", submitted)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStore returns a store by id.
func (s *GormStore) GetStore(ctx context.Context, id string) (*model.Store, error) {
	var st model.Store
	if err := s.db.WithContext(ctx).First(&st, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

// GetCheckoutTarget joins product, store and merchant profile in one query.
func (s *GormStore) GetCheckoutTarget(ctx context.Context, productID, storeID string) (*CheckoutTarget, error) {
	var target CheckoutTarget
	err := s.db.WithContext(ctx).
		Model(&model.PlatformProduct{}).
		Select("platform_products.stripe_default_price_id AS stripe_price_id, "+
			"profiles.stripe_account_id, "+
			"profiles.stripe_account_details_submitted AS details_submitted").
		Joins("JOIN stores ON stores.id = platform_products.store_id AND stores.deleted_at IS NULL").
		Joins("JOIN profiles ON profiles.id = stores.merchant_id AND profiles.deleted_at IS NULL").
		Where("platform_products.id = ? AND platform_products.store_id = ?", productID, storeID).
		Take(&target).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &target, nil
}

// CreateProduct persists a platform product.
func (s *GormStore) CreateProduct(ctx context.Context, product *model.PlatformProduct) error {
	return s.db.WithContext(ctx).Create(product).Error
}

// MarkPaid upserts the buyer's order row and stamps the payment. The
// ON CONFLICT clause keeps concurrent first payments for the same user from
// tripping the unique index on user_id.
func (s *GormStore) MarkPaid(ctx context.Context, userID, sessionID string, paidAt time.Time) error {
	order := model.Order{
		UserID:      userID,
		SessionID:   sessionID,
		HasPaid:     true,
		PaymentDate: &paidAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"has_paid", "session_id", "payment_date"}),
		}).
		Create(&order).Error
}

// Processed reports whether the event id has a row in webhook_events.
func (s *GormStore) Processed(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkProcessed inserts the event id, doing nothing on conflict so that
// concurrent deliveries that both processed successfully do not error.
func (s *GormStore) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	event := model.WebhookEvent{
		EventID:    eventID,
		Type:       eventType,
		ReceivedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&event).Error
}
