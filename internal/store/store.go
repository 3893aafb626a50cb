// Package store defines the persistence ports used by the payment handlers
// and their gorm-backed implementations. Handlers depend on these interfaces
// so tests can substitute in-memory fakes.
package store

import (
	"context"
	"errors"
	"time"

	"payments-service/internal/model"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// CheckoutTarget is the result of the joined product/store/merchant lookup
// the checkout-session builder performs. Nil pointers mean the corresponding
// Stripe resource has not been provisioned yet.
type CheckoutTarget struct {
	StripeAccountID  *string
	DetailsSubmitted bool
	StripePriceID    *string
}

// ProfileStore reads and mutates merchant profiles.
type ProfileStore interface {
	// GetByID returns the profile for a platform user id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.Profile, error)

	// AttachStripeAccount sets the profile's Stripe account id only when no
	// account is attached yet. It reports whether this call won the write;
	// a false return with a nil error means another request attached an
	// account first and the caller should re-read the profile.
	AttachStripeAccount(ctx context.Context, userID, accountID string) (bool, error)

	// SetDetailsSubmitted updates the onboarding-complete flag for the
	// profile owning the given Stripe account id.
	SetDetailsSubmitted(ctx context.Context, accountID string, submitted bool) error
}

// CatalogStore reads stores and reads/writes platform products.
type CatalogStore interface {
	// GetStore returns a store by id, or ErrNotFound.
	GetStore(ctx context.Context, id string) (*model.Store, error)

	// GetCheckoutTarget resolves a product's price id together with the
	// owning merchant's connected-account state in one joined lookup.
	// Returns ErrNotFound when the product/store pair does not exist.
	GetCheckoutTarget(ctx context.Context, productID, storeID string) (*CheckoutTarget, error)

	// CreateProduct persists a platform product.
	CreateProduct(ctx context.Context, product *model.PlatformProduct) error
}

// OrderStore tracks buyer payment state.
type OrderStore interface {
	// MarkPaid records a completed checkout for the given platform user,
	// creating the order row if none exists yet.
	MarkPaid(ctx context.Context, userID, sessionID string, paidAt time.Time) error
}

// EventStore deduplicates webhook deliveries. The event id is recorded only
// after its handler succeeds, so a failed delivery stays retriable.
type EventStore interface {
	// Processed reports whether the given Stripe event id has already been
	// handled successfully.
	Processed(ctx context.Context, eventID string) (bool, error)

	// MarkProcessed records a successfully handled event id. Recording the
	// same id twice is not an error.
	MarkProcessed(ctx context.Context, eventID, eventType string) error
}
