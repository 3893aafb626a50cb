// Package payment wraps the Stripe SDK calls behind a small client interface
// so handlers can be tested with mocks.
package payment

import (
	"fmt"

	"payments-service/pkg/config"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/account"
	"github.com/stripe/stripe-go/v82/accountlink"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/loginlink"
	"github.com/stripe/stripe-go/v82/product"
	"github.com/stripe/stripe-go/v82/webhook"
)

// CheckoutSessionInput carries everything the checkout-session builder
// resolved before calling Stripe.
type CheckoutSessionInput struct {
	// ConnectedAccountID is the merchant's Express account; the session is
	// created on this account, not on the platform account.
	ConnectedAccountID string
	PriceID            string
	Quantity           int64
	StoreID            string
	// ClientReferenceID ties the session back to the buying platform user so
	// the webhook can mark their order as paid.
	ClientReferenceID string
}

// ProductInput describes a product to create on a connected account.
type ProductInput struct {
	Name        string
	Description string
	Images      []string
	// UnitAmount is the default price in minor currency units.
	UnitAmount int64
	Currency   string
}

// Client is an interface for Stripe operations to enable testing with mocks.
type Client interface {
	CreateExpressAccount(email, userID string) (*stripe.Account, error)
	CreateAccountLink(accountID string) (*stripe.AccountLink, error)
	CreateLoginLink(accountID string) (*stripe.LoginLink, error)
	CreateCheckoutSession(input CheckoutSessionInput) (*stripe.CheckoutSession, error)
	CreateConnectedProduct(accountID string, input ProductInput) (*stripe.Product, error)
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// StripeClient implements Client using the real Stripe SDK.
type StripeClient struct {
	cfg config.StripeConfig
}

// NewStripeClient creates a Stripe client with the injected platform
// configuration. The secret key is set on the SDK here and nowhere else.
func NewStripeClient(cfg config.StripeConfig) *StripeClient {
	stripe.Key = cfg.SecretKey
	return &StripeClient{cfg: cfg}
}

// CreateExpressAccount creates a Connect Express account for a merchant with
// card-payment and transfer capabilities requested.
func (c *StripeClient) CreateExpressAccount(email, userID string) (*stripe.Account, error) {
	params := expressAccountParams(c.cfg, email, userID)
	return account.New(params)
}

// CreateAccountLink creates an onboarding link for a connected account.
func (c *StripeClient) CreateAccountLink(accountID string) (*stripe.AccountLink, error) {
	params := accountLinkParams(c.cfg, accountID)
	return accountlink.New(params)
}

// CreateLoginLink mints a one-time Express dashboard login link.
func (c *StripeClient) CreateLoginLink(accountID string) (*stripe.LoginLink, error) {
	params := &stripe.LoginLinkParams{
		Account: stripe.String(accountID),
	}
	return loginlink.New(params)
}

// CreateCheckoutSession creates a payment-mode checkout session on the
// merchant's connected account with the platform application fee applied.
func (c *StripeClient) CreateCheckoutSession(input CheckoutSessionInput) (*stripe.CheckoutSession, error) {
	params := checkoutSessionParams(c.cfg, input)
	return session.New(params)
}

// CreateConnectedProduct creates a product with default price data on the
// merchant's connected account.
func (c *StripeClient) CreateConnectedProduct(accountID string, input ProductInput) (*stripe.Product, error) {
	params := connectedProductParams(accountID, input)
	return product.New(params)
}

// ConstructEvent verifies the webhook signature and parses the event.
func (c *StripeClient) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	// The Stripe CLI and replayed events may carry a different API version
	// than the SDK pins; signature verification is unaffected.
	return webhook.ConstructEventWithOptions(payload, sigHeader, c.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

func expressAccountParams(cfg config.StripeConfig, email, userID string) *stripe.AccountParams {
	params := &stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Country: stripe.String(cfg.AccountCountry),
		Email:   stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	}
	params.AddMetadata("platform_user_id", userID)
	return params
}

func accountLinkParams(cfg config.StripeConfig, accountID string) *stripe.AccountLinkParams {
	return &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(cfg.AppBaseURL + "/stripe-onboarding/refresh"),
		ReturnURL:  stripe.String(cfg.AppBaseURL + "/stripe-onboarding/return"),
		Type:       stripe.String("account_onboarding"),
	}
}

func checkoutSessionParams(cfg config.StripeConfig, input CheckoutSessionInput) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(input.PriceID),
				Quantity: stripe.Int64(input.Quantity),
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf("%s/store/%s/checkout/success?session_id={CHECKOUT_SESSION_ID}", cfg.AppBaseURL, input.StoreID)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/store/%s/checkout/cancel", cfg.AppBaseURL, input.StoreID)),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			// Direct charge on the connected account; the fee is transferred
			// to the platform.
			ApplicationFeeAmount: stripe.Int64(cfg.ApplicationFeeAmount),
		},
	}
	if input.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(input.ClientReferenceID)
	}
	params.SetStripeAccount(input.ConnectedAccountID)
	return params
}

func connectedProductParams(accountID string, input ProductInput) *stripe.ProductParams {
	params := &stripe.ProductParams{
		Name: stripe.String(input.Name),
		DefaultPriceData: &stripe.ProductDefaultPriceDataParams{
			Currency:   stripe.String(input.Currency),
			UnitAmount: stripe.Int64(input.UnitAmount),
		},
	}
	if input.Description != "" {
		params.Description = stripe.String(input.Description)
	}
	if len(input.Images) > 0 {
		params.Images = stripe.StringSlice(input.Images)
	}
	params.SetStripeAccount(accountID)
	return params
}
