package handler

import (
	"errors"
	"net/http"

	"payments-service/internal/payment"
	"payments-service/internal/store"
	"payments-service/pkg/logger"
	"payments-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CheckoutHandler builds Stripe Checkout Sessions on merchants' connected
// accounts for storefront purchases.
type CheckoutHandler struct {
	catalog store.CatalogStore
	stripe  payment.Client
}

// NewCheckoutHandler creates a checkout-session handler with injected dependencies.
func NewCheckoutHandler(catalog store.CatalogStore, stripeClient payment.Client) *CheckoutHandler {
	return &CheckoutHandler{
		catalog: catalog,
		stripe:  stripeClient,
	}
}

type checkoutSessionRequest struct {
	PlatformProductID string `json:"platform_product_id"`
	StoreID           string `json:"store_id"`
	Quantity          int64  `json:"quantity"`
	// UserID optionally identifies the buying platform user so the payment
	// webhook can mark their order as paid.
	UserID string `json:"user_id"`
}

// CreateCheckoutSession resolves the product's price and the owning
// merchant's connected account in one joined lookup, then creates a
// payment-mode session on that account with the platform fee applied.
func (h *CheckoutHandler) CreateCheckoutSession(c echo.Context) error {
	log := logger.FromEcho(c)

	var req checkoutSessionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse checkout-session request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.PlatformProductID == "" || req.StoreID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required fields: platform_product_id, store_id."})
	}
	if req.Quantity < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid quantity."})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx := c.Request().Context()

	target, err := h.catalog.GetCheckoutTarget(ctx, req.PlatformProductID, req.StoreID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Checkout target not found",
				zap.String("platform_product_id", req.PlatformProductID),
				zap.String("store_id", req.StoreID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product or store details not found."})
		}
		log.Error("Failed to resolve checkout target", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	if target.StripeAccountID == nil || !target.DetailsSubmitted {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Merchant Stripe account is not connected or onboarding is not complete."})
	}
	if target.StripePriceID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Stripe Price ID for the product is missing. Product may not have been synced with Stripe."})
	}

	session, err := h.stripe.CreateCheckoutSession(payment.CheckoutSessionInput{
		ConnectedAccountID: *target.StripeAccountID,
		PriceID:            *target.StripePriceID,
		Quantity:           req.Quantity,
		StoreID:            req.StoreID,
		ClientReferenceID:  req.UserID,
	})
	if err != nil {
		log.Error("Failed to create checkout session",
			zap.String("account_id", *target.StripeAccountID),
			zap.String("price_id", *target.StripePriceID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	prometheus.CheckoutSessionCounter.Inc()
	log.Info("Checkout session created",
		zap.String("session_id", session.ID),
		zap.String("account_id", *target.StripeAccountID),
		zap.String("store_id", req.StoreID))

	return c.JSON(http.StatusOK, echo.Map{
		"sessionId":   session.ID,
		"checkoutUrl": session.URL,
	})
}
