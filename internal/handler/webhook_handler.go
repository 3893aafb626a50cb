package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"payments-service/internal/payment"
	"payments-service/internal/store"
	"payments-service/pkg/logger"
	"payments-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

const webhookBodyLimit = 1 << 20 // 1MiB

// WebhookHandler processes inbound Stripe events. Signature verification is
// the authentication mechanism for this endpoint.
type WebhookHandler struct {
	orders   store.OrderStore
	profiles store.ProfileStore
	events   store.EventStore
	stripe   payment.Client
	now      func() time.Time
}

// NewWebhookHandler creates a webhook handler with injected dependencies.
func NewWebhookHandler(orders store.OrderStore, profiles store.ProfileStore, events store.EventStore, stripeClient payment.Client) *WebhookHandler {
	return &WebhookHandler{
		orders:   orders,
		profiles: profiles,
		events:   events,
		stripe:   stripeClient,
		now:      time.Now,
	}
}

// HandleWebhook verifies the event signature and dispatches by event type.
// Unknown event types are acknowledged and ignored. Replayed deliveries of an
// already-processed event id are acknowledged without reprocessing.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	log := logger.FromEcho(c)

	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, webhookBodyLimit)
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		log.Warn("Failed to read webhook body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read request body"})
	}

	sigHeader := c.Request().Header.Get("Stripe-Signature")
	event, err := h.stripe.ConstructEvent(payload, sigHeader)
	if err != nil {
		log.Warn("Webhook signature verification failed", zap.Error(err))
		prometheus.WebhookEventCounter.WithLabelValues("unknown", "bad_signature").Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
	}

	ctx := c.Request().Context()
	eventType := string(event.Type)

	done, err := h.events.Processed(ctx, event.ID)
	if err != nil {
		log.Error("Failed to look up webhook event", zap.String("event_id", event.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if done {
		log.Info("Duplicate webhook delivery ignored",
			zap.String("event_id", event.ID),
			zap.String("type", eventType))
		prometheus.WebhookEventCounter.WithLabelValues(eventType, "duplicate").Inc()
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	switch event.Type {
	case "checkout.session.completed":
		if err := h.handleCheckoutCompleted(c, event); err != nil {
			prometheus.WebhookEventCounter.WithLabelValues(eventType, "error").Inc()
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
	case "account.updated":
		if err := h.handleAccountUpdated(c, event); err != nil {
			prometheus.WebhookEventCounter.WithLabelValues(eventType, "error").Inc()
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
	default:
		log.Debug("Unhandled event type", zap.String("type", eventType))
	}

	// Record the id only after the handler succeeded, so a failed delivery
	// is not acknowledged and Stripe's retry gets a clean attempt.
	if err := h.events.MarkProcessed(ctx, event.ID, eventType); err != nil {
		log.Error("Failed to record webhook event", zap.String("event_id", event.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	prometheus.WebhookEventCounter.WithLabelValues(eventType, "ok").Inc()
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

// handleCheckoutCompleted marks the referenced buyer's order as paid using
// the session's client reference id as the user key.
func (h *WebhookHandler) handleCheckoutCompleted(c echo.Context, event stripe.Event) error {
	log := logger.FromEcho(c)

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Error("Failed to parse checkout session from event",
			zap.String("event_id", event.ID), zap.Error(err))
		return err
	}

	if session.ClientReferenceID == "" {
		// Sessions created without a buyer reference have nothing to mark.
		log.Warn("Checkout session completed without client reference",
			zap.String("session_id", session.ID))
		return nil
	}

	if err := h.orders.MarkPaid(c.Request().Context(), session.ClientReferenceID, session.ID, h.now().UTC()); err != nil {
		log.Error("Failed to mark order as paid",
			zap.String("user_id", session.ClientReferenceID),
			zap.String("session_id", session.ID),
			zap.Error(err))
		return err
	}

	log.Info("Order marked as paid",
		zap.String("user_id", session.ClientReferenceID),
		zap.String("session_id", session.ID))
	return nil
}

// handleAccountUpdated copies Stripe's details_submitted flag onto the
// owning profile, which is what completes merchant onboarding.
func (h *WebhookHandler) handleAccountUpdated(c echo.Context, event stripe.Event) error {
	log := logger.FromEcho(c)

	var acct stripe.Account
	if err := json.Unmarshal(event.Data.Raw, &acct); err != nil {
		log.Error("Failed to parse account from event",
			zap.String("event_id", event.ID), zap.Error(err))
		return err
	}

	err := h.profiles.SetDetailsSubmitted(c.Request().Context(), acct.ID, acct.DetailsSubmitted)
	if err != nil {
		if err == store.ErrNotFound {
			// Accounts from other environments may share the webhook endpoint.
			log.Warn("No profile for updated account", zap.String("account_id", acct.ID))
			return nil
		}
		log.Error("Failed to update onboarding flag",
			zap.String("account_id", acct.ID), zap.Error(err))
		return err
	}

	log.Info("Onboarding flag updated",
		zap.String("account_id", acct.ID),
		zap.Bool("details_submitted", acct.DetailsSubmitted))
	return nil
}
