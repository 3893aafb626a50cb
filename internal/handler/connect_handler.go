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

// ConnectHandler provisions Stripe Connect Express accounts for new platform
// users and issues onboarding links.
type ConnectHandler struct {
	profiles store.ProfileStore
	stripe   payment.Client
}

// NewConnectHandler creates a connect-account handler with injected dependencies.
func NewConnectHandler(profiles store.ProfileStore, stripeClient payment.Client) *ConnectHandler {
	return &ConnectHandler{
		profiles: profiles,
		stripe:   stripeClient,
	}
}

type connectAccountRequest struct {
	Record struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"record"`
}

// CreateConnectAccount handles the new-user provisioning event. For a user
// who already has a connected account it only mints a fresh onboarding link;
// otherwise it creates the Express account, persists the account id on the
// profile, and returns the onboarding link.
func (h *ConnectHandler) CreateConnectAccount(c echo.Context) error {
	log := logger.FromEcho(c)

	var req connectAccountRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse connect-account request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	userID := req.Record.ID
	email := req.Record.Email
	if userID == "" || email == "" {
		log.Error("User data missing in connect-account request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "User ID and email are required."})
	}

	ctx := c.Request().Context()

	profile, err := h.profiles.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("Failed to fetch profile", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	// Existing account: never create a second one, always issue a fresh
	// onboarding link so the merchant can finish or revisit onboarding.
	if profile != nil && profile.StripeAccountID != nil {
		accountID := *profile.StripeAccountID
		link, err := h.stripe.CreateAccountLink(accountID)
		if err != nil {
			log.Error("Failed to create account link for existing account",
				zap.String("account_id", accountID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		prometheus.OnboardingLinkCounter.Inc()
		log.Info("Issued onboarding link for existing account",
			zap.String("user_id", userID),
			zap.String("account_id", accountID))

		return c.JSON(http.StatusOK, echo.Map{
			"stripe_account_id": accountID,
			"account_link_url":  link.URL,
			"existing":          true,
		})
	}

	acct, err := h.stripe.CreateExpressAccount(email, userID)
	if err != nil {
		log.Error("Failed to create Stripe Express account",
			zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	prometheus.ConnectAccountCreatedCounter.Inc()

	accountID := acct.ID
	claimed, err := h.profiles.AttachStripeAccount(ctx, userID, accountID)
	if err != nil {
		// The account exists on Stripe but the profile write failed; an
		// operator has to reconcile. Still hand the merchant a link.
		log.Warn("Stripe account created but profile update failed",
			zap.String("user_id", userID),
			zap.String("account_id", accountID),
			zap.Error(err))
	} else if !claimed {
		// A concurrent provisioning request attached an account first.
		// Link against the winner's account instead of the orphan.
		winner, err := h.profiles.GetByID(ctx, userID)
		switch {
		case err != nil:
			log.Error("Failed to re-read profile after lost provisioning race",
				zap.String("user_id", userID),
				zap.String("orphan_account_id", accountID),
				zap.Error(err))
		case winner.StripeAccountID == nil:
			log.Error("Profile has no account after lost provisioning race",
				zap.String("user_id", userID),
				zap.String("orphan_account_id", accountID))
		default:
			log.Warn("Lost provisioning race, using already-attached account",
				zap.String("user_id", userID),
				zap.String("orphan_account_id", accountID),
				zap.String("account_id", *winner.StripeAccountID))
			accountID = *winner.StripeAccountID
		}
	}

	link, err := h.stripe.CreateAccountLink(accountID)
	if err != nil {
		log.Error("Failed to create account link",
			zap.String("account_id", accountID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	prometheus.OnboardingLinkCounter.Inc()

	log.Info("Stripe Express account provisioned",
		zap.String("user_id", userID),
		zap.String("account_id", accountID))

	return c.JSON(http.StatusOK, echo.Map{
		"stripe_account_id": accountID,
		"account_link_url":  link.URL,
		"existing":          false,
	})
}
