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

// LoginLinkHandler mints one-time Stripe Express dashboard login links.
type LoginLinkHandler struct {
	profiles store.ProfileStore
	stripe   payment.Client
}

// NewLoginLinkHandler creates a login-link handler with injected dependencies.
func NewLoginLinkHandler(profiles store.ProfileStore, stripeClient payment.Client) *LoginLinkHandler {
	return &LoginLinkHandler{
		profiles: profiles,
		stripe:   stripeClient,
	}
}

type loginLinkRequest struct {
	UserID string `json:"user_id"`
}

// CreateLoginLink looks up the user's connected account and returns a
// one-time Express dashboard login link. No state is mutated.
func (h *LoginLinkHandler) CreateLoginLink(c echo.Context) error {
	log := logger.FromEcho(c)

	var req loginLinkRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login-link request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "User ID is required."})
	}

	profile, err := h.profiles.GetByID(c.Request().Context(), req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Merchant profile not found", zap.String("user_id", req.UserID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Merchant profile not found."})
		}
		log.Error("Failed to fetch merchant profile", zap.String("user_id", req.UserID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	if profile.StripeAccountID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Stripe account not connected for this user."})
	}

	link, err := h.stripe.CreateLoginLink(*profile.StripeAccountID)
	if err != nil {
		log.Error("Failed to create login link",
			zap.String("account_id", *profile.StripeAccountID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	prometheus.LoginLinkCounter.Inc()
	log.Info("Express login link issued",
		zap.String("user_id", req.UserID),
		zap.String("account_id", *profile.StripeAccountID))

	return c.JSON(http.StatusOK, echo.Map{"url": link.URL})
}
