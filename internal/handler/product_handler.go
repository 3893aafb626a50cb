package handler

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"payments-service/internal/model"
	"payments-service/internal/payment"
	"payments-service/internal/store"
	"payments-service/pkg/logger"
	"payments-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ProductHandler creates platform products and syncs them to the merchant's
// connected Stripe account.
type ProductHandler struct {
	catalog  store.CatalogStore
	profiles store.ProfileStore
	stripe   payment.Client
}

// NewProductHandler creates a product handler with injected dependencies.
func NewProductHandler(catalog store.CatalogStore, profiles store.ProfileStore, stripeClient payment.Client) *ProductHandler {
	return &ProductHandler{
		catalog:  catalog,
		profiles: profiles,
		stripe:   stripeClient,
	}
}

type createProductRequest struct {
	StoreID     string   `json:"store_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	// PriceAmount is the price in major currency units, e.g. 10.99.
	PriceAmount float64 `json:"price_amount"`
	Currency    string  `json:"currency"`
}

// CreateProduct persists a platform product for a store. When the owning
// merchant has completed Connect onboarding the product is also created on
// their connected account with default price data; otherwise it is saved
// locally without Stripe ids and cannot be checked out until synced.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse product creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.StoreID == "" || req.Name == "" || req.PriceAmount <= 0 || req.Currency == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required fields: store_id, name, price_amount, currency."})
	}

	ctx := c.Request().Context()

	st, err := h.catalog.GetStore(ctx, req.StoreID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Store not found", zap.String("store_id", req.StoreID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Store not found."})
		}
		log.Error("Failed to fetch store", zap.String("store_id", req.StoreID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	profile, err := h.profiles.GetByID(ctx, st.MerchantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Merchant profile not found", zap.String("merchant_id", st.MerchantID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Merchant profile not found."})
		}
		log.Error("Failed to fetch merchant profile", zap.String("merchant_id", st.MerchantID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	product := model.PlatformProduct{
		StoreID:     req.StoreID,
		Name:        req.Name,
		Description: req.Description,
		Images:      req.Images,
	}

	// Merchant not onboarded: save the product locally without Stripe ids.
	if profile.StripeAccountID == nil || !profile.StripeAccountDetailsSubmitted {
		if err := h.catalog.CreateProduct(ctx, &product); err != nil {
			log.Error("Failed to save product locally", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save product locally: " + err.Error()})
		}

		log.Info("Product saved without Stripe sync",
			zap.String("platform_product_id", product.ID),
			zap.String("store_id", req.StoreID))

		return c.JSON(http.StatusOK, echo.Map{
			"message":             "Stripe Connect not set up for this merchant. Product saved locally without Stripe IDs.",
			"platform_product_id": product.ID,
			"stripe_skipped":      true,
			"product":             product,
		})
	}

	accountID := *profile.StripeAccountID
	stripeProduct, err := h.stripe.CreateConnectedProduct(accountID, payment.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Images:      req.Images,
		UnitAmount:  int64(math.Round(req.PriceAmount * 100)),
		Currency:    strings.ToLower(req.Currency),
	})
	if err != nil {
		log.Error("Failed to create Stripe product",
			zap.String("account_id", accountID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if stripeProduct.DefaultPrice == nil {
		log.Error("Stripe product created without default price",
			zap.String("stripe_product_id", stripeProduct.ID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Stripe product creation succeeded but default_price was not returned."})
	}

	priceID := stripeProduct.DefaultPrice.ID
	product.StripeProductID = &stripeProduct.ID
	product.StripeDefaultPriceID = &priceID

	if err := h.catalog.CreateProduct(ctx, &product); err != nil {
		log.Error("Failed to save product after Stripe sync",
			zap.String("stripe_product_id", stripeProduct.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	prometheus.ProductSyncCounter.Inc()
	log.Info("Product created and synced to Stripe",
		zap.String("platform_product_id", product.ID),
		zap.String("stripe_product_id", stripeProduct.ID),
		zap.String("stripe_default_price_id", priceID),
		zap.String("account_id", accountID))

	return c.JSON(http.StatusOK, echo.Map{
		"message":                 "Product created successfully on Stripe and saved to platform!",
		"platform_product_id":     product.ID,
		"stripe_product_id":       stripeProduct.ID,
		"stripe_default_price_id": priceID,
		"stripe_skipped":          false,
		"product":                 product,
	})
}
