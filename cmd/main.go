package main

import (
	"fmt"
	"net/http"
	"os"

	"payments-service/internal/handler"
	"payments-service/internal/middleware"
	"payments-service/internal/model"
	"payments-service/internal/payment"
	"payments-service/internal/store"
	"payments-service/pkg/config"
	"payments-service/pkg/database"
	"payments-service/pkg/jwtutil"
	"payments-service/pkg/logger"
	"payments-service/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration (reads .env when present)
	conf, err := config.Load("payments")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.InitLogger(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	})
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()

	// Initialize database connection
	db, err := database.InitDB(&conf.DB)
	if err != nil {
		log.Fatal("Failed to initialize database")
	}

	// Run migrations for payment models
	if err := database.MigrateModels(db,
		&model.Profile{},
		&model.Store{},
		&model.PlatformProduct{},
		&model.Order{},
		&model.WebhookEvent{},
	); err != nil {
		log.Fatal("Failed to migrate database models")
	}

	// Initialize JWT utility for merchant-facing routes
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      conf.JWT.SigningKey,
		ExpirationHours: conf.JWT.ExpirationHours,
	})

	// Stripe client and persistence ports, injected into each handler
	stripeClient := payment.NewStripeClient(conf.Stripe)
	gormStore := store.NewGormStore(db)

	connectHandler := handler.NewConnectHandler(gormStore, stripeClient)
	checkoutHandler := handler.NewCheckoutHandler(gormStore, stripeClient)
	loginLinkHandler := handler.NewLoginLinkHandler(gormStore, stripeClient)
	productHandler := handler.NewProductHandler(gormStore, gormStore, stripeClient)
	webhookHandler := handler.NewWebhookHandler(gormStore, gormStore, gormStore, stripeClient)

	// Initialize HTTP metrics
	httpMetrics := metrics.NewHTTPMetrics(conf.ServiceName)

	// Initialize Echo framework
	e := echo.New()

	// Apply middleware
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, "X-Request-ID", "Stripe-Signature"},
	}))

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))

	// Public routes
	e.GET("/health", handler.HealthCheck)
	e.POST("/stripe/connect-account", connectHandler.CreateConnectAccount)
	e.POST("/stripe/checkout-session", checkoutHandler.CreateCheckoutSession)
	e.POST("/stripe/webhook", webhookHandler.HandleWebhook)

	// Secured routes - require authentication
	merchant := e.Group("/merchant")
	merchant.Use(middleware.JWTAuthMiddleware(jwt))
	merchant.POST("/login-link", loginLinkHandler.CreateLoginLink)
	merchant.POST("/products", productHandler.CreateProduct)

	// Start server
	log.Info("Starting payments-service on port " + conf.Server.Port)
	e.Logger.Fatal(e.Start(":" + conf.Server.Port))
}
