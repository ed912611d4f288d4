package main

import (
	"net/http"
	"storefront-service/internal/handler"
	mid "storefront-service/internal/middleware"
	"storefront-service/internal/seed"
	"storefront-service/pkg/config"
	"storefront-service/pkg/database"
	"storefront-service/pkg/logger"
	"storefront-service/pkg/payment"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (also reads .env when present). Fails hard when the
	// payment provider key is not a test-mode key.
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting storefront-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize the payment provider gateway; constructed once and handed to
	// the payments handler explicitly
	gateway, err := payment.NewStripeGateway(
		appConfig.Stripe.SecretKey,
		appConfig.Stripe.WebhookSecret,
	)
	if err != nil {
		log.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}
	log.Info("Payment gateway initialized")

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	seeder := seed.New(database.GetDB(), appConfig.Seed.Command)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/v1")

	// Catalog routes
	api.GET("/categories", handler.ListCategories)
	api.GET("/products", handler.ListProducts)
	api.GET("/products/:slug", handler.GetProductBySlug)

	// Order routes
	api.POST("/orders", handler.CreateOrder)
	api.GET("/orders/:id", handler.GetOrderByID)

	// User profile routes
	api.GET("/users/demo", handler.GetDemoUsers)
	api.GET("/users/:id/orders", handler.GetOrdersByUser)
	api.GET("/users/:id/wishlist", handler.GetUserWishlist)

	// Payment routes
	payments := handler.NewPaymentHandler(gateway)
	api.POST("/payments/attach-order", payments.AttachOrder)
	api.POST("/payments/webhook", payments.Webhook)

	// Admin routes guarded by the shared-secret header
	admin := handler.NewAdminHandler(seeder)
	adminAPI := api.Group("/admin", mid.AdminTokenMiddleware(appConfig.Admin.Token))
	adminAPI.POST("/demo/seed", admin.SeedDemo)
	adminAPI.POST("/demo/reset", admin.ResetDemo)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
