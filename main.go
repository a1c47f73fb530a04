package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/felixxplor/ecommerce-website-sub001/cache"
	"github.com/felixxplor/ecommerce-website-sub001/commerce"
	"github.com/felixxplor/ecommerce-website-sub001/database"
	"github.com/felixxplor/ecommerce-website-sub001/handlers"
	"github.com/felixxplor/ecommerce-website-sub001/kafka"
	"github.com/felixxplor/ecommerce-website-sub001/middleware"
	"github.com/felixxplor/ecommerce-website-sub001/paypal"
	"github.com/felixxplor/ecommerce-website-sub001/stripeclient"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := database.InitDB(logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis
	rdb, err := cache.InitRedis(logger)
	if err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer rdb.Close()

	// Initialize Kafka producer
	producer, err := kafka.InitProducer(logger)
	if err != nil {
		logger.Fatal("Failed to initialize Kafka producer", zap.Error(err))
	}
	defer producer.Close()

	// Initialize OpenTelemetry
	shutdown, err := middleware.InitTracing("checkout-service")
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdown()

	// Provider and backend clients
	stripeGateway := stripeclient.NewClient(logger)
	paypalGateway := paypal.NewClient(logger)
	backend := commerce.NewClient(logger)
	metadataStore := cache.NewMetadataStore(rdb)
	claims := database.NewOrderClaims(db, logger)

	materializer := handlers.NewMaterializer(backend, claims, producer, logger)
	paymentIntentHandler := handlers.NewPaymentIntentHandler(stripeGateway, metadataStore, logger)
	checkoutSessionHandler := handlers.NewCheckoutSessionHandler(stripeGateway, metadataStore, logger)
	orderHandler := handlers.NewOrderHandler(stripeGateway, metadataStore, materializer, logger)
	paypalHandler := handlers.NewPayPalHandler(paypalGateway, metadataStore, materializer, logger)
	webhookHandler := handlers.NewWebhookHandler(backend, producer, os.Getenv("STRIPE_WEBHOOK_SECRET"), logger)
	statusHandler := handlers.NewStatusHandler(backend, producer, logger)
	trackingHandler := handlers.NewTrackingHandler(logger)

	// Setup REST API with Gin
	router := gin.New()
	router.Use(gin.Recovery())
	// OpenTelemetry middleware must be first to extract trace context
	router.Use(otelgin.Middleware("checkout-service"))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	// Health check endpoint
	router.GET("/health", handlers.HealthCheck)

	// Metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	// Checkout endpoints
	router.POST("/payment-intent", paymentIntentHandler.CreatePaymentIntent)
	router.POST("/checkout-session", checkoutSessionHandler.CreateCheckoutSession)
	router.GET("/checkout-session", checkoutSessionHandler.GetCheckoutSession)
	router.POST("/create-order", orderHandler.CreateOrder)
	router.POST("/create-pending-order", orderHandler.CreatePendingOrder)
	router.POST("/create-paypal-session", paypalHandler.CreatePayPalSession)
	router.POST("/process-paypal-payment", paypalHandler.ProcessPayPalPayment)
	router.POST("/webhooks", webhookHandler.HandleWebhook)
	router.GET("/track-order", trackingHandler.TrackOrder)

	// Operator endpoints
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	router.POST("/update-order-status", middleware.AuthRequired(jwtSecret, logger), statusHandler.UpdateOrderStatus)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8084"
	}

	// Start REST server
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start REST server", zap.Error(err))
		}
	}()

	logger.Info("Checkout Service started on :" + port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
