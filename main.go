package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"marketplace/internal/config"
	"marketplace/internal/gateway"
	"marketplace/internal/handlers"
	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/internal/services"
	applogger "marketplace/pkg/logger"
	"marketplace/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := applogger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// --- Database ---
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	// --- RabbitMQ (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange}, logger)
		if err != nil {
			logger.Warn("rabbitmq unavailable, events disabled", zap.Error(err))
		} else {
			defer mqClient.Close()
			publisher = mqClient
			if err := mqClient.ConsumeEvents(rabbitmq.LogEvent(logger)); err != nil {
				logger.Warn("failed to start event consumer", zap.Error(err))
			}
		}
	} else {
		logger.Info("RABBITMQ_URL not set, events disabled")
	}

	app, err := newApp(cfg, db, publisher, logger)
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}

	// --- Start HTTP Server ---
	logger.Info("starting server", zap.String("port", cfg.AppPort))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		logger.Error("error during fiber shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}

// migrate creates or updates every table the API owns.
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Service{}, &models.ServicePackage{}, &models.ServiceAddon{},
		&models.Cart{}, &models.CartLine{},
		&models.Order{}, &models.OrderLine{},
		&models.Payment{},
	)
}

// newApp wires repositories, the gateway and services into the HTTP application.
func newApp(cfg config.Config, db *gorm.DB, publisher services.EventPublisher, logger *zap.Logger) (*fiber.App, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// --- Initialize Repositories ---
	cartRepo := repositories.NewGORMCartRepository(db)
	catalogRepo := repositories.NewGORMCatalogRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	paymentRepo := repositories.NewGORMPaymentRepository(db)
	txManager := repositories.NewGORMTxManager(db)

	// --- Payment gateway ---
	gatewayClient := gateway.NewRazorpayClient(gateway.Config{
		BaseURL:   cfg.GatewayBaseURL,
		KeyID:     cfg.GatewayKeyID,
		KeySecret: cfg.GatewayKeySecret,
		Timeout:   cfg.GatewayTimeout,
	}, logger)
	if cfg.GatewayKeySecret == "" {
		logger.Warn("GATEWAY_KEY_SECRET not set, payment verification will fail")
	}

	// --- Initialize Services ---
	resolver := services.NewPricingResolver()
	paymentService := services.NewPaymentService(
		orderRepo, paymentRepo, txManager,
		gatewayClient,
		gateway.NewVerifier(cfg.GatewayKeySecret),
		services.NewAmountNormalizer(cfg.MaxTransactionAmount),
		services.PaymentSettings{Currency: cfg.Currency, KeyID: cfg.GatewayKeyID},
		publisher, logger,
	)

	return handlers.NewApp(handlers.AppDeps{
		Catalog:   services.NewCatalogService(catalogRepo),
		Carts:     services.NewCartService(cartRepo, catalogRepo, resolver),
		Orders:    services.NewOrderService(orderRepo, paymentRepo, txManager, resolver, publisher, logger),
		Payments:  paymentService,
		Identity:  services.NewIdentityService(cfg.JWTSecret),
		Logger:    logger,
		Ping:      sqlDB.PingContext,
		AccessLog: true,
	}), nil
}
