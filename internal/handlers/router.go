package handlers

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/apperrors"
	"marketplace/internal/middleware"
	"marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// AppDeps are the collaborators of the HTTP surface.
type AppDeps struct {
	Catalog  *services.CatalogService
	Carts    *services.CartService
	Orders   *services.OrderService
	Payments *services.PaymentService
	Identity *services.IdentityService
	Logger   *zap.Logger

	// Ping reports store health on /health. Optional.
	Ping func(ctx context.Context) error
	// AccessLog enables Fiber's request logger.
	AccessLog bool
}

// NewApp builds the Fiber application with every route registered under /api/v1.
func NewApp(d AppDeps) *fiber.App {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:      "marketplace",
		ErrorHandler: errorHandler(log),
	})

	app.Use(recover.New())
	if d.AccessLog {
		app.Use(fiberlogger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "healthy", "time": time.Now().Format(time.RFC3339)}
		if d.Ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := d.Ping(ctx); err != nil {
				log.Warn("health check failed", zap.Error(err))
				status["status"] = "unhealthy"
				return c.Status(fiber.StatusServiceUnavailable).JSON(status)
			}
		}
		return c.JSON(status)
	})

	apiV1 := app.Group("/api/v1")

	// Public routes
	NewCatalogHandler(d.Catalog, log).RegisterRoutes(apiV1)

	// Protected routes (require JWT authentication)
	protectedRoutes := apiV1.Group("", middleware.AuthRequired(d.Identity, log))
	NewCartHandler(d.Carts, log).RegisterRoutes(protectedRoutes)
	NewOrderHandler(d.Orders, log).RegisterRoutes(protectedRoutes)
	NewPaymentHandler(d.Payments, log).RegisterRoutes(protectedRoutes)

	return app
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			kind := apperrors.KindInternal
			switch fe.Code {
			case fiber.StatusNotFound:
				kind = apperrors.KindNotFound
			case fiber.StatusBadRequest, fiber.StatusMethodNotAllowed, fiber.StatusRequestEntityTooLarge:
				kind = apperrors.KindValidation
			}
			return c.Status(fe.Code).JSON(fiber.Map{"error": kind, "message": fe.Message})
		}
		return writeError(c, log, err)
	}
}
