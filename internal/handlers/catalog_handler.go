package handlers

import (
	"marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CatalogHandler handles public catalog browsing.
type CatalogHandler struct {
	service *services.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	serviceRoutes := router.Group("/services")
	serviceRoutes.Get("/", h.HandleListServices)
	serviceRoutes.Get("/:id/packages", h.HandleListPackages)
	serviceRoutes.Get("/:id/addons", h.HandleListAddons)
}

// HandleListServices lists every service.
func (h *CatalogHandler) HandleListServices(c *fiber.Ctx) error {
	list, err := h.service.ListServices(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(list)
}

// HandleListPackages lists the packages of a service.
func (h *CatalogHandler) HandleListPackages(c *fiber.Ctx) error {
	list, err := h.service.ListPackages(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(list)
}

// HandleListAddons lists the addons of a service.
func (h *CatalogHandler) HandleListAddons(c *fiber.Ctx) error {
	list, err := h.service.ListAddons(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(list)
}
