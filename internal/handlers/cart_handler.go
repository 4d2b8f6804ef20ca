package handlers

import (
	"marketplace/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// addCartItemRequest is the body of POST /cart/items.
type addCartItemRequest struct {
	ServiceID string           `json:"service_id" validate:"required,uuid"`
	PackageID *string          `json:"package_id" validate:"omitempty,uuid"`
	AddonID   *string          `json:"addon_id" validate:"omitempty,uuid"`
	Quantity  int              `json:"quantity" validate:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CartHandler handles HTTP requests for the caller's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the cart routes. router must already require authentication.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
}

// HandleGetCart returns the caller's cart with display totals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	caller, ok, err := currentCaller(c)
	if !ok {
		return err
	}

	cart, err := h.service.GetCart(c.UserContext(), caller.UserID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(cart)
}

// HandleAddItem adds a selection to the caller's cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	caller, ok, err := currentCaller(c)
	if !ok {
		return err
	}

	var req addCartItemRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}

	line, err := h.service.AddItem(c.UserContext(), caller.UserID, services.AddItemInput{
		ServiceID: req.ServiceID,
		PackageID: req.PackageID,
		AddonID:   req.AddonID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(line)
}

// HandleRemoveItem deletes a line from the caller's cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	caller, ok, err := currentCaller(c)
	if !ok {
		return err
	}

	if err := h.service.RemoveItem(c.UserContext(), caller.UserID, c.Params("id")); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": "Item removed from cart"})
}
