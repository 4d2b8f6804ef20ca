package handlers

import (
	"marketplace/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// createOrderRequest is the optional body of POST /orders.
type createOrderRequest struct {
	ProviderID *string `json:"provider_id" validate:"omitempty,uuid"`
	AddressID  *string `json:"address_id" validate:"omitempty,uuid"`
}

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the order routes. router must already require authentication.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Get("/:id/payments", h.HandleGetOrderPayments)
	orderRoutes.Post("/", h.HandleCreateOrder)
}

// HandleGetOrders lists the caller's orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	caller, ok, err := currentCaller(c)
	if !ok {
		return err
	}

	orders, err := h.service.ListOrders(c.UserContext(), caller.UserID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves one of the caller's orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	caller, ok, err := currentCaller(c)
	if !ok {
		return err
	}

	order, err := h.service.GetOrder(c.UserContext(), caller.UserID, c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(order)
}

// HandleGetOrderPayments lists the payments recorded for one of the caller's orders.
func (h *OrderHandler) HandleGetOrderPayments(c *fiber.Ctx) error {
	caller, ok, err := currentCaller(c)
	if !ok {
		return err
	}

	payments, err := h.service.ListPayments(c.UserContext(), caller.UserID, c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(payments)
}

// HandleCreateOrder checks out the caller's cart.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	caller, ok, err := currentCaller(c)
	if !ok {
		return err
	}

	var req createOrderRequest
	if len(c.Body()) > 0 {
		if ok, err := bindJSON(c, h.validate, &req); !ok {
			return err
		}
	}

	order, err := h.service.CreateOrder(c.UserContext(), caller.UserID, services.CreateOrderInput{
		ProviderID: req.ProviderID,
		AddressID:  req.AddressID,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}
