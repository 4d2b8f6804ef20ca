package handlers

import (
	"marketplace/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// createIntentRequest is the body of POST /payments/create-order.
type createIntentRequest struct {
	OrderID  string            `json:"order_id" validate:"required,uuid"`
	Amount   *decimal.Decimal  `json:"amount"`
	Currency string            `json:"currency" validate:"omitempty,len=3,alpha"`
	Notes    map[string]string `json:"notes"`
}

// verifyPaymentRequest is the body of POST /payments/verify.
type verifyPaymentRequest struct {
	OrderID           string `json:"order_id" validate:"required,uuid"`
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the payment routes. router must already require authentication.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	paymentRoutes := router.Group("/payments")
	paymentRoutes.Post("/create-order", h.HandleCreateIntent)
	paymentRoutes.Post("/verify", h.HandleVerify)
	paymentRoutes.Get("/:id", h.HandleGetPayment)
}

// HandleCreateIntent opens a gateway order for one of the caller's orders.
func (h *PaymentHandler) HandleCreateIntent(c *fiber.Ctx) error {
	caller, ok, err := currentCaller(c)
	if !ok {
		return err
	}

	var req createIntentRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}

	intent, err := h.service.CreateIntent(c.UserContext(), caller, services.CreateIntentInput{
		OrderID:  req.OrderID,
		Amount:   req.Amount,
		Currency: req.Currency,
		Notes:    req.Notes,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(intent)
}

// HandleVerify reconciles a completed gateway checkout.
func (h *PaymentHandler) HandleVerify(c *fiber.Ctx) error {
	caller, ok, err := currentCaller(c)
	if !ok {
		return err
	}

	var req verifyPaymentRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}

	result, err := h.service.VerifyPayment(c.UserContext(), caller, services.VerifyInput{
		OrderID:          req.OrderID,
		GatewayOrderID:   req.RazorpayOrderID,
		GatewayPaymentID: req.RazorpayPaymentID,
		Signature:        req.RazorpaySignature,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(result)
}

// HandleGetPayment retrieves a payment of one of the caller's orders.
func (h *PaymentHandler) HandleGetPayment(c *fiber.Ctx) error {
	caller, ok, err := currentCaller(c)
	if !ok {
		return err
	}

	payment, err := h.service.GetPayment(c.UserContext(), caller.UserID, c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(payment)
}
