package repositories

import (
	"context"

	"marketplace/internal/models"
)

// PaymentRepository defines the interface for payment data access.
type PaymentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	// FindByGatewayPaymentID returns the payment or apperrors.ErrNotFound.
	FindByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*models.Payment, error)
	ListByOrder(ctx context.Context, orderID string) ([]models.Payment, error)
	// FindPaidByOrder returns the PAID payment of an order or apperrors.ErrNotFound.
	FindPaidByOrder(ctx context.Context, orderID string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
}
