package repositories

import (
	"context"

	"marketplace/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create inserts the order header only; lines go through CreateLines.
	Create(ctx context.Context, order *models.Order) error
	CreateLines(ctx context.Context, lines []models.OrderLine) error
	// FindByID returns the order with its lines or apperrors.ErrNotFound.
	FindByID(ctx context.Context, id string) (*models.Order, error)
	// FindForUpdate returns the order header and locks its row until the transaction ends.
	FindForUpdate(ctx context.Context, id string) (*models.Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Order, error)
	// UpdateStatusIf moves the order from one status to another and reports whether
	// the row was still in the expected status.
	UpdateStatusIf(ctx context.Context, id string, from, to models.OrderStatus) (bool, error)
}
