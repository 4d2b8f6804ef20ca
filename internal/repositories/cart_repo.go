package repositories

import (
	"context"

	"marketplace/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetOrCreate returns the owner's cart, inserting it on first access.
	GetOrCreate(ctx context.Context, ownerID string) (*models.Cart, error)
	// FindByOwner returns the owner's cart or apperrors.ErrNotFound. With forUpdate the
	// cart row stays locked until the surrounding transaction ends.
	FindByOwner(ctx context.Context, ownerID string, forUpdate bool) (*models.Cart, error)
	// AddLine merges line into the cart by (service, package, addon): quantities add up and
	// the unit price is overwritten. It returns the stored line.
	AddLine(ctx context.Context, cartID string, line models.CartLine) (*models.CartLine, error)
	RemoveLine(ctx context.Context, ownerID, lineID string) error
	ListLines(ctx context.Context, cartID string) ([]models.CartLine, error)
	Clear(ctx context.Context, cartID string) error
}
