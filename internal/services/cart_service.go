package services

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/apperrors"
	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartView is a cart with display prices computed from the stored unit price hints.
type CartView struct {
	Cart  *models.Cart    `json:"cart"`
	Lines []CartLineView  `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// CartLineView is a cart line with its display subtotal.
type CartLineView struct {
	models.CartLine
	Subtotal decimal.Decimal `json:"subtotal"`
}

// AddItemInput describes a selection to add to the cart. A nil UnitPrice takes the
// price resolved from the catalog.
type AddItemInput struct {
	ServiceID string
	PackageID *string
	AddonID   *string
	Quantity  int
	UnitPrice *decimal.Decimal
}

// CartService handles business logic related to carts.
type CartService struct {
	carts    repositories.CartRepository
	catalog  repositories.CatalogRepository
	resolver *PricingResolver
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, catalog repositories.CatalogRepository, resolver *PricingResolver) *CartService {
	return &CartService{
		carts:    carts,
		catalog:  catalog,
		resolver: resolver,
	}
}

// GetCart returns the owner's cart, creating it on first access.
func (s *CartService) GetCart(ctx context.Context, ownerID string) (*CartView, error) {
	cart, err := s.carts.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	lines, err := s.carts.ListLines(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	view := &CartView{Cart: cart, Lines: make([]CartLineView, 0, len(lines)), Total: decimal.Zero}
	for _, l := range lines {
		subtotal := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(moneyScale)
		view.Lines = append(view.Lines, CartLineView{CartLine: l, Subtotal: subtotal})
		view.Total = view.Total.Add(subtotal)
	}
	return view, nil
}

// AddItem adds a selection to the owner's cart, merging it with an existing line of the
// same service, package and addon.
func (s *CartService) AddItem(ctx context.Context, ownerID string, in AddItemInput) (*models.CartLine, error) {
	if in.Quantity < 1 {
		return nil, fmt.Errorf("add item: %w", apperrors.ErrInvalidQuantity)
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("add item: %w", apperrors.New(apperrors.KindValidation, "unit price must not be negative"))
	}

	sel := models.Selection{ServiceID: in.ServiceID, PackageID: in.PackageID, AddonID: in.AddonID}
	priced, err := s.resolver.Resolve(ctx, s.catalog, sel, in.Quantity)
	if err != nil {
		if errors.Is(err, apperrors.ErrCatalogReference) {
			// Unknown catalog entries are bad input when adding to the cart.
			return nil, fmt.Errorf("add item: %w", apperrors.New(apperrors.KindValidation, err.Error()))
		}
		return nil, fmt.Errorf("add item: %w", err)
	}

	unitPrice := priced.UnitPrice
	if in.UnitPrice != nil {
		unitPrice = in.UnitPrice.Round(moneyScale)
	}

	cart, err := s.carts.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}

	line, err := s.carts.AddLine(ctx, cart.ID, models.CartLine{
		ServiceID: in.ServiceID,
		PackageID: in.PackageID,
		AddonID:   in.AddonID,
		Quantity:  in.Quantity,
		UnitPrice: unitPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return line, nil
}

// RemoveItem deletes a line from the owner's cart.
func (s *CartService) RemoveItem(ctx context.Context, ownerID, lineID string) error {
	if err := s.carts.RemoveLine(ctx, ownerID, lineID); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}
