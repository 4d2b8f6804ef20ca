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

const moneyScale = 2

// UnitPrice applies the pricing rule: a package price plus the addon price when both are
// selected, the addon price alone without a package, otherwise the service base price.
// A service without a base price costs zero.
func UnitPrice(svc *models.Service, pkg *models.ServicePackage, addon *models.ServiceAddon) decimal.Decimal {
	switch {
	case pkg != nil && addon != nil:
		return pkg.Price.Add(addon.Price)
	case pkg != nil:
		return pkg.Price
	case addon != nil:
		return addon.Price
	case svc != nil && svc.BasePrice != nil:
		return *svc.BasePrice
	default:
		return decimal.Zero
	}
}

// PricedLine is a catalog selection with its resolved prices.
type PricedLine struct {
	Service   *models.Service
	Package   *models.ServicePackage
	Addon     *models.ServiceAddon
	Quantity  int
	UnitPrice decimal.Decimal
	Price     decimal.Decimal // UnitPrice x Quantity
}

// PricingResolver prices catalog selections against a catalog repository.
type PricingResolver struct{}

// NewPricingResolver creates a new PricingResolver.
func NewPricingResolver() *PricingResolver {
	return &PricingResolver{}
}

// Resolve looks up every entry of sel and prices quantity units of it. A missing entry,
// or a package or addon of another service, yields apperrors.ErrCatalogReference.
func (p *PricingResolver) Resolve(ctx context.Context, catalog repositories.CatalogRepository, sel models.Selection, quantity int) (*PricedLine, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("price service %s: %w", sel.ServiceID, apperrors.ErrInvalidQuantity)
	}

	svc, err := catalog.GetService(ctx, sel.ServiceID)
	if err != nil {
		return nil, catalogError("service", sel.ServiceID, err)
	}

	line := &PricedLine{Service: svc, Quantity: quantity}
	if sel.PackageID != nil {
		pkg, err := catalog.GetPackage(ctx, *sel.PackageID)
		if err != nil {
			return nil, catalogError("package", *sel.PackageID, err)
		}
		if pkg.ServiceID != svc.ID {
			return nil, fmt.Errorf("package %s does not belong to service %s: %w", pkg.ID, svc.ID, apperrors.ErrCatalogReference)
		}
		line.Package = pkg
	}
	if sel.AddonID != nil {
		addon, err := catalog.GetAddon(ctx, *sel.AddonID)
		if err != nil {
			return nil, catalogError("addon", *sel.AddonID, err)
		}
		if addon.ServiceID != svc.ID {
			return nil, fmt.Errorf("addon %s does not belong to service %s: %w", addon.ID, svc.ID, apperrors.ErrCatalogReference)
		}
		line.Addon = addon
	}

	line.UnitPrice = UnitPrice(line.Service, line.Package, line.Addon).Round(moneyScale)
	line.Price = line.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(moneyScale)
	return line, nil
}

func catalogError(entity, id string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", entity, id, apperrors.ErrCatalogReference)
	}
	return fmt.Errorf("failed to resolve %s %s: %w", entity, id, err)
}
