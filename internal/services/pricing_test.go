package services_test

import (
	"context"
	"testing"

	"marketplace/internal/apperrors"
	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitPrice(t *testing.T) {
	base := price("300")
	svc := &models.Service{BasePrice: &base}
	pkg := &models.ServicePackage{Price: price("1000")}
	addon := &models.ServiceAddon{Price: price("250.50")}

	assert.True(t, price("1250.50").Equal(services.UnitPrice(svc, pkg, addon)))
	assert.True(t, price("1000").Equal(services.UnitPrice(svc, pkg, nil)))
	assert.True(t, price("250.50").Equal(services.UnitPrice(svc, nil, addon)))
	assert.True(t, price("300").Equal(services.UnitPrice(svc, nil, nil)))
	assert.True(t, price("0").Equal(services.UnitPrice(&models.Service{}, nil, nil)))
}

func newMockCatalog() (*repositories.MockCatalogRepository, testCatalog) {
	repo := repositories.NewMockCatalogRepository()
	base := price("300.00")
	c := testCatalog{}
	c.Service = repo.PutService(models.Service{Name: "Satyanarayan Katha", BasePrice: &base})
	c.PlainService = repo.PutService(models.Service{Name: "Consultation"})
	c.Package = repo.PutPackage(models.ServicePackage{ServiceID: c.Service.ID, Name: "Premium", Price: price("1000.00")})
	c.Addon = repo.PutAddon(models.ServiceAddon{ServiceID: c.Service.ID, Name: "Flowers", Price: price("250.50")})
	return repo, c
}

func TestPricingResolver_Resolve(t *testing.T) {
	repo, c := newMockCatalog()
	resolver := services.NewPricingResolver()
	ctx := context.Background()

	line, err := resolver.Resolve(ctx, repo, models.Selection{ServiceID: c.Service.ID, PackageID: &c.Package.ID, AddonID: &c.Addon.ID}, 2)
	require.NoError(t, err)
	assert.Equal(t, "1250.50", line.UnitPrice.StringFixed(2))
	assert.Equal(t, "2501.00", line.Price.StringFixed(2))

	line, err = resolver.Resolve(ctx, repo, models.Selection{ServiceID: c.Service.ID}, 3)
	require.NoError(t, err)
	assert.Equal(t, "900.00", line.Price.StringFixed(2))

	line, err = resolver.Resolve(ctx, repo, models.Selection{ServiceID: c.PlainService.ID}, 1)
	require.NoError(t, err)
	assert.True(t, line.Price.IsZero())
}

func TestPricingResolver_DanglingReferences(t *testing.T) {
	repo, c := newMockCatalog()
	resolver := services.NewPricingResolver()
	ctx := context.Background()

	_, err := resolver.Resolve(ctx, repo, models.Selection{ServiceID: "missing"}, 1)
	assert.ErrorIs(t, err, apperrors.ErrCatalogReference)

	_, err = resolver.Resolve(ctx, repo, models.Selection{ServiceID: c.Service.ID, PackageID: strPtr("missing")}, 1)
	assert.ErrorIs(t, err, apperrors.ErrCatalogReference)

	_, err = resolver.Resolve(ctx, repo, models.Selection{ServiceID: c.Service.ID, AddonID: strPtr("missing")}, 1)
	assert.ErrorIs(t, err, apperrors.ErrCatalogReference)

	// Package of another service
	_, err = resolver.Resolve(ctx, repo, models.Selection{ServiceID: c.PlainService.ID, PackageID: &c.Package.ID}, 1)
	assert.ErrorIs(t, err, apperrors.ErrCatalogReference)

	_, err = resolver.Resolve(ctx, repo, models.Selection{ServiceID: c.Service.ID}, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)
}

func TestCatalogService_Lists(t *testing.T) {
	repo, c := newMockCatalog()
	svc := services.NewCatalogService(repo)
	ctx := context.Background()

	list, err := svc.ListServices(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "Consultation", list[0].Name)

	pkgs, err := svc.ListPackages(ctx, c.Service.ID)
	require.NoError(t, err)
	assert.Len(t, pkgs, 1)

	addons, err := svc.ListAddons(ctx, c.Service.ID)
	require.NoError(t, err)
	assert.Len(t, addons, 1)

	_, err = svc.ListPackages(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
