package repositories

import (
	"context"

	"marketplace/internal/models"
)

// CatalogRepository defines read access to services, packages and addons.
// Missing entries are reported as apperrors.ErrNotFound.
type CatalogRepository interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	GetPackage(ctx context.Context, id string) (*models.ServicePackage, error)
	GetAddon(ctx context.Context, id string) (*models.ServiceAddon, error)
	ListPackages(ctx context.Context, serviceID string) ([]models.ServicePackage, error)
	ListAddons(ctx context.Context, serviceID string) ([]models.ServiceAddon, error)
}
