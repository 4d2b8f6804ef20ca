package repositories

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/apperrors"
	"marketplace/internal/models"

	"gorm.io/gorm"
)

// GORMCatalogRepository is a GORM implementation of CatalogRepository.
type GORMCatalogRepository struct {
	db *gorm.DB
}

// NewGORMCatalogRepository creates a new instance of GORMCatalogRepository.
func NewGORMCatalogRepository(db *gorm.DB) *GORMCatalogRepository {
	return &GORMCatalogRepository{db: db}
}

// ListServices retrieves all services ordered by name.
func (r *GORMCatalogRepository) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if err := r.db.WithContext(ctx).Order("name asc, id asc").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// GetService retrieves a single service by its ID.
func (r *GORMCatalogRepository) GetService(ctx context.Context, id string) (*models.Service, error) {
	var service models.Service
	if err := r.db.WithContext(ctx).First(&service, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("service %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get service %s: %w", id, err)
	}
	return &service, nil
}

// GetPackage retrieves a single package by its ID.
func (r *GORMCatalogRepository) GetPackage(ctx context.Context, id string) (*models.ServicePackage, error) {
	var pkg models.ServicePackage
	if err := r.db.WithContext(ctx).First(&pkg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("package %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get package %s: %w", id, err)
	}
	return &pkg, nil
}

// GetAddon retrieves a single addon by its ID.
func (r *GORMCatalogRepository) GetAddon(ctx context.Context, id string) (*models.ServiceAddon, error) {
	var addon models.ServiceAddon
	if err := r.db.WithContext(ctx).First(&addon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("addon %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get addon %s: %w", id, err)
	}
	return &addon, nil
}

// ListPackages retrieves the packages of a service, cheapest first.
func (r *GORMCatalogRepository) ListPackages(ctx context.Context, serviceID string) ([]models.ServicePackage, error) {
	var pkgs []models.ServicePackage
	if err := r.db.WithContext(ctx).Where("service_id = ?", serviceID).Order("price asc, id asc").Find(&pkgs).Error; err != nil {
		return nil, fmt.Errorf("failed to list packages of service %s: %w", serviceID, err)
	}
	return pkgs, nil
}

// ListAddons retrieves the addons of a service, cheapest first.
func (r *GORMCatalogRepository) ListAddons(ctx context.Context, serviceID string) ([]models.ServiceAddon, error) {
	var addons []models.ServiceAddon
	if err := r.db.WithContext(ctx).Where("service_id = ?", serviceID).Order("price asc, id asc").Find(&addons).Error; err != nil {
		return nil, fmt.Errorf("failed to list addons of service %s: %w", serviceID, err)
	}
	return addons, nil
}
