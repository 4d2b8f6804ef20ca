package services

import (
	"context"
	"fmt"

	"marketplace/internal/models"
	"marketplace/internal/repositories"
)

// CatalogService handles read access to the service catalog.
type CatalogService struct {
	repo repositories.CatalogRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.CatalogRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

// ListServices retrieves all services.
func (s *CatalogService) ListServices(ctx context.Context) ([]models.Service, error) {
	return s.repo.ListServices(ctx)
}

// ListPackages retrieves the packages of an existing service.
func (s *CatalogService) ListPackages(ctx context.Context, serviceID string) ([]models.ServicePackage, error) {
	if _, err := s.repo.GetService(ctx, serviceID); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return s.repo.ListPackages(ctx, serviceID)
}

// ListAddons retrieves the addons of an existing service.
func (s *CatalogService) ListAddons(ctx context.Context, serviceID string) ([]models.ServiceAddon, error) {
	if _, err := s.repo.GetService(ctx, serviceID); err != nil {
		return nil, fmt.Errorf("list addons: %w", err)
	}
	return s.repo.ListAddons(ctx, serviceID)
}
