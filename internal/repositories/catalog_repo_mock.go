package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"marketplace/internal/apperrors"
	"marketplace/internal/models"

	"github.com/google/uuid"
)

// MockCatalogRepository is an in-memory implementation of CatalogRepository.
type MockCatalogRepository struct {
	services map[string]models.Service
	packages map[string]models.ServicePackage
	addons   map[string]models.ServiceAddon
	mu       sync.RWMutex
}

// NewMockCatalogRepository creates a new instance of MockCatalogRepository.
func NewMockCatalogRepository() *MockCatalogRepository {
	return &MockCatalogRepository{
		services: make(map[string]models.Service),
		packages: make(map[string]models.ServicePackage),
		addons:   make(map[string]models.ServiceAddon),
	}
}

// PutService stores or replaces a service, assigning an ID when empty.
func (r *MockCatalogRepository) PutService(s models.Service) models.Service {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	r.services[s.ID] = s
	return s
}

// PutPackage stores or replaces a package, assigning an ID when empty.
func (r *MockCatalogRepository) PutPackage(p models.ServicePackage) models.ServicePackage {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	r.packages[p.ID] = p
	return p
}

// PutAddon stores or replaces an addon, assigning an ID when empty.
func (r *MockCatalogRepository) PutAddon(a models.ServiceAddon) models.ServiceAddon {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	r.addons[a.ID] = a
	return a
}

// ListServices returns all services ordered by name.
func (r *MockCatalogRepository) ListServices(_ context.Context) ([]models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Service, 0, len(r.services))
	for _, s := range r.services {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name == list[j].Name {
			return list[i].ID < list[j].ID
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

// GetService returns a service by its ID.
func (r *MockCatalogRepository) GetService(_ context.Context, id string) (*models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.services[id]
	if !ok {
		return nil, fmt.Errorf("service %s: %w", id, apperrors.ErrNotFound)
	}
	return &s, nil
}

// GetPackage returns a package by its ID.
func (r *MockCatalogRepository) GetPackage(_ context.Context, id string) (*models.ServicePackage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.packages[id]
	if !ok {
		return nil, fmt.Errorf("package %s: %w", id, apperrors.ErrNotFound)
	}
	return &p, nil
}

// GetAddon returns an addon by its ID.
func (r *MockCatalogRepository) GetAddon(_ context.Context, id string) (*models.ServiceAddon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.addons[id]
	if !ok {
		return nil, fmt.Errorf("addon %s: %w", id, apperrors.ErrNotFound)
	}
	return &a, nil
}

// ListPackages returns the packages of a service, cheapest first.
func (r *MockCatalogRepository) ListPackages(_ context.Context, serviceID string) ([]models.ServicePackage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.ServicePackage
	for _, p := range r.packages {
		if p.ServiceID == serviceID {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Price.LessThan(list[j].Price) })
	return list, nil
}

// ListAddons returns the addons of a service, cheapest first.
func (r *MockCatalogRepository) ListAddons(_ context.Context, serviceID string) ([]models.ServiceAddon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.ServiceAddon
	for _, a := range r.addons {
		if a.ServiceID == serviceID {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Price.LessThan(list[j].Price) })
	return list, nil
}
