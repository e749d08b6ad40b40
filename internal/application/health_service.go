package application

import (
	"context"

	"github.com/alorle/iptv-zapper/internal/port/driven"
)

// CatalogStatus reports whether a playlist is loaded.
type CatalogStatus interface {
	Loaded(ctx context.Context) (bool, error)
}

// HealthService orchestrates health checks for the application and its dependencies.
type HealthService struct {
	favorites driven.FavoriteRepository
	catalog   CatalogStatus
}

// NewHealthService creates a new health check service.
func NewHealthService(favorites driven.FavoriteRepository, catalog CatalogStatus) *HealthService {
	return &HealthService{
		favorites: favorites,
		catalog:   catalog,
	}
}

// ComponentHealth represents the health status of a single component.
type ComponentHealth struct {
	Status string // "ok" or "error"
	Error  string // empty if status is "ok", otherwise contains error message
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status    string          // "ok" if all components are healthy, "degraded" otherwise
	Favorites ComponentHealth // favorites store health
	Catalog   ComponentHealth // playlist loaded
}

// Check performs health checks on all dependencies.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Favorites: ComponentHealth{Status: "ok"},
		Catalog:   ComponentHealth{Status: "ok"},
	}

	if err := s.favorites.Ping(ctx); err != nil {
		status.Favorites = ComponentHealth{Status: "error", Error: err.Error()}
		status.Status = "degraded"
	}

	loaded, err := s.catalog.Loaded(ctx)
	switch {
	case err != nil:
		status.Catalog = ComponentHealth{Status: "error", Error: err.Error()}
		status.Status = "degraded"
	case !loaded:
		status.Catalog = ComponentHealth{Status: "error", Error: "playlist not loaded"}
		status.Status = "degraded"
	}

	return status
}
