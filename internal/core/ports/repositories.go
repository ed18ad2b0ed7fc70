package ports

import (
	"context"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
)

// CityRepository persists cached gazetteer lookups.
type CityRepository interface {
	// FindByKey matches key case-insensitively against both the original
	// search term and the normalized place name. Returns domain.ErrNotFound
	// on no match.
	FindByKey(ctx context.Context, key string) (*domain.City, error)
	Insert(ctx context.Context, city *domain.City) error
	ListAll(ctx context.Context) ([]domain.City, error)
	// DeleteByCityID removes a record by its upstream place id (not the
	// store's internal id) and returns what was deleted.
	DeleteByCityID(ctx context.Context, id string) (*domain.City, error)
	UpdateByCityID(ctx context.Context, id string, patch map[string]any) (*domain.City, error)
}

// PopulationRepository persists cached demographic aggregates.
type PopulationRepository interface {
	// FindByKey matches key case-insensitively against the country id, the
	// original search term and the ISO3 code.
	FindByKey(ctx context.Context, key string) (*domain.Population, error)
	Insert(ctx context.Context, p *domain.Population) error
	ListAll(ctx context.Context) ([]domain.Population, error)
	DeleteByCountryID(ctx context.Context, id string) (*domain.Population, error)
}

// ReportRepository persists citizen reports.
type ReportRepository interface {
	Create(ctx context.Context, r *domain.Report) (*domain.Report, error)
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	// FindNearby runs a radius-bounded proximity query around the point,
	// capped to limit results, optionally filtered by category.
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, category string, limit int) ([]domain.Report, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Report, error)
	Update(ctx context.Context, id string, patch map[string]any) (*domain.Report, error)
	Delete(ctx context.Context, id string) (*domain.Report, error)
}

// IncidentRepository persists transit incidents.
type IncidentRepository interface {
	Create(ctx context.Context, inc *domain.Incident) (*domain.Incident, error)
	ListByLine(ctx context.Context, line string) ([]domain.Incident, error)
	Update(ctx context.Context, id string, patch map[string]any) (*domain.Incident, error)
	Delete(ctx context.Context, id string) (*domain.Incident, error)
}
