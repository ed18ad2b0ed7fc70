package ports

import (
	"context"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
)

// CityProvider looks a place up in the upstream gazetteer.
// Returns domain.ErrNotFound when the query matches nothing; any
// upstream error envelope surfaces as *domain.UpstreamError.
type CityProvider interface {
	Lookup(ctx context.Context, query string) (*domain.City, error)
}

// PopulationProvider assembles one demographic aggregate from the
// upstream statistics API. Returns domain.ErrNotFound when the primary
// (total population) indicator has no data in the queried range.
type PopulationProvider interface {
	Lookup(ctx context.Context, countryCode string) (*domain.Population, error)
}

// TransitProvider exposes the upstream transit API.
type TransitProvider interface {
	// LineStatuses returns the current status of every line in the
	// configured modes.
	LineStatuses(ctx context.Context) ([]domain.RouteStatus, error)
	// Arrivals returns predicted arrivals at a stop, sorted ascending by
	// seconds-to-arrival. An unknown stop yields an empty list, not an error.
	Arrivals(ctx context.Context, stopID string) ([]domain.Arrival, error)
}
