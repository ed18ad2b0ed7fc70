package usecases

import (
	"context"
	"strings"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
	"github.com/AdelSuarez/geo-api-v2/internal/core/ports"
)

// TransitService exposes live transit data. Coverage is London-only, so
// every other city short-circuits before any upstream call.
type TransitService struct {
	upstream ports.TransitProvider
}

func NewTransitService(upstream ports.TransitProvider) *TransitService {
	return &TransitService{upstream: upstream}
}

// coveredCity reports whether the transit network covers the city.
// The Spanish exonym is accepted because the gazetteer side of the API
// serves Spanish-speaking clients.
func coveredCity(city string) bool {
	switch strings.ToLower(strings.TrimSpace(city)) {
	case "london", "londres":
		return true
	}
	return false
}

// Routes returns the status board for a covered city.
func (s *TransitService) Routes(ctx context.Context, city string) ([]domain.RouteStatus, error) {
	if !coveredCity(city) {
		return nil, domain.ErrNotFound
	}
	return s.upstream.LineStatuses(ctx)
}

// ETA returns predicted arrivals at a stop, soonest first.
func (s *TransitService) ETA(ctx context.Context, stopID string) ([]domain.Arrival, error) {
	stopID = strings.TrimSpace(stopID)
	if stopID == "" {
		v := &domain.ValidationError{}
		return nil, v.Add("stop_id", "is required")
	}
	return s.upstream.Arrivals(ctx, stopID)
}
