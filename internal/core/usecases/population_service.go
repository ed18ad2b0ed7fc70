package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
	"github.com/AdelSuarez/geo-api-v2/internal/core/ports"
	"github.com/AdelSuarez/geo-api-v2/internal/pkg/metrics"
)

// PopulationService handles demographic lookups with the read-through
// cache, mirroring CityService.
type PopulationService struct {
	populations ports.PopulationRepository
	upstream    ports.PopulationProvider
	cache       ports.CacheService
	log         *slog.Logger
}

// NewPopulationService creates a new PopulationService. cache may be nil.
func NewPopulationService(populations ports.PopulationRepository, upstream ports.PopulationProvider, cache ports.CacheService, log *slog.Logger) *PopulationService {
	return &PopulationService{populations: populations, upstream: upstream, cache: cache, log: log}
}

// Lookup resolves a country's demographic aggregate.
func (s *PopulationService) Lookup(ctx context.Context, countryCode string) (*domain.Population, error) {
	countryCode = strings.TrimSpace(countryCode)
	if countryCode == "" {
		v := &domain.ValidationError{}
		return nil, v.Add("countryCode", "is required")
	}

	cacheKey := "population:" + strings.ToLower(countryCode)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var p domain.Population
			if err := json.Unmarshal(data, &p); err == nil {
				metrics.CacheHits.WithLabelValues("valkey_population").Inc()
				return &p, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("valkey_population").Inc()
	}

	p, err := s.populations.FindByKey(ctx, countryCode)
	if err == nil {
		metrics.CacheHits.WithLabelValues("mongo_population").Inc()
		s.setHotCache(ctx, cacheKey, p)
		return p, nil
	}
	if err != domain.ErrNotFound {
		s.log.Warn("population store read failed", "country", countryCode, "error", err)
	}
	metrics.CacheMisses.WithLabelValues("mongo_population").Inc()

	p, err = s.upstream.Lookup(ctx, countryCode)
	if err != nil {
		return nil, err
	}

	s.setHotCache(ctx, cacheKey, p)
	go s.writeBack(p)

	return p, nil
}

func (s *PopulationService) setHotCache(ctx context.Context, key string, p *domain.Population) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(p); err == nil {
		_ = s.cache.Set(ctx, key, data, hotCacheTTLSeconds)
	}
}

func (s *PopulationService) writeBack(p *domain.Population) {
	ctx, cancel := context.WithTimeout(context.Background(), writeBackTimeout)
	defer cancel()

	if err := s.populations.Insert(ctx, p); err != nil {
		metrics.WriteBackFailures.WithLabelValues("mongo_population").Inc()
		s.log.Warn("population write-back dropped", "country", p.CountryISO3Code, "error", err)
	}
}

// History returns every cached aggregate, newest first.
func (s *PopulationService) History(ctx context.Context) ([]domain.Population, error) {
	return s.populations.ListAll(ctx)
}

// Delete removes a cached aggregate by its upstream country id.
func (s *PopulationService) Delete(ctx context.Context, id string) (*domain.Population, error) {
	p, err := s.populations.DeleteByCountryID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "population:"+strings.ToLower(strings.TrimSpace(p.SearchName)))
	}
	return p, nil
}
