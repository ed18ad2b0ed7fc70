package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
	"github.com/AdelSuarez/geo-api-v2/internal/core/ports"
	"github.com/AdelSuarez/geo-api-v2/internal/pkg/metrics"
)

// writeBackTimeout bounds the detached cache write-back; the request
// context is gone by the time it runs.
const writeBackTimeout = 10 * time.Second

const hotCacheTTLSeconds = 300

// CityService handles gazetteer lookups with the read-through cache.
type CityService struct {
	cities   ports.CityRepository
	upstream ports.CityProvider
	cache    ports.CacheService
	log      *slog.Logger
}

// NewCityService creates a new CityService. cache may be nil.
func NewCityService(cities ports.CityRepository, upstream ports.CityProvider, cache ports.CacheService, log *slog.Logger) *CityService {
	return &CityService{cities: cities, upstream: upstream, cache: cache, log: log}
}

// Lookup resolves a place: hot cache, then the persistent store, then
// the upstream gazetteer. Fresh upstream results are written back
// asynchronously so the response never waits on persistence.
func (s *CityService) Lookup(ctx context.Context, query string) (*domain.City, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		v := &domain.ValidationError{}
		return nil, v.Add("city", "is required")
	}

	cacheKey := "city:" + strings.ToLower(query)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var city domain.City
			if err := json.Unmarshal(data, &city); err == nil {
				metrics.CacheHits.WithLabelValues("valkey_city").Inc()
				return &city, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("valkey_city").Inc()
	}

	city, err := s.cities.FindByKey(ctx, query)
	if err == nil {
		metrics.CacheHits.WithLabelValues("mongo_city").Inc()
		s.setHotCache(ctx, cacheKey, city)
		return city, nil
	}
	if err != domain.ErrNotFound {
		// A broken store is a miss, not a failure.
		s.log.Warn("city store read failed", "query", query, "error", err)
	}
	metrics.CacheMisses.WithLabelValues("mongo_city").Inc()

	city, err = s.upstream.Lookup(ctx, query)
	if err != nil {
		return nil, err
	}

	s.setHotCache(ctx, cacheKey, city)
	go s.writeBack(city)

	return city, nil
}

func (s *CityService) setHotCache(ctx context.Context, key string, city *domain.City) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(city); err == nil {
		_ = s.cache.Set(ctx, key, data, hotCacheTTLSeconds)
	}
}

// writeBack persists a fresh upstream result. Runs detached from the
// request; duplicate-key rejections from concurrent lookups land here
// and are dropped.
func (s *CityService) writeBack(city *domain.City) {
	ctx, cancel := context.WithTimeout(context.Background(), writeBackTimeout)
	defer cancel()

	if err := s.cities.Insert(ctx, city); err != nil {
		metrics.WriteBackFailures.WithLabelValues("mongo_city").Inc()
		s.log.Warn("city write-back dropped", "name", city.Name, "error", err)
	}
}

// History returns every cached city, newest first.
func (s *CityService) History(ctx context.Context) ([]domain.City, error) {
	return s.cities.ListAll(ctx)
}

// Update patches a cached city by its upstream place id and invalidates
// the hot cache entry for its search term.
func (s *CityService) Update(ctx context.Context, id string, patch map[string]any) (*domain.City, error) {
	city, err := s.cities.UpdateByCityID(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, city)
	return city, nil
}

// Delete removes a cached city by its upstream place id.
func (s *CityService) Delete(ctx context.Context, id string) (*domain.City, error) {
	city, err := s.cities.DeleteByCityID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, city)
	return city, nil
}

func (s *CityService) invalidate(ctx context.Context, city *domain.City) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, "city:"+strings.ToLower(strings.TrimSpace(city.SearchName)))
}
