package ports

import (
	"context"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
)

// CacheService provides a short-TTL hot cache in front of the
// persistent store. Implementations must be safe for concurrent use;
// callers treat any error as a miss.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes domain events to a message broker.
// Publishing is best-effort; failures never affect the request path.
type EventPublisher interface {
	PublishReportCreated(ctx context.Context, r *domain.Report) error
	PublishIncidentCreated(ctx context.Context, inc *domain.Incident) error
}
