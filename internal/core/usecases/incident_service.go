package usecases

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
	"github.com/AdelSuarez/geo-api-v2/internal/core/ports"
)

// IncidentService manages manually reported transit disruptions.
type IncidentService struct {
	incidents ports.IncidentRepository
	events    ports.EventPublisher
	log       *slog.Logger
}

// NewIncidentService creates a new IncidentService. events may be nil.
func NewIncidentService(incidents ports.IncidentRepository, events ports.EventPublisher, log *slog.Logger) *IncidentService {
	return &IncidentService{incidents: incidents, events: events, log: log}
}

// Create validates and stores a new incident, then announces it
// best-effort.
func (s *IncidentService) Create(ctx context.Context, inc *domain.Incident) (*domain.Incident, error) {
	v := &domain.ValidationError{}
	if strings.TrimSpace(inc.Type) == "" {
		v.Add("type", "is required")
	}
	if strings.TrimSpace(inc.Line) == "" {
		v.Add("line", "is required")
	}
	if strings.TrimSpace(inc.Description) == "" {
		v.Add("description", "is required")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	inc.CreatedAt = time.Now().UTC()
	created, err := s.incidents.Create(ctx, inc)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishIncidentCreated(ctx, created); err != nil {
			s.log.Warn("incident event dropped", "line", created.Line, "error", err)
		}
	}
	return created, nil
}

// ListByLine returns incidents for one line, or all when line is empty.
func (s *IncidentService) ListByLine(ctx context.Context, line string) ([]domain.Incident, error) {
	return s.incidents.ListByLine(ctx, strings.TrimSpace(line))
}

// Update patches an incident's mutable fields.
func (s *IncidentService) Update(ctx context.Context, id string, patch map[string]any) (*domain.Incident, error) {
	allowed := map[string]bool{"type": true, "line": true, "description": true, "stop_id": true}
	filtered := make(map[string]any, len(patch))
	for k, value := range patch {
		if allowed[k] {
			filtered[k] = value
		}
	}
	if len(filtered) == 0 {
		v := &domain.ValidationError{}
		return nil, v.Add("body", "no updatable fields provided")
	}
	return s.incidents.Update(ctx, id, filtered)
}

// Delete removes an incident.
func (s *IncidentService) Delete(ctx context.Context, id string) (*domain.Incident, error) {
	return s.incidents.Delete(ctx, id)
}
