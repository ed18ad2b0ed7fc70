package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
	"github.com/AdelSuarez/geo-api-v2/internal/core/ports"
	"github.com/AdelSuarez/geo-api-v2/internal/pkg/geospatial"
	"github.com/AdelSuarez/geo-api-v2/internal/pkg/metrics"
)

const (
	// defaultNearbyRadiusMeters is applied when the client omits radius.
	defaultNearbyRadiusMeters = 1000
	maxNearbyResults          = 20
	recentReportsLimit        = 50

	defaultEstimatedResponse = "72 horas"
)

// ReportService manages citizen issue reports.
type ReportService struct {
	reports ports.ReportRepository
	events  ports.EventPublisher
	log     *slog.Logger
}

// NewReportService creates a new ReportService. events may be nil.
func NewReportService(reports ports.ReportRepository, events ports.EventPublisher, log *slog.Logger) *ReportService {
	return &ReportService{reports: reports, events: events, log: log}
}

// Create finalizes and stores a new report: defaults, validation,
// tracking code, bookkeeping metadata, then a best-effort event.
func (s *ReportService) Create(ctx context.Context, r *domain.Report) (*domain.Report, error) {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.UserID = strings.TrimSpace(r.UserID)
	if r.Status == "" {
		r.Status = domain.StatusPending
	}
	if r.Priority == "" {
		r.Priority = domain.PriorityMedium
	}
	if r.MediaURLs == nil {
		r.MediaURLs = []string{}
	}
	r.Location.Type = "Point"
	r.Location.Address = strings.TrimSpace(r.Location.Address)
	r.Location.City = strings.TrimSpace(r.Location.City)
	r.Location.Country = strings.TrimSpace(r.Location.Country)

	if err := r.Validate(); err != nil {
		return nil, err
	}

	r.TrackingCode = domain.NewTrackingCode()

	now := time.Now().UTC()
	r.Metadata.CreatedAt = now
	r.Metadata.UpdatedAt = now
	if r.Metadata.EstimatedResponseTime == "" {
		r.Metadata.EstimatedResponseTime = defaultEstimatedResponse
	}
	r.Metadata.SimilarReportsNearby = s.countSimilarNearby(ctx, r)

	created, err := s.reports.Create(ctx, r)
	if err != nil {
		return nil, err
	}
	metrics.ReportsCreated.WithLabelValues(created.Category).Inc()

	if s.events != nil {
		if err := s.events.PublishReportCreated(ctx, created); err != nil {
			s.log.Warn("report event dropped", "tracking_code", created.TrackingCode, "error", err)
		}
	}
	return created, nil
}

// countSimilarNearby counts same-category reports within the default
// radius. Best effort; a failed count stays at zero.
func (s *ReportService) countSimilarNearby(ctx context.Context, r *domain.Report) int {
	nearby, err := s.reports.FindNearby(ctx,
		r.Latitude(), r.Longitude(), defaultNearbyRadiusMeters, r.Category, maxNearbyResults)
	if err != nil {
		s.log.Warn("similar report count failed", "category", r.Category, "error", err)
		return 0
	}
	return len(nearby)
}

// GetByID returns one report.
func (s *ReportService) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	return s.reports.GetByID(ctx, id)
}

// Nearby returns reports around the point, nearest first, each carrying
// its distance from the query point in meters.
func (s *ReportService) Nearby(ctx context.Context, lat, lon, radiusMeters float64, category string) ([]domain.Report, error) {
	v := &domain.ValidationError{}
	if lat < -90 || lat > 90 {
		v.Add("latitude", "must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		v.Add("longitude", "must be between -180 and 180")
	}
	if category != "" && !domain.ValidCategory(category) {
		v.Add("category", "is not a valid category")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		radiusMeters = defaultNearbyRadiusMeters
	}

	reports, err := s.reports.FindNearby(ctx, lat, lon, radiusMeters, category, maxNearbyResults)
	if err != nil {
		return nil, err
	}

	for i := range reports {
		d := geospatial.Haversine(lat, lon, reports[i].Latitude(), reports[i].Longitude())
		reports[i].Distance = &d
	}
	return reports, nil
}

// History returns the most recent reports.
func (s *ReportService) History(ctx context.Context) ([]domain.Report, error) {
	return s.reports.ListRecent(ctx, recentReportsLimit)
}

// updatableReportFields maps patchable API fields onto stored paths.
// Category and location are immutable once a report exists.
var updatableReportFields = map[string]string{
	"title":       "title",
	"description": "description",
	"status":      "status",
	"priority":    "priority",
	"address":     "location.address",
	"mediaUrls":   "media_urls",
}

// Update patches a report's mutable fields. Moving a report to resolved
// stamps resolved_at.
func (s *ReportService) Update(ctx context.Context, id string, patch map[string]any) (*domain.Report, error) {
	v := &domain.ValidationError{}
	filtered := make(map[string]any, len(patch))
	for field, value := range patch {
		path, ok := updatableReportFields[field]
		if !ok {
			continue
		}
		switch field {
		case "title":
			title := strings.TrimSpace(stringValue(value))
			if len(title) < 5 || len(title) > 100 {
				v.Add("title", "must be between 5 and 100 characters")
				continue
			}
			value = title
		case "description":
			desc := strings.TrimSpace(stringValue(value))
			if len(desc) < 10 || len(desc) > 1000 {
				v.Add("description", "must be between 10 and 1000 characters")
				continue
			}
			value = desc
		case "status":
			status, _ := value.(string)
			if !domain.ValidStatus(status) {
				v.Add("status", "is not a valid status")
				continue
			}
			if status == domain.StatusResolved {
				filtered["metadata.resolved_at"] = time.Now().UTC()
			}
		case "priority":
			priority, _ := value.(string)
			if !domain.ValidPriority(priority) {
				v.Add("priority", "is not a valid priority")
				continue
			}
		case "mediaUrls":
			urls, ok := stringSlice(value)
			if !ok {
				v.Add("mediaUrls", "must be a list of URLs")
				continue
			}
			bad := false
			for _, u := range urls {
				if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
					v.Add("mediaUrls", fmt.Sprintf("%q must start with http:// or https://", u))
					bad = true
				}
			}
			if bad {
				continue
			}
			value = urls
		}
		filtered[path] = value
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if len(filtered) == 0 {
		return nil, v.Add("body", "no updatable fields provided")
	}

	return s.reports.Update(ctx, id, filtered)
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// stringSlice accepts either []string or the []any a decoded JSON body
// carries, and rejects anything else.
func stringSlice(v any) ([]string, bool) {
	switch vv := v.(type) {
	case []string:
		return vv, true
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// Delete removes a report.
func (s *ReportService) Delete(ctx context.Context, id string) (*domain.Report, error) {
	return s.reports.Delete(ctx, id)
}
