package domain

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// Report categories accepted from citizens.
const (
	CategoryPothole         = "pothole"
	CategoryStreetLight     = "street_light"
	CategoryGarbage         = "garbage"
	CategoryWaterLeak       = "water_leak"
	CategoryTrafficSignal   = "traffic_signal"
	CategoryPublicTransport = "public_transport"
	CategoryParks           = "parks"
	CategorySafety          = "safety"
	CategoryOther           = "other"
)

// Report lifecycle states.
const (
	StatusPending     = "pending"
	StatusUnderReview = "under_review"
	StatusInProgress  = "in_progress"
	StatusResolved    = "resolved"
	StatusRejected    = "rejected"
)

// Report priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

var (
	reportCategories = map[string]bool{
		CategoryPothole: true, CategoryStreetLight: true, CategoryGarbage: true,
		CategoryWaterLeak: true, CategoryTrafficSignal: true,
		CategoryPublicTransport: true, CategoryParks: true,
		CategorySafety: true, CategoryOther: true,
	}
	reportStatuses = map[string]bool{
		StatusPending: true, StatusUnderReview: true, StatusInProgress: true,
		StatusResolved: true, StatusRejected: true,
	}
	reportPriorities = map[string]bool{
		PriorityLow: true, PriorityMedium: true, PriorityHigh: true, PriorityCritical: true,
	}
)

// ValidCategory reports whether c is an accepted report category.
func ValidCategory(c string) bool { return reportCategories[c] }

// ValidStatus reports whether s is an accepted report status.
func ValidStatus(s string) bool { return reportStatuses[s] }

// ValidPriority reports whether p is an accepted report priority.
func ValidPriority(p string) bool { return reportPriorities[p] }

// ReportLocation is a GeoJSON Point plus human-readable address parts.
// Coordinates are always [longitude, latitude], GeoJSON order, even
// though the public API accepts latitude and longitude separately.
type ReportLocation struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	City        string    `bson:"city" json:"city"`
	Country     string    `bson:"country" json:"country"`
}

// ReportMetadata carries bookkeeping for a report.
type ReportMetadata struct {
	CreatedAt             time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt             time.Time  `bson:"updated_at" json:"updatedAt"`
	ResolvedAt            *time.Time `bson:"resolved_at,omitempty" json:"resolvedAt,omitempty"`
	IPAddress             string     `bson:"ip_address,omitempty" json:"ipAddress,omitempty"`
	UserAgent             string     `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	EstimatedResponseTime string     `bson:"estimated_response_time" json:"estimatedResponseTime"`
	SimilarReportsNearby  int        `bson:"similar_reports_nearby" json:"similarReportsNearby"`
}

// Report is a citizen-submitted issue report.
type Report struct {
	ID           string         `bson:"-" json:"id"`
	Title        string         `bson:"title" json:"title"`
	Description  string         `bson:"description" json:"description"`
	Category     string         `bson:"category" json:"category"`
	Location     ReportLocation `bson:"location" json:"location"`
	Status       string         `bson:"status" json:"status"`
	Priority     string         `bson:"priority" json:"priority"`
	UserID       string         `bson:"user_id,omitempty" json:"userId,omitempty"`
	MediaURLs    []string       `bson:"media_urls" json:"mediaUrls"`
	TrackingCode string         `bson:"tracking_code" json:"trackingCode"`
	Metadata     ReportMetadata `bson:"metadata" json:"metadata"`

	// Distance from the query point in meters; only set on nearby results.
	Distance *float64 `bson:"-" json:"distance,omitempty"`
}

// Latitude returns the point latitude, honoring GeoJSON coordinate order.
func (r *Report) Latitude() float64 {
	if len(r.Location.Coordinates) == 2 {
		return r.Location.Coordinates[1]
	}
	return 0
}

// Longitude returns the point longitude.
func (r *Report) Longitude() float64 {
	if len(r.Location.Coordinates) == 2 {
		return r.Location.Coordinates[0]
	}
	return 0
}

// Validate checks every invariant of a fully-assembled report and
// collects all violations into one ValidationError.
func (r *Report) Validate() error {
	v := &ValidationError{}

	title := strings.TrimSpace(r.Title)
	if len(title) < 5 || len(title) > 100 {
		v.Add("title", "must be between 5 and 100 characters")
	}
	desc := strings.TrimSpace(r.Description)
	if len(desc) < 10 || len(desc) > 1000 {
		v.Add("description", "must be between 10 and 1000 characters")
	}
	if !reportCategories[r.Category] {
		v.Add("category", fmt.Sprintf("%q is not a valid category", r.Category))
	}
	if r.Status != "" && !reportStatuses[r.Status] {
		v.Add("status", fmt.Sprintf("%q is not a valid status", r.Status))
	}
	if r.Priority != "" && !reportPriorities[r.Priority] {
		v.Add("priority", fmt.Sprintf("%q is not a valid priority", r.Priority))
	}

	if len(r.Location.Coordinates) != 2 {
		v.Add("location.coordinates", "exactly two coordinates required: [longitude, latitude]")
	} else {
		lon, lat := r.Location.Coordinates[0], r.Location.Coordinates[1]
		if lon < -180 || lon > 180 {
			v.Add("longitude", "must be between -180 and 180")
		}
		if lat < -90 || lat > 90 {
			v.Add("latitude", "must be between -90 and 90")
		}
	}
	if strings.TrimSpace(r.Location.City) == "" {
		v.Add("city", "is required")
	}
	if strings.TrimSpace(r.Location.Country) == "" {
		v.Add("country", "is required")
	}

	for _, u := range r.MediaURLs {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			v.Add("mediaUrls", fmt.Sprintf("%q must start with http:// or https://", u))
		}
	}

	return v.Err()
}

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewTrackingCode builds the human-shareable identifier for a report:
// REP-<epoch millis>-<6 random base36 chars>.
func NewTrackingCode() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		// The crypto source should never fail; derive the suffix from
		// the clock so codes stay well-formed if it does.
		n := time.Now().UnixNano()
		for i := range b {
			b[i] = byte(n >> (8 * i))
		}
	}
	for i := range b {
		b[i] = base36Alphabet[int(b[i])%len(base36Alphabet)]
	}
	return fmt.Sprintf("REP-%d-%s", time.Now().UnixMilli(), b)
}
