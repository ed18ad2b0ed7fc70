package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
)

// GeoNames looks places up in the GeoNames gazetteer.
type GeoNames struct {
	client   *http.Client
	baseURL  string
	username string
}

func NewGeoNames(baseURL, username string) *GeoNames {
	return &GeoNames{
		client:   newHTTPClient(),
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
	}
}

type geoNamesEnvelope struct {
	TotalResultsCount int           `json:"totalResultsCount"`
	GeoNames          []geoNamesHit `json:"geonames"`
	Status            *struct {
		Message string `json:"message"`
		Value   int    `json:"value"`
	} `json:"status"`
}

type geoNamesHit struct {
	GeoNameID json.Number `json:"geonameId"`
	Name      string      `json:"name"`
	Lat       string      `json:"lat"`
	Lng       string      `json:"lng"`
	BBox      *struct {
		East          float64 `json:"east"`
		South         float64 `json:"south"`
		North         float64 `json:"north"`
		West          float64 `json:"west"`
		AccuracyLevel int     `json:"accuracyLevel"`
	} `json:"bbox"`
	Timezone *struct {
		GMTOffset  float64 `json:"gmtOffset"`
		TimeZoneID string  `json:"timeZoneId"`
		DSTOffset  float64 `json:"dstOffset"`
	} `json:"timezone"`
}

// Lookup fetches the single best match for query. A response carrying a
// status block is an upstream failure even on HTTP 200; an empty result
// list means the place does not exist.
func (g *GeoNames) Lookup(ctx context.Context, query string) (*domain.City, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("maxRows", "1")
	q.Set("username", g.username)
	q.Set("style", "FULL")

	var env geoNamesEnvelope
	if err := getJSON(ctx, g.client, "geonames", g.baseURL+"/searchJSON?"+q.Encode(), &env); err != nil {
		return nil, err
	}

	if env.Status != nil {
		return nil, &domain.UpstreamError{
			API:     "geonames",
			Message: fmt.Sprintf("%s (code %d)", env.Status.Message, env.Status.Value),
		}
	}
	if len(env.GeoNames) == 0 {
		return nil, domain.ErrNotFound
	}

	hit := env.GeoNames[0]
	city := &domain.City{
		ID:         hit.GeoNameID.String(),
		SearchName: query,
		Name:       hit.Name,
		Latitude:   hit.Lat,
		Longitude:  hit.Lng,
		CreatedAt:  time.Now().UTC(),
	}
	if hit.BBox != nil {
		city.Bounding = &domain.Bounding{
			East:          hit.BBox.East,
			South:         hit.BBox.South,
			North:         hit.BBox.North,
			West:          hit.BBox.West,
			AccuracyLevel: hit.BBox.AccuracyLevel,
		}
	}
	if hit.Timezone != nil {
		city.Timezone = &domain.CityTimezone{
			GMTOffset:  hit.Timezone.GMTOffset,
			TimeZoneID: hit.Timezone.TimeZoneID,
			DSTOffset:  hit.Timezone.DSTOffset,
		}
	}
	return city, nil
}
