package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
)

// transitModes are the line modes queried for the status board.
const transitModes = "tube,overground,dlr,elizabeth-line"

// TfL is the Transport for London client.
type TfL struct {
	client  *http.Client
	baseURL string
	appKey  string
}

func NewTfL(baseURL, appKey string) *TfL {
	return &TfL{
		client:  newHTTPClient(),
		baseURL: strings.TrimRight(baseURL, "/"),
		appKey:  appKey,
	}
}

func (t *TfL) withKey(q url.Values) url.Values {
	if t.appKey != "" {
		q.Set("app_key", t.appKey)
	}
	return q
}

type tflLine struct {
	Name         string `json:"name"`
	ModeName     string `json:"modeName"`
	LineStatuses []struct {
		StatusSeverityDescription string `json:"statusSeverityDescription"`
		Reason                    string `json:"reason"`
	} `json:"lineStatuses"`
}

// LineStatuses returns the current status of every line in the
// configured modes. A line with no status block reports Unknown.
func (t *TfL) LineStatuses(ctx context.Context) ([]domain.RouteStatus, error) {
	q := t.withKey(url.Values{})
	u := fmt.Sprintf("%s/Line/Mode/%s/Status?%s", t.baseURL, transitModes, q.Encode())

	var lines []tflLine
	if err := getJSON(ctx, t.client, "tfl", u, &lines); err != nil {
		return nil, err
	}

	statuses := make([]domain.RouteStatus, 0, len(lines))
	for _, line := range lines {
		rs := domain.RouteStatus{
			Mode:    line.ModeName,
			Route:   line.Name,
			Status:  "Unknown",
			Details: "",
		}
		if len(line.LineStatuses) > 0 {
			rs.Status = line.LineStatuses[0].StatusSeverityDescription
			rs.Details = line.LineStatuses[0].Reason
		}
		statuses = append(statuses, rs)
	}
	return statuses, nil
}

type tflArrival struct {
	LineName        string `json:"lineName"`
	DestinationName string `json:"destinationName"`
	PlatformName    string `json:"platformName"`
	TimeToStation   int    `json:"timeToStation"`
	ExpectedArrival string `json:"expectedArrival"`
}

// Arrivals returns predicted arrivals at a stop, soonest first. An
// unknown stop is an empty board, not an error.
func (t *TfL) Arrivals(ctx context.Context, stopID string) ([]domain.Arrival, error) {
	q := t.withKey(url.Values{})
	u := fmt.Sprintf("%s/StopPoint/%s/Arrivals?%s", t.baseURL, url.PathEscape(stopID), q.Encode())

	body, status, err := getRaw(ctx, t.client, "tfl", u)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return []domain.Arrival{}, nil
	}
	if status < 200 || status >= 300 {
		return nil, &domain.UpstreamError{API: "tfl", Message: fmt.Sprintf("unexpected status %d", status)}
	}

	var raw []tflArrival
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &domain.UpstreamError{API: "tfl", Message: "decode arrivals: " + err.Error()}
	}

	arrivals := make([]domain.Arrival, 0, len(raw))
	for _, a := range raw {
		arrivals = append(arrivals, domain.Arrival{
			Line:            a.LineName,
			Destination:     a.DestinationName,
			Platform:        a.PlatformName,
			TimeToStation:   a.TimeToStation,
			ExpectedArrival: a.ExpectedArrival,
		})
	}
	sort.SliceStable(arrivals, func(i, j int) bool {
		return arrivals[i].TimeToStation < arrivals[j].TimeToStation
	})
	return arrivals, nil
}
