package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
	"github.com/AdelSuarez/geo-api-v2/internal/pkg/metrics"
)

// defaultTimeout bounds every third-party call. The request context can
// cut it shorter.
const defaultTimeout = 10 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// getJSON issues an instrumented GET and decodes the body into v.
// Non-2xx statuses become *domain.UpstreamError; callers that need
// status-specific behavior (the transit 404 rule) fetch raw instead.
func getJSON(ctx context.Context, client *http.Client, api, url string, v any) error {
	body, status, err := getRaw(ctx, client, api, url)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &domain.UpstreamError{API: api, Message: fmt.Sprintf("unexpected status %d", status)}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &domain.UpstreamError{API: api, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

// getRaw issues an instrumented GET and returns the body and status.
// Transport failures become *domain.UpstreamError; HTTP statuses are
// left to the caller.
func getRaw(ctx context.Context, client *http.Client, api, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, &domain.UpstreamError{API: api, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	metrics.UpstreamDuration.WithLabelValues(api).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(api, "error").Inc()
		return nil, 0, &domain.UpstreamError{API: api, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(api, "error").Inc()
		return nil, resp.StatusCode, &domain.UpstreamError{API: api, Message: "read response: " + err.Error()}
	}

	outcome := "ok"
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "http_" + fmt.Sprint(resp.StatusCode)
	}
	metrics.UpstreamRequests.WithLabelValues(api, outcome).Inc()

	return body, resp.StatusCode, nil
}
