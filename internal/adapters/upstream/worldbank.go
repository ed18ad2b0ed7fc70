package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
)

// Indicator series assembled into one demographic aggregate.
const (
	indTotalPopulation  = "SP.POP.TOTL"
	indLifeExpectancy   = "SP.DYN.LE00.IN"
	indPopulationGrowth = "SP.POP.GROW"
	indMalePopulation   = "SP.POP.TOTL.MA.IN"
	indFemalePopulation = "SP.POP.TOTL.FE.IN"
)

const indicatorDateRange = "2020:2025"

// WorldBank assembles demographic aggregates from the World Bank
// indicators API.
type WorldBank struct {
	client  *http.Client
	baseURL string
}

func NewWorldBank(baseURL string) *WorldBank {
	return &WorldBank{
		client:  newHTTPClient(),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type wbRow struct {
	Country struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"country"`
	CountryISO3Code string   `json:"countryiso3code"`
	Date            string   `json:"date"`
	Value           *float64 `json:"value"`
}

// wbSeries is one fetched indicator: the newest non-null reading plus
// the country identity carried on the rows.
type wbSeries struct {
	indicator *domain.Indicator
	countryID string
	name      string
	iso3      string
}

// fetchSeries pulls one indicator series and picks the most recent year
// with a non-null value. A failed or unreadable fetch reads as a series
// with no data; only the explicit upstream error envelope surfaces as
// an error.
func (w *WorldBank) fetchSeries(ctx context.Context, countryCode, indicator string) (*wbSeries, error) {
	q := url.Values{}
	q.Set("date", indicatorDateRange)
	q.Set("per_page", "10")
	q.Set("format", "json")
	u := fmt.Sprintf("%s/country/%s/indicator/%s?%s",
		w.baseURL, url.PathEscape(countryCode), indicator, q.Encode())

	body, status, err := getRaw(ctx, w.client, "worldbank", u)
	if err != nil || status < 200 || status >= 300 {
		return nil, nil
	}

	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil
	}

	// An error envelope has a single element carrying a message list.
	if len(envelope) == 1 {
		var errBody struct {
			Message []struct {
				Key   string `json:"key"`
				Value string `json:"value"`
			} `json:"message"`
		}
		if err := json.Unmarshal(envelope[0], &errBody); err == nil && len(errBody.Message) > 0 {
			return nil, &domain.UpstreamError{
				API:     "worldbank",
				Message: errBody.Message[0].Key + ": " + errBody.Message[0].Value,
			}
		}
		return nil, nil
	}
	if len(envelope) < 2 {
		return nil, nil
	}

	var rows []wbRow
	if err := json.Unmarshal(envelope[1], &rows); err != nil {
		return nil, nil
	}

	s := &wbSeries{}
	// Rows arrive newest-first; keep the first reading with data.
	for _, row := range rows {
		if s.countryID == "" {
			s.countryID = row.Country.ID
			s.name = row.Country.Value
			s.iso3 = row.CountryISO3Code
		}
		if row.Value != nil && s.indicator == nil {
			s.indicator = &domain.Indicator{Date: row.Date, Value: row.Value}
		}
	}
	return s, nil
}

// Lookup fetches the five indicator series concurrently and merges them.
// Only the total population series is load-bearing: when it resolves to
// no data, including when its fetch failed, the country is treated as
// unknown. The other four degrade to null.
func (w *WorldBank) Lookup(ctx context.Context, countryCode string) (*domain.Population, error) {
	indicators := []string{
		indTotalPopulation,
		indLifeExpectancy,
		indPopulationGrowth,
		indMalePopulation,
		indFemalePopulation,
	}

	results := make([]*wbSeries, len(indicators))
	errs := make([]error, len(indicators))

	var wg sync.WaitGroup
	for i, ind := range indicators {
		wg.Add(1)
		go func(i int, ind string) {
			defer wg.Done()
			results[i], errs[i] = w.fetchSeries(ctx, countryCode, ind)
		}(i, ind)
	}
	wg.Wait()

	// Only the explicit error envelope aborts here.
	if errs[0] != nil {
		return nil, errs[0]
	}
	total := results[0]
	if total == nil || total.indicator == nil {
		return nil, domain.ErrNotFound
	}

	p := &domain.Population{
		ID:              total.countryID,
		SearchName:      countryCode,
		Name:            total.name,
		CountryISO3Code: total.iso3,
		TotalPopulation: total.indicator,
		CreatedAt:       time.Now().UTC(),
	}
	if errs[1] == nil && results[1] != nil {
		p.LifeExpectance = results[1].indicator
	}
	if errs[2] == nil && results[2] != nil {
		p.PopulationGrowth = results[2].indicator
	}
	if errs[3] == nil && results[3] != nil {
		p.Male = results[3].indicator
	}
	if errs[4] == nil && results[4] != nil {
		p.Female = results[4].indicator
	}
	return p, nil
}
