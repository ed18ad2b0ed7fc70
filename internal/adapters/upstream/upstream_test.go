package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
)

func TestGeoNamesLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/searchJSON" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "Bilbao" || q.Get("maxRows") != "1" || q.Get("style") != "FULL" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Get("username") != "demo" {
			t.Errorf("username not forwarded: %v", q)
		}
		w.Write([]byte(`{
			"totalResultsCount": 1,
			"geonames": [{
				"geonameId": 3128026,
				"name": "Bilbao",
				"lat": "43.26271",
				"lng": "-2.92528",
				"bbox": {"east": -2.8, "south": 43.2, "north": 43.3, "west": -3.0, "accuracyLevel": 10},
				"timezone": {"gmtOffset": 1, "timeZoneId": "Europe/Madrid", "dstOffset": 2}
			}]
		}`))
	}))
	defer srv.Close()

	g := NewGeoNames(srv.URL, "demo")
	city, err := g.Lookup(context.Background(), "Bilbao")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if city.ID != "3128026" || city.Name != "Bilbao" {
		t.Errorf("unexpected city %+v", city)
	}
	if city.Latitude != "43.26271" || city.Longitude != "-2.92528" {
		t.Errorf("coordinates not verbatim: %q %q", city.Latitude, city.Longitude)
	}
	if city.Bounding == nil || city.Bounding.East != -2.8 {
		t.Errorf("bounding not mapped: %+v", city.Bounding)
	}
	if city.Timezone == nil || city.Timezone.TimeZoneID != "Europe/Madrid" {
		t.Errorf("timezone not mapped: %+v", city.Timezone)
	}
	if city.SearchName != "Bilbao" {
		t.Errorf("search name = %q", city.SearchName)
	}
}

func TestGeoNamesLookupNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalResultsCount": 0, "geonames": []}`))
	}))
	defer srv.Close()

	g := NewGeoNames(srv.URL, "demo")
	_, err := g.Lookup(context.Background(), "Xyzzy")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestGeoNamesLookupStatusEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": {"message": "user account not enabled", "value": 10}}`))
	}))
	defer srv.Close()

	g := NewGeoNames(srv.URL, "demo")
	_, err := g.Lookup(context.Background(), "Bilbao")
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("want UpstreamError, got %v", err)
	}
	if ue.API != "geonames" || !strings.Contains(ue.Message, "user account not enabled") {
		t.Errorf("unexpected error %v", ue)
	}
}

func TestGeoNamesLookupOmitsAbsentBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalResultsCount": 1, "geonames": [{"geonameId": 1, "name": "Somewhere", "lat": "1", "lng": "2"}]}`))
	}))
	defer srv.Close()

	g := NewGeoNames(srv.URL, "demo")
	city, err := g.Lookup(context.Background(), "Somewhere")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if city.Bounding != nil || city.Timezone != nil {
		t.Errorf("absent upstream blocks must stay nil: %+v", city)
	}
}

func wbSeriesBody(rows string) string {
	return `[{"page": 1, "pages": 1, "per_page": 10, "total": 6}, [` + rows + `]]`
}

func wbRowJSON(date string, value string) string {
	return `{"country": {"id": "ES", "value": "Spain"}, "countryiso3code": "ESP", "date": "` + date + `", "value": ` + value + `}`
}

func TestWorldBankLookupPicksNewestNonNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("date") != "2020:2025" || q.Get("format") != "json" || q.Get("per_page") != "10" {
			t.Errorf("unexpected query %v", q)
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/indicator/"+indTotalPopulation):
			w.Write([]byte(wbSeriesBody(
				wbRowJSON("2024", "null")+","+wbRowJSON("2023", "48000000")+","+wbRowJSON("2022", "47700000"))))
		case strings.HasSuffix(r.URL.Path, "/indicator/"+indLifeExpectancy):
			w.Write([]byte(wbSeriesBody(
				wbRowJSON("2023", "83.3"))))
		default:
			// All readings null.
			w.Write([]byte(wbSeriesBody(
				wbRowJSON("2024", "null")+","+wbRowJSON("2023", "null"))))
		}
	}))
	defer srv.Close()

	wb := NewWorldBank(srv.URL)
	p, err := wb.Lookup(context.Background(), "ES")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.ID != "ES" || p.Name != "Spain" || p.CountryISO3Code != "ESP" {
		t.Errorf("country identity not mapped: %+v", p)
	}
	if p.TotalPopulation == nil || p.TotalPopulation.Date != "2023" || *p.TotalPopulation.Value != 48000000 {
		t.Errorf("total population must be newest non-null reading: %+v", p.TotalPopulation)
	}
	if p.LifeExpectance == nil || *p.LifeExpectance.Value != 83.3 {
		t.Errorf("life expectancy not mapped: %+v", p.LifeExpectance)
	}
	if p.PopulationGrowth != nil || p.Male != nil || p.Female != nil {
		t.Errorf("all-null series must yield nil indicators: %+v", p)
	}
	if p.SearchName != "ES" {
		t.Errorf("search name = %q", p.SearchName)
	}
}

func TestWorldBankLookupTotalAllNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(wbSeriesBody(
			wbRowJSON("2024", "null")+","+wbRowJSON("2023", "null"))))
	}))
	defer srv.Close()

	wb := NewWorldBank(srv.URL)
	_, err := wb.Lookup(context.Background(), "XX")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestWorldBankPrimaryFailureIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/indicator/"+indTotalPopulation) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(wbSeriesBody(wbRowJSON("2023", "83.3"))))
	}))
	defer srv.Close()

	wb := NewWorldBank(srv.URL)
	_, err := wb.Lookup(context.Background(), "ES")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("failed primary series must read as not found, got %v", err)
	}
}

func TestWorldBankLookupErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"message": [{"id": "120", "key": "Invalid value", "value": "The provided parameter value is not valid"}]}]`))
	}))
	defer srv.Close()

	wb := NewWorldBank(srv.URL)
	_, err := wb.Lookup(context.Background(), "!!")
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("want UpstreamError, got %v", err)
	}
	if ue.API != "worldbank" {
		t.Errorf("api = %q", ue.API)
	}
}

func TestWorldBankSecondaryFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/indicator/"+indTotalPopulation) {
			w.Write([]byte(wbSeriesBody(wbRowJSON("2023", "48000000"))))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wb := NewWorldBank(srv.URL)
	p, err := wb.Lookup(context.Background(), "ES")
	if err != nil {
		t.Fatalf("secondary failures must not abort: %v", err)
	}
	if p.TotalPopulation == nil {
		t.Fatal("total population missing")
	}
	if p.LifeExpectance != nil || p.Male != nil || p.Female != nil || p.PopulationGrowth != nil {
		t.Errorf("failed secondary series must be nil: %+v", p)
	}
}

func TestTfLLineStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/Line/Mode/tube,overground,dlr,elizabeth-line/Status") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("app_key") != "k" {
			t.Errorf("app_key not forwarded")
		}
		w.Write([]byte(`[
			{"name": "Victoria", "modeName": "tube", "lineStatuses": [{"statusSeverityDescription": "Good Service", "reason": ""}]},
			{"name": "DLR", "modeName": "dlr", "lineStatuses": []}
		]`))
	}))
	defer srv.Close()

	c := NewTfL(srv.URL, "k")
	statuses, err := c.LineStatuses(context.Background())
	if err != nil {
		t.Fatalf("LineStatuses: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses", len(statuses))
	}
	if statuses[0].Route != "Victoria" || statuses[0].Status != "Good Service" {
		t.Errorf("unexpected status %+v", statuses[0])
	}
	if statuses[1].Status != "Unknown" || statuses[1].Details != "" {
		t.Errorf("line without status block must report Unknown: %+v", statuses[1])
	}
}

func TestTfLArrivalsSorted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"lineName": "Victoria", "destinationName": "Brixton", "platformName": "2", "timeToStation": 300, "expectedArrival": "2026-08-30T12:05:00Z"},
			{"lineName": "Victoria", "destinationName": "Walthamstow", "platformName": "1", "timeToStation": 60, "expectedArrival": "2026-08-30T12:01:00Z"},
			{"lineName": "Victoria", "destinationName": "Brixton", "platformName": "2", "timeToStation": 180, "expectedArrival": "2026-08-30T12:03:00Z"}
		]`))
	}))
	defer srv.Close()

	c := NewTfL(srv.URL, "")
	arrivals, err := c.Arrivals(context.Background(), "940GZZLUVIC")
	if err != nil {
		t.Fatalf("Arrivals: %v", err)
	}
	if len(arrivals) != 3 {
		t.Fatalf("got %d arrivals", len(arrivals))
	}
	for i := 1; i < len(arrivals); i++ {
		if arrivals[i-1].TimeToStation > arrivals[i].TimeToStation {
			t.Fatalf("arrivals not sorted ascending: %+v", arrivals)
		}
	}
}

func TestTfLArrivalsUnknownStop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewTfL(srv.URL, "")
	arrivals, err := c.Arrivals(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unknown stop must not error: %v", err)
	}
	if len(arrivals) != 0 {
		t.Errorf("want empty board, got %+v", arrivals)
	}
}

func TestTfLArrivalsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewTfL(srv.URL, "")
	_, err := c.Arrivals(context.Background(), "940GZZLUVIC")
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("want UpstreamError, got %v", err)
	}
}
