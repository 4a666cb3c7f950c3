package weather

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const archivePayload = `{
  "daily": {
    "time": ["2024-01-01", "2024-01-02", "2024-01-03"],
    "temperature_2m_max": [31.2, 29.8, null],
    "relative_humidity_2m_mean": [40, 55, 60],
    "precipitation_sum": [0, 12.5, 0],
    "windspeed_10m_max": [18.4, 22.0, 15.1]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(5 * time.Second)
	client.baseURL = server.URL
	return client, server
}

func TestFetchDailyRange(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(archivePayload))
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	observations, err := client.FetchDailyRange(context.Background(), 20.5937, 78.9629, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(observations) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(observations))
	}
	first := observations[0]
	if first.Temperature != 31.2 || first.Humidity != 40 || first.WindSpeed != 18.4 || first.Rainfall != 0 {
		t.Fatalf("unexpected first observation: %+v", first)
	}
	if !math.IsNaN(observations[2].Temperature) {
		t.Fatalf("null metric should decode to NaN, got %v", observations[2].Temperature)
	}

	req, err := http.NewRequest(http.MethodGet, "/?"+gotQuery, nil)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	query := req.URL.Query()
	if query.Get("timezone") != "UTC" {
		t.Fatalf("expected UTC timezone, got %q", query.Get("timezone"))
	}
	if query.Get("windspeed_unit") != "kmh" {
		t.Fatalf("wind speed unit must be pinned to kmh, got %q", query.Get("windspeed_unit"))
	}
	if query.Get("start_date") != "2024-01-01" || query.Get("end_date") != "2024-01-03" {
		t.Fatalf("unexpected date range: %s..%s", query.Get("start_date"), query.Get("end_date"))
	}
}

func TestFetchDailyRangeServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	observations, err := client.FetchDailyRange(context.Background(), 0, 0, start, start)
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
	if len(observations) != 0 {
		t.Fatalf("expected no observations, got %d", len(observations))
	}
}

func TestFetchDailyRangeBadJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := client.FetchDailyRange(context.Background(), 0, 0, start, start); err == nil {
		t.Fatal("expected decode error")
	}
}
