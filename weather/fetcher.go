// Package weather fetches daily historical observations from the
// Open-Meteo archive API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"

// Client is a read-only client for the historical archive. One request
// per training run; failures surface to the caller, which decides
// whether the run can proceed.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient returns a client with a fixed short timeout so a dead
// archive cannot hang a training run.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultBaseURL,
	}
}

type archiveResponse struct {
	Daily struct {
		Time          []string   `json:"time"`
		Temperature   []*float64 `json:"temperature_2m_max"`
		Humidity      []*float64 `json:"relative_humidity_2m_mean"`
		Precipitation []*float64 `json:"precipitation_sum"`
		WindSpeed     []*float64 `json:"windspeed_10m_max"`
	} `json:"daily"`
}

// FetchDailyRange returns one observation per calendar day in
// [start, end] inclusive. Wind speed is pinned to km/h in the request
// so the trained model and the serving inputs share units.
func (c *Client) FetchDailyRange(ctx context.Context, lat, lon float64, start, end time.Time) ([]Observation, error) {
	params := url.Values{
		"latitude":       {fmt.Sprintf("%.4f", lat)},
		"longitude":      {fmt.Sprintf("%.4f", lon)},
		"start_date":     {start.Format("2006-01-02")},
		"end_date":       {end.Format("2006-01-02")},
		"daily":          {"temperature_2m_max,relative_humidity_2m_mean,precipitation_sum,windspeed_10m_max"},
		"windspeed_unit": {"kmh"},
		"timezone":       {"UTC"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather archive request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("weather archive status %d: %s", resp.StatusCode, body)
	}

	var payload archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	observations := make([]Observation, 0, len(payload.Daily.Time))
	for i, day := range payload.Daily.Time {
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("bad date %q in weather response: %w", day, err)
		}
		observations = append(observations, Observation{
			Date:        date,
			Temperature: metricAt(payload.Daily.Temperature, i),
			Humidity:    metricAt(payload.Daily.Humidity, i),
			WindSpeed:   metricAt(payload.Daily.WindSpeed, i),
			Rainfall:    metricAt(payload.Daily.Precipitation, i),
		})
	}
	return observations, nil
}

// metricAt reads the i-th value of a parallel metric array. The archive
// reports gaps as null; those become NaN for the imputation step.
func metricAt(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return math.NaN()
	}
	return *values[i]
}
