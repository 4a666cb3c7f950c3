package dataset

import (
	"testing"
	"time"

	"firewatch/fire"
	"firewatch/weather"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLabel(t *testing.T) {
	fireDates := fire.DateSet{
		day(2024, 1, 1): {},
		day(2024, 1, 3): {},
	}
	observations := []weather.Observation{
		{Date: day(2024, 1, 1), Temperature: 30, Humidity: 40, WindSpeed: 10, Rainfall: 0},
		{Date: day(2024, 1, 2), Temperature: 28, Humidity: 50, WindSpeed: 12, Rainfall: 3},
		{Date: day(2024, 1, 3), Temperature: 33, Humidity: 35, WindSpeed: 20, Rainfall: 0},
		{Date: day(2024, 1, 4), Temperature: 27, Humidity: 60, WindSpeed: 8, Rainfall: 1},
	}

	table := Label(observations, fireDates)
	if table.Len() != 4 {
		t.Fatalf("expected 4 rows, got %d", table.Len())
	}

	occurred, ok := table.Numeric(TargetColumn)
	if !ok {
		t.Fatal("expected fire_occurred column")
	}
	expected := []float64{1, 0, 1, 0}
	for i, want := range expected {
		if occurred[i] != want {
			t.Fatalf("row %d: expected label %v, got %v", i, want, occurred[i])
		}
	}

	ones := 0
	for _, v := range occurred {
		if v == 1 {
			ones++
		}
	}
	if ones != 2 {
		t.Fatalf("expected |D ∩ dates(W)| = 2 positives, got %d", ones)
	}
}

func TestLabelIgnoresFireDatesWithoutWeather(t *testing.T) {
	fireDates := fire.DateSet{
		day(2024, 1, 1): {},
		day(2024, 6, 1): {}, // outside the observed range
	}
	observations := []weather.Observation{
		{Date: day(2024, 1, 1)},
		{Date: day(2024, 1, 2)},
	}

	table := Label(observations, fireDates)
	if table.Len() != 2 {
		t.Fatalf("labels must only exist for fetched dates, got %d rows", table.Len())
	}
}
