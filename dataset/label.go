package dataset

import (
	"time"

	"firewatch/fire"
	"firewatch/weather"
)

// TargetColumn is the binary label column name.
const TargetColumn = "fire_occurred"

// Label merges weather observations with the fire-date set: one row
// per returned observation, fire_occurred = 1 iff its calendar date is
// in the set. Days the archive did not return simply have no row;
// they are never labeled 0.
func Label(observations []weather.Observation, fireDates fire.DateSet) *Table {
	table := New(datesOf(observations))

	n := len(observations)
	temperature := make([]float64, n)
	humidity := make([]float64, n)
	windSpeed := make([]float64, n)
	rainfall := make([]float64, n)
	occurred := make([]float64, n)

	for i, obs := range observations {
		temperature[i] = obs.Temperature
		humidity[i] = obs.Humidity
		windSpeed[i] = obs.WindSpeed
		rainfall[i] = obs.Rainfall
		if fireDates.Contains(obs.Date) {
			occurred[i] = 1
		}
	}

	_ = table.SetNumeric("temperature", temperature)
	_ = table.SetNumeric("humidity", humidity)
	_ = table.SetNumeric("wind_speed", windSpeed)
	_ = table.SetNumeric("rainfall", rainfall)
	_ = table.SetNumeric(TargetColumn, occurred)
	return table
}

func datesOf(observations []weather.Observation) []time.Time {
	dates := make([]time.Time, len(observations))
	for i, obs := range observations {
		dates[i] = obs.Date
	}
	return dates
}
