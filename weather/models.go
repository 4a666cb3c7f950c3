package weather

import "time"

// Observation is one calendar day of aggregated weather at a fixed
// point. Temperature in degrees Celsius, humidity in percent, wind
// speed in km/h, rainfall in millimeters. Missing metrics are NaN and
// are imputed downstream.
type Observation struct {
	Date        time.Time `json:"date"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Rainfall    float64   `json:"rainfall"`
}
