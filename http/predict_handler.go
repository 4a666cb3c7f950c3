package http

import (
	"encoding/json"
	"net/http"

	"firewatch/dataset"
	"firewatch/db"
	"firewatch/logger"
)

// Risk severity bands. Lower bounds are exclusive: 0.40 exactly is
// still low, 0.70 exactly is still moderate.
const (
	highRiskThreshold     = 0.7
	moderateRiskThreshold = 0.4
)

// PredictRequest is one live input row from the front end. Wind speed
// is km/h, matching the unit the training pipeline requested from the
// weather archive; no conversion happens on either side.
type PredictRequest struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Rainfall    float64 `json:"rainfall"`
	LandCover   string  `json:"land_cover"`
}

// PredictResponse carries the probability and its severity band.
type PredictResponse struct {
	Probability float64 `json:"probability"`
	Risk        string  `json:"risk"`
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	artifact := Model()
	if artifact == nil {
		respondError(w, "model not loaded, cannot predict", http.StatusServiceUnavailable)
		return
	}

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Humidity < 0 || req.Humidity > 100 {
		respondError(w, "humidity must be between 0 and 100", http.StatusBadRequest)
		return
	}

	probability, err := artifact.PredictProba(buildFeatureRow(req))
	if err != nil {
		// Prediction errors surface as a readable message, never a
		// crashed session.
		logger.S().Errorf("prediction failed: %v", err)
		respondError(w, "prediction failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	record := db.Prediction{
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		LandCover:   req.LandCover,
		Probability: probability,
		Risk:        riskBand(probability),
	}
	if err := db.SavePrediction(record); err != nil {
		logger.S().Warnf("prediction not persisted: %v", err)
	}
	hub.BroadcastPrediction(record)

	respondJSON(w, PredictResponse{
		Probability: probability,
		Risk:        record.Risk,
	})
}

// buildFeatureRow derives the serving-side feature row. temp_anomaly
// stays 0.0: there is no per-request weather history, so the trailing
// mean cannot be computed at serving time.
func buildFeatureRow(req PredictRequest) map[string]float64 {
	features := map[string]float64{
		"temperature":         req.Temperature,
		"humidity":            req.Humidity,
		"wind_speed":          req.WindSpeed,
		"rainfall":            req.Rainfall,
		"temp_humidity_ratio": req.Temperature / (req.Humidity + 1e-5),
		"temp_anomaly":        0.0,
	}
	for name, value := range dataset.LandCoverIndicators(req.LandCover) {
		features[name] = value
	}
	return features
}

func riskBand(probability float64) string {
	switch {
	case probability > highRiskThreshold:
		return "high"
	case probability > moderateRiskThreshold:
		return "moderate"
	default:
		return "low"
	}
}
