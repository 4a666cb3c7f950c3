package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"firewatch/db"
	"firewatch/geo"
	"firewatch/logger"
	"firewatch/ml"
)

// Geocoder is what the handlers need from the geocoding collaborator.
type Geocoder interface {
	Forward(ctx context.Context, city, country string) (geo.Location, error)
}

var (
	modelMu   sync.RWMutex
	model     *ml.Artifact
	modelPath string

	geocoder Geocoder

	hub = newHub()
)

// SetModel installs the artifact handle shared by all requests. Pass
// nil to enter the degraded no-model state.
func SetModel(artifact *ml.Artifact) {
	modelMu.Lock()
	model = artifact
	modelMu.Unlock()
}

// Model returns the current artifact handle, possibly nil.
func Model() *ml.Artifact {
	modelMu.RLock()
	defer modelMu.RUnlock()
	return model
}

// SetModelPath records where ReloadModel reads the artifact from.
func SetModelPath(path string) {
	modelMu.Lock()
	modelPath = path
	modelMu.Unlock()
}

// ReloadModel re-reads the artifact from disk and swaps the handle.
func ReloadModel() error {
	modelMu.RLock()
	path := modelPath
	modelMu.RUnlock()
	if path == "" {
		return ml.ErrModelUnavailable
	}
	artifact, err := ml.LoadArtifact(path)
	if err != nil {
		return err
	}
	SetModel(artifact)
	logger.S().Infof("model reloaded from %s (%d feature columns)", path, len(artifact.FeatureColumns))
	return nil
}

// SetGeocoder installs the geocoding collaborator.
func SetGeocoder(g Geocoder) {
	geocoder = g
}

// RegisterHandlers registers all routes.
func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/model/status", handleModelStatus)
	mux.HandleFunc("POST /api/model/reload", handleModelReload)
	mux.HandleFunc("POST /api/predict", handlePredict)
	mux.HandleFunc("GET /api/predictions", handlePredictions)
	mux.HandleFunc("GET /api/geocode", handleGeocode)
	mux.HandleFunc("GET /api/ws/risk", handleRiskFeed)
}

func respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

func handleModelStatus(w http.ResponseWriter, r *http.Request) {
	artifact := Model()
	if artifact == nil {
		respondJSON(w, map[string]interface{}{"model_loaded": false})
		return
	}
	respondJSON(w, map[string]interface{}{
		"model_loaded":    true,
		"model_type":      artifact.ModelType,
		"feature_columns": artifact.FeatureColumns,
		"trained_at":      artifact.TrainedAt,
	})
}

func handleModelReload(w http.ResponseWriter, r *http.Request) {
	if err := ReloadModel(); err != nil {
		logger.S().Warnf("model reload failed: %v", err)
		respondError(w, "model reload failed: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, map[string]bool{"reloaded": true})
}

func handlePredictions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	predictions, err := db.QueryPredictions(limit)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]interface{}{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

func handleGeocode(w http.ResponseWriter, r *http.Request) {
	if geocoder == nil {
		respondError(w, "geocoding not configured", http.StatusServiceUnavailable)
		return
	}
	city := r.URL.Query().Get("city")
	country := r.URL.Query().Get("country")
	if city == "" {
		respondError(w, "city is required", http.StatusBadRequest)
		return
	}

	location, err := geocoder.Forward(r.Context(), city, country)
	if errors.Is(err, geo.ErrNotFound) {
		// Not fatal: the UI falls back to manual coordinate entry.
		respondError(w, "location not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.S().Warnf("geocode %q,%q failed: %v", city, country, err)
		respondError(w, "geocoding failed", http.StatusBadGateway)
		return
	}
	respondJSON(w, location)
}
