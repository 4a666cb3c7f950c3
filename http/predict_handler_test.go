package http

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"firewatch/ml"
)

// leafModel builds a single-leaf artifact whose probability is exactly
// sigmoid(initScore), independent of the input row.
func leafModel(initScore float64, columns []string) *ml.Artifact {
	model := &ml.GradientBoosting{
		Trees: []ml.Tree{{Nodes: []ml.TreeNode{{
			FeatureIdx: -1,
			LeftChild:  -1,
			RightChild: -1,
			IsLeaf:     true,
		}}}},
		LearningRate: 1,
		InitScore:    initScore,
	}
	return ml.NewArtifact(model, columns)
}

func sigmoidOf(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func predictRequest(t *testing.T, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestRiskBand(t *testing.T) {
	cases := []struct {
		probability float64
		want        string
	}{
		{0.71, "high"},
		{0.7, "moderate"}, // lower bound is exclusive
		{0.40001, "moderate"},
		{0.4, "low"},
		{0.1, "low"},
		{0.99, "high"},
	}
	for _, c := range cases {
		if got := riskBand(c.probability); got != c.want {
			t.Fatalf("riskBand(%v): expected %s, got %s", c.probability, c.want, got)
		}
	}
}

func TestPredictNoModel(t *testing.T) {
	SetModel(nil)
	rec := predictRequest(t, PredictRequest{Temperature: 30, Humidity: 40})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a model, got %d", rec.Code)
	}
}

func TestPredictHumidityValidation(t *testing.T) {
	SetModel(leafModel(0, []string{"temperature", "humidity"}))
	defer SetModel(nil)

	for _, humidity := range []float64{-1, 101} {
		rec := predictRequest(t, PredictRequest{Temperature: 30, Humidity: humidity})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("humidity %v: expected 400, got %d", humidity, rec.Code)
		}
	}
}

func TestPredictInvalidBody(t *testing.T) {
	SetModel(leafModel(0, []string{"temperature"}))
	defer SetModel(nil)

	mux := http.NewServeMux()
	RegisterHandlers(mux)
	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestPredictHighRisk(t *testing.T) {
	// sigmoid(3) ≈ 0.95, well inside the high band.
	SetModel(leafModel(3, []string{"temperature", "humidity", "wind_speed", "rainfall"}))
	defer SetModel(nil)

	rec := predictRequest(t, PredictRequest{
		Temperature: 42, Humidity: 12, WindSpeed: 30, Rainfall: 0, LandCover: "Forest",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp PredictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := sigmoidOf(3)
	if math.Abs(resp.Probability-want) > 1e-9 {
		t.Fatalf("expected probability %v, got %v", want, resp.Probability)
	}
	if resp.Risk != "high" {
		t.Fatalf("expected high risk, got %s", resp.Risk)
	}
}

func TestPredictLowRisk(t *testing.T) {
	// sigmoid(-2) ≈ 0.12.
	SetModel(leafModel(-2, []string{"temperature", "humidity"}))
	defer SetModel(nil)

	rec := predictRequest(t, PredictRequest{Temperature: 15, Humidity: 80, LandCover: "Urban"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp PredictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Risk != "low" {
		t.Fatalf("expected low risk, got %s (probability %v)", resp.Risk, resp.Probability)
	}
}

func TestBuildFeatureRow(t *testing.T) {
	row := buildFeatureRow(PredictRequest{
		Temperature: 30, Humidity: 40, WindSpeed: 10, Rainfall: 2, LandCover: "Grassland",
	})

	if math.Abs(row["temp_humidity_ratio"]-30/(40+1e-5)) > 1e-12 {
		t.Fatalf("unexpected ratio %v", row["temp_humidity_ratio"])
	}
	if row["temp_anomaly"] != 0 {
		t.Fatalf("serving-time anomaly must be 0, got %v", row["temp_anomaly"])
	}
	if row["grassland"] != 1 || row["forest"] != 0 || row["urban"] != 0 {
		t.Fatalf("unexpected land cover indicators: %v", row)
	}
}
