package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) *Geocoder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	geocoder := NewGeocoder(5 * time.Second)
	geocoder.baseURL = server.URL
	return geocoder
}

func TestForward(t *testing.T) {
	geocoder := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected identifying User-Agent")
		}
		if got := r.URL.Query().Get("q"); got != "Delhi, India" {
			t.Errorf("unexpected query %q", got)
		}
		w.Write([]byte(`[{"lat":"28.6139","lon":"77.2090","display_name":"Delhi, India"}]`))
	})

	location, err := geocoder.Forward(context.Background(), "Delhi", "India")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if location.Latitude != 28.6139 || location.Longitude != 77.2090 {
		t.Fatalf("unexpected coordinates: %+v", location)
	}
}

func TestForwardNotFound(t *testing.T) {
	geocoder := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := geocoder.Forward(context.Background(), "Nowhereville", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestForwardEmptyQuery(t *testing.T) {
	geocoder := NewGeocoder(time.Second)
	if _, err := geocoder.Forward(context.Background(), "  ", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for blank query, got %v", err)
	}
}

func TestCachedGeocoder(t *testing.T) {
	var calls atomic.Int64
	inner := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[{"lat":"-23.55","lon":"-46.63","display_name":"São Paulo, Brazil"}]`))
	})

	cached, err := NewCachedGeocoder(inner, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := cached.Forward(context.Background(), "São Paulo", "Brazil"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Folded spelling must hit the same cache entry.
	if _, err := cached.Forward(context.Background(), "sao paulo", "brazil"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 upstream call, got %d", calls.Load())
	}
	if cached.Len() != 1 {
		t.Fatalf("expected 1 cache entry, got %d", cached.Len())
	}
}

func TestCacheKeyFolding(t *testing.T) {
	if cacheKey("São Paulo", "Brazil") != cacheKey("SAO PAULO", "brazil") {
		t.Fatal("expected folded keys to match")
	}
	if cacheKey("Delhi", "India") == cacheKey("Delhi", "") {
		t.Fatal("country must be part of the key")
	}
}
