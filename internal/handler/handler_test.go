package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"flight-offers-api/internal/cache"
	"flight-offers-api/internal/database"
	"flight-offers-api/internal/features"
	"flight-offers-api/internal/models"
	"flight-offers-api/internal/provider"
	"flight-offers-api/internal/service"
)

// failingProvider answers every call with an upstream failure.
type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }

func (failingProvider) SearchLocations(ctx context.Context, keyword string, limit int) ([]provider.Location, error) {
	return nil, fmt.Errorf("locations: %w", provider.ErrUpstream)
}

func (failingProvider) SearchFlightOffers(ctx context.Context, req provider.SearchRequest) (*provider.FlightOffersResponse, error) {
	return nil, fmt.Errorf("flight offers: status 500: %w", provider.ErrUpstream)
}

func setupTestHandler(t *testing.T, p provider.Provider) *Handler {
	t.Helper()

	if p == nil {
		fp, err := provider.NewFileProvider("../provider/testdata/flight_offers.json", "../provider/testdata/locations.json")
		if err != nil {
			t.Fatalf("Failed to load fixtures: %v", err)
		}
		p = fp
	}

	db, err := database.NewDB(filepath.Join(t.TempDir(), "handler.db"), time.Hour)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	flags := features.NewDefaultManager(true, false, true)
	svc := service.NewService(p, db, service.Options{
		Cache:      cache.NewInMemoryCache(),
		Features:   flags,
		AirportTTL: time.Hour,
		SearchTTL:  time.Minute,
		Now:        func() time.Time { return time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC) },
	})

	opts := DefaultHandlerOptions()
	opts.Features = flags
	return NewHandlerWithOptions(svc, opts)
}

func setupRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func doRequest(r http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	r := setupRouter(setupTestHandler(t, nil))

	rr := doRequest(r, "GET", "/api/health", nil)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if rr.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got %s", rr.Body.String())
	}
}

func TestSearchAirports(t *testing.T) {
	r := setupRouter(setupTestHandler(t, nil))

	rr := doRequest(r, "GET", "/api/airports?keyword=jf", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var suggestions []models.AirportSuggestion
	if err := json.NewDecoder(rr.Body).Decode(&suggestions); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Code != "JFK" {
		t.Errorf("Expected a single JFK suggestion, got %+v", suggestions)
	}
}

func TestSearchAirports_KeywordTooShort(t *testing.T) {
	r := setupRouter(setupTestHandler(t, nil))

	rr := doRequest(r, "GET", "/api/airports?keyword=j", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestSearchFlights(t *testing.T) {
	r := setupRouter(setupTestHandler(t, nil))

	rr := doRequest(r, "GET", "/api/flights?origin=JFK&destination=LAX&departureDate=2030-06-10&returnDate=2030-06-17&adults=2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var records []models.FlightSearchResult
	if err := json.NewDecoder(rr.Body).Decode(&records); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(records) != 4 {
		t.Errorf("Expected 4 records for two round-trip offers, got %d", len(records))
	}
}

func TestSearchOffers(t *testing.T) {
	r := setupRouter(setupTestHandler(t, nil))

	rr := doRequest(r, "GET", "/api/offers?origin=JFK&destination=LAX&departureDate=2030-06-10&returnDate=2030-06-17&sortBy=price&order=desc", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.OffersResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Offers) != 2 {
		t.Fatalf("Expected 2 offers, got %d", len(resp.Offers))
	}
	if resp.Offers[0].OfferID != "1" || resp.Offers[1].OfferID != "2" {
		t.Errorf("Expected offers [1 2] by price desc, got [%s %s]", resp.Offers[0].OfferID, resp.Offers[1].OfferID)
	}
	if !resp.Offers[0].IsRoundTrip || resp.Offers[0].InboundFlight == nil {
		t.Error("Expected round-trip offers with an inbound flight")
	}
}

func TestSearchOffers_BadParameters(t *testing.T) {
	r := setupRouter(setupTestHandler(t, nil))

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"non-numeric adults", "origin=JFK&destination=LAX&departureDate=2030-06-10&adults=two", "adults"},
		{"bad nonStop", "origin=JFK&destination=LAX&departureDate=2030-06-10&nonStop=maybe", "nonStop"},
		{"missing origin", "destination=LAX&departureDate=2030-06-10", "origin"},
		{"bad sort key", "origin=JFK&destination=LAX&departureDate=2030-06-10&sortBy=stops", "sortBy"},
		{"bad order", "origin=JFK&destination=LAX&departureDate=2030-06-10&order=up", "order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(r, "GET", "/api/offers?"+tt.query, nil)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if msg := decodeError(t, rr); !bytes.Contains([]byte(msg), []byte(tt.field)) {
				t.Errorf("Expected error mentioning %q, got %q", tt.field, msg)
			}
		})
	}
}

func TestSearchOffers_UpstreamFailure(t *testing.T) {
	r := setupRouter(setupTestHandler(t, failingProvider{}))

	rr := doRequest(r, "GET", "/api/offers?origin=JFK&destination=LAX&departureDate=2030-06-10", nil)
	if rr.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); msg != "flight provider unavailable" {
		t.Errorf("Unexpected error message %q", msg)
	}
}

func TestGetFlightDetails(t *testing.T) {
	r := setupRouter(setupTestHandler(t, nil))

	// details are served from the offers saved by a search
	rr := doRequest(r, "GET", "/api/offers?origin=JFK&destination=LAX&departureDate=2030-06-10&returnDate=2030-06-17", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Search failed with status %d", rr.Code)
	}

	for _, id := range []string{"1", "1-1"} {
		rr = doRequest(r, "GET", "/api/flights/"+id+"/details", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200 for %s, got %d: %s", id, rr.Code, rr.Body.String())
		}

		var details models.FlightDetailsResponse
		if err := json.NewDecoder(rr.Body).Decode(&details); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if details.ID != "1" {
			t.Errorf("Expected offer 1, got %s", details.ID)
		}
		if len(details.Itineraries) != 2 {
			t.Fatalf("Expected 2 itineraries, got %d", len(details.Itineraries))
		}
		if len(details.Itineraries[0].Plan) != 3 {
			t.Errorf("Expected segment, layover, segment in the outbound plan, got %d entries", len(details.Itineraries[0].Plan))
		}
	}
}

func TestGetFlightDetails_Errors(t *testing.T) {
	r := setupRouter(setupTestHandler(t, nil))

	rr := doRequest(r, "GET", "/api/flights/42/details", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for an unknown offer, got %d", rr.Code)
	}

	rr = doRequest(r, "GET", "/api/flights/bad.id/details", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a malformed id, got %d", rr.Code)
	}
}

func TestFeatures(t *testing.T) {
	r := setupRouter(setupTestHandler(t, nil))

	rr := doRequest(r, "PUT", "/api/features/"+features.FeatureCacheEnabled, []byte(`{"enabled":false}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(r, "GET", "/api/features", nil)
	var flags []features.FeatureFlag
	if err := json.NewDecoder(rr.Body).Decode(&flags); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	for _, f := range flags {
		if f.Name == features.FeatureCacheEnabled && f.Enabled {
			t.Error("Expected cache to be disabled")
		}
	}

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"unknown feature", "/api/features/nope", `{"enabled":true}`, http.StatusNotFound},
		{"empty body", "/api/features/" + features.FeatureCacheEnabled, ``, http.StatusBadRequest},
		{"invalid JSON", "/api/features/" + features.FeatureCacheEnabled, `{enabled`, http.StatusBadRequest},
		{"missing enabled", "/api/features/" + features.FeatureCacheEnabled, `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(r, "PUT", tt.target, []byte(tt.body))
			if rr.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rr.Code)
			}
		})
	}
}
