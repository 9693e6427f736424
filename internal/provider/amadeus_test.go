package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAmadeusServer(t *testing.T, tokenCalls *int32) *httptest.Server {
	t.Helper()
	offers, err := os.ReadFile("testdata/flight_offers.json")
	require.NoError(t, err)
	locations, err := os.ReadFile("testdata/locations.json")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":1799}`))
	})
	mux.HandleFunc("/v1/reference-data/locations", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "AIRPORT", r.URL.Query().Get("subType"))
		assert.Equal(t, "5", r.URL.Query().Get("page[limit]"))
		_, _ = w.Write(locations)
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("originLocationCode") == "ERR" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"errors":[{"detail":"boom"}]}`))
			return
		}
		assert.Equal(t, "JFK", q.Get("originLocationCode"))
		assert.Equal(t, "2030-06-17", q.Get("returnDate"))
		assert.Equal(t, "20", q.Get("max"))
		_, _ = w.Write(offers)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAmadeusClient_SearchAndTokenCaching(t *testing.T) {
	var tokenCalls int32
	srv := newAmadeusServer(t, &tokenCalls)
	c := NewAmadeusClient(AmadeusConfig{BaseURL: srv.URL + "/", APIKey: "key", APISecret: "secret", Timeout: time.Second, MaxResults: 20}, nil)
	ctx := context.Background()

	locs, err := c.SearchLocations(ctx, "JF", 5)
	require.NoError(t, err)
	assert.Len(t, locs, 4)

	resp, err := c.SearchFlightOffers(ctx, SearchRequest{Origin: "JFK", Destination: "LAX", DepartureDate: "2030-06-10", ReturnDate: "2030-06-17", Adults: 2, Currency: "USD"})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 3)
	require.NotNil(t, resp.Dictionaries)
	assert.Equal(t, "JETBLUE AIRWAYS", resp.Dictionaries.Carriers["B6"])

	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls), "token is reused until it expires")
}

func TestAmadeusClient_TokenRefreshAfterExpiry(t *testing.T) {
	var tokenCalls int32
	srv := newAmadeusServer(t, &tokenCalls)
	c := NewAmadeusClient(AmadeusConfig{BaseURL: srv.URL, APIKey: "key", APISecret: "secret"}, srv.Client())

	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.SearchLocations(context.Background(), "JF", 5)
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, err = c.SearchLocations(context.Background(), "JF", 5)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&tokenCalls))
}

func TestAmadeusClient_UpstreamErrors(t *testing.T) {
	var tokenCalls int32
	srv := newAmadeusServer(t, &tokenCalls)

	c := NewAmadeusClient(AmadeusConfig{BaseURL: srv.URL, APIKey: "key", APISecret: "secret"}, nil)
	_, err := c.SearchFlightOffers(context.Background(), SearchRequest{Origin: "ERR"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))

	bad := NewAmadeusClient(AmadeusConfig{BaseURL: srv.URL, APIKey: "key", APISecret: "wrong"}, nil)
	_, err = bad.SearchLocations(context.Background(), "JF", 5)
	assert.ErrorIs(t, err, ErrUpstream)

	down := NewAmadeusClient(AmadeusConfig{BaseURL: "http://127.0.0.1:1", APIKey: "key", APISecret: "secret", Timeout: time.Second}, nil)
	_, err = down.SearchLocations(context.Background(), "JF", 5)
	assert.ErrorIs(t, err, ErrUpstream)
}
