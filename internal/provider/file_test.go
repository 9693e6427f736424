package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileProvider_SearchFlightOffers(t *testing.T) {
	p, err := NewFileProvider("testdata/flight_offers.json", "testdata/locations.json")
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name string
		req  SearchRequest
		want []string
	}{
		{"round trip", SearchRequest{Origin: "JFK", Destination: "LAX", ReturnDate: "2030-06-17"}, []string{"1", "2"}},
		{"one way", SearchRequest{Origin: "jfk", Destination: "lax"}, []string{"3"}},
		{"non stop round trip", SearchRequest{Origin: "JFK", Destination: "LAX", ReturnDate: "2030-06-17", NonStop: true}, []string{"2"}},
		{"unknown route", SearchRequest{Origin: "JFK", Destination: "CDG"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := p.SearchFlightOffers(ctx, tt.req)
			require.NoError(t, err)
			ids := []string{}
			for _, o := range resp.Data {
				ids = append(ids, o.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFileProvider_SearchLocationsLimit(t *testing.T) {
	p, err := NewFileProvider("", "testdata/locations.json")
	require.NoError(t, err)

	locs, err := p.SearchLocations(context.Background(), "NEW YORK", 1)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "JFK", locs[0].IataCode)
}

func TestFileProvider_MissingFile(t *testing.T) {
	_, err := NewFileProvider("testdata/nope.json", "")
	assert.Error(t, err)
}

func TestFileProvider_CanceledContext(t *testing.T) {
	p, err := NewFileProvider("", "")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.SearchFlightOffers(ctx, SearchRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}
