// Package provider talks to the upstream flight-search provider and maps its
// payloads into the records served to the presentation layer.
package provider

import (
	"context"
	"errors"
	"strings"
)

// ErrUpstream marks transport or payload failures of the upstream provider.
// Callers tell it apart from "no results", which is an empty list.
var ErrUpstream = errors.New("upstream provider error")

// SearchRequest holds the flight-offer search criteria sent upstream.
type SearchRequest struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
	Currency      string
	NonStop       bool
}

// Provider is an upstream flight-search source.
type Provider interface {
	Name() string
	SearchLocations(ctx context.Context, keyword string, limit int) ([]Location, error)
	SearchFlightOffers(ctx context.Context, req SearchRequest) (*FlightOffersResponse, error)
}

// DisplayName picks the most readable name of a location: its name, then its
// city, then the part of its detailed name after ':'. Empty when none is set.
func (l Location) DisplayName() string {
	if l.Name != "" {
		return l.Name
	}
	if l.Address != nil && l.Address.CityName != "" {
		return l.Address.CityName
	}
	if i := strings.Index(l.DetailedName, ":"); i >= 0 {
		return strings.TrimSpace(l.DetailedName[i+1:])
	}
	return l.DetailedName
}
