package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FileProvider serves canned provider payloads from JSON files. It backs
// local development and tests when no upstream credentials are configured.
type FileProvider struct {
	offers    FlightOffersResponse
	locations []Location
}

// NewFileProvider loads the offers and locations payloads. Either path may be
// empty.
func NewFileProvider(offersPath, locationsPath string) (*FileProvider, error) {
	p := &FileProvider{}
	if offersPath != "" {
		if err := readJSON(offersPath, &p.offers); err != nil {
			return nil, err
		}
	}
	if locationsPath != "" {
		var resp LocationsResponse
		if err := readJSON(locationsPath, &resp); err != nil {
			return nil, err
		}
		p.locations = resp.Data
	}
	return p, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Name implements Provider.
func (p *FileProvider) Name() string { return "file" }

// SearchLocations matches the keyword against codes and names.
func (p *FileProvider) SearchLocations(ctx context.Context, keyword string, limit int) ([]Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kw := strings.ToUpper(strings.TrimSpace(keyword))
	out := make([]Location, 0)
	for _, loc := range p.locations {
		if limit > 0 && len(out) >= limit {
			break
		}
		if strings.HasPrefix(loc.IataCode, kw) ||
			strings.Contains(strings.ToUpper(loc.Name), kw) ||
			strings.Contains(strings.ToUpper(loc.DetailedName), kw) {
			out = append(out, loc)
		}
	}
	return out, nil
}

// SearchFlightOffers returns the offers whose first itinerary matches the
// route. Dates are not filtered so fixtures stay usable.
func (p *FileProvider) SearchFlightOffers(ctx context.Context, req SearchRequest) (*FlightOffersResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp := &FlightOffersResponse{Data: []FlightOffer{}, Dictionaries: p.offers.Dictionaries}
	for _, offer := range p.offers.Data {
		if !matchesRoute(offer, req) {
			continue
		}
		if req.ReturnDate == "" && len(offer.Itineraries) > 1 {
			continue
		}
		if req.ReturnDate != "" && len(offer.Itineraries) < 2 {
			continue
		}
		if req.NonStop && !nonStop(offer) {
			continue
		}
		resp.Data = append(resp.Data, offer)
	}
	return resp, nil
}

func matchesRoute(offer FlightOffer, req SearchRequest) bool {
	if len(offer.Itineraries) == 0 {
		return false
	}
	segs := offer.Itineraries[0].Segments
	if len(segs) == 0 || segs[0].Departure == nil || segs[len(segs)-1].Arrival == nil {
		return false
	}
	return strings.EqualFold(segs[0].Departure.IataCode, req.Origin) &&
		strings.EqualFold(segs[len(segs)-1].Arrival.IataCode, req.Destination)
}

func nonStop(offer FlightOffer) bool {
	for _, it := range offer.Itineraries {
		if len(it.Segments) > 1 {
			return false
		}
	}
	return true
}
