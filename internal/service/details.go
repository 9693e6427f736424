package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"flight-offers-api/internal/database"
	"flight-offers-api/internal/events"
	"flight-offers-api/internal/itinerary"
	"flight-offers-api/internal/models"
	"flight-offers-api/internal/provider"
	"flight-offers-api/internal/validation"
)

// GetFlightDetails returns the details of a searched offer with a render plan
// per itinerary. offerID is an upstream offer id or a record id
// "<offerId>-<index>".
func (s *Service) GetFlightDetails(ctx context.Context, offerID string) (models.FlightDetailsResponse, error) {
	offerID = validation.SanitizeString(offerID)
	if err := validation.ValidateOfferID(offerID); err != nil {
		return models.FlightDetailsResponse{}, err
	}

	ctx, span := s.opts.Tracer.StartSpan(ctx, "service.GetFlightDetails", attribute.String("offer_id", offerID))
	defer span.End()

	snap, err := s.lookupSnapshot(ctx, offerID)
	if err != nil {
		span.RecordError(err)
		return models.FlightDetailsResponse{}, err
	}

	names := s.airportNames(ctx, provider.SnapshotAirportCodes(*snap))
	details := provider.MapFlightDetails(*snap, names)
	for i := range details.Itineraries {
		it := &details.Itineraries[i]
		it.Plan = itinerary.Reconstruct(it.Segments, it.Stops)
	}

	if s.eventsEnabled() {
		s.opts.Events.PublishDetailsViewed(ctx, events.DetailsViewedData{
			RequestedID: offerID,
			OfferID:     details.ID,
			Itineraries: len(details.Itineraries),
		})
	}
	return details, nil
}

func (s *Service) lookupSnapshot(ctx context.Context, offerID string) (*provider.OfferSnapshot, error) {
	if !s.snapshotsEnabled() {
		return nil, fmt.Errorf("%w: %s", ErrOfferNotFound, offerID)
	}

	candidates := []string{offerID}
	if base, ok := parentOfferID(offerID); ok {
		candidates = append(candidates, base)
	}

	for _, id := range candidates {
		snap, err := s.store.GetSnapshot(ctx, id)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("load offer snapshot: %w", err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrOfferNotFound, offerID)
}

// parentOfferID strips a trailing "-<index>" from a record id.
func parentOfferID(id string) (string, bool) {
	i := strings.LastIndex(id, "-")
	if i <= 0 || i == len(id)-1 {
		return "", false
	}
	for _, r := range id[i+1:] {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return id[:i], true
}
