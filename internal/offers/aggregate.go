// Package offers groups one-way flight records into purchasable offers and
// orders them for display.
package offers

import (
	"flight-offers-api/internal/calendar"
	"flight-offers-api/internal/models"
)

// Stats describes how a batch of records was aggregated. Records that could
// not be placed are dropped silently by Aggregate; Stats makes that visible.
type Stats struct {
	Records   int // records received
	Groups    int // distinct correlation keys
	Offers    int // offers emitted
	Unmatched int // records matching neither requested date
	Replaced  int // records that overwrote an earlier record of the same slot
	Dropped   int // groups without an outbound leg
}

type group struct {
	outbound *models.FlightSearchResult
	inbound  *models.FlightSearchResult
}

// Aggregate groups records by parent offer id (or their own id) and emits one
// offer per group that has an outbound leg. returnDate is empty for one-way
// searches. Within a group, a later record of the same classification
// replaces an earlier one.
func Aggregate(records []models.FlightSearchResult, departureDate, returnDate string) []models.Offer {
	result, _ := AggregateWithStats(records, departureDate, returnDate)
	return result
}

// AggregateWithStats is Aggregate plus the bookkeeping of what was dropped or
// replaced.
func AggregateWithStats(records []models.FlightSearchResult, departureDate, returnDate string) ([]models.Offer, Stats) {
	stats := Stats{Records: len(records)}
	groups := make(map[string]*group)
	var order []string

	roundTrip := returnDate != ""

	for i := range records {
		rec := &records[i]
		key := CorrelationKey(*rec)

		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}

		date, _ := calendar.DateOf(rec.DepartureDateTime)

		switch {
		case date != "" && date == departureDate:
			if g.outbound != nil {
				stats.Replaced++
			}
			g.outbound = rec
		case roundTrip && date != "" && date == returnDate:
			if g.inbound != nil {
				stats.Replaced++
			}
			g.inbound = rec
		case !roundTrip:
			if g.outbound != nil {
				stats.Replaced++
			}
			g.outbound = rec
		default:
			stats.Unmatched++
		}
	}

	stats.Groups = len(order)
	result := make([]models.Offer, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if g.outbound == nil {
			stats.Dropped++
			continue
		}
		result = append(result, newOffer(key, g))
	}
	stats.Offers = len(result)

	return result, stats
}

// CorrelationKey returns the key grouping the legs of one offer.
func CorrelationKey(rec models.FlightSearchResult) string {
	if rec.ParentOfferID != nil && *rec.ParentOfferID != "" {
		return *rec.ParentOfferID
	}
	return rec.ID
}

func newOffer(key string, g *group) models.Offer {
	offer := models.Offer{
		OfferID:        key,
		OutboundFlight: *g.outbound,
		TotalPrice:     g.outbound.Price,
		NumberOfAdults: g.outbound.NumberOfAdults,
	}
	if g.inbound != nil {
		inbound := *g.inbound
		offer.InboundFlight = &inbound
		offer.IsRoundTrip = true
	}
	return offer
}
