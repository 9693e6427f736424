package provider

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/spf13/cast"

	"flight-offers-api/internal/calendar"
	"flight-offers-api/internal/duration"
	"flight-offers-api/internal/models"
)

// MapSearchResults maps every upstream offer into one record per itinerary.
func MapSearchResults(resp *FlightOffersResponse, airportNames map[string]string) []models.FlightSearchResult {
	if resp == nil {
		return []models.FlightSearchResult{}
	}
	carriers := resp.carriers()
	results := make([]models.FlightSearchResult, 0, len(resp.Data))
	for _, offer := range resp.Data {
		results = append(results, MapOffer(offer, carriers, airportNames)...)
	}
	return results
}

// MapOffer maps one upstream offer. Record ids are "<offerId>-<index>"; the
// parent offer id is only set when the offer has more than one itinerary.
func MapOffer(offer FlightOffer, carriers, airportNames map[string]string) []models.FlightSearchResult {
	if len(offer.Itineraries) == 0 {
		slog.Warn("offer without itineraries", "offer_id", offer.ID)
		return nil
	}

	price := mapPrice(offer.ID, offer.Price, offer.TravelerPricings)
	adults := numberOfAdults(offer.TravelerPricings)

	var parent *string
	if len(offer.Itineraries) > 1 {
		id := offer.ID
		parent = &id
	}

	results := make([]models.FlightSearchResult, 0, len(offer.Itineraries))
	for idx, it := range offer.Itineraries {
		rec := models.FlightSearchResult{
			ID:             recordID(offer.ID, idx),
			ParentOfferID:  parent,
			NumberOfAdults: adults,
			Price:          price,
			Duration:       it.Duration,
			Segments:       make([]models.Segment, 0, len(it.Segments)),
			Stops:          gapStops(it.Segments, airportNames),
		}

		for i, ws := range it.Segments {
			seg := baseSegment(ws)
			rec.Segments = append(rec.Segments, seg)

			if i == 0 {
				rec.DepartureDateTime = seg.DepartureDateTime
				rec.DepartureAirport = airport(seg.DepartureIataCode, airportNames)
				rec.Airline = models.Airline{Code: seg.CarrierCode, Name: AirlineName(seg.CarrierCode, carriers)}
				if op := seg.OperatingCarrierCode; op != nil && *op != seg.CarrierCode {
					rec.OperatingAirline = &models.Airline{Code: *op, Name: AirlineName(*op, carriers)}
				}
			}
			if i == len(it.Segments)-1 {
				rec.ArrivalDateTime = seg.ArrivalDateTime
				rec.ArrivalAirport = airport(seg.ArrivalIataCode, airportNames)
			}
		}
		results = append(results, rec)
	}
	return results
}

// MapFlightDetails maps a stored offer into its details view.
func MapFlightDetails(snap OfferSnapshot, airportNames map[string]string) models.FlightDetailsResponse {
	offer := snap.Offer
	resp := models.FlightDetailsResponse{
		ID:             offer.ID,
		NumberOfAdults: numberOfAdults(offer.TravelerPricings),
		Itineraries:    make([]models.ItineraryDetails, 0, len(offer.Itineraries)),
	}
	if offer.Price != nil {
		price := mapPrice(offer.ID, offer.Price, offer.TravelerPricings)
		resp.TotalPrice = &price
	}

	for idx, it := range offer.Itineraries {
		details := models.ItineraryDetails{
			ID:        recordID(offer.ID, idx),
			Duration:  it.Duration,
			Direction: models.DirectionInbound,
			Segments:  make([]models.Segment, 0, len(it.Segments)),
			Stops:     gapStops(it.Segments, airportNames),
		}
		if idx == 0 {
			details.Direction = models.DirectionOutbound
		}

		for _, ws := range it.Segments {
			seg := baseSegment(ws)
			seg.DepartureAirportName = airportName(seg.DepartureIataCode, airportNames)
			seg.ArrivalAirportName = airportName(seg.ArrivalIataCode, airportNames)
			seg.AirlineName = AirlineName(seg.CarrierCode, snap.Carriers)
			if seg.OperatingCarrierCode != nil {
				name := AirlineName(*seg.OperatingCarrierCode, snap.Carriers)
				seg.OperatingCarrierName = &name
			}
			if seg.AircraftCode != nil {
				name := AircraftTypeName(*seg.AircraftCode)
				seg.AircraftTypeName = &name
			}
			seg.TravelerFareDetails = fareDetailsFor(ws.ID, offer.TravelerPricings)
			details.Segments = append(details.Segments, seg)
		}

		if n := len(details.Segments); n > 0 {
			first, last := details.Segments[0], details.Segments[n-1]
			details.DepartureDateTime = first.DepartureDateTime
			details.DepartureAirport = airport(first.DepartureIataCode, airportNames)
			details.ArrivalDateTime = last.ArrivalDateTime
			details.ArrivalAirport = airport(last.ArrivalIataCode, airportNames)
		}
		resp.Itineraries = append(resp.Itineraries, details)
	}
	return resp
}

// AirportCodes returns the distinct airport codes used by the offers, sorted.
func AirportCodes(resp *FlightOffersResponse) []string {
	if resp == nil {
		return nil
	}
	return offerAirportCodes(resp.Data...)
}

// SnapshotAirportCodes returns the distinct airport codes of one stored offer.
func SnapshotAirportCodes(snap OfferSnapshot) []string {
	return offerAirportCodes(snap.Offer)
}

func offerAirportCodes(offers ...FlightOffer) []string {
	seen := make(map[string]struct{})
	for _, offer := range offers {
		for _, it := range offer.Itineraries {
			for _, seg := range it.Segments {
				if seg.Departure != nil && seg.Departure.IataCode != "" {
					seen[seg.Departure.IataCode] = struct{}{}
				}
				if seg.Arrival != nil && seg.Arrival.IataCode != "" {
					seen[seg.Arrival.IataCode] = struct{}{}
				}
			}
		}
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Snapshots splits a search response into one snapshot per offer.
func Snapshots(resp *FlightOffersResponse) []OfferSnapshot {
	if resp == nil {
		return nil
	}
	carriers := resp.carriers()
	snaps := make([]OfferSnapshot, 0, len(resp.Data))
	for _, offer := range resp.Data {
		snaps = append(snaps, OfferSnapshot{Offer: offer, Carriers: carriers})
	}
	return snaps
}

func (r *FlightOffersResponse) carriers() map[string]string {
	if r.Dictionaries == nil {
		return nil
	}
	return r.Dictionaries.Carriers
}

func recordID(offerID string, idx int) string {
	return offerID + "-" + strconv.Itoa(idx)
}

func numberOfAdults(pricings []TravelerPricing) int {
	if len(pricings) == 0 {
		return 1
	}
	return len(pricings)
}

// mapPrice takes the total from grandTotal. Fees are total minus base, or the
// sum of the fee lines when either figure is missing.
func mapPrice(offerID string, p *OfferPrice, pricings []TravelerPricing) models.Price {
	if p == nil {
		slog.Warn("offer without price", "offer_id", offerID)
		return models.Price{}
	}
	price := models.Price{
		Currency: p.Currency,
		Total:    p.GrandTotal,
		Base:     p.Base,
	}

	switch {
	case price.Total != "" && price.Base != "":
		total, errT := strconv.ParseFloat(price.Total, 64)
		base, errB := strconv.ParseFloat(price.Base, 64)
		if errT != nil || errB != nil {
			slog.Warn("could not compute fees", "offer_id", offerID, "total", price.Total, "base", price.Base)
			break
		}
		fees := fmt.Sprintf("%.2f", total-base)
		price.Fees = &fees
	case len(p.Fees) > 0:
		var sum float64
		for _, f := range p.Fees {
			sum += cast.ToFloat64(f.Amount)
		}
		fees := fmt.Sprintf("%.2f", sum)
		price.Fees = &fees
	}

	perAdult := price.Total
	if len(pricings) > 0 && pricings[0].Price != nil && pricings[0].Price.Total != "" {
		perAdult = pricings[0].Price.Total
	}
	price.PricePerAdult = &perAdult
	return price
}

func baseSegment(ws WireSegment) models.Segment {
	seg := models.Segment{
		ID:          ws.ID,
		CarrierCode: ws.CarrierCode,
		Number:      ws.Number,
		Duration:    ws.Duration,
	}
	if ws.Departure != nil {
		seg.DepartureIataCode = ws.Departure.IataCode
		seg.DepartureDateTime = ws.Departure.At
	}
	if ws.Arrival != nil {
		seg.ArrivalIataCode = ws.Arrival.IataCode
		seg.ArrivalDateTime = ws.Arrival.At
	}
	if ws.Operating != nil && ws.Operating.CarrierCode != "" {
		code := ws.Operating.CarrierCode
		seg.OperatingCarrierCode = &code
	}
	if ws.Aircraft != nil && ws.Aircraft.Code != "" {
		code := ws.Aircraft.Code
		seg.AircraftCode = &code
	}
	return seg
}

// gapStops derives one stop per positive gap between the arrival of a segment
// and the departure of the next one, located at the arrival airport.
func gapStops(segments []WireSegment, airportNames map[string]string) []models.Stop {
	stops := make([]models.Stop, 0)
	for i := 0; i+1 < len(segments); i++ {
		cur, next := segments[i], segments[i+1]
		if cur.Arrival == nil || next.Departure == nil {
			continue
		}
		arrived, ok1 := calendar.ParseTimestamp(cur.Arrival.At)
		leaves, ok2 := calendar.ParseTimestamp(next.Departure.At)
		if !ok1 || !ok2 {
			slog.Warn("could not compute layover", "arrival", cur.Arrival.At, "departure", next.Departure.At)
			continue
		}
		gap := leaves.Sub(arrived)
		if gap <= 0 {
			continue
		}
		code := cur.Arrival.IataCode
		stops = append(stops, models.Stop{
			AirportCode:     code,
			AirportName:     airportName(code, airportNames),
			LayoverDuration: duration.FromDuration(gap),
		})
	}
	return stops
}

func fareDetailsFor(segmentID string, pricings []TravelerPricing) []models.FareDetail {
	details := make([]models.FareDetail, 0, len(pricings))
	if segmentID == "" {
		return details
	}
	for _, tp := range pricings {
		for _, fd := range tp.FareDetailsBySegment {
			if fd.SegmentID != segmentID {
				continue
			}
			amenities := make([]models.Amenity, 0, len(fd.Amenities))
			for _, a := range fd.Amenities {
				amenities = append(amenities, models.Amenity{
					Description:  a.Description,
					IsChargeable: a.IsChargeable,
					AmenityType:  a.AmenityType,
				})
			}
			details = append(details, models.FareDetail{
				Cabin:       fd.Cabin,
				FareBasis:   fd.FareBasis,
				BrandedFare: fd.BrandedFare,
				ClassCode:   fd.Class,
				Amenities:   amenities,
			})
		}
	}
	return details
}

func airport(code string, names map[string]string) models.Airport {
	return models.Airport{Code: code, Name: airportName(code, names)}
}

func airportName(code string, names map[string]string) string {
	if name, ok := names[code]; ok && name != "" {
		return name
	}
	return code
}
