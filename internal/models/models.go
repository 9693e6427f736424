package models

// Price carries the upstream price figures as opaque decimal strings.
type Price struct {
	Currency      string  `json:"currency"`
	Total         string  `json:"total"` // e.g. "123.45"
	Base          string  `json:"base"`
	Fees          *string `json:"fees,omitempty"` // total - base
	PricePerAdult *string `json:"pricePerAdult,omitempty"`
}

// Airport is an IATA code with its display name.
type Airport struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Airline is an IATA carrier code with its display name.
type Airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// AirportSuggestion is one entry of the airport autocomplete.
type AirportSuggestion struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Amenity is a fare amenity (meal, bag, seat...).
type Amenity struct {
	Description  string `json:"description"`
	IsChargeable bool   `json:"isChargeable"`
	AmenityType  string `json:"amenityType,omitempty"`
}

// FareDetail describes the fare of one traveler on one segment.
type FareDetail struct {
	Cabin       string    `json:"cabin"`
	FareBasis   string    `json:"fareBasis"`
	BrandedFare string    `json:"brandedFare,omitempty"`
	ClassCode   string    `json:"classCode,omitempty"`
	Amenities   []Amenity `json:"amenities"`
}

// Segment is one non-stop flight within an itinerary.
type Segment struct {
	ID                   string       `json:"id,omitempty"`
	DepartureIataCode    string       `json:"departureIataCode"`
	DepartureDateTime    string       `json:"departureDateTime"`
	ArrivalIataCode      string       `json:"arrivalIataCode"`
	ArrivalDateTime      string       `json:"arrivalDateTime"`
	CarrierCode          string       `json:"carrierCode"`
	Number               string       `json:"number"`
	Duration             string       `json:"duration"` // ISO-8601, e.g. "PT2H0M"
	OperatingCarrierCode *string      `json:"operatingCarrierCode,omitempty"`
	OperatingCarrierName *string      `json:"operatingCarrierName,omitempty"`
	AircraftCode         *string      `json:"aircraftCode,omitempty"`
	AircraftTypeName     *string      `json:"aircraftTypeName,omitempty"`
	DepartureAirportName string       `json:"departureAirportName,omitempty"`
	ArrivalAirportName   string       `json:"arrivalAirportName,omitempty"`
	AirlineName          string       `json:"airlineName,omitempty"`
	TravelerFareDetails  []FareDetail `json:"travelerFareDetails,omitempty"`
}

// Stop is a layover between two segments.
type Stop struct {
	AirportCode     string `json:"airportCode"`
	AirportName     string `json:"airportName"`
	LayoverDuration string `json:"layoverDuration"`
}

// FlightSearchResult is one directional flight as returned by a search.
type FlightSearchResult struct {
	ID                string    `json:"id"`
	ParentOfferID     *string   `json:"parentOfferId,omitempty"`
	NumberOfAdults    int       `json:"numberOfAdults"`
	Price             Price     `json:"price"`
	Duration          string    `json:"duration"`
	DepartureDateTime string    `json:"departureDateTime"`
	DepartureAirport  Airport   `json:"departureAirport"`
	ArrivalDateTime   string    `json:"arrivalDateTime"`
	ArrivalAirport    Airport   `json:"arrivalAirport"`
	Airline           Airline   `json:"airline"`
	OperatingAirline  *Airline  `json:"operatingAirline,omitempty"`
	Segments          []Segment `json:"segments"`
	Stops             []Stop    `json:"stops"`
}

// Offer is one purchasable unit: an outbound leg and, for round trips,
// an inbound leg sharing the same price.
type Offer struct {
	OfferID        string              `json:"offerId"`
	OutboundFlight FlightSearchResult  `json:"outboundFlight"`
	InboundFlight  *FlightSearchResult `json:"inboundFlight,omitempty"`
	TotalPrice     Price               `json:"totalPrice"`
	NumberOfAdults int                 `json:"numberOfAdults"`
	IsRoundTrip    bool                `json:"isRoundTrip"`
	TotalDuration  string              `json:"totalDuration,omitempty"`
}

// Itinerary directions.
const (
	DirectionOutbound = "OUTBOUND"
	DirectionInbound  = "INBOUND"
)

// ItineraryDetails is one direction of a detailed offer.
type ItineraryDetails struct {
	ID                string            `json:"id"`
	Duration          string            `json:"duration"`
	Direction         string            `json:"direction"`
	DepartureDateTime string            `json:"departureDateTime"`
	DepartureAirport  Airport           `json:"departureAirport"`
	ArrivalDateTime   string            `json:"arrivalDateTime"`
	ArrivalAirport    Airport           `json:"arrivalAirport"`
	Segments          []Segment         `json:"segments"`
	Stops             []Stop            `json:"stops"`
	Plan              []RenderPlanEntry `json:"plan"`
}

// FlightDetailsResponse is the payload of the offer details endpoint.
type FlightDetailsResponse struct {
	ID             string             `json:"id"`
	NumberOfAdults int                `json:"numberOfAdults"`
	TotalPrice     *Price             `json:"totalPrice,omitempty"`
	Itineraries    []ItineraryDetails `json:"itineraries"`
}

// Render plan entry kinds.
const (
	EntrySegment = "segment"
	EntryLayover = "layover"
)

// SegmentBlock is the display data of one segment.
type SegmentBlock struct {
	Segment           Segment `json:"segment"`
	FormattedDuration string  `json:"formattedDuration"`
	NextDayArrival    bool    `json:"nextDayArrival"`
}

// LayoverBlock is rendered between two consecutive segments.
type LayoverBlock struct {
	AirportCode       string `json:"airportCode"`
	AirportName       string `json:"airportName"` // falls back to the code
	LayoverDuration   string `json:"layoverDuration"`
	FormattedDuration string `json:"formattedDuration"`
}

// RenderPlanEntry is either a segment block or a layover block.
type RenderPlanEntry struct {
	Kind    string        `json:"kind"`
	Segment *SegmentBlock `json:"segment,omitempty"`
	Layover *LayoverBlock `json:"layover,omitempty"`
}

// SearchParams are the flight search criteria.
type SearchParams struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"` // YYYY-MM-DD
	ReturnDate    string `json:"returnDate,omitempty"`
	Adults        int    `json:"adults"`
	Currency      string `json:"currency"`
	NonStop       bool   `json:"nonStop"`
}

// IsRoundTrip reports whether a return date was requested.
func (p SearchParams) IsRoundTrip() bool {
	return p.ReturnDate != ""
}

// OffersResponse is the payload of the offers endpoint.
type OffersResponse struct {
	SearchID string  `json:"searchId"`
	SortBy   string  `json:"sortBy"`
	Order    string  `json:"order"`
	Offers   []Offer `json:"offers"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
