package provider

// Wire types of the Amadeus self-service API. Only the fields the service
// reads are declared.

// LocationsResponse is the payload of /v1/reference-data/locations.
type LocationsResponse struct {
	Data []Location `json:"data"`
}

// Location is an airport or city.
type Location struct {
	SubType      string   `json:"subType,omitempty"`
	IataCode     string   `json:"iataCode"`
	Name         string   `json:"name,omitempty"`
	DetailedName string   `json:"detailedName,omitempty"`
	Address      *Address `json:"address,omitempty"`
}

// Address of a location.
type Address struct {
	CityName    string `json:"cityName,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}

// FlightOffersResponse is the payload of /v2/shopping/flight-offers.
type FlightOffersResponse struct {
	Data         []FlightOffer `json:"data"`
	Dictionaries *Dictionaries `json:"dictionaries,omitempty"`
}

// Dictionaries resolve codes used in the offers.
type Dictionaries struct {
	Carriers map[string]string `json:"carriers,omitempty"`
	Aircraft map[string]string `json:"aircraft,omitempty"`
}

// FlightOffer is one purchasable upstream offer with one itinerary per
// direction.
type FlightOffer struct {
	ID               string            `json:"id"`
	Price            *OfferPrice       `json:"price,omitempty"`
	Itineraries      []Itinerary       `json:"itineraries"`
	TravelerPricings []TravelerPricing `json:"travelerPricings,omitempty"`
}

// OfferPrice is the offer-level price.
type OfferPrice struct {
	Currency   string `json:"currency,omitempty"`
	Total      string `json:"total,omitempty"`
	Base       string `json:"base,omitempty"`
	GrandTotal string `json:"grandTotal,omitempty"`
	Fees       []Fee  `json:"fees,omitempty"`
}

// Fee is one fee line. Amount arrives as a string or a number.
type Fee struct {
	Amount any    `json:"amount"`
	Type   string `json:"type,omitempty"`
}

// Itinerary is one direction of an offer.
type Itinerary struct {
	Duration string        `json:"duration,omitempty"`
	Segments []WireSegment `json:"segments"`
}

// WireSegment is one flight of an itinerary.
type WireSegment struct {
	ID            string        `json:"id,omitempty"`
	Departure     *Endpoint     `json:"departure,omitempty"`
	Arrival       *Endpoint     `json:"arrival,omitempty"`
	CarrierCode   string        `json:"carrierCode,omitempty"`
	Number        string        `json:"number,omitempty"`
	Aircraft      *AircraftRef  `json:"aircraft,omitempty"`
	Operating     *OperatingRef `json:"operating,omitempty"`
	Duration      string        `json:"duration,omitempty"`
	NumberOfStops int           `json:"numberOfStops,omitempty"`
}

// Endpoint is the departure or arrival of a segment.
type Endpoint struct {
	IataCode string `json:"iataCode,omitempty"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at,omitempty"`
}

// AircraftRef names the equipment of a segment.
type AircraftRef struct {
	Code string `json:"code,omitempty"`
}

// OperatingRef names the operating carrier of a codeshare segment.
type OperatingRef struct {
	CarrierCode string `json:"carrierCode,omitempty"`
}

// TravelerPricing is the price of one traveler.
type TravelerPricing struct {
	TravelerID           string                `json:"travelerId,omitempty"`
	TravelerType         string                `json:"travelerType,omitempty"`
	Price                *TravelerPrice        `json:"price,omitempty"`
	FareDetailsBySegment []FareDetailBySegment `json:"fareDetailsBySegment,omitempty"`
}

// TravelerPrice is the total of one traveler.
type TravelerPrice struct {
	Currency string `json:"currency,omitempty"`
	Total    string `json:"total,omitempty"`
	Base     string `json:"base,omitempty"`
}

// FareDetailBySegment is the fare of one traveler on one segment.
type FareDetailBySegment struct {
	SegmentID   string        `json:"segmentId"`
	Cabin       string        `json:"cabin,omitempty"`
	FareBasis   string        `json:"fareBasis,omitempty"`
	BrandedFare string        `json:"brandedFare,omitempty"`
	Class       string        `json:"class,omitempty"`
	Amenities   []WireAmenity `json:"amenities,omitempty"`
}

// WireAmenity is an amenity of a fare.
type WireAmenity struct {
	Description  string `json:"description,omitempty"`
	IsChargeable bool   `json:"isChargeable"`
	AmenityType  string `json:"amenityType,omitempty"`
}

// OfferSnapshot is what gets persisted per offer after a search, so the
// details of an offer can be mapped later without searching again.
type OfferSnapshot struct {
	Offer    FlightOffer       `json:"offer"`
	Carriers map[string]string `json:"carriers,omitempty"`
}
