package provider

var airlineNames = map[string]string{
	"AA": "AMERICAN AIRLINES",
	"AC": "AIR CANADA",
	"DL": "DELTA AIR LINES",
	"UA": "UNITED AIRLINES",
	"WN": "SOUTHWEST AIRLINES",
	"F9": "FRONTIER AIRLINES",
	"NK": "SPIRIT AIRLINES",
	"KE": "KOREAN AIR",
	"AF": "AIR FRANCE",
	"LH": "LUFTHANSA",
	"BA": "BRITISH AIRWAYS",
}

var aircraftTypeNames = map[string]string{
	"74H": "BOEING 747-8",
	"7M8": "BOEING 737 MAX 8",
	"32A": "AIRBUS A320",
	"320": "AIRBUS A320",
	"321": "AIRBUS A321",
	"319": "AIRBUS A319",
	"223": "AIRBUS A220-300",
	"32Q": "AIRBUS A320neo",
	"738": "BOEING 737-800",
	"77L": "BOEING 777-200LR",
	"789": "BOEING 787-9 Dreamliner",
}

// AirlineName resolves a carrier code through the response dictionary, then
// the built-in table, then falls back to the code.
func AirlineName(code string, carriers map[string]string) string {
	if name, ok := carriers[code]; ok && name != "" {
		return name
	}
	if name, ok := airlineNames[code]; ok {
		return name
	}
	return code
}

// AircraftTypeName resolves an aircraft code, falling back to the code.
func AircraftTypeName(code string) string {
	if name, ok := aircraftTypeNames[code]; ok {
		return name
	}
	return code
}
