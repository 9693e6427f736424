package offers

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"flight-offers-api/internal/duration"
	"flight-offers-api/internal/models"
)

// Criterion selects the ranking key.
type Criterion string

// Order selects the ranking direction.
type Order string

const (
	ByPrice    Criterion = "price"
	ByDuration Criterion = "duration"

	Ascending  Order = "asc"
	Descending Order = "desc"
)

// ParseCriterion parses a sortBy value. Empty defaults to price.
func ParseCriterion(s string) (Criterion, error) {
	switch Criterion(strings.ToLower(strings.TrimSpace(s))) {
	case "", ByPrice:
		return ByPrice, nil
	case ByDuration:
		return ByDuration, nil
	default:
		return "", fmt.Errorf("unsupported sort criterion %q", s)
	}
}

// ParseOrder parses an order value. Empty defaults to ascending.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	default:
		return "", fmt.Errorf("unsupported sort order %q", s)
	}
}

// Rank returns a reordered copy of list. Ties keep their input order in
// both directions.
func Rank(list []models.Offer, criterion Criterion, order Order) []models.Offer {
	keys := make([]float64, len(list))
	for i := range list {
		switch criterion {
		case ByDuration:
			keys[i] = float64(TotalDurationMinutes(list[i]))
		default:
			keys[i] = PriceKey(list[i].TotalPrice.Total)
		}
	}

	idx := make([]int, len(list))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if order == Descending {
			return ka > kb
		}
		return ka < kb
	})

	result := make([]models.Offer, len(list))
	for i, j := range idx {
		result[i] = list[j]
	}
	return result
}

// PriceKey parses a decimal price string. Values that are not numbers rank
// as +Inf, after every numeric price in ascending order.
func PriceKey(total string) float64 {
	v, err := cast.ToFloat64E(strings.TrimSpace(total))
	if err != nil || math.IsNaN(v) {
		return math.Inf(1)
	}
	return v
}

// TotalDurationMinutes sums flight and layover durations of every leg of
// the offer.
func TotalDurationMinutes(o models.Offer) int {
	total := legMinutes(o.OutboundFlight)
	if o.InboundFlight != nil {
		total += legMinutes(*o.InboundFlight)
	}
	return total
}

func legMinutes(f models.FlightSearchResult) int {
	total := duration.ParseMinutes(f.Duration)
	for _, stop := range f.Stops {
		total += duration.ParseMinutes(stop.LayoverDuration)
	}
	return total
}
