// Package itinerary turns one itinerary's segments and stop records into an
// ordered render plan of segment and layover blocks.
package itinerary

import (
	"sort"

	"flight-offers-api/internal/calendar"
	"flight-offers-api/internal/duration"
	"flight-offers-api/internal/models"
)

// Reconstruct orders segments by departure time and interleaves layover
// blocks between consecutive segments. A layover is emitted only when a stop
// carries the arrival code of the current segment and the departure code of
// the next one and has a non-empty duration.
func Reconstruct(segments []models.Segment, stops []models.Stop) []models.RenderPlanEntry {
	sorted := SortSegments(segments)
	plan := make([]models.RenderPlanEntry, 0, 2*len(sorted))

	for i, seg := range sorted {
		plan = append(plan, segmentEntry(seg))

		if i == len(sorted)-1 {
			break
		}
		next := sorted[i+1]
		if stop, ok := matchStop(stops, seg.ArrivalIataCode, next.DepartureIataCode); ok {
			plan = append(plan, layoverEntry(stop))
		}
	}

	return plan
}

// SortSegments returns a copy of segments in ascending departure order.
// Segments with unparseable departure times go last; ties keep provider
// order.
func SortSegments(segments []models.Segment) []models.Segment {
	sorted := make([]models.Segment, len(segments))
	copy(sorted, segments)

	sort.SliceStable(sorted, func(i, j int) bool {
		ti, okI := calendar.ParseTimestamp(sorted[i].DepartureDateTime)
		tj, okJ := calendar.ParseTimestamp(sorted[j].DepartureDateTime)
		switch {
		case okI && okJ:
			return ti.Before(tj)
		case okI:
			return true
		default:
			return false
		}
	})

	return sorted
}

// NextDayArrival reports whether seg arrives on a later calendar date than
// it departs.
func NextDayArrival(seg models.Segment) bool {
	same, ok := calendar.SameDay(seg.DepartureDateTime, seg.ArrivalDateTime)
	return ok && !same
}

func matchStop(stops []models.Stop, arrivalCode, departureCode string) (models.Stop, bool) {
	for _, stop := range stops {
		if stop.AirportCode == arrivalCode && stop.AirportCode == departureCode {
			if stop.LayoverDuration == "" {
				return models.Stop{}, false
			}
			return stop, true
		}
	}
	return models.Stop{}, false
}

func segmentEntry(seg models.Segment) models.RenderPlanEntry {
	return models.RenderPlanEntry{
		Kind: models.EntrySegment,
		Segment: &models.SegmentBlock{
			Segment:           seg,
			FormattedDuration: duration.Format(seg.Duration),
			NextDayArrival:    NextDayArrival(seg),
		},
	}
}

func layoverEntry(stop models.Stop) models.RenderPlanEntry {
	name := stop.AirportName
	if name == "" {
		name = stop.AirportCode
	}
	return models.RenderPlanEntry{
		Kind: models.EntryLayover,
		Layover: &models.LayoverBlock{
			AirportCode:       stop.AirportCode,
			AirportName:       name,
			LayoverDuration:   stop.LayoverDuration,
			FormattedDuration: duration.Format(stop.LayoverDuration),
		},
	}
}
