package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"flight-offers-api/internal/calendar"
	"flight-offers-api/internal/models"
)

var (
	iataRegex     = regexp.MustCompile(`^[A-Z]{3}$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	offerIDRegex  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

const (
	minAdults         = 1
	maxAdults         = 9
	minKeywordLength  = 2
	maxKeywordLength  = 50
	defaultCurrency   = "USD"
	defaultAdultCount = 1
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NormalizeSearchParams trims and upper-cases codes and applies defaults for
// the optional fields.
func NormalizeSearchParams(p models.SearchParams) models.SearchParams {
	p.Origin = strings.ToUpper(SanitizeString(p.Origin))
	p.Destination = strings.ToUpper(SanitizeString(p.Destination))
	p.DepartureDate = SanitizeString(p.DepartureDate)
	p.ReturnDate = SanitizeString(p.ReturnDate)
	p.Currency = strings.ToUpper(SanitizeString(p.Currency))
	if p.Currency == "" {
		p.Currency = defaultCurrency
	}
	if p.Adults == 0 {
		p.Adults = defaultAdultCount
	}
	return p
}

// ValidateSearchParams checks normalized search criteria. today is the
// YYYY-MM-DD date departures are compared against.
func ValidateSearchParams(p models.SearchParams, today string) error {
	if err := validateIATA(p.Origin, "origin"); err != nil {
		return err
	}
	if err := validateIATA(p.Destination, "destination"); err != nil {
		return err
	}
	if p.Origin == p.Destination {
		return &ValidationError{
			Field:   "destination",
			Message: "must differ from origin",
		}
	}

	departure, err := validateDate(p.DepartureDate, "departureDate")
	if err != nil {
		return err
	}
	if p.DepartureDate < today {
		return &ValidationError{
			Field:   "departureDate",
			Message: "cannot be in the past",
		}
	}

	if p.ReturnDate != "" {
		ret, err := validateDate(p.ReturnDate, "returnDate")
		if err != nil {
			return err
		}
		if !ret.After(departure) {
			return &ValidationError{
				Field:   "returnDate",
				Message: "must be after departureDate",
			}
		}
	}

	if p.Adults < minAdults || p.Adults > maxAdults {
		return &ValidationError{
			Field:   "adults",
			Message: fmt.Sprintf("must be between %d and %d", minAdults, maxAdults),
		}
	}

	if !currencyRegex.MatchString(p.Currency) {
		return &ValidationError{
			Field:   "currency",
			Message: "must be a 3-letter ISO 4217 code",
		}
	}

	return nil
}

// ValidateKeyword checks an airport search keyword and returns it sanitized.
func ValidateKeyword(keyword string) (string, error) {
	keyword = SanitizeString(keyword)
	n := len([]rune(keyword))
	if n < minKeywordLength {
		return "", &ValidationError{
			Field:   "keyword",
			Message: fmt.Sprintf("must be at least %d characters", minKeywordLength),
		}
	}
	if n > maxKeywordLength {
		return "", &ValidationError{
			Field:   "keyword",
			Message: fmt.Sprintf("cannot exceed %d characters", maxKeywordLength),
		}
	}
	return keyword, nil
}

// ValidateOfferID checks an offer or record id taken from a URL.
func ValidateOfferID(id string) error {
	if id == "" {
		return &ValidationError{
			Field:   "offerId",
			Message: "is required",
		}
	}
	if !offerIDRegex.MatchString(id) {
		return &ValidationError{
			Field:   "offerId",
			Message: "contains invalid characters",
		}
	}
	return nil
}

// Today returns the YYYY-MM-DD date of now in its own location.
func Today(now time.Time) string {
	return now.Format(calendar.DateLayout)
}

func SanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(s)
}

func validateIATA(code, fieldName string) error {
	if code == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: "is required",
		}
	}
	if !iataRegex.MatchString(code) {
		return &ValidationError{
			Field:   fieldName,
			Message: "must be a 3-letter IATA code",
		}
	}
	return nil
}

func validateDate(s, fieldName string) (time.Time, error) {
	if s == "" {
		return time.Time{}, &ValidationError{
			Field:   fieldName,
			Message: "is required",
		}
	}
	t, err := calendar.ParseDate(s)
	if err != nil {
		return time.Time{}, &ValidationError{
			Field:   fieldName,
			Message: "must be a valid YYYY-MM-DD date",
		}
	}
	return t, nil
}
