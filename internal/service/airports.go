package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"flight-offers-api/internal/cache"
	"flight-offers-api/internal/models"
	"flight-offers-api/internal/provider"
	"flight-offers-api/internal/validation"
)

// SearchAirports returns airport suggestions for a keyword.
func (s *Service) SearchAirports(ctx context.Context, keyword string) ([]models.AirportSuggestion, error) {
	keyword, err := validation.ValidateKeyword(keyword)
	if err != nil {
		return nil, err
	}

	ctx, span := s.opts.Tracer.StartSpan(ctx, "service.SearchAirports")
	defer span.End()

	key := cache.SuggestionsKey(keyword)
	if s.cacheEnabled() {
		var cached []models.AirportSuggestion
		if err := cache.GetJSON(ctx, s.opts.Cache, key, &cached); err == nil {
			return cached, nil
		}
	}

	locations, err := s.provider.SearchLocations(ctx, keyword, s.opts.SuggestionLimit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	suggestions := make([]models.AirportSuggestion, 0, len(locations))
	seen := make(map[string]struct{}, len(locations))
	for _, loc := range locations {
		if loc.IataCode == "" {
			continue
		}
		if _, dup := seen[loc.IataCode]; dup {
			continue
		}
		seen[loc.IataCode] = struct{}{}
		name := loc.DisplayName()
		if name == "" {
			name = loc.IataCode
		}
		suggestions = append(suggestions, models.AirportSuggestion{Code: loc.IataCode, Name: name})
	}

	if s.cacheEnabled() && s.opts.AirportTTL > 0 {
		if err := cache.SetJSON(ctx, s.opts.Cache, key, suggestions, s.opts.AirportTTL); err != nil {
			s.logger.WarnContext(ctx, "suggestion cache write failed", "error", err)
		}
	}
	return suggestions, nil
}

// airportNames resolves display names for codes, at most LookupConcurrency
// lookups at a time. A code that cannot be resolved maps to itself; lookup
// failures never fail the caller.
func (s *Service) airportNames(ctx context.Context, codes []string) map[string]string {
	names := make(map[string]string, len(codes))
	if len(codes) == 0 {
		return names
	}

	ctx, span := s.opts.Tracer.StartSpan(ctx, "service.airportNames")
	defer span.End()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.LookupConcurrency)

	for _, code := range codes {
		code := code
		g.Go(func() error {
			name := s.airportName(gctx, code)
			mu.Lock()
			names[code] = name
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return names
}

func (s *Service) airportName(ctx context.Context, code string) string {
	key := cache.AirportNameKey(code)
	if s.cacheEnabled() {
		data, err := s.opts.Cache.Get(ctx, key)
		if err == nil {
			return string(data)
		}
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.WarnContext(ctx, "airport cache read failed", "code", code, "error", err)
		}
	}

	locations, err := s.provider.SearchLocations(ctx, code, s.opts.SuggestionLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "airport lookup failed", "code", code, "error", err)
		return code
	}

	name := pickDisplayName(code, locations)
	if name == "" {
		return code
	}

	if s.cacheEnabled() && s.opts.AirportTTL > 0 {
		if err := s.opts.Cache.Set(ctx, key, []byte(name), s.opts.AirportTTL); err != nil {
			s.logger.WarnContext(ctx, "airport cache write failed", "code", code, "error", err)
		}
	}
	return name
}

// pickDisplayName returns the display name of the location matching code.
func pickDisplayName(code string, locations []provider.Location) string {
	for _, loc := range locations {
		if !strings.EqualFold(loc.IataCode, code) {
			continue
		}
		if name := loc.DisplayName(); name != "" {
			return name
		}
	}
	return ""
}
