package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"flight-offers-api/internal/cache"
	"flight-offers-api/internal/database"
	"flight-offers-api/internal/duration"
	"flight-offers-api/internal/events"
	"flight-offers-api/internal/features"
	"flight-offers-api/internal/models"
	"flight-offers-api/internal/offers"
	"flight-offers-api/internal/provider"
	"flight-offers-api/internal/tracing"
	"flight-offers-api/internal/validation"
)

// ErrOfferNotFound is returned when an offer is unknown or its snapshot
// expired.
var ErrOfferNotFound = errors.New("offer not found")

// Options holds the optional collaborators of a Service. Zero values disable
// the matching feature.
type Options struct {
	Cache             cache.Cache
	Events            *events.Manager
	Features          *features.Manager
	Tracer            *tracing.Tracer
	Logger            *slog.Logger
	AirportTTL        time.Duration
	SearchTTL         time.Duration
	LookupConcurrency int
	SuggestionLimit   int
	Now               func() time.Time
}

// Service provides the flight search use cases.
type Service struct {
	provider provider.Provider
	store    database.SnapshotStore
	opts     Options
	logger   *slog.Logger
}

// NewService creates a new service instance. store may be nil, in which case
// offer details are never found.
func NewService(p provider.Provider, store database.SnapshotStore, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = tracing.NewNoop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LookupConcurrency <= 0 {
		opts.LookupConcurrency = 4
	}
	if opts.SuggestionLimit <= 0 {
		opts.SuggestionLimit = 10
	}
	return &Service{
		provider: p,
		store:    store,
		opts:     opts,
		logger:   opts.Logger.With("provider", p.Name()),
	}
}

func (s *Service) cacheEnabled() bool {
	return s.opts.Cache != nil && s.opts.Features.IsEnabled(features.FeatureCacheEnabled)
}

func (s *Service) eventsEnabled() bool {
	return s.opts.Events != nil && s.opts.Features.IsEnabled(features.FeatureEventHooksEnabled)
}

func (s *Service) snapshotsEnabled() bool {
	return s.store != nil && s.opts.Features.IsEnabled(features.FeatureSnapshotsEnabled)
}

// SearchFlights returns one record per itinerary of every upstream offer.
func (s *Service) SearchFlights(ctx context.Context, params models.SearchParams) ([]models.FlightSearchResult, error) {
	ctx, span := s.opts.Tracer.StartSpan(ctx, "service.SearchFlights")
	defer span.End()

	res, err := s.search(ctx, params)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("records", len(res.records)))

	if s.eventsEnabled() {
		s.opts.Events.PublishSearchCompleted(ctx, events.SearchCompletedData{
			SearchID: res.searchID,
			Params:   res.params,
			Offers:   res.offers,
			Records:  len(res.records),
			Cached:   res.cached,
		})
	}
	return res.records, nil
}

// SearchOffers searches, groups records into offers and ranks them.
func (s *Service) SearchOffers(ctx context.Context, params models.SearchParams, sortBy, order string) (models.OffersResponse, error) {
	criterion, err := offers.ParseCriterion(sortBy)
	if err != nil {
		return models.OffersResponse{}, &validation.ValidationError{Field: "sortBy", Message: "must be price or duration"}
	}
	direction, err := offers.ParseOrder(order)
	if err != nil {
		return models.OffersResponse{}, &validation.ValidationError{Field: "order", Message: "must be asc or desc"}
	}

	ctx, span := s.opts.Tracer.StartSpan(ctx, "service.SearchOffers",
		attribute.String("sort_by", string(criterion)),
		attribute.String("order", string(direction)),
	)
	defer span.End()

	res, err := s.search(ctx, params)
	if err != nil {
		span.RecordError(err)
		return models.OffersResponse{}, err
	}

	grouped, stats := offers.AggregateWithStats(res.records, res.params.DepartureDate, res.params.ReturnDate)
	ranked := offers.Rank(grouped, criterion, direction)
	for i := range ranked {
		ranked[i].TotalDuration = duration.FromMinutes(offers.TotalDurationMinutes(ranked[i]))
	}

	s.logger.InfoContext(ctx, "offers ranked",
		"search_id", res.searchID,
		"records", stats.Records,
		"groups", stats.Groups,
		"offers", stats.Offers,
		"unmatched", stats.Unmatched,
		"replaced", stats.Replaced,
		"dropped", stats.Dropped,
	)
	if stats.Replaced > 0 {
		s.logger.WarnContext(ctx, "records replaced within an offer", "search_id", res.searchID, "replaced", stats.Replaced)
	}
	span.SetAttributes(attribute.Int("offers", len(ranked)))

	if s.eventsEnabled() {
		s.opts.Events.PublishOffersRanked(ctx, events.OffersRankedData{
			SearchID:  res.searchID,
			SortBy:    string(criterion),
			Order:     string(direction),
			Offers:    len(ranked),
			Dropped:   stats.Dropped,
			Replaced:  stats.Replaced,
			Unmatched: stats.Unmatched,
		})
	}

	return models.OffersResponse{
		SearchID: res.searchID,
		SortBy:   string(criterion),
		Order:    string(direction),
		Offers:   ranked,
	}, nil
}

type searchResult struct {
	searchID string
	params   models.SearchParams
	records  []models.FlightSearchResult
	offers   int
	cached   bool
}

func (s *Service) search(ctx context.Context, params models.SearchParams) (searchResult, error) {
	params = validation.NormalizeSearchParams(params)
	if err := validation.ValidateSearchParams(params, validation.Today(s.opts.Now())); err != nil {
		return searchResult{}, err
	}

	res := searchResult{searchID: uuid.New().String(), params: params}

	resp, cached, err := s.fetchOffers(ctx, params)
	if err != nil {
		return searchResult{}, fmt.Errorf("search flight offers: %w", err)
	}
	res.cached = cached
	res.offers = len(resp.Data)

	if s.snapshotsEnabled() {
		saved, err := s.store.SaveSnapshots(ctx, res.searchID, provider.Snapshots(resp))
		if err != nil {
			return searchResult{}, fmt.Errorf("save offer snapshots: %w", err)
		}
		s.logger.DebugContext(ctx, "offer snapshots saved", "search_id", res.searchID, "count", saved)
	}

	names := s.airportNames(ctx, provider.AirportCodes(resp))
	res.records = provider.MapSearchResults(resp, names)

	s.logger.InfoContext(ctx, "flight search completed",
		"search_id", res.searchID,
		"origin", params.Origin,
		"destination", params.Destination,
		"departure_date", params.DepartureDate,
		"return_date", params.ReturnDate,
		"offers", res.offers,
		"records", len(res.records),
		"cached", cached,
	)
	return res, nil
}

// fetchOffers asks the provider, going through the cache when enabled.
func (s *Service) fetchOffers(ctx context.Context, params models.SearchParams) (*provider.FlightOffersResponse, bool, error) {
	key := cache.SearchKey(params)
	if s.cacheEnabled() {
		var resp provider.FlightOffersResponse
		err := cache.GetJSON(ctx, s.opts.Cache, key, &resp)
		if err == nil {
			return &resp, true, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.WarnContext(ctx, "search cache read failed", "error", err)
		}
	}

	ctx, span := s.opts.Tracer.StartSpan(ctx, "provider.SearchFlightOffers")
	resp, err := s.provider.SearchFlightOffers(ctx, provider.SearchRequest{
		Origin:        params.Origin,
		Destination:   params.Destination,
		DepartureDate: params.DepartureDate,
		ReturnDate:    params.ReturnDate,
		Adults:        params.Adults,
		Currency:      params.Currency,
		NonStop:       params.NonStop,
	})
	span.End()
	if err != nil {
		return nil, false, err
	}

	if s.cacheEnabled() && s.opts.SearchTTL > 0 {
		if err := cache.SetJSON(ctx, s.opts.Cache, key, resp, s.opts.SearchTTL); err != nil {
			s.logger.WarnContext(ctx, "search cache write failed", "error", err)
		}
	}
	return resp, false, nil
}

// PurgeSnapshots removes expired offer snapshots every interval until ctx is
// done.
func (s *Service) PurgeSnapshots(ctx context.Context, interval time.Duration) {
	if s.store == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.PurgeExpired(ctx)
			if err != nil {
				s.logger.WarnContext(ctx, "snapshot purge failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.InfoContext(ctx, "expired snapshots purged", "count", n)
			}
		}
	}
}
