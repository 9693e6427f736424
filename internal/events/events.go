package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"flight-offers-api/internal/models"
)

// EventType represents the type of event.
type EventType string

const (
	// EventSearchCompleted is emitted after an upstream search was mapped
	EventSearchCompleted EventType = "search.completed"
	// EventOffersRanked is emitted after offers were aggregated and ranked
	EventOffersRanked EventType = "offers.ranked"
	// EventDetailsViewed is emitted when the details of an offer are served
	EventDetailsViewed EventType = "details.viewed"
)

// Event represents an event in the system.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      interface{}
}

// SearchCompletedData contains data for search completed events.
type SearchCompletedData struct {
	SearchID string
	Params   models.SearchParams
	Offers   int
	Records  int
	Cached   bool
}

// OffersRankedData contains data for offers ranked events.
type OffersRankedData struct {
	SearchID  string
	SortBy    string
	Order     string
	Offers    int
	Dropped   int
	Replaced  int
	Unmatched int
}

// DetailsViewedData contains data for details viewed events.
type DetailsViewedData struct {
	RequestedID string
	OfferID     string
	Itineraries int
}

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Manager manages event handlers and event publishing.
type Manager struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	enabled  bool
	wg       sync.WaitGroup
}

// NewManager creates a new event manager.
func NewManager(enabled bool) *Manager {
	return &Manager{
		handlers: make(map[EventType][]Handler),
		enabled:  enabled,
	}
}

// Subscribe subscribes a handler to a specific event type.
func (m *Manager) Subscribe(eventType EventType, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled {
		return
	}
	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// Publish publishes an event to all subscribed handlers. Handlers run
// asynchronously and never see the request's cancellation.
func (m *Manager) Publish(ctx context.Context, eventType EventType, data interface{}) {
	m.mu.RLock()
	enabled := m.enabled
	handlers := m.handlers[eventType]
	m.mu.RUnlock()

	if !enabled || len(handlers) == 0 {
		return
	}

	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	ctx = context.WithoutCancel(ctx)
	for _, handler := range handlers {
		m.wg.Add(1)
		go func(h Handler) {
			defer m.wg.Done()
			if err := h(ctx, event); err != nil {
				slog.Warn("event handler failed", "event", event.Type, "error", err)
			}
		}(handler)
	}
}

// PublishSearchCompleted publishes a search completed event.
func (m *Manager) PublishSearchCompleted(ctx context.Context, data SearchCompletedData) {
	m.Publish(ctx, EventSearchCompleted, data)
}

// PublishOffersRanked publishes an offers ranked event.
func (m *Manager) PublishOffersRanked(ctx context.Context, data OffersRankedData) {
	m.Publish(ctx, EventOffersRanked, data)
}

// PublishDetailsViewed publishes a details viewed event.
func (m *Manager) PublishDetailsViewed(ctx context.Context, data DetailsViewedData) {
	m.Publish(ctx, EventDetailsViewed, data)
}

// LogHandler logs every event it receives.
func LogHandler(logger *slog.Logger) Handler {
	return func(ctx context.Context, event Event) error {
		logger.InfoContext(ctx, "event", "type", event.Type, "data", event.Data)
		return nil
	}
}

// Wait blocks until all running handlers returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Shutdown stops accepting events and waits for running handlers.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.enabled = false
	m.handlers = make(map[EventType][]Handler)
	m.mu.Unlock()

	m.wg.Wait()
}
