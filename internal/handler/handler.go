package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"

	"flight-offers-api/internal/features"
	"flight-offers-api/internal/models"
	"flight-offers-api/internal/provider"
	"flight-offers-api/internal/service"
	"flight-offers-api/internal/validation"
)

// Handler provides HTTP handlers for the API.
type Handler struct {
	service     *service.Service
	features    *features.Manager
	maxBodySize int64
	logger      *slog.Logger
}

// NewHandlerOptions holds options for creating a handler.
type NewHandlerOptions struct {
	MaxBodySize int64
	Features    *features.Manager
	Logger      *slog.Logger
}

// DefaultHandlerOptions returns default handler options.
func DefaultHandlerOptions() NewHandlerOptions {
	return NewHandlerOptions{
		MaxBodySize: 1 << 20,
	}
}

// NewHandler creates a new handler instance.
func NewHandler(svc *service.Service) *Handler {
	return NewHandlerWithOptions(svc, DefaultHandlerOptions())
}

// NewHandlerWithOptions creates a new handler instance with custom options.
func NewHandlerWithOptions(svc *service.Service, opts NewHandlerOptions) *Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Handler{
		service:     svc,
		features:    opts.Features,
		maxBodySize: opts.MaxBodySize,
		logger:      opts.Logger,
	}
}

// Routes mounts the API under r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/airports", h.SearchAirports)
		r.Get("/flights", h.SearchFlights)
		r.Get("/offers", h.SearchOffers)
		r.Get("/flights/{offerId}/details", h.GetFlightDetails)
		r.Get("/features", h.ListFeatures)
		r.Put("/features/{name}", h.SetFeature)
	})
}

// Health handles GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// SearchAirports handles GET /api/airports?keyword=
func (h *Handler) SearchAirports(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.service.SearchAirports(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, suggestions)
}

// SearchFlights handles GET /api/flights
func (h *Handler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	params, err := parseSearchParams(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	records, err := h.service.SearchFlights(r.Context(), params)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, records)
}

// SearchOffers handles GET /api/offers
func (h *Handler) SearchOffers(w http.ResponseWriter, r *http.Request) {
	params, err := parseSearchParams(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	q := r.URL.Query()
	resp, err := h.service.SearchOffers(r.Context(), params, q.Get("sortBy"), q.Get("order"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// GetFlightDetails handles GET /api/flights/{offerId}/details
func (h *Handler) GetFlightDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.GetFlightDetails(r.Context(), chi.URLParam(r, "offerId"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, details)
}

// ListFeatures handles GET /api/features
func (h *Handler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	if h.features == nil {
		h.respondJSON(w, http.StatusOK, []features.FeatureFlag{})
		return
	}
	h.respondJSON(w, http.StatusOK, h.features.List())
}

type setFeatureRequest struct {
	Enabled *bool `json:"enabled"`
}

// SetFeature handles PUT /api/features/{name}
func (h *Handler) SetFeature(w http.ResponseWriter, r *http.Request) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var req setFeatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			h.respondError(w, http.StatusBadRequest, "request body is required")
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}
	if req.Enabled == nil {
		h.respondError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	name := validation.SanitizeString(chi.URLParam(r, "name"))
	if h.features == nil || !h.features.Set(name, *req.Enabled) {
		h.respondError(w, http.StatusNotFound, "unknown feature "+name)
		return
	}

	h.logger.InfoContext(r.Context(), "feature toggled", "feature", name, "enabled", *req.Enabled)
	h.respondJSON(w, http.StatusOK, features.FeatureFlag{Name: name, Enabled: *req.Enabled})
}

// parseSearchParams reads the search criteria from the query string.
func parseSearchParams(r *http.Request) (models.SearchParams, error) {
	q := r.URL.Query()
	params := models.SearchParams{
		Origin:        q.Get("origin"),
		Destination:   q.Get("destination"),
		DepartureDate: q.Get("departureDate"),
		ReturnDate:    q.Get("returnDate"),
		Currency:      q.Get("currency"),
	}

	if v := q.Get("adults"); v != "" {
		adults, err := cast.ToIntE(validation.SanitizeString(v))
		if err != nil {
			return params, &validation.ValidationError{Field: "adults", Message: "must be a number"}
		}
		params.Adults = adults
	}
	if v := q.Get("nonStop"); v != "" {
		nonStop, err := cast.ToBoolE(validation.SanitizeString(v))
		if err != nil {
			return params, &validation.ValidationError{Field: "nonStop", Message: "must be true or false"}
		}
		params.NonStop = nonStop
	}
	return params, nil
}

// handleError maps service errors to HTTP statuses.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *validation.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.respondError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, service.ErrOfferNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, provider.ErrUpstream):
		h.logger.WarnContext(r.Context(), "upstream failure", "path", r.URL.Path, "error", err)
		h.respondError(w, http.StatusBadGateway, "flight provider unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		h.respondError(w, http.StatusGatewayTimeout, "request timed out")
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondJSON sends a JSON response with the given status code.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode response", "error", err)
	}
}

// respondError sends an error response with the given status code and message.
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.ErrorResponse{Error: message})
}
