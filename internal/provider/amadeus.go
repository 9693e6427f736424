package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
)

// tokenSkew renews the access token slightly before it expires.
const tokenSkew = 30 * time.Second

// AmadeusConfig configures an Amadeus self-service client.
type AmadeusConfig struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	Timeout    time.Duration
	MaxResults int
}

// AmadeusClient is a Provider backed by the Amadeus REST API.
type AmadeusClient struct {
	cfg    AmadeusConfig
	client *http.Client
	now    func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewAmadeusClient creates a client. A nil httpClient uses one with the
// configured timeout.
func NewAmadeusClient(cfg AmadeusConfig, httpClient *http.Client) *AmadeusClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &AmadeusClient{cfg: cfg, client: httpClient, now: time.Now}
}

// Name implements Provider.
func (c *AmadeusClient) Name() string { return "amadeus" }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   any    `json:"expires_in"`
}

// accessToken returns the cached token or requests a new one.
func (c *AmadeusClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiresAt) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.APIKey)
	form.Set("client_secret", c.cfg.APISecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: build token request: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("%w: decode token: %v", ErrUpstream, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrUpstream)
	}

	ttl := time.Duration(cast.ToInt64(tok.ExpiresIn)) * time.Second
	c.token = tok.AccessToken
	c.expiresAt = c.now().Add(ttl - tokenSkew)
	slog.Debug("amadeus token refreshed", "expires_in", ttl)
	return c.token, nil
}

// SearchLocations implements Provider.
func (c *AmadeusClient) SearchLocations(ctx context.Context, keyword string, limit int) ([]Location, error) {
	q := url.Values{}
	q.Set("subType", "AIRPORT")
	q.Set("keyword", keyword)
	if limit > 0 {
		q.Set("page[limit]", strconv.Itoa(limit))
	}

	var resp LocationsResponse
	if err := c.get(ctx, "/v1/reference-data/locations", q, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []Location{}, nil
	}
	return resp.Data, nil
}

// SearchFlightOffers implements Provider.
func (c *AmadeusClient) SearchFlightOffers(ctx context.Context, r SearchRequest) (*FlightOffersResponse, error) {
	q := url.Values{}
	q.Set("originLocationCode", r.Origin)
	q.Set("destinationLocationCode", r.Destination)
	q.Set("departureDate", r.DepartureDate)
	if r.ReturnDate != "" {
		q.Set("returnDate", r.ReturnDate)
	}
	q.Set("adults", strconv.Itoa(r.Adults))
	if r.Currency != "" {
		q.Set("currencyCode", r.Currency)
	}
	q.Set("nonStop", strconv.FormatBool(r.NonStop))
	if c.cfg.MaxResults > 0 {
		q.Set("max", strconv.Itoa(c.cfg.MaxResults))
	}

	var resp FlightOffersResponse
	if err := c.get(ctx, "/v2/shopping/flight-offers", q, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []FlightOffer{}
	}
	return &resp, nil
}

func (c *AmadeusClient) get(ctx context.Context, path string, q url.Values, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, path, err)
	}
	return nil
}

func (c *AmadeusClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUpstream, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUpstream, req.URL.Path, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s returned %d: %s", ErrUpstream, req.URL.Path, resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
