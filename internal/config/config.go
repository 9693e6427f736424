package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cast"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Security  SecurityConfig  `json:"security"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Provider  ProviderConfig  `json:"provider"`
	Cache     CacheConfig     `json:"cache"`
	Tracing   TracingConfig   `json:"tracing"`
	Lookup    LookupConfig    `json:"lookup"`
	Log       LogConfig       `json:"log"`
	Features  FeaturesConfig  `json:"features"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `json:"port"`
	Host            string `json:"host"`
	EnableTLS       bool   `json:"enable_tls"`
	CertFile        string `json:"cert_file"`
	KeyFile         string `json:"key_file"`
	ShutdownTimeout int    `json:"shutdown_timeout"` // in seconds
}

// DatabaseConfig holds the offer snapshot store configuration.
type DatabaseConfig struct {
	Driver      string `json:"driver"` // sqlite or bolt
	Path        string `json:"path"`
	SnapshotTTL int    `json:"snapshot_ttl"` // in seconds
}

// SecurityConfig holds security-related configuration.
type SecurityConfig struct {
	// Max request body size in bytes (default: 1MB)
	MaxRequestBodySize int64 `json:"max_request_body_size"`
	// Allowed CORS origins (comma-separated)
	AllowedOrigins string `json:"allowed_origins"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool `json:"enabled"`
	Rate    int  `json:"rate"`
	Window  int  `json:"window"` // in seconds
}

// ProviderConfig selects and configures the upstream flight provider.
type ProviderConfig struct {
	Name          string `json:"name"` // amadeus or file
	BaseURL       string `json:"base_url"`
	APIKey        string `json:"api_key"`
	APISecret     string `json:"api_secret"`
	Timeout       int    `json:"timeout"` // in seconds
	MaxResults    int    `json:"max_results"`
	OffersFile    string `json:"offers_file"`
	LocationsFile string `json:"locations_file"`
}

// CacheConfig holds lookup cache configuration.
type CacheConfig struct {
	Driver        string `json:"driver"` // memory or redis
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	Namespace     string `json:"namespace"`
	AirportTTL    int    `json:"airport_ttl"` // in seconds
	SearchTTL     int    `json:"search_ttl"`  // in seconds
}

// TracingConfig holds OpenTelemetry configuration.
type TracingConfig struct {
	Enabled     bool   `json:"enabled"`
	Endpoint    string `json:"endpoint"`
	ServiceName string `json:"service_name"`
	Environment string `json:"environment"`
}

// LookupConfig bounds the airport name lookups of a search.
type LookupConfig struct {
	Concurrency     int `json:"concurrency"`
	SuggestionLimit int `json:"suggestion_limit"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // text or json
}

// FeaturesConfig holds the initial state of the feature flags.
type FeaturesConfig struct {
	Cache      bool `json:"cache"`
	EventHooks bool `json:"event_hooks"`
	Snapshots  bool `json:"snapshots"`
}

// LoadConfig loads configuration from defaults and/or config file.
// Environment variables take precedence over config file values.
func LoadConfig(configFile string) (*Config, error) {
	cfg := defaults()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := overrideFromEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Driver:      "sqlite",
			Path:        "./flight_offers.db",
			SnapshotTTL: 1800,
		},
		Security: SecurityConfig{
			MaxRequestBodySize: 1 << 20,
			AllowedOrigins:     "*",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Rate:    100,
			Window:  60,
		},
		Provider: ProviderConfig{
			Name:       "amadeus",
			BaseURL:    "https://test.api.amadeus.com",
			Timeout:    15,
			MaxResults: 50,
		},
		Cache: CacheConfig{
			Driver:     "memory",
			RedisAddr:  "localhost:6379",
			Namespace:  "flight-offers:",
			AirportTTL: 86400,
			SearchTTL:  300,
		},
		Tracing: TracingConfig{
			Endpoint:    "http://localhost:14268/api/traces",
			ServiceName: "flight-offers-api",
			Environment: "development",
		},
		Lookup: LookupConfig{
			Concurrency:     4,
			SuggestionLimit: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Features: FeaturesConfig{
			Cache:      true,
			EventHooks: true,
			Snapshots:  true,
		},
	}
}

// loadFromFile loads configuration from a JSON file.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, cfg)
}

// overrideFromEnv overrides configuration with environment variables.
// A set but malformed variable is an error.
func overrideFromEnv(cfg *Config) error {
	strs := map[string]*string{
		"SERVER_PORT":             &cfg.Server.Port,
		"SERVER_HOST":             &cfg.Server.Host,
		"SERVER_CERT_FILE":        &cfg.Server.CertFile,
		"SERVER_KEY_FILE":         &cfg.Server.KeyFile,
		"DATABASE_DRIVER":         &cfg.Database.Driver,
		"DATABASE_PATH":           &cfg.Database.Path,
		"ALLOWED_ORIGINS":         &cfg.Security.AllowedOrigins,
		"PROVIDER_NAME":           &cfg.Provider.Name,
		"AMADEUS_BASE_URL":        &cfg.Provider.BaseURL,
		"AMADEUS_API_KEY":         &cfg.Provider.APIKey,
		"AMADEUS_API_SECRET":      &cfg.Provider.APISecret,
		"PROVIDER_OFFERS_FILE":    &cfg.Provider.OffersFile,
		"PROVIDER_LOCATIONS_FILE": &cfg.Provider.LocationsFile,
		"CACHE_DRIVER":            &cfg.Cache.Driver,
		"REDIS_ADDR":              &cfg.Cache.RedisAddr,
		"REDIS_PASSWORD":          &cfg.Cache.RedisPassword,
		"CACHE_NAMESPACE":         &cfg.Cache.Namespace,
		"TRACING_ENDPOINT":        &cfg.Tracing.Endpoint,
		"TRACING_SERVICE_NAME":    &cfg.Tracing.ServiceName,
		"TRACING_ENVIRONMENT":     &cfg.Tracing.Environment,
		"LOG_LEVEL":               &cfg.Log.Level,
		"LOG_FORMAT":              &cfg.Log.Format,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"SERVER_ENABLE_TLS":   &cfg.Server.EnableTLS,
		"RATE_LIMIT_ENABLED":  &cfg.RateLimit.Enabled,
		"TRACING_ENABLED":     &cfg.Tracing.Enabled,
		"FEATURE_CACHE":       &cfg.Features.Cache,
		"FEATURE_EVENT_HOOKS": &cfg.Features.EventHooks,
		"FEATURE_SNAPSHOTS":   &cfg.Features.Snapshots,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			b, err := cast.ToBoolE(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = b
		}
	}

	ints := map[string]*int{
		"SERVER_SHUTDOWN_TIMEOUT": &cfg.Server.ShutdownTimeout,
		"DATABASE_SNAPSHOT_TTL":   &cfg.Database.SnapshotTTL,
		"RATE_LIMIT_RATE":         &cfg.RateLimit.Rate,
		"RATE_LIMIT_WINDOW":       &cfg.RateLimit.Window,
		"PROVIDER_TIMEOUT":        &cfg.Provider.Timeout,
		"PROVIDER_MAX_RESULTS":    &cfg.Provider.MaxResults,
		"REDIS_DB":                &cfg.Cache.RedisDB,
		"CACHE_AIRPORT_TTL":       &cfg.Cache.AirportTTL,
		"CACHE_SEARCH_TTL":        &cfg.Cache.SearchTTL,
		"LOOKUP_CONCURRENCY":      &cfg.Lookup.Concurrency,
		"LOOKUP_SUGGESTION_LIMIT": &cfg.Lookup.SuggestionLimit,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			i, err := cast.ToIntE(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = i
		}
	}

	if v := os.Getenv("MAX_REQUEST_BODY_SIZE"); v != "" {
		size, err := cast.ToInt64E(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_REQUEST_BODY_SIZE: %w", err)
		}
		cfg.Security.MaxRequestBodySize = size
	}

	return nil
}

// Seconds converts a configured number of seconds to a time.Duration.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	switch c.Database.Driver {
	case "sqlite", "bolt":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.SnapshotTTL <= 0 {
		return fmt.Errorf("snapshot ttl must be positive")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Rate <= 0 {
			return fmt.Errorf("rate limit rate must be positive")
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("rate limit window must be positive")
		}
	}
	switch c.Provider.Name {
	case "amadeus":
		if c.Provider.APIKey == "" || c.Provider.APISecret == "" {
			return fmt.Errorf("amadeus api key and secret are required")
		}
	case "file":
		if c.Provider.OffersFile == "" {
			return fmt.Errorf("file provider requires an offers file")
		}
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider.Name)
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache driver %q", c.Cache.Driver)
	}
	if c.Lookup.Concurrency <= 0 {
		return fmt.Errorf("lookup concurrency must be positive")
	}
	return nil
}
