// Package config loads application configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Env       string          `yaml:"env"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	BaaS      BaaSConfig      `yaml:"baas"`
	Users     UsersConfig     `yaml:"users"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Session   SessionConfig   `yaml:"session"`
	Checkout  CheckoutConfig  `yaml:"checkout"`
	Orders    OrdersConfig    `yaml:"orders"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type LogConfig struct {
	Mode     string `yaml:"mode"`  // production, development
	Level    string `yaml:"level"` // debug, info, warn, error
	Redact   bool   `yaml:"redact"`
	HashSalt string `yaml:"hash_salt"`
}

// BaaSConfig points at the hosted backend (auth + row API).
type BaaSConfig struct {
	URL        string        `yaml:"url"`
	AnonKey    string        `yaml:"anon_key"`
	JWTSecret  string        `yaml:"jwt_secret"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

type UsersConfig struct {
	// Identity selects the identity provider: baas or memory.
	Identity string `yaml:"identity"`
	// Store selects the profile store: baas or memory.
	Store string `yaml:"store"`
}

type CatalogConfig struct {
	// Store selects the product store: baas or memory.
	Store string `yaml:"store"`
}

type SessionConfig struct {
	Store         string        `yaml:"store"` // memory, redis
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
	CookieName    string        `yaml:"cookie_name"`
	CookieSecure  bool          `yaml:"cookie_secure"`
	RefreshSkew   time.Duration `yaml:"refresh_skew"`
}

// SellerPolicy overrides checkout defaults for one seller.
type SellerPolicy struct {
	MinimumQuantity  int   `yaml:"minimum_quantity"`
	DeliveryFeeCents int64 `yaml:"delivery_fee_cents"`
}

type CheckoutConfig struct {
	Currency                string                  `yaml:"currency"`
	PlacementDelay          time.Duration           `yaml:"placement_delay"`
	DefaultMinimumQuantity  int                     `yaml:"default_minimum_quantity"`
	DefaultDeliveryFeeCents int64                   `yaml:"default_delivery_fee_cents"`
	Sellers                 map[string]SellerPolicy `yaml:"sellers"`
}

type OrdersConfig struct {
	Store   string        `yaml:"store"` // memory, spanner
	Spanner SpannerConfig `yaml:"spanner"`
}

type SpannerConfig struct {
	ProjectID  string `yaml:"project_id"`
	InstanceID string `yaml:"instance_id"`
	DatabaseID string `yaml:"database_id"`
}

type TelemetryConfig struct {
	Enabled     bool              `yaml:"enabled"`
	ServiceName string            `yaml:"service_name"`
	Endpoint    string            `yaml:"endpoint"`
	Insecure    bool              `yaml:"insecure"`
	Headers     map[string]string `yaml:"headers"`
	SampleRatio float64           `yaml:"sample_ratio"`
}

// Default returns a configuration that runs fully in memory.
func Default() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigins:  []string{"http://localhost:5173"},
		},
		Log: LogConfig{
			Mode:   "development",
			Level:  "info",
			Redact: true,
		},
		BaaS: BaaSConfig{
			Timeout:    10 * time.Second,
			MaxRetries: 2,
		},
		Users: UsersConfig{
			Identity: "memory",
			Store:    "memory",
		},
		Catalog: CatalogConfig{
			Store: "memory",
		},
		Session: SessionConfig{
			Store:       "memory",
			RedisAddr:   "localhost:6379",
			TTL:         7 * 24 * time.Hour,
			CookieName:  "agrilink_session",
			RefreshSkew: 60 * time.Second,
		},
		Checkout: CheckoutConfig{
			Currency:                "USD",
			PlacementDelay:          1500 * time.Millisecond,
			DefaultMinimumQuantity:  5,
			DefaultDeliveryFeeCents: 500,
		},
		Orders: OrdersConfig{
			Store: "memory",
			Spanner: SpannerConfig{
				ProjectID:  "local-project",
				InstanceID: "local-instance",
				DatabaseID: "app-db",
			},
		},
		Telemetry: TelemetryConfig{
			ServiceName: "agrilink",
			SampleRatio: 0.1,
		},
	}
}

// Load reads path (if non-empty), applies environment overrides and validates.
// A missing file is not an error; defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether Env names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}
