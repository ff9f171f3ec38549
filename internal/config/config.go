// Package config loads the stockview configuration from an optional YAML file,
// environment overrides and defaults.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/stockview/internal/session"
	"github.com/rxtech-lab/stockview/internal/store"
	"github.com/rxtech-lab/stockview/internal/version"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
)

// CurrentVersion is written into generated config files.
const CurrentVersion = "1.0"

const (
	DefaultAddress           = ":10000"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultStoreTTL          = 12 * time.Hour
	DefaultExpireInterval    = time.Minute
	DefaultLogLevel          = "info"
)

// Environment variables that override the file.
const (
	EnvAddress       = "STOCKVIEW_ADDRESS"
	EnvProvider      = "STOCKVIEW_PROVIDER"
	EnvPolygonAPIKey = "POLYGON_API_KEY"
	EnvStorePath     = "STOCKVIEW_STORE_PATH"
	EnvLogLevel      = "STOCKVIEW_LOG_LEVEL"
)

// Config holds all application configuration.
type Config struct {
	Version  string         `yaml:"version" json:"version" validate:"required" jsonschema:"title=Version,description=Config format version checked against the binary,default=1.0"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Provider ProviderConfig `yaml:"provider" json:"provider"`
	Store    StoreConfig    `yaml:"store" json:"store"`
	Session  SessionConfig  `yaml:"session" json:"session"`
	Log      LogConfig      `yaml:"log" json:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address           string        `yaml:"address" json:"address" validate:"required" jsonschema:"title=Address,description=Listen address,default=:10000"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" json:"read_header_timeout" validate:"min=0" jsonschema:"title=Read Header Timeout,description=Nanoseconds in JSON; a duration string such as 10s in YAML"`
}

// ProviderConfig selects where price history comes from.
type ProviderConfig struct {
	Type          marketdata.ProviderType `yaml:"type" json:"type" validate:"required,oneof=yahoo polygon binance" jsonschema:"title=Provider,enum=yahoo,enum=polygon,enum=binance,default=yahoo"`
	PolygonAPIKey string                  `yaml:"polygon_api_key" json:"polygon_api_key" validate:"required_if=Type polygon" jsonschema:"title=Polygon API Key"`
}

// StoreConfig configures the DuckDB series cache.
type StoreConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled,description=Cache fetched series in DuckDB"`
	Path    string        `yaml:"path" json:"path" jsonschema:"title=Path,description=Database file; :memory: keeps the cache in process"`
	TTL     time.Duration `yaml:"ttl" json:"ttl" validate:"min=0" jsonschema:"title=TTL,description=How long a cached series is served before refetching"`
}

// SessionConfig configures dashboard sessions.
type SessionConfig struct {
	IdleTTL        time.Duration `yaml:"idle_ttl" json:"idle_ttl" validate:"gt=0" jsonschema:"title=Idle TTL,description=Sessions untouched for this long are dropped"`
	ExpireInterval time.Duration `yaml:"expire_interval" json:"expire_interval" validate:"gt=0" jsonschema:"title=Expire Interval,description=How often idle sessions are swept"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level" json:"level" validate:"oneof=debug info warn error" jsonschema:"title=Level,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Development bool   `yaml:"development" json:"development" jsonschema:"title=Development,description=Human readable console output"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Version: CurrentVersion,
		Server: ServerConfig{
			Address:           DefaultAddress,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
		},
		Provider: ProviderConfig{
			Type:          marketdata.ProviderYahoo,
			PolygonAPIKey: "",
		},
		Store: StoreConfig{
			Enabled: false,
			Path:    store.InMemory,
			TTL:     DefaultStoreTTL,
		},
		Session: SessionConfig{
			IdleTTL:        session.DefaultIdleTTL,
			ExpireInterval: DefaultExpireInterval,
		},
		Log: LogConfig{
			Level:       DefaultLogLevel,
			Development: false,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config %s", path)
		}
	}

	cfg.ApplyEnv(getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ApplyEnv overrides fields from the environment. Unset variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvAddress); v != "" {
		c.Server.Address = v
	}

	if v := getenv(EnvProvider); v != "" {
		c.Provider.Type = marketdata.ProviderType(v)
	}

	if v := getenv(EnvPolygonAPIKey); v != "" {
		c.Provider.PolygonAPIKey = v
	}

	if v := getenv(EnvStorePath); v != "" {
		c.Store.Enabled = true
		c.Store.Path = v
	}

	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks field constraints and that the file version is one this
// binary understands.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "unsupported config version", err)
	}

	return nil
}

// ClientConfig is the market data client configuration.
func (c Config) ClientConfig() marketdata.ClientConfig {
	storePath := ""
	if c.Store.Enabled {
		storePath = c.Store.Path
		if storePath == "" {
			storePath = store.InMemory
		}
	}

	return marketdata.ClientConfig{
		ProviderType:  c.Provider.Type,
		PolygonApiKey: c.Provider.PolygonAPIKey,
		StorePath:     storePath,
		CacheTTL:      c.Store.TTL,
	}
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode config", err)
	}

	return out, nil
}
