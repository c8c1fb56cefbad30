// Package config loads and validates hunter configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Hunt    HuntConfig    `mapstructure:"hunt"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Engines EnginesConfig `mapstructure:"engines"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// HuntConfig governs orchestrator behavior.
type HuntConfig struct {
	MaxQueries      int `mapstructure:"max_queries"`
	MaxURLsPerQuery int `mapstructure:"max_urls_per_query"`
	GlobalURLBudget int `mapstructure:"global_url_budget"`
	PageConcurrency int `mapstructure:"page_concurrency"`
	DelayMinMs      int `mapstructure:"delay_min_ms"`
	DelayMaxMs      int `mapstructure:"delay_max_ms"`
	ResultsPerQuery int `mapstructure:"results_per_query"`
}

// HTTPConfig configures the outbound HTTP client.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	AcceptLanguage string `mapstructure:"accept_language"`
}

// EnginesConfig holds the search engine endpoints. Overridable so tests
// can point the orchestrator at a local server.
type EnginesConfig struct {
	GoogleBaseURL string `mapstructure:"google_base_url"`
	BingBaseURL   string `mapstructure:"bing_base_url"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HUNTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("hunt.max_queries", 5)
	v.SetDefault("hunt.max_urls_per_query", 5)
	v.SetDefault("hunt.global_url_budget", 25)
	v.SetDefault("hunt.page_concurrency", 1)
	v.SetDefault("hunt.delay_min_ms", 1500)
	v.SetDefault("hunt.delay_max_ms", 3500)
	v.SetDefault("hunt.results_per_query", 20)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.user_agent", "")
	v.SetDefault("http.accept_language", "")
	v.SetDefault("engines.google_base_url", "https://www.google.com")
	v.SetDefault("engines.bing_base_url", "https://www.bing.com")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Hunt.PageConcurrency <= 0 {
		return fmt.Errorf("hunt.page_concurrency must be > 0")
	}
	if c.Hunt.DelayMinMs < 0 || c.Hunt.DelayMaxMs < c.Hunt.DelayMinMs {
		return fmt.Errorf("hunt.delay_max_ms must be >= hunt.delay_min_ms >= 0")
	}
	if c.Engines.GoogleBaseURL == "" || c.Engines.BingBaseURL == "" {
		return fmt.Errorf("engine base URLs must be set")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	return nil
}

// FetchTimeout converts the HTTP timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// DelayBounds returns the politeness delay window as durations.
func (c Config) DelayBounds() (time.Duration, time.Duration) {
	return time.Duration(c.Hunt.DelayMinMs) * time.Millisecond,
		time.Duration(c.Hunt.DelayMaxMs) * time.Millisecond
}
