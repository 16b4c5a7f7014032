// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	AllowedOrigins []string

	OpenAIAPIKey string
	OpenAIModel  string

	ZerodhaAPIKey      string
	ZerodhaAPISecret   string
	ZerodhaAccessToken string

	// Client-side settings.
	GatewayURL        string
	DataPath          string
	IndexInterval     time.Duration
	HoldingsInterval  time.Duration
	WatchlistInterval time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8000"),
		AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-5.2"),

		ZerodhaAPIKey:      getEnv("ZERODHA_API_KEY", ""),
		ZerodhaAPISecret:   getEnv("ZERODHA_API_SECRET", ""),
		ZerodhaAccessToken: getEnv("ZERODHA_ACCESS_TOKEN", ""),

		GatewayURL:        getEnv("GATEWAY_URL", "http://localhost:8000"),
		DataPath:          getEnv("STOCKGPT_DATA_PATH", "./data/stockgpt.db"),
		IndexInterval:     getEnvDuration("INDEX_POLL_INTERVAL", 60*time.Second),
		HoldingsInterval:  getEnvDuration("HOLDINGS_POLL_INTERVAL", 30*time.Second),
		WatchlistInterval: getEnvDuration("WATCHLIST_POLL_INTERVAL", 60*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS cannot be empty")
	}
	if c.DataPath == "" {
		return fmt.Errorf("STOCKGPT_DATA_PATH cannot be empty")
	}
	return nil
}

// ZerodhaConfigured reports whether Kite Connect credentials are complete.
func (c *Config) ZerodhaConfigured() bool {
	return c.ZerodhaAPIKey != "" && c.ZerodhaAPISecret != "" && c.ZerodhaAccessToken != ""
}

func splitOrigins(value string) []string {
	var origins []string
	for _, o := range strings.Split(value, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
