package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/guttosm/goldrate/internal/logger"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	RATE_LIMIT_PER_MINUTE=60
//	QUOTES_URL_TEMPLATE=https://www.guojijinjia.com/d/gold.js?codes={codes}
//	QUOTES_TIMEOUT=8s
//	QUOTES_CACHE_TTL=300s
//	QUOTES_MAX_ATTEMPTS=3
//	QUOTES_BASE_DELAY=1s
//	QUOTES_REFRESH_INTERVAL=0s
//	INSTRUMENTS_FILE=instruments.json
//
// Durations use Go syntax ("300s", "5m"); a bare number is read as nanoseconds.
type Config struct {
	Server ServerConfig // HTTP host settings
	Quotes QuotesConfig // Upstream, cache and retry settings
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string // TCP port the HTTP server listens on (e.g., "8080")
	RateLimitPerMinute int    // Requests per client IP per minute
}

// QuotesConfig controls the fetch/cache/retry pipeline.
//
// Fields:
//   - URLTemplate: upstream endpoint, must contain "{codes}".
//   - Timeout: bound for a single upstream request.
//   - CacheTTL: freshness window of a fetched feed.
//   - MaxAttempts: total attempts per fetch cycle (>= 1).
//   - BaseDelay: first backoff delay, doubled after each failure.
//   - RefreshInterval: background refresh period; 0 disables it.
//   - UserAgent: User-Agent sent upstream.
//   - InstrumentsFile: path of the name -> code mapping (JSON/YAML/TOML).
type QuotesConfig struct {
	URLTemplate     string
	Timeout         time.Duration
	CacheTTL        time.Duration
	MaxAttempts     int
	BaseDelay       time.Duration
	RefreshInterval time.Duration
	UserAgent       string
	InstrumentsFile string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and read by app.InitializeApp and the
// CLI modes in cmd.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or invalid, validateConfig() terminates the app.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 60)

	viper.SetDefault("QUOTES_URL_TEMPLATE", "https://www.guojijinjia.com/d/gold.js?codes={codes}")
	viper.SetDefault("QUOTES_TIMEOUT", "8s")
	viper.SetDefault("QUOTES_CACHE_TTL", "300s")
	viper.SetDefault("QUOTES_MAX_ATTEMPTS", 3)
	viper.SetDefault("QUOTES_BASE_DELAY", "1s")
	viper.SetDefault("QUOTES_REFRESH_INTERVAL", "0s")
	viper.SetDefault("QUOTES_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	viper.SetDefault("INSTRUMENTS_FILE", "instruments.json")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port:               viper.GetString("SERVER_PORT"),
			RateLimitPerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
		Quotes: QuotesConfig{
			URLTemplate:     viper.GetString("QUOTES_URL_TEMPLATE"),
			Timeout:         viper.GetDuration("QUOTES_TIMEOUT"),
			CacheTTL:        viper.GetDuration("QUOTES_CACHE_TTL"),
			MaxAttempts:     viper.GetInt("QUOTES_MAX_ATTEMPTS"),
			BaseDelay:       viper.GetDuration("QUOTES_BASE_DELAY"),
			RefreshInterval: viper.GetDuration("QUOTES_REFRESH_INTERVAL"),
			UserAgent:       viper.GetString("QUOTES_USER_AGENT"),
			InstrumentsFile: viper.GetString("INSTRUMENTS_FILE"),
		},
	}

	validateConfig()
}

// problems lists the invalid or missing settings of cfg.
func problems(cfg Config) []string {
	var out []string

	if cfg.Server.Port == "" {
		out = append(out, "SERVER_PORT")
	}
	if cfg.Server.RateLimitPerMinute <= 0 {
		out = append(out, "RATE_LIMIT_PER_MINUTE")
	}
	if !strings.Contains(cfg.Quotes.URLTemplate, "{codes}") {
		out = append(out, "QUOTES_URL_TEMPLATE")
	}
	if cfg.Quotes.Timeout <= 0 {
		out = append(out, "QUOTES_TIMEOUT")
	}
	if cfg.Quotes.CacheTTL <= 0 {
		out = append(out, "QUOTES_CACHE_TTL")
	}
	if cfg.Quotes.MaxAttempts < 1 {
		out = append(out, "QUOTES_MAX_ATTEMPTS")
	}
	if cfg.Quotes.BaseDelay < 0 {
		out = append(out, "QUOTES_BASE_DELAY")
	}
	if cfg.Quotes.RefreshInterval < 0 {
		out = append(out, "QUOTES_REFRESH_INTERVAL")
	}
	return out
}

// validateConfig terminates the application when AppConfig has missing
// or invalid settings.
func validateConfig() {
	if missing := problems(AppConfig); len(missing) > 0 {
		logger.L().Fatal().Strs("invalid", missing).Msg("missing or invalid configuration")
	}
}
