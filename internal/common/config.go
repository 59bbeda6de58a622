// Package common provides shared utilities for Lexicon
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Lexicon
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Catalog     CatalogConfig   `toml:"catalog"`
	Browse      BrowseConfig    `toml:"browse"`
	Clients     ClientsConfig   `toml:"clients"`
	Requests    RequestsConfig  `toml:"requests"`
	Analytics   AnalyticsConfig `toml:"analytics"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"` // empty allows any origin
}

// CatalogConfig points at the term catalog file. An empty path selects the
// catalog compiled into the binary.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// BrowseConfig pins the ordering decisions of the term browser.
type BrowseConfig struct {
	Locale                 string `toml:"locale"`
	DefaultSort            string `toml:"default_sort"`   // "name" or "category"
	CategoryOrder          string `toml:"category_order"` // "predefined" or "alphabetical"
	AlphabeticalInCategory bool   `toml:"alphabetical_in_category"`
	SuggestionLimit        int    `toml:"suggestion_limit"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// RequestsConfig controls where term requests are addressed.
type RequestsConfig struct {
	RecipientEmail string `toml:"recipient_email"`
	SubjectPrefix  string `toml:"subject_prefix"`
}

// AnalyticsConfig selects the analytics sink.
type AnalyticsConfig struct {
	Provider      string `toml:"provider"` // "none", "log" or "ga4"
	MeasurementID string `toml:"measurement_id"`
	APISecret     string `toml:"api_secret"`
	Endpoint      string `toml:"endpoint"`
	QueueSize     int    `toml:"queue_size"`
	Debug         bool   `toml:"debug"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Browse: BrowseConfig{
			Locale:                 "en",
			DefaultSort:            "name",
			CategoryOrder:          "predefined",
			AlphabeticalInCategory: true,
			SuggestionLimit:        8,
		},
		Clients: ClientsConfig{
			Gemini: GeminiConfig{
				Model:     "gemini-2.0-flash",
				RateLimit: 2,
				Timeout:   "30s",
			},
		},
		Requests: RequestsConfig{
			RecipientEmail: "requests@lexicon.example",
			SubjectPrefix:  "New AI Term Request",
		},
		Analytics: AnalyticsConfig{
			Provider:  "log",
			Endpoint:  "https://www.google-analytics.com/mp/collect",
			QueueSize: 256,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Outputs:    []string{"console"},
			FilePath:   "./logs/lexicon.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	normalizeBrowse(&config.Browse)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LEXICON_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("LEXICON_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("LEXICON_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if origins := os.Getenv("LEXICON_ALLOWED_ORIGINS"); origins != "" {
		config.Server.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				config.Server.AllowedOrigins = append(config.Server.AllowedOrigins, o)
			}
		}
	}

	if level := os.Getenv("LEXICON_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("LEXICON_CATALOG"); path != "" {
		config.Catalog.Path = path
	}

	for _, name := range []string{"GEMINI_API_KEY", "LEXICON_GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.Gemini.APIKey = v
			break
		}
	}
	if v := os.Getenv("LEXICON_GEMINI_MODEL"); v != "" {
		config.Clients.Gemini.Model = v
	}

	if v := os.Getenv("LEXICON_REQUEST_RECIPIENT"); v != "" {
		config.Requests.RecipientEmail = v
	}

	if v := os.Getenv("LEXICON_ANALYTICS_PROVIDER"); v != "" {
		config.Analytics.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("LEXICON_GA4_MEASUREMENT_ID"); v != "" {
		config.Analytics.MeasurementID = v
	}
	if v := os.Getenv("LEXICON_GA4_API_SECRET"); v != "" {
		config.Analytics.APISecret = v
	}
}

// normalizeBrowse replaces unknown ordering values with the defaults.
func normalizeBrowse(b *BrowseConfig) {
	switch strings.ToLower(b.DefaultSort) {
	case "name", "category":
		b.DefaultSort = strings.ToLower(b.DefaultSort)
	default:
		b.DefaultSort = "name"
	}
	switch strings.ToLower(b.CategoryOrder) {
	case "predefined", "alphabetical":
		b.CategoryOrder = strings.ToLower(b.CategoryOrder)
	default:
		b.CategoryOrder = "predefined"
	}
	if b.Locale == "" {
		b.Locale = "en"
	}
	if b.SuggestionLimit <= 0 {
		b.SuggestionLimit = 8
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// MaskSecret keeps the last four characters of a secret for display.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
