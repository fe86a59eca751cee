// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Gemini settings
	GeminiAPIKey      string
	GeminiModel       string
	EmbeddingModel    string
	MaxGeminiRequests int // maximum generation requests per day (0 = unlimited)
	MaxEmbedRequests  int // maximum embedding requests per day (0 = unlimited)

	// Supabase settings
	SupabaseURL     string
	SupabaseAnonKey string
	SupabaseDBDSN   string // optional direct Postgres DSN for the dedup ledger
	VectorTable     string

	// WordPress settings
	WordPressURL      string
	WordPressUsername string
	WordPressPassword string

	// RSS settings
	SourcesConfigPath string
	TopicWindow       time.Duration // how far back topic discovery looks
	MonitorWindow     time.Duration // how far back a monitor run looks
	MonitorMaxItems   int           // cap of articles ingested per monitor run

	// Scraper settings
	ScrapeMaxArticles int // cap of articles to extract per topic

	// Server settings
	Port        string
	RSSCronSpec string // optional cron spec for in-process feed ingestion

	// Dedup ledger settings
	LedgerFilePath string
	LedgerTTLHours int

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

// Load reads settings from the environment. Missing required keys are
// not fatal here: the service still starts, Validate reports what is
// missing, and /health serves the degraded state.
func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		GeminiModel:       "gemini-1.5-flash",
		EmbeddingModel:    "text-embedding-004",
		MaxGeminiRequests: 20,
		MaxEmbedRequests:  100,
		VectorTable:       "news_articles",
		SourcesConfigPath: "configs/sources.yaml",
		TopicWindow:       24 * time.Hour,
		MonitorWindow:     6 * time.Hour,
		MonitorMaxItems:   10,
		ScrapeMaxArticles: 10,
		Port:              "8080",
		RequestTimeout:    30 * time.Second,
		RetryAttempts:     3,
		RetryDelay:        2 * time.Second,
	}

	// Load from environment
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.SupabaseURL = os.Getenv("SUPABASE_URL")
	cfg.SupabaseAnonKey = os.Getenv("SUPABASE_ANON_KEY")
	cfg.SupabaseDBDSN = os.Getenv("SUPABASE_DB_DSN")
	cfg.WordPressURL = os.Getenv("WORDPRESS_URL")
	cfg.WordPressUsername = os.Getenv("WORDPRESS_USERNAME")
	cfg.WordPressPassword = os.Getenv("WORDPRESS_PASSWORD")
	cfg.RSSCronSpec = os.Getenv("RSS_CRON_SPEC")

	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.EmbeddingModel = getEnvOrDefault("EMBEDDING_MODEL", cfg.EmbeddingModel)
	cfg.VectorTable = getEnvOrDefault("VECTOR_TABLE_NAME", cfg.VectorTable)
	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)
	cfg.Port = getEnvOrDefault("PORT", cfg.Port)

	cfg.LedgerFilePath = getEnvOrDefault("LEDGER_FILE_PATH", "ingested_articles.json")
	cfg.LedgerTTLHours = getEnvIntOrDefault("LEDGER_TTL_HOURS", 48)

	if v := os.Getenv("MAX_GEMINI_REQUESTS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.MaxGeminiRequests = val
		}
	}
	if v := os.Getenv("MAX_EMBED_REQUESTS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.MaxEmbedRequests = val
		}
	}
	if v := os.Getenv("SCRAPE_MAX_ARTICLES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.ScrapeMaxArticles = val
		}
	}
	if v := os.Getenv("MONITOR_MAX_ITEMS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.MonitorMaxItems = val
		}
	}
	if v := os.Getenv("TOPIC_WINDOW_HOURS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.TopicWindow = time.Duration(val) * time.Hour
		}
	}
	if v := os.Getenv("MONITOR_WINDOW_HOURS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.MonitorWindow = time.Duration(val) * time.Hour
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Validate reports the first missing required setting. An incomplete
// config keeps the server running; /health answers 503 until the keys
// arrive.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseAnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	return nil
}

// WordPressConfigured reports whether publishing credentials are complete.
// WordPress is optional; an unconfigured publisher skips publication.
func (c *Config) WordPressConfigured() bool {
	return c.WordPressURL != "" && c.WordPressUsername != "" && c.WordPressPassword != ""
}
