package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// HTTP API
	Port string

	// Gemini settings
	GeminiAPIKey  string
	MaxAIRequests int // maximum collaborator requests per day (0 = unlimited)
	AITimeout     time.Duration

	// Subscription store
	DatabaseURL     string // Postgres; empty falls back to the file store
	StorePath       string
	FeedsConfigPath string // optional YAML bootstrap list

	// Pipeline settings
	FreshnessWindow time.Duration // cutoff = now - window
	TrendMinCount   int

	// Fetcher settings
	RequestTimeout  time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
	InsecureFeedTLS bool // opt-in only; verification stays on by default

	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		Port:            "8080",
		MaxAIRequests:   200,
		AITimeout:       30 * time.Second,
		StorePath:       "feeds.json",
		FeedsConfigPath: "configs/feeds.yaml",
		FreshnessWindow: 48 * time.Hour,
		TrendMinCount:   3,
		RequestTimeout:  15 * time.Second,
		RetryAttempts:   3,
		RetryDelay:      1 * time.Second,
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.StorePath = getEnvOrDefault("STORE_PATH", cfg.StorePath)
	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)

	if hours := getEnvIntOrDefault("FRESHNESS_WINDOW_HOURS", 0); hours > 0 {
		cfg.FreshnessWindow = time.Duration(hours) * time.Hour
	}
	if n := getEnvIntOrDefault("TREND_MIN_COUNT", 0); n > 0 {
		cfg.TrendMinCount = n
	}
	if n := getEnvIntOrDefault("MAX_AI_REQUESTS", -1); n >= 0 {
		cfg.MaxAIRequests = n
	}
	if secs := getEnvIntOrDefault("REQUEST_TIMEOUT_SECONDS", 0); secs > 0 {
		cfg.RequestTimeout = time.Duration(secs) * time.Second
	}
	if n := getEnvIntOrDefault("RETRY_ATTEMPTS", -1); n >= 0 {
		cfg.RetryAttempts = n
	}
	if secs := getEnvIntOrDefault("RETRY_DELAY_SECONDS", 0); secs > 0 {
		cfg.RetryDelay = time.Duration(secs) * time.Second
	}

	if os.Getenv("INSECURE_FEED_TLS") == "true" {
		cfg.InsecureFeedTLS = true
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
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

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.FreshnessWindow <= 0 {
		return fmt.Errorf("freshness window must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// SeedFeed is one bootstrap subscription from the feeds YAML file.
type SeedFeed struct {
	URL         string `yaml:"url"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type seedFile struct {
	Feeds []SeedFeed `yaml:"feeds"`
}

// LoadSeedFeeds reads the bootstrap subscription list. A missing file is
// not an error; the store may already hold feeds.
func LoadSeedFeeds(path string) ([]SeedFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var cfg seedFile
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg.Feeds, nil
}
