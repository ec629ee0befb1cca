package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the menu translation service
type Config struct {
	// Server configuration
	Port string

	// OpenAI configuration
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAITimeout time.Duration

	// Brave image search configuration
	BraveAPIKey           string
	BraveBaseURL          string
	BraveTimeout          time.Duration
	ImageSearchCount      int
	ImageCacheTTL         time.Duration // 0 means entries never expire
	MaxConcurrentSearches int

	// Forex configuration
	ForexBaseURL   string
	ForexTimeout   time.Duration
	ForexRateTTL   time.Duration
	BaseCurrency   string
	TargetCurrency string // default target when the client sends none

	// Upload limits
	MaxUploadSizeMB int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAITimeout: getDurationEnv("OPENAI_TIMEOUT", 90*time.Second),

		BraveAPIKey:           getEnv("BRAVE_API_KEY", ""),
		BraveBaseURL:          getEnv("BRAVE_BASE_URL", "https://api.search.brave.com"),
		BraveTimeout:          getDurationEnv("BRAVE_TIMEOUT", 10*time.Second),
		ImageSearchCount:      getIntEnv("IMAGE_SEARCH_COUNT", 3),
		ImageCacheTTL:         getDurationEnv("IMAGE_CACHE_TTL", 0),
		MaxConcurrentSearches: getIntEnv("IMAGE_SEARCH_MAX_CONCURRENT", 4),

		ForexBaseURL:   getEnv("FOREX_BASE_URL", "https://api.exchangerate-api.com"),
		ForexTimeout:   getDurationEnv("FOREX_TIMEOUT", 5*time.Second),
		ForexRateTTL:   getDurationEnv("FOREX_RATE_TTL", time.Hour),
		BaseCurrency:   getEnv("BASE_CURRENCY", "EUR"),
		TargetCurrency: getEnv("DEFAULT_TARGET_CURRENCY", "EUR"),

		MaxUploadSizeMB: getIntEnv("MAX_UPLOAD_SIZE_MB", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
