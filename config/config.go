package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the photo location service.
type Config struct {
	// Server configuration
	Port           string
	BaseURL        string
	AllowedOrigins []string

	// LLM provider configuration
	LLMProvider  string // "gemini" or "zhipu"
	GeminiAPIKey string
	ZhipuAPIKey  string

	// Ranked fallback candidates, tried in order
	GeminiModels []string
	ZhipuModels  []string

	// Gateway behavior
	FallbackBackoff time.Duration
	RequestTimeout  time.Duration

	// Place names in model output are constrained to this language so the
	// prompt and the parser stay in lockstep with the deployed frontend.
	PlaceNameLanguage string

	// Quota ceilings (tokens)
	MaxTotalTokens int64
	MaxDailyTokens int64

	// Upload limits
	MaxUploadBytes int64

	// Ephemeral storage lifecycle
	ImageMaxAge   time.Duration
	ShareTTL      time.Duration
	SweepInterval time.Duration

	// Rate limiting
	RateLimitPerMinute int

	// Admin panel (optional; admin endpoints are disabled when empty)
	AdminPassword string
	JWTSecret     string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		BaseURL:        getEnv("BASE_URL", ""),
		AllowedOrigins: getStringSliceEnv("ALLOWED_ORIGINS", "*"),

		LLMProvider:  getEnv("LLM_PROVIDER", "gemini"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		ZhipuAPIKey:  getEnv("ZHIPU_API_KEY", ""),

		GeminiModels: getStringSliceEnv("GEMINI_MODELS", "gemini-2.5-flash,gemini-1.5-flash,gemini-1.5-pro"),
		ZhipuModels:  getStringSliceEnv("ZHIPU_MODELS", "glm-4.5v,glm-4v"),

		FallbackBackoff: getDurationEnv("FALLBACK_BACKOFF", time.Second),
		RequestTimeout:  getDurationEnv("REQUEST_TIMEOUT", 60*time.Second),

		PlaceNameLanguage: getEnv("PLACE_NAME_LANGUAGE", "Chinese"),

		MaxTotalTokens: getInt64Env("MAX_TOTAL_TOKENS", 20_000_000),
		MaxDailyTokens: getInt64Env("MAX_DAILY_TOKENS", 100_000),

		MaxUploadBytes: getInt64Env("MAX_UPLOAD_BYTES", 10*1024*1024),

		ImageMaxAge:   getDurationEnv("IMAGE_MAX_AGE", 7*24*time.Hour),
		ShareTTL:      getDurationEnv("SHARE_TTL", 48*time.Hour),
		SweepInterval: getDurationEnv("SWEEP_INTERVAL", time.Hour),

		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 20),

		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
	}
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == "zhipu" {
		return c.ZhipuAPIKey
	}
	return c.GeminiAPIKey
}

// Models returns the ranked model candidates for the configured provider.
func (c *Config) Models() []string {
	if c.LLMProvider == "zhipu" {
		return c.ZhipuModels
	}
	return c.GeminiModels
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64Env gets a 64-bit integer environment variable or returns a default value
func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getStringSliceEnv gets a comma-separated environment variable as a string slice
func getStringSliceEnv(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
