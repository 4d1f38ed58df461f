package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backend selectors.
const (
	StorageBackendGCS        = "gcs"
	StorageBackendFilesystem = "filesystem"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	JWTSecret   string

	StorageBackend  string
	StorageBasePath string
	StorageBaseURL  string

	GCSProjectID   string
	GCSClientEmail string
	GCSPrivateKey  string
	GCSBucketName  string

	UnsplashAccessKey string
	PexelsAPIKey      string
	PixabayAPIKey     string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	ElevenLabsAPIKey  string
	ElevenLabsBaseURL string

	GeoIPDBPath   string
	DefaultLocale string

	AllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	MaxConcurrent    int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. Missing credentials fail here, at startup, never on
// the first request that happens to need them.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		StorageBackend:    getEnv("STORAGE_BACKEND", StorageBackendGCS),
		StorageBasePath:   getEnv("STORAGE_BASE_PATH", "./data/objects"),
		StorageBaseURL:    getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),
		GCSProjectID:      os.Getenv("GCS_PROJECT_ID"),
		GCSClientEmail:    os.Getenv("GCS_CLIENT_EMAIL"),
		GCSPrivateKey:     os.Getenv("GCS_PRIVATE_KEY"),
		GCSBucketName:     os.Getenv("GCS_BUCKET_NAME"),
		UnsplashAccessKey: os.Getenv("UNSPLASH_ACCESS_KEY"),
		PexelsAPIKey:      os.Getenv("PEXELS_API_KEY"),
		PixabayAPIKey:     os.Getenv("PIXABAY_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsBaseURL: getEnv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io/v1"),
		GeoIPDBPath:       os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:     getEnv("DEFAULT_LOCALE", "en"),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "*")),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		MaxConcurrent:     getEnvInt("MAX_CONCURRENT_KEYWORDS", 8),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	for _, required := range []struct{ key, value string }{
		{"UNSPLASH_ACCESS_KEY", cfg.UnsplashAccessKey},
		{"PEXELS_API_KEY", cfg.PexelsAPIKey},
		{"PIXABAY_API_KEY", cfg.PixabayAPIKey},
		{"GEMINI_API_KEY", cfg.GeminiAPIKey},
		{"ELEVENLABS_API_KEY", cfg.ElevenLabsAPIKey},
	} {
		if required.value == "" {
			return nil, fmt.Errorf("%s is required", required.key)
		}
	}
	if cfg.StorageBackend == StorageBackendGCS {
		for _, required := range []struct{ key, value string }{
			{"GCS_PROJECT_ID", cfg.GCSProjectID},
			{"GCS_CLIENT_EMAIL", cfg.GCSClientEmail},
			{"GCS_PRIVATE_KEY", cfg.GCSPrivateKey},
			{"GCS_BUCKET_NAME", cfg.GCSBucketName},
		} {
			if required.value == "" {
				return nil, fmt.Errorf("%s is required", required.key)
			}
		}
	} else if cfg.StorageBackend != StorageBackendFilesystem {
		return nil, fmt.Errorf("STORAGE_BACKEND must be %q or %q", StorageBackendGCS, StorageBackendFilesystem)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
