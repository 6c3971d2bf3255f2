package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all gateway settings, loaded from the environment with
// working defaults for local development.
type Config struct {
	HTTPAddr        string
	BackendBaseURL  string
	SessionStore    string // memory | redis | postgres
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	PostgresDSN     string
	PollInterval    time.Duration
	IncludeArchived bool
	RateLimitRPS    float64
	RateLimitBurst  int
	MaxBodyBytes    int64
	OAuthClientID   string
	OAuthSecret     string
	OAuthRedirect   string
}

func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		BackendBaseURL:  getenv("BACKEND_BASE_URL", "http://127.0.0.1:8000"),
		SessionStore:    getenv("SESSION_STORE", "memory"),
		RedisAddr:       getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		RedisDB:         getenvInt("REDIS_DB", 0),
		PostgresDSN:     getenv("PG_DSN", ""),
		PollInterval:    getenvDuration("POLL_INTERVAL", 30*time.Second),
		IncludeArchived: getenvBool("POLL_INCLUDE_ARCHIVED", false),
		RateLimitRPS:    getenvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:  getenvInt("RATE_LIMIT_BURST", 20),
		MaxBodyBytes:    int64(getenvInt("MAX_BODY_BYTES", 1<<20)),
		OAuthClientID:   getenv("OAUTH_CLIENT_ID", ""),
		OAuthSecret:     getenv("OAUTH_CLIENT_SECRET", ""),
		OAuthRedirect:   getenv("OAUTH_REDIRECT_URL", ""),
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
