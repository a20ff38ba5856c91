package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds settings shared by the backend and the terminal client.
type Config struct {
	// Backend
	Port          string
	DBPath        string
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUser     string
	AdminEmail    string
	AdminPassword string

	// Client
	APIBaseURL  string
	HostURI     string
	SessionDB   string
	RedisURL    string
	HTTPTimeout time.Duration
}

// Load reads an optional .env file from the working directory and then the
// process environment. Variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	tokenTTL, err := durationEnv("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	timeout, err := durationEnv("FINAPP_HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:          stringEnv("PORT", "8080"),
		DBPath:        stringEnv("DB_PATH", "financial.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      tokenTTL,
		AdminUser:     os.Getenv("ADMIN_USER"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		APIBaseURL:  os.Getenv("FINAPP_API_BASE_URL"),
		HostURI:     os.Getenv("FINAPP_HOST_URI"),
		SessionDB:   stringEnv("FINAPP_SESSION_DB", "finapp-session.db"),
		RedisURL:    os.Getenv("FINAPP_REDIS_URL"),
		HTTPTimeout: timeout,
	}, nil
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
