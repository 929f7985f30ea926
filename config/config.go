package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime parameter of the service.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// Challonge-compatible bracket rendering service.
	BracketBaseURL  string
	BracketUsername string
	BracketAPIKey   string

	// Platform binding sidecar.
	PlatformGatewayURL   string
	PlatformGatewayToken string

	// Cloudflare R2 media mirror.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	SchedulerInterval time.Duration
	PreMatchWindow    time.Duration
}

// Load reads configuration from the environment, optionally seeded by a
// .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecretKey:         os.Getenv("JWT_SECRET_KEY"),
		BracketBaseURL:       getEnvOrDefault("BRACKET_BASE_URL", "https://api.challonge.com/v1"),
		BracketUsername:      os.Getenv("BRACKET_USERNAME"),
		BracketAPIKey:        os.Getenv("BRACKET_API_KEY"),
		PlatformGatewayURL:   os.Getenv("PLATFORM_GATEWAY_URL"),
		PlatformGatewayToken: os.Getenv("PLATFORM_GATEWAY_TOKEN"),
		R2AccountID:          os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:        os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:    os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:         os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:      os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}
	if cfg.BracketUsername == "" || cfg.BracketAPIKey == "" {
		return nil, fmt.Errorf("BRACKET_USERNAME and BRACKET_API_KEY environment variables are not set")
	}
	if cfg.PlatformGatewayURL == "" || cfg.PlatformGatewayToken == "" {
		return nil, fmt.Errorf("PLATFORM_GATEWAY_URL and PLATFORM_GATEWAY_TOKEN environment variables are not set")
	}

	port, err := parsePort(getEnvOrDefault("SERVER_PORT", "8080"))
	if err != nil {
		return nil, err
	}
	cfg.ServerPort = port

	cfg.SchedulerInterval, err = parseDuration("SCHEDULER_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.PreMatchWindow, err = parseDuration("PRE_MATCH_WINDOW", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	return port, nil
}

func parseDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}
