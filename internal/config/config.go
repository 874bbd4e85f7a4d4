package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string

	// TLS (ingress-terminated deployments leave this off)
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	// Database
	DatabaseURL string

	// Redis (identity cache and rate limiter state; optional)
	RedisURL string

	// NATS commit stream
	NatsURL           string
	NatsSubjectPrefix string

	// Identity directory
	IdentityDirectoryURL string
	IdentityCacheTTL     time.Duration

	// Auth: OIDC issuer for verified bearer tokens, or a shared HMAC
	// secret for locally minted service tokens. At least one is required.
	OIDCIssuer   string
	OIDCAudience string
	AuthSecret   string

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Enrichment fan-out cap per listing call
	EnrichConcurrency int

	// Backlink sweeper
	SweepInterval time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		TLSEnabled:  getEnv("TLS_ENABLED", "") != "",
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/followgate?sslmode=disable"),
		RedisURL:    getEnv("REDIS_URL", ""),

		NatsURL:           getEnv("NATS_URL", "nats://localhost:4222"),
		NatsSubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "followgate.commits"),

		IdentityDirectoryURL: getEnv("IDENTITY_DIRECTORY_URL", "https://plc.directory"),
		IdentityCacheTTL:     getEnvDuration("IDENTITY_CACHE_TTL", 10*time.Minute),

		OIDCIssuer:   getEnv("OIDC_ISSUER", ""),
		OIDCAudience: getEnv("OIDC_AUDIENCE", ""),
		AuthSecret:   getEnv("AUTH_SECRET", ""),

		CORSOrigins: getEnv("CORS_ORIGINS", ""),

		EnrichConcurrency: getEnvInt("ENRICH_CONCURRENCY", 10),

		SweepInterval: getEnvDuration("BACKLINK_SWEEP_INTERVAL", time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}
