package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the personio-adapter.
type Config struct {
	ServiceName      string
	Env              string
	Venue            string
	AWSRegion        string
	LogLevel         string
	Port             int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	HTTPBodyLimit    int

	CacheTTL    time.Duration
	CleanupFreq time.Duration

	// SecretsBackend is "aws" (Secrets Manager) or "env" (SECRET_* variables,
	// see secrets.EnvProvider). Both use the name {env}/{tenant}/personio.
	SecretsBackend string
	WarmOnStart    bool

	// Personio-specific configuration
	PersonioBaseURL   string
	PersonioTimeout   time.Duration
	PersonioRateRPS   float64
	PersonioRateBurst int
}

// Load loads configuration from environment variables and optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:       GetEnv("SERVICE_NAME", "personio-adapter"),
		Env:               GetEnv("ENV", "dev"),
		Venue:             "personio",
		AWSRegion:         GetEnv("AWS_REGION", "eu-central-1"),
		LogLevel:          GetEnv("LOG_LEVEL", "info"),
		Port:              GetEnvInt("PERSONIO_PORT", 9050),
		HTTPReadTimeout:   GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout:  GetEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		HTTPIdleTimeout:   GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		HTTPBodyLimit:     GetEnvInt("HTTP_BODY_LIMIT", 1*1024*1024),
		CacheTTL:          GetEnvDuration("CACHE_TTL", 24*time.Hour),
		CleanupFreq:       GetEnvDuration("CACHE_CLEANUP_FREQ", 10*time.Minute),
		SecretsBackend:    GetEnv("SECRETS_BACKEND", "aws"),
		WarmOnStart:       GetEnvBool("WARM_ON_START", true),
		PersonioBaseURL:   GetEnv("PERSONIO_BASE_URL", "https://api.personio.de/v1/"),
		PersonioTimeout:   GetEnvDuration("PERSONIO_TIMEOUT", 30*time.Second),
		PersonioRateRPS:   GetEnvFloat("PERSONIO_RATE_RPS", 5),
		PersonioRateBurst: GetEnvInt("PERSONIO_RATE_BURST", 10),
	}
}
