// Package config handles application configuration loading and management.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server       ServerConfig
	Cache        CacheConfig
	DocDB        DocDBConfig
	Media        MediaConfig
	Invalidation InvalidationConfig
	Content      ContentConfig
	Log          LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host    string `validate:"required"`
	Port    int    `validate:"min=1,max=65535"`
	GinMode string `validate:"oneof=debug release test"`

	CORSOrigins []string
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig holds cache-related configuration.
type CacheConfig struct {
	Type       string   `validate:"oneof=redis"`
	Addrs      []string `validate:"min=1,dive,hostname_port"`
	Password   string
	DB         int           `validate:"min=0,max=15"`
	Prefix     string        `validate:"excludesall=*?[]"`
	DefaultTTL time.Duration `validate:"gt=0"`
	OpTimeout  time.Duration `validate:"gt=0"`
	PoolSize   int           `validate:"min=0"`
	ScanCount  int64         `validate:"min=1"`
	Breaker    BreakerConfig
}

// BreakerConfig holds circuit breaker thresholds for cache calls.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64 `validate:"gte=0,lte=1"`
	MinRequests      uint32
}

// DocDBConfig holds document database configuration.
type DocDBConfig struct {
	Type     string `validate:"oneof=mongodb memory"`
	URI      string `validate:"required_if=Type mongodb"`
	Database string `validate:"required_if=Type mongodb"`
}

// MediaConfig holds media URL signing configuration.
type MediaConfig struct {
	BaseURL    string `validate:"required,url"`
	OriginURL  string `validate:"omitempty,url"`
	SigningKey string
	URLTTL     time.Duration `validate:"gt=0"`
}

// InvalidationConfig holds invalidation fan-out configuration.
type InvalidationConfig struct {
	MaxAttempts     uint          `validate:"min=1"`
	InitialInterval time.Duration `validate:"gt=0"`
	MaxElapsed      time.Duration `validate:"gt=0"`
	Workers         int           `validate:"min=1"`
	QueueSize       int           `validate:"min=1"`
	Channel         string        `validate:"required"`
}

// ContentConfig holds the TTLs of content caches.
type ContentConfig struct {
	EntityTTL      time.Duration `validate:"gt=0"`
	ListingTTL     time.Duration `validate:"gt=0"`
	CounterTTL     time.Duration `validate:"gt=0"`
	FlagTTL        time.Duration `validate:"gt=0"`
	ListingBucket  time.Duration `validate:"gt=0"`
	RecentlyViewed int64         `validate:"min=1"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string `validate:"oneof=json console"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvAsInt("SERVER_PORT", 8080),
			GinMode: getEnv("GIN_MODE", "debug"),

			CORSOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
		Cache: CacheConfig{
			Type:       getEnv("CACHE_TYPE", "redis"),
			Addrs:      redisAddrs(),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			Prefix:     getEnv("CACHE_INSTANCE_PREFIX", "content"),
			DefaultTTL: time.Duration(getEnvAsInt("CACHE_DEFAULT_TTL_MINUTES", 30)) * time.Minute,
			OpTimeout:  time.Duration(getEnvAsInt("CACHE_OP_TIMEOUT_MS", 500)) * time.Millisecond,
			PoolSize:   getEnvAsInt("CACHE_POOL_SIZE", 0),
			ScanCount:  int64(getEnvAsInt("CACHE_SCAN_COUNT", 250)),
			Breaker: BreakerConfig{
				MaxRequests:      uint32(getEnvAsInt("CACHE_BREAKER_HALF_OPEN_REQUESTS", 5)),
				Interval:         time.Duration(getEnvAsInt("CACHE_BREAKER_INTERVAL_SECONDS", 30)) * time.Second,
				Timeout:          time.Duration(getEnvAsInt("CACHE_BREAKER_OPEN_SECONDS", 10)) * time.Second,
				FailureThreshold: getEnvAsFloat("CACHE_BREAKER_FAILURE_RATIO", 0.6),
				MinRequests:      uint32(getEnvAsInt("CACHE_BREAKER_MIN_REQUESTS", 20)),
			},
		},
		DocDB: DocDBConfig{
			Type:     getEnv("DOCDB_TYPE", "mongodb"),
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "content"),
		},
		Media: MediaConfig{
			BaseURL:    getEnv("MEDIA_BASE_URL", "http://localhost:8080/media"),
			OriginURL:  getEnv("MEDIA_ORIGIN_URL", ""),
			SigningKey: getEnv("MEDIA_SIGNING_KEY", ""),
			URLTTL:     time.Duration(getEnvAsInt("MEDIA_URL_TTL_MINUTES", 15)) * time.Minute,
		},
		Invalidation: InvalidationConfig{
			MaxAttempts:     uint(getEnvAsInt("INVALIDATION_MAX_ATTEMPTS", 3)),
			InitialInterval: time.Duration(getEnvAsInt("INVALIDATION_INITIAL_INTERVAL_MS", 50)) * time.Millisecond,
			MaxElapsed:      time.Duration(getEnvAsInt("INVALIDATION_MAX_ELAPSED_MS", 2000)) * time.Millisecond,
			Workers:         getEnvAsInt("INVALIDATION_WORKERS", 2),
			QueueSize:       getEnvAsInt("INVALIDATION_QUEUE_SIZE", 256),
			Channel:         getEnv("INVALIDATION_CHANNEL", "invalidations"),
		},
		Content: ContentConfig{
			EntityTTL:      time.Duration(getEnvAsInt("CONTENT_ENTITY_TTL_MINUTES", 60)) * time.Minute,
			ListingTTL:     time.Duration(getEnvAsInt("CONTENT_LISTING_TTL_MINUTES", 10)) * time.Minute,
			CounterTTL:     time.Duration(getEnvAsInt("CONTENT_COUNTER_TTL_MINUTES", 60)) * time.Minute,
			FlagTTL:        time.Duration(getEnvAsInt("CONTENT_FLAG_TTL_HOURS", 24)) * time.Hour,
			ListingBucket:  time.Duration(getEnvAsInt("CONTENT_LISTING_BUCKET_MINUTES", 60)) * time.Minute,
			RecentlyViewed: int64(getEnvAsInt("CONTENT_RECENTLY_VIEWED", 20)),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Media.SigningKey != "" {
		key, err := base64.StdEncoding.DecodeString(c.Media.SigningKey)
		if err != nil || len(key) != 32 {
			return fmt.Errorf("invalid configuration: MEDIA_SIGNING_KEY must be 32 base64-encoded bytes")
		}
	}
	return nil
}

// redisAddrs reads REDIS_ADDRS, falling back to REDIS_HOST and REDIS_PORT.
func redisAddrs() []string {
	if addrs := getEnvAsList("REDIS_ADDRS"); len(addrs) > 0 {
		return addrs
	}
	return []string{getEnv("REDIS_HOST", "localhost") + ":" + getEnv("REDIS_PORT", "6379")}
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as a float with a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated environment variable.
func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
