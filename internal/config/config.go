package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cache drivers accepted by cache.driver.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseDriver    string
	DatabaseURL       string
	RedisURL          string
	CacheDriver       string
	CacheTTL          time.Duration
	JWTSecret         string
	AllowOrigins      string
	RateLimitMax      int
	RateLimitWindow   time.Duration
	ActivationRetries int
	NATSURL           string
	NATSSubject       string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EVENTS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Events API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("cache.driver", CacheMemory)
	v.SetDefault("cache.ttl", "60s")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("rate_limit.max", 60)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("events.activation_retries", 3)
	v.SetDefault("nats.subject", "records")

	ttl, err := parseDuration(v.GetString("cache.ttl"), 60*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid cache ttl: %w", err)
	}

	window, err := parseDuration(v.GetString("rate_limit.window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseDriver:    strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		CacheDriver:       strings.ToLower(v.GetString("cache.driver")),
		CacheTTL:          ttl,
		JWTSecret:         v.GetString("jwt.secret"),
		AllowOrigins:      v.GetString("cors.allow_origins"),
		RateLimitMax:      v.GetInt("rate_limit.max"),
		RateLimitWindow:   window,
		ActivationRetries: v.GetInt("events.activation_retries"),
		NATSURL:           v.GetString("nats.url"),
		NATSSubject:       v.GetString("nats.subject"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.CacheDriver {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("redis url is required when cache driver is %q", CacheRedis)
		}
	default:
		return Config{}, fmt.Errorf("unsupported cache driver %q", cfg.CacheDriver)
	}

	if cfg.ActivationRetries <= 0 {
		cfg.ActivationRetries = 3
	}

	return cfg, nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
