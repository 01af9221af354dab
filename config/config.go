package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	// Facility
	FacilityName  string
	Capacity      int
	RatePerMinute decimal.Decimal
	Currency      string

	// Redis display board
	RedisURL      string
	DisplayPrefix string

	// PubNub feed
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Remote notifications
	NotifyTimeout     time.Duration
	NotifyMaxFailures int
	NotifyCooldown    time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   string

	LogLevel slog.Level
}

func LoadConfig() *Config {
	return &Config{
		// Facility
		FacilityName:  getEnv("FACILITY_NAME", "Zentrum"),
		Capacity:      getEnvAsInt("FACILITY_CAPACITY", 10),
		RatePerMinute: getEnvAsDecimal("RATE_PER_MINUTE", "0.05"),
		Currency:      getEnv("CURRENCY", "CHF"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		DisplayPrefix: getEnv("DISPLAY_PREFIX", "parking"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Notifications
		NotifyTimeout:     getEnvAsDuration("NOTIFY_TIMEOUT", "2s"),
		NotifyMaxFailures: getEnvAsInt("NOTIFY_MAX_FAILURES", 3),
		NotifyCooldown:    getEnvAsDuration("NOTIFY_COOLDOWN", "1m"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", false),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),

		LogLevel: getEnvAsLogLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

func (c *Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("config: capacity must be at least 1, got %d", c.Capacity)
	}
	if c.RatePerMinute.IsNegative() {
		return fmt.Errorf("config: rate per minute must not be negative, got %s", c.RatePerMinute)
	}
	if c.FacilityName == "" {
		return fmt.Errorf("config: facility name is required")
	}
	if c.NotifyMaxFailures < 1 {
		return fmt.Errorf("config: notify max failures must be at least 1, got %d", c.NotifyMaxFailures)
	}
	return nil
}

// DisplayKeyPrefix scopes redis keys and channels to this facility.
func (c *Config) DisplayKeyPrefix() string {
	return fmt.Sprintf("%s:%s", c.DisplayPrefix, strings.ToLower(c.FacilityName))
}

func (c *Config) PubNubEnabled() bool {
	return c.PubNubPublishKey != "" && c.PubNubSubscribeKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsDecimal(key string, defaultValue string) decimal.Decimal {
	valueStr := getEnv(key, defaultValue)
	if value, err := decimal.NewFromString(valueStr); err == nil {
		return value
	}
	return decimal.RequireFromString(defaultValue)
}

func getEnvAsLogLevel(key string, defaultValue slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv(key, ""))); err == nil {
		return level
	}
	return defaultValue
}
