package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"FACILITY_NAME", "FACILITY_CAPACITY", "RATE_PER_MINUTE", "REDIS_URL", "ENABLE_METRICS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "Zentrum", cfg.FacilityName)
	assert.Equal(t, 10, cfg.Capacity)
	assert.True(t, cfg.RatePerMinute.Equal(decimal.RequireFromString("0.05")))
	assert.Equal(t, "CHF", cfg.Currency)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.EnableMetrics)
	assert.Equal(t, 2*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("FACILITY_NAME", "Bahnhof")
	t.Setenv("FACILITY_CAPACITY", "250")
	t.Setenv("RATE_PER_MINUTE", "0.10")
	t.Setenv("ENABLE_METRICS", "true")
	t.Setenv("NOTIFY_COOLDOWN", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadConfig()

	assert.Equal(t, "Bahnhof", cfg.FacilityName)
	assert.Equal(t, 250, cfg.Capacity)
	assert.Equal(t, "0.10", cfg.RatePerMinute.StringFixed(2))
	assert.True(t, cfg.EnableMetrics)
	assert.Equal(t, 30*time.Second, cfg.NotifyCooldown)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "parking:bahnhof", cfg.DisplayKeyPrefix())
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("FACILITY_CAPACITY", "many")
	t.Setenv("RATE_PER_MINUTE", "cheap")
	t.Setenv("NOTIFY_TIMEOUT", "soon")
	t.Setenv("LOG_LEVEL", "loud")

	cfg := LoadConfig()

	assert.Equal(t, 10, cfg.Capacity)
	assert.Equal(t, "0.05", cfg.RatePerMinute.StringFixed(2))
	assert.Equal(t, 2*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"Zero capacity", func(c *Config) { c.Capacity = 0 }, "capacity"},
		{"Negative rate", func(c *Config) { c.RatePerMinute = decimal.RequireFromString("-0.05") }, "rate"},
		{"Missing name", func(c *Config) { c.FacilityName = "" }, "name"},
		{"Zero notify failures", func(c *Config) { c.NotifyMaxFailures = 0 }, "notify max failures"},
		{"Negative notify failures", func(c *Config) { c.NotifyMaxFailures = -1 }, "notify max failures"},
	}

	valid := &Config{FacilityName: "Zentrum", Capacity: 10, RatePerMinute: decimal.RequireFromString("0.05"), NotifyMaxFailures: 3}
	assert.NoError(t, valid.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{FacilityName: "Zentrum", Capacity: 10, RatePerMinute: decimal.RequireFromString("0.05"), NotifyMaxFailures: 3}
			tt.mutate(cfg)

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_PubNubEnabled(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.PubNubEnabled())

	cfg.PubNubPublishKey = "pub-c-1"
	cfg.PubNubSubscribeKey = "sub-c-1"
	assert.True(t, cfg.PubNubEnabled())
}
