package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 15, cfg.MatchPrimaryThreshold)
	assert.Equal(t, 5, cfg.MatchFallbackThreshold)
	assert.Equal(t, 5, cfg.MatchFallbackPool)
	assert.Equal(t, 3, cfg.MatchFallbackLimit)
	assert.Equal(t, 24*time.Hour, cfg.MatchDedupWindow)
	assert.Equal(t, 7*24*time.Hour, cfg.SuggestionExpiry)
	assert.Equal(t, "0 0 9 * * *", cfg.SuggestionCron)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.AIHealthWindow)
	assert.Equal(t, 5, cfg.GenerateRateLimit)
	assert.Equal(t, time.Minute, cfg.GenerateRateWindow)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("MATCH_PRIMARY_THRESHOLD", "20")
	t.Setenv("MATCH_DEDUP_WINDOW", "12h")
	t.Setenv("MATCH_LOCK_TTL", "not-a-duration")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("TIMEZONE", "America/Vancouver")

	cfg := Load()

	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 20, cfg.MatchPrimaryThreshold)
	assert.Equal(t, 12*time.Hour, cfg.MatchDedupWindow)
	assert.Equal(t, 30*time.Second, cfg.MatchLockTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.NoError(t, cfg.Validate())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Vancouver", loc.String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"default secret in production", func(c *Config) { c.Environment = "production" }},
		{"memory store in production", func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = "s3cret"
			c.StoreDriver = StoreDriverMemory
		}},
		{"unknown store", func(c *Config) { c.StoreDriver = "mongo" }},
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }},
		{"unknown audit sink", func(c *Config) { c.AuditSink = "kafka" }},
		{"dynamodb without table", func(c *Config) {
			c.AuditSink = AuditSinkDynamoDB
			c.AuditTable = ""
		}},
		{"fallback above primary", func(c *Config) { c.MatchFallbackThreshold = 30 }},
		{"zero fallback limit", func(c *Config) { c.MatchFallbackLimit = 0 }},
		{"zero rate limit", func(c *Config) { c.GenerateRateLimit = 0 }},
		{"zero dedup window", func(c *Config) { c.MatchDedupWindow = 0 }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"zero health failures", func(c *Config) { c.AIHealthMaxFailures = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
