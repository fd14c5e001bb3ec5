package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	c, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "dev", c.Env)
	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.Equal(t, BackendPostgres, c.DataBackend)
	assert.Equal(t, BackendPostgres, c.Game.SessionBackend)
	assert.Equal(t, BackendMemory, c.Generator.QuotaBackend)
	assert.Equal(t, 100, c.Generator.DailyLimit)
	assert.Zero(t, c.Redis.SessionTTL)
	assert.Equal(t, 24*time.Hour, c.Auth.TokenTTL)
	assert.True(t, c.NeedsPostgres())
	assert.False(t, c.NeedsRedis())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("DAILY_GENERATION_LIMIT", "5")
	t.Setenv("REDIS_DB", "not-a-number")

	c, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.HTTP.Addr)
	assert.Equal(t, BackendRedis, c.Game.SessionBackend)
	assert.Equal(t, 2*time.Hour, c.Redis.SessionTTL)
	assert.Equal(t, 5, c.Generator.DailyLimit)
	assert.Zero(t, c.Redis.DB)
	assert.False(t, c.NeedsPostgres())
	assert.True(t, c.NeedsRedis())
}

func TestLoadFromEnvSessionBackendFollowsData(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")

	c, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, c.Game.SessionBackend)
}

func TestValidate(t *testing.T) {
	base, err := LoadFromEnv()
	require.NoError(t, err)

	cases := []struct {
		name    string
		mut     func(*Config)
		wantErr string
	}{
		{name: "ok", mut: func(*Config) {}},
		{name: "bad_data_backend", mut: func(c *Config) { c.DataBackend = "mysql" }, wantErr: "DATA_BACKEND"},
		{name: "bad_session_backend", mut: func(c *Config) { c.Game.SessionBackend = "disk" }, wantErr: "SESSION_BACKEND"},
		{name: "pg_sessions_without_pg", mut: func(c *Config) { c.DataBackend = BackendMemory }, wantErr: "SESSION_BACKEND=postgres"},
		{name: "bad_quota_backend", mut: func(c *Config) { c.Generator.QuotaBackend = "postgres" }, wantErr: "QUOTA_BACKEND"},
		{name: "negative_limit", mut: func(c *Config) { c.Generator.DailyLimit = -1 }, wantErr: "DAILY_GENERATION_LIMIT"},
		{name: "generator_without_key", mut: func(c *Config) { c.Generator.URL = "https://example.test" }, wantErr: "GENERATOR_API_KEY"},
		{name: "default_secret_in_prod", mut: func(c *Config) {
			c.Env = "prod"
			c.Auth.AdminPasswordHash = "$2a$10$hash"
		}, wantErr: "default JWT_SECRET"},
		{name: "missing_admin_hash_in_prod", mut: func(c *Config) {
			c.Env = "prod"
			c.Auth.Secret = "real"
		}, wantErr: "ADMIN_PASSWORD_HASH"},
		{name: "bad_log_format", mut: func(c *Config) { c.Log.Format = "xml" }, wantErr: "LOG_FORMAT"},
		{name: "bad_log_level", mut: func(c *Config) { c.Log.Level = "trace" }, wantErr: "LOG_LEVEL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mut(&c)
			err := c.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadFromEnvGeneratorHeaders(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("GENERATOR_URL", "http://gateway.local/v1/messages")
	t.Setenv("GENERATOR_API_KEY", "Bearer tok")
	t.Setenv("GENERATOR_API_KEY_HEADER", "Authorization")
	t.Setenv("GENERATOR_HEADERS", "anthropic-version=2023-06-01, X-Gateway = puzzles ,=skipped")

	c, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "Authorization", c.Generator.APIKeyHeader)
	assert.Equal(t, map[string]string{
		"anthropic-version": "2023-06-01",
		"X-Gateway":         "puzzles",
	}, c.Generator.Headers)
}
