package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "scan-gateway", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Cache.SummaryTTL)
	assert.Equal(t, 10*time.Second, cfg.InventoryAPI.RequestTimeout)
	assert.Equal(t, 2*time.Hour, cfg.Session.IdleExpiration)
	assert.Equal(t, 5*time.Minute, cfg.Session.SweepInterval)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("rejects unknown cache backend", func(t *testing.T) {
		cfg := base()
		cfg.Cache.Backend = "memcached"

		err := cfg.validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache.backend")
	})

	t.Run("rejects sweep interval longer than idle expiration", func(t *testing.T) {
		cfg := base()
		cfg.Session.SweepInterval = 3 * time.Hour

		err := cfg.validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "sweep_interval")
	})

	t.Run("production requires api key", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.InventoryAPI.BaseURL = "https://inventory.internal"

		err := cfg.validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "api_key")
	})

	t.Run("production requires https upstream", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.InventoryAPI.APIKey = "secret"

		err := cfg.validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "https")
	})

	t.Run("production rejects wildcard cors", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.InventoryAPI.APIKey = "secret"
		cfg.InventoryAPI.BaseURL = "https://inventory.internal"
		cfg.HTTP.CORSAllowOrigins = []string{"*"}

		err := cfg.validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "redis.internal", Port: 6380}

	assert.Equal(t, "redis.internal:6380", cfg.Addr())
}
