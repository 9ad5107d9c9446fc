package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "data/paygap.db", config.Database.SQLitePath)
	assert.False(t, config.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, config.Redis.CacheTTL)
	assert.Equal(t, 8*time.Hour, config.Auth.TokenExpiry)
	assert.Equal(t, 15*time.Minute, config.Announcements.ExpirySweepInterval)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("PAYGAP_SERVER_PORT", "9090")
	t.Setenv("PAYGAP_REDIS_ADDR", "redis.internal:6379")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "redis.internal:6379", config.Redis.Addr)
}

func TestValidateConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Run("invalid port", func(t *testing.T) {
		var config Config
		config.Server.Port = 0
		assert.Error(t, validateConfig(&config))
	})

	t.Run("TLS without cert", func(t *testing.T) {
		var config Config
		config.Server.Port = 8080
		config.Server.TLS = true
		config.Database.SQLitePath = "data/paygap.db"
		config.Server.RateLimit.RequestsPerSecond = 50
		config.Announcements.ExpirySweepInterval = time.Hour
		assert.Error(t, validateConfig(&config))
	})

	t.Run("short jwt secret", func(t *testing.T) {
		var config Config
		config.Server.Port = 8080
		config.Database.SQLitePath = "data/paygap.db"
		config.Server.RateLimit.RequestsPerSecond = 50
		config.Announcements.ExpirySweepInterval = time.Hour
		config.Auth.JWTSecret = "too-short"
		assert.Error(t, validateConfig(&config))
	})
}
