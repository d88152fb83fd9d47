package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_Defaults(t *testing.T) {
	cfg, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "qid", cfg.Session.CookieName)
	assert.Equal(t, 365*24*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, 24*time.Hour, cfg.Auth.ConfirmationTTL)
	assert.Equal(t, "sess:", cfg.Redis.KeyPrefix)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.False(t, cfg.App.IsProduction())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "0.0.0.0:4000", cfg.App.Addr())
}

func TestProcess_Overrides(t *testing.T) {
	cfg, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{
		"APP_ENV":               "production",
		"APP_PORT":              "9000",
		"REDIS_URL":             "redis://cache:6379/1",
		"SESSION_COOKIE_DOMAIN": ".ereignis.mx",
		"RATE_LIMIT_WINDOW":     "30s",
		"AUTH_BCRYPT_COST":      "10",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.Equal(t, ".ereignis.mx", cfg.Session.Domain)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
}

func TestProcess_InvalidValue(t *testing.T) {
	_, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{
		"AUTH_BCRYPT_COST": "lots",
	}))
	assert.Error(t, err)
}
