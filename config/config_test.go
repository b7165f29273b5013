package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "AUTH_MODE", "DB_DRIVER", "RATE_LIMIT_REQUESTS", "CRON_ENABLED", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	env, err := Get()
	require.NoError(t, err)
	assert.Equal(t, 5000, env.PORT)
	assert.Equal(t, AuthModeHeader, env.AUTH_MODE)
	assert.Equal(t, "postgres", env.DB_DRIVER)
	assert.Equal(t, 100, env.RATE_LIMIT_REQUESTS)
	assert.Equal(t, "*", env.ALLOWED_ORIGINS)
	assert.True(t, env.CRON_ENABLED)
	assert.False(t, env.AssetStorageConfigured())
}

func TestGetOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("AUTH_MODE", " JWT ")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("RATE_LIMIT_REQUESTS", "0")
	t.Setenv("CRON_ENABLED", "false")
	t.Setenv("GO_ENV", "production")

	env, err := Get()
	require.NoError(t, err)
	assert.Equal(t, 8080, env.PORT)
	assert.Equal(t, AuthModeJWT, env.AUTH_MODE)
	assert.Equal(t, "sqlite", env.DB_DRIVER)
	assert.Equal(t, 0, env.RATE_LIMIT_REQUESTS)
	assert.False(t, env.CRON_ENABLED)
	assert.True(t, env.IsProduction())
}

func TestUnknownAuthModeFallsBackToHeader(t *testing.T) {
	t.Setenv("AUTH_MODE", "oauth")

	env, err := Get()
	require.NoError(t, err)
	assert.Equal(t, AuthModeHeader, env.AUTH_MODE)
}

func TestAssetStorageConfigured(t *testing.T) {
	env := &EnvironmentVariable{
		ASSET_BUCKET:     "media",
		ASSET_REGION:     "nyc3",
		ASSET_ACCESS_KEY: "key",
	}
	assert.False(t, env.AssetStorageConfigured())

	env.ASSET_SECRET_KEY = "secret"
	assert.True(t, env.AssetStorageConfigured())
}
