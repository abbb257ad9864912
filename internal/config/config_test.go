package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_API_PREFIX", "v1/")
	t.Setenv("APP_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/v1", cfg.App.APIPrefix)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
	require.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL())
	require.Equal(t, 10, cfg.Auth.BcryptCost)
	require.False(t, cfg.Admin.Enabled())
}

func TestLoadRejectsDevSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	require.Error(t, err)
}

func TestNormalizePrefix(t *testing.T) {
	require.Equal(t, "", normalizePrefix(" / "))
	require.Equal(t, "/api", normalizePrefix("api"))
	require.Equal(t, "/api", normalizePrefix("/api/"))
}
