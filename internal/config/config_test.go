package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379",
		"JWT_SECRET":   "secret",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL": "postgres://localhost/freshmart",
		"REDIS_URL":    "redis://localhost:6379",
		"JWT_SECRET":   "secret",
		"PORT":         "",
		"APP_ENV":      "",
	})
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 30, cfg.CouponValidateMax)
}

func TestHTTPAddrKeepsLeadingColon(t *testing.T) {
	cfg := &Config{Port: ":9090"}
	require.Equal(t, ":9090", cfg.HTTPAddr())
}
