package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("CONFIG_ENV", "missing")
	// Empty variables count as unset
	t.Setenv("PORT", "")
	t.Setenv("MODE", "")

	cfg, err := Load()
	req.NoError(err)

	req.Equal(5000, cfg.Port)
	req.Equal("release", cfg.Mode)
	req.Equal(54*time.Second, cfg.PingPeriod)
	req.Equal([]string{"*"}, cfg.CORSOrigins)
	req.Equal([]string{"GET", "POST"}, cfg.CORSMethods)
	req.Equal(50, cfg.RateLimit)
	req.Equal(time.Second, cfg.RateInterval)
	// An empty secret is replaced so the cookie store always has a key
	req.NotEmpty(cfg.Secret)
}

func TestLoad_EnvOverridesPort(t *testing.T) {
	req := require.New(t)
	t.Setenv("CONFIG_ENV", "missing")
	t.Setenv("PORT", "6001")
	t.Setenv("PING_PERIOD", "10s")

	cfg, err := Load()
	req.NoError(err)

	req.Equal(6001, cfg.Port)
	req.Equal(10*time.Second, cfg.PingPeriod)
}

func TestLoad_RejectsBadPort(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing")
	t.Setenv("PORT", "70000")

	_, err := Load()
	require.Error(t, err)
}
