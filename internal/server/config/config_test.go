package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":5000", cfg.Address)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
}

func TestParseFlags_OverridesDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"server", "-a", ":8080", "-d", "/var/vault", "-ttl", "60"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, "/var/vault", cfg.DataDir)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
}

func TestParseJSON_OverlaysFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"address":":7000","session_ttl":"30m"}`), 0o600))

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"server", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)

	assert.Equal(t, ":7000", cfg.Address)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	// Untouched fields keep their defaults.
	assert.Equal(t, "data", cfg.DataDir)
}
