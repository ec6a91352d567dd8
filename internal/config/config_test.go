package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp switches to an empty temp dir so Load does not pick up a stray
// config.yaml from the working tree.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/zones.kmz", cfg.Data.ZonesFile)
	assert.Equal(t, "output", cfg.Data.OutputDir)
	assert.Equal(t, "https://api.meteomatics.com", cfg.Meteomatics.BaseURL)
	assert.Equal(t, 30, cfg.Meteomatics.TimeoutSecs)
	assert.Equal(t, 5, cfg.Sampling.PointsPerZone)
	assert.Equal(t, 8, cfg.Sampling.Concurrency)
	assert.InDelta(t, 0.005, cfg.Sampling.GridResolution, 1e-12)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("LCZPLANNER_SERVER_PORT", "9191")
	t.Setenv("LCZPLANNER_METEOMATICS_USERNAME", "weather-user")
	t.Setenv("LCZPLANNER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "weather-user", cfg.Meteomatics.Username)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
data:
  zones_file: /srv/lcz/lajeado.kmz
store:
  driver: postgres
  database_url: postgres://localhost/lcz
server:
  port: 5000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/lcz/lajeado.kmz", cfg.Data.ZonesFile)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/lcz", cfg.Store.DatabaseURL)
	assert.Equal(t, 5000, cfg.Server.Port)
	// Unset keys keep defaults.
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "shouting", Format: "json"}))
}
