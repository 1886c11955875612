package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "cluster_0", cfg.Data.RootCluster)
	assert.Equal(t, 1000.0, cfg.Viewport.MaxOffset)
	assert.True(t, cfg.Viewport.ClampOffset)
	assert.Equal(t, 20.0, cfg.Viewport.HitRadius)
	assert.Equal(t, 90.0, cfg.Viewport.HeaderHeight)
	assert.Equal(t, "Constellation", cfg.Catalog.AppName)
	assert.Equal(t, 10*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 0.5, cfg.Playback.Volume)
	assert.True(t, cfg.Features.Audio)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[data]
dir = "/srv/clusters"
watch = true

[viewport]
clamp_offset = false
max_offset = 250.0

[features]
audio = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/clusters", cfg.Data.Dir)
	assert.True(t, cfg.Data.Watch)
	assert.False(t, cfg.Viewport.ClampOffset)
	assert.Equal(t, 250.0, cfg.Viewport.MaxOffset)
	assert.False(t, cfg.Features.Audio)
	assert.True(t, cfg.Features.Search)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CONSTELLATION_CATALOG_APP_NAME", "StarTest")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "StarTest", cfg.Catalog.AppName)
}

func TestValidate(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	bad := *cfg
	bad.Viewport.MaxOffset = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Data.BaseURL, bad.Data.Dir = "", ""
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Playback.Volume = 1.5
	assert.Error(t, bad.Validate())
}

func TestDefaultMatchesRegisteredDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "cluster_0", cfg.Data.RootCluster)
	assert.Equal(t, 90.0, cfg.Viewport.HeaderHeight)
	assert.True(t, cfg.Features.Audio)
}
