// Package config loads application configuration from defaults, an optional
// TOML file and CONSTELLATION_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Viewport ViewportConfig `mapstructure:"viewport"`
	Features FeatureConfig  `mapstructure:"features"`
	Playback PlaybackConfig `mapstructure:"playback"`
	Log      LogConfig      `mapstructure:"log"`
}

// DataConfig locates the static cluster datasets.
type DataConfig struct {
	BaseURL     string `mapstructure:"base_url"`     // remote host, datasets at <base_url>/<cluster>.json
	Dir         string `mapstructure:"dir"`          // local directory; overrides base_url when set
	RootCluster string `mapstructure:"root_cluster"` // dataset shown at the top level
	Lookup      string `mapstructure:"lookup"`       // entity -> group lookup table name
	Watch       bool   `mapstructure:"watch"`        // reload on local file changes (dir only)
}

// CatalogConfig configures the catalog/streaming API client.
type CatalogConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	AppName           string        `mapstructure:"app_name"`
	APIKey            string        `mapstructure:"api_key"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// ViewportConfig tunes the interactive viewport.
type ViewportConfig struct {
	MaxOffset    float64 `mapstructure:"max_offset"`
	ClampOffset  bool    `mapstructure:"clamp_offset"`
	HitRadius    float64 `mapstructure:"hit_radius"`
	HeaderHeight float64 `mapstructure:"header_height"`
	Background   bool    `mapstructure:"background"`
}

// FeatureConfig switches optional behaviour on and off.
type FeatureConfig struct {
	Audio  bool `mapstructure:"audio"`
	Search bool `mapstructure:"search"`
}

// PlaybackConfig configures the external audio player.
type PlaybackConfig struct {
	Command string  `mapstructure:"command"`
	Volume  float64 `mapstructure:"volume"`
}

// LogConfig configures logging.
type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.base_url", "https://raw.githubusercontent.com/SeanCena/audiusdata/refs/heads/main")
	v.SetDefault("data.dir", "")
	v.SetDefault("data.root_cluster", "cluster_0")
	v.SetDefault("data.lookup", "lookup")
	v.SetDefault("data.watch", false)

	v.SetDefault("catalog.base_url", "https://api.audius.co/v1")
	v.SetDefault("catalog.app_name", "Constellation")
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.requests_per_second", 10.0)
	v.SetDefault("catalog.burst", 5)
	v.SetDefault("catalog.timeout", 10*time.Second)

	v.SetDefault("viewport.max_offset", 1000.0)
	v.SetDefault("viewport.clamp_offset", true)
	v.SetDefault("viewport.hit_radius", 20.0)
	v.SetDefault("viewport.header_height", 90.0)
	v.SetDefault("viewport.background", true)

	v.SetDefault("features.audio", true)
	v.SetDefault("features.search", true)

	v.SetDefault("playback.command", "ffplay")
	v.SetDefault("playback.volume", 0.5)

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
}

// Default returns the built-in configuration without reading files or
// the environment.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		panic(err) // defaults are always valid
	}
	return cfg
}

// Load reads configuration. An explicit path must exist; with an empty path
// the user config file is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("CONSTELLATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	} else if p := userConfigPath(); p != "" {
		if _, err := os.Stat(p); err == nil {
			v.SetConfigFile(p)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrapf(err, "failed to read config file %s", p)
			}
		}
	}

	return LoadWithViper(v)
}

// LoadWithViper unmarshals and validates configuration from v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Data.BaseURL == "" && c.Data.Dir == "" {
		return errors.WithHint(errors.New("no dataset source configured"),
			"set data.base_url or data.dir")
	}
	if c.Data.RootCluster == "" {
		return errors.New("data.root_cluster is required")
	}
	if c.Viewport.MaxOffset <= 0 {
		return errors.Newf("viewport.max_offset must be positive, got %v", c.Viewport.MaxOffset)
	}
	if c.Viewport.HitRadius <= 0 {
		return errors.Newf("viewport.hit_radius must be positive, got %v", c.Viewport.HitRadius)
	}
	if c.Viewport.HeaderHeight < 0 {
		return errors.Newf("viewport.header_height must be non-negative, got %v", c.Viewport.HeaderHeight)
	}
	if c.Catalog.RequestsPerSecond < 0 || c.Catalog.Burst < 0 {
		return errors.New("catalog rate limits must be non-negative")
	}
	if c.Playback.Volume < 0 || c.Playback.Volume > 1 {
		return errors.Newf("playback.volume must be within [0,1], got %v", c.Playback.Volume)
	}
	return nil
}

func userConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "constellation", "config.toml")
}
