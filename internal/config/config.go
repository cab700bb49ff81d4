// Package config loads backend configuration from the environment.
package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
)

// Config holds the backend configuration loaded from environment variables.
// Command-line flags in cmd/chorus override individual fields.
type Config struct {
	Port        string `env:"CHORUS_PORT" envDefault:"3001"`
	MPDHost     string `env:"CHORUS_MPD_HOST" envDefault:"localhost"`
	MPDPort     int    `env:"CHORUS_MPD_PORT" envDefault:"6600"`
	MPDPassword string `env:"CHORUS_MPD_PASSWORD"`
	DataDir     string `env:"CHORUS_DATA_DIR"`
	CookieFile  string `env:"CHORUS_COOKIE_FILE"`
	YTDLPPath   string `env:"CHORUS_YTDLP_PATH" envDefault:"yt-dlp"`
	Region      string `env:"CHORUS_REGION" envDefault:"US"`
	Debug       bool   `env:"CHORUS_DEBUG"`
}

// Load reads configuration from environment variables and fills in
// filesystem defaults for unset paths.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(xdg.DataHome, "chorus")
	}
	if cfg.CookieFile == "" {
		cfg.CookieFile = filepath.Join(cfg.DataDir, "cookies.txt")
	}

	return cfg, nil
}

// LibraryDBPath returns the path of the library database file.
func (c *Config) LibraryDBPath() string {
	return filepath.Join(c.DataDir, "library.db")
}
