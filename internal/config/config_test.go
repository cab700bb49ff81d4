package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "3001" {
		t.Errorf("expected default port 3001, got %q", cfg.Port)
	}
	if cfg.MPDHost != "localhost" {
		t.Errorf("expected default MPD host localhost, got %q", cfg.MPDHost)
	}
	if cfg.DataDir == "" {
		t.Error("expected data dir to be filled from XDG default")
	}
	if cfg.CookieFile == "" {
		t.Error("expected cookie file default under data dir")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHORUS_PORT", "9000")
	t.Setenv("CHORUS_MPD_PORT", "7700")
	t.Setenv("CHORUS_DATA_DIR", "/tmp/chorus-test")
	t.Setenv("CHORUS_DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.MPDPort != 7700 {
		t.Errorf("expected MPD port 7700, got %d", cfg.MPDPort)
	}
	if !cfg.Debug {
		t.Error("expected debug enabled")
	}
	if cfg.LibraryDBPath() != "/tmp/chorus-test/library.db" {
		t.Errorf("unexpected library db path %q", cfg.LibraryDBPath())
	}
}
