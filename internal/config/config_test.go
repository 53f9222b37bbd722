package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if cfg.Data.URL != nil || cfg.Explore.Levels != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[data]
url = "https://example.com/pitches.csv"
dataset = "2024"

[explore]
arm-angle-radius = 5.0
match = "exact"
levels = 12

[create]
min-arm-angle = -10.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Data.URL == nil || *cfg.Data.URL != "https://example.com/pitches.csv" {
		t.Fatalf("unexpected url: %v", cfg.Data.URL)
	}
	if cfg.Explore.ArmAngleRadius == nil || *cfg.Explore.ArmAngleRadius != 5 {
		t.Fatalf("unexpected radius: %v", cfg.Explore.ArmAngleRadius)
	}
	if cfg.Explore.Match == nil || *cfg.Explore.Match != "exact" {
		t.Fatalf("unexpected match: %v", cfg.Explore.Match)
	}
	if cfg.Explore.Tolerance != nil {
		t.Fatalf("expected unset tolerance to stay nil")
	}
	if cfg.Create.MinArmAngle == nil || *cfg.Create.MinArmAngle != -10 || cfg.Create.MaxArmAngle != nil {
		t.Fatalf("unexpected create config: %+v", cfg.Create)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[explore\nlevels = 3"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/cfg", "pitchmap", "config.toml") {
		t.Fatalf("unexpected config path %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/tmp/data", "pitchmap", "pitchmap.db") {
		t.Fatalf("unexpected db path %s", got)
	}
}
