package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"

	"github.com/verte-zerg/pitchmap/internal/config"
	"github.com/verte-zerg/pitchmap/internal/model"
	"github.com/verte-zerg/pitchmap/internal/stats"
)

func TestParsePitchFlag(t *testing.T) {
	pitch, err := parsePitchFlag("Sweeper:-14.5:2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if pitch.PitchType != "Sweeper" || pitch.HB != -14.5 || pitch.IVB != 2 || pitch.ArmAngle != nil {
		t.Fatalf("unexpected pitch: %+v", pitch)
	}
	pitch, err = parsePitchFlag("Sinker:15:8:32.5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if pitch.ArmAngle == nil || *pitch.ArmAngle != 32.5 {
		t.Fatalf("expected arm angle 32.5, got %+v", pitch.ArmAngle)
	}
	for _, bad := range []string{"Sweeper", "Sweeper:1", ":1:2", "Sweeper:x:2", "a:1:2:3:4", "Slider:NaN:3", "Slider:1:+Inf", "Slider:1:2:-inf"} {
		if _, err := parsePitchFlag(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestValidateExploreConfig(t *testing.T) {
	valid := model.ExploreConfig{
		Dataset:        defaultDataset,
		ArmAngleRadius: stats.DefaultArmAngleRadius,
		MatchPolicy:    defaultMatch,
		Tolerance:      defaultTolerance,
		Levels:         defaultLevels,
		Thresh:         defaultThresh,
		CreateMinAngle: defaultMinArmAngle,
		CreateMaxAngle: defaultMaxArmAngle,
	}
	if err := validateExploreConfig(valid); err != nil {
		t.Fatalf("expected defaults to be valid: %v", err)
	}

	cases := map[string]func(*model.ExploreConfig){
		"radius":    func(c *model.ExploreConfig) { c.ArmAngleRadius = 0 },
		"match":     func(c *model.ExploreConfig) { c.MatchPolicy = "fuzzy" },
		"tolerance": func(c *model.ExploreConfig) { c.Tolerance = -1 },
		"levels":    func(c *model.ExploreConfig) { c.Levels = 0 },
		"thresh":    func(c *model.ExploreConfig) { c.Thresh = 1 },
		"no thresh": func(c *model.ExploreConfig) { c.Thresh = 0 },
		"range":     func(c *model.ExploreConfig) { c.CreateMinAngle = 30 },
		"dataset":   func(c *model.ExploreConfig) { c.Dataset = " " },
	}
	for name, mutate := range cases {
		cfg := valid
		mutate(&cfg)
		if err := validateExploreConfig(cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("decode template: %v", err)
	}
	if cfg.Data.URL != nil || cfg.Explore.Levels != nil {
		t.Fatalf("expected commented template to leave values unset")
	}

	uncommented := strings.ReplaceAll(defaultConfigTemplate(), "# url", "url")
	if _, err := toml.Decode(uncommented, &cfg); err != nil {
		t.Fatalf("decode uncommented template: %v", err)
	}
	if cfg.Data.URL == nil || *cfg.Data.URL != defaultURL {
		t.Fatalf("expected url %q, got %v", defaultURL, cfg.Data.URL)
	}
}

func TestWriteJSON(t *testing.T) {
	report := stats.ArsenalReport{
		Pitcher:  "Able",
		Throws:   "R",
		ArmAngle: 20,
		Range:    stats.ArmAngleRange{Lo: 17, Hi: 23},
	}
	var buf bytes.Buffer
	if err := writeJSON(&buf, report); err != nil {
		t.Fatalf("write: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["pitcher"] != "Able" || decoded["p_throws"] != "R" {
		t.Fatalf("unexpected JSON: %s", buf.String())
	}
	rng, ok := decoded["arm_angle_range"].(map[string]any)
	if !ok || rng["lo"] != 17.0 || rng["hi"] != 23.0 {
		t.Fatalf("unexpected range: %s", buf.String())
	}
}
