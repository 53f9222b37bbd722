// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Data    DataConfig    `toml:"data"`
	Explore ExploreConfig `toml:"explore"`
	Create  CreateConfig  `toml:"create"`
	Log     LogConfig     `toml:"log"`
}

// DataConfig maps dataset source settings.
type DataConfig struct {
	URL     *string `toml:"url"`
	Dataset *string `toml:"dataset"`
}

// ExploreConfig maps dashboard query and plot settings.
type ExploreConfig struct {
	ArmAngleRadius *float64 `toml:"arm-angle-radius"`
	Match          *string  `toml:"match"`
	Tolerance      *float64 `toml:"tolerance"`
	Levels         *int     `toml:"levels"`
	Thresh         *float64 `toml:"thresh"`
}

// CreateConfig maps defaults for the custom pitcher builder.
type CreateConfig struct {
	MinArmAngle *float64 `toml:"min-arm-angle"`
	MaxArmAngle *float64 `toml:"max-arm-angle"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
