package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/roman-kulish/ionogram/internal/grid"
	"gopkg.in/yaml.v3"
)

// Config represents the importer configuration
type Config struct {
	Settings Settings       `yaml:"settings"`
	Storage  StorageConfig  `yaml:"storage"`
	Imports  []ImportConfig `yaml:"imports"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel LogLevel      `yaml:"logLevel"`
	Builder  grid.Strategy `yaml:"builder"` // Builder used to validate dumps before storing them
}

// StorageConfig represents storage settings
type StorageConfig struct {
	Database string `yaml:"database"`
}

// ImportConfig is one JSON dump, or a glob of dumps, to store.
// Non-empty station names replace the ones in the dump passport.
type ImportConfig struct {
	Path        string `yaml:"path"`
	Transmitter string `yaml:"transmitter"`
	Receiver    string `yaml:"receiver"`
}

type LogLevel slog.Level

func (l *LogLevel) UnmarshalYAML(value *yaml.Node) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value.Value)); err != nil {
		return fmt.Errorf("app.LogLevel: failed to parse: %s", err)
	}

	*l = LogLevel(level)
	return nil
}

func (l LogLevel) Level() slog.Level {
	return slog.Level(l)
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err = yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Settings.Builder == "" {
		c.Settings.Builder = grid.StrategySimple
	}

	if err = c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.Storage.Database == "" {
		return errors.New("app.Config: storage database is required")
	}
	if c.Settings.Builder != grid.StrategySimple && c.Settings.Builder != grid.StrategyDecibel {
		return fmt.Errorf("app.Config: invalid builder: %s", c.Settings.Builder)
	}
	if len(c.Imports) == 0 {
		return errors.New("app.Config: no imports specified")
	}
	for i, imp := range c.Imports {
		if imp.Path == "" {
			return fmt.Errorf("app.Config: import #%d: path is required", i)
		}
	}
	return nil
}
