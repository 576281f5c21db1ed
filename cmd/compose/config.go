package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// defaultConfigFile is read from the working directory when -config is
// not given. Its absence is not an error.
const defaultConfigFile = "compose.toml"

// Config is the contents of compose.toml.
type Config struct {
	Output OutputConfig `toml:"output"`
	Fonts  FontConfig   `toml:"fonts"`
	Images ImageConfig  `toml:"images"`
	Log    LogConfig    `toml:"log"`
}

// OutputConfig controls the exported image.
type OutputConfig struct {
	Format  string `toml:"format"`  // png or jpeg; empty picks from the file name
	Quality int    `toml:"quality"` // JPEG quality, 1-100
}

// FontConfig controls where text layer fonts come from.
type FontConfig struct {
	Dirs     []string `toml:"dirs"`
	System   bool     `toml:"system"`
	CacheDir string   `toml:"cache_dir"`
}

// ImageConfig controls how layer images are fetched.
type ImageConfig struct {
	// Dir resolves relative image paths. Empty means the directory of the
	// document.
	Dir string `toml:"dir"`
	// TimeoutSeconds bounds each http(s) fetch.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// LogConfig selects the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `toml:"level"`
}

func defaultConfig() Config {
	return Config{
		Output: OutputConfig{Quality: 90},
		Images: ImageConfig{TimeoutSeconds: 30},
		Log:    LogConfig{Level: "warn"},
	}
}

// loadConfig reads path over the defaults. A missing file is only an
// error when required is set.
func loadConfig(path string, required bool) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Output.Quality < 0 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality %d out of range 0-100", c.Output.Quality)
	}
	if c.Images.TimeoutSeconds < 0 {
		return fmt.Errorf("images.timeout_seconds must not be negative")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func (c *Config) timeout() time.Duration {
	return time.Duration(c.Images.TimeoutSeconds) * time.Second
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
