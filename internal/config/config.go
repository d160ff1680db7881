package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all raftlens configuration.
type Config struct {
	Input         string `yaml:"input"`          // root directory scanned for worker logs
	Output        string `yaml:"output"`         // directory for CSV tables (defaults to Input)
	BaseDate      string `yaml:"base_date"`      // anchor date for time-only logs, "YYYY-MM-DD"
	WindowSeconds int    `yaml:"window_seconds"` // rollup window size
	LogLevel      string `yaml:"log_level"`
}

// Load reads configuration from environment variables with sensible defaults.
// Flags and config files layer on top of the result.
func Load() Config {
	return Config{
		Input:         os.Getenv("RAFTLENS_INPUT"),
		Output:        os.Getenv("RAFTLENS_OUTPUT"),
		BaseDate:      os.Getenv("RAFTLENS_BASE_DATE"),
		WindowSeconds: getenvInt("RAFTLENS_WINDOW_SECONDS", 60),
		LogLevel:      getenv("RAFTLENS_LOG_LEVEL", "info"),
	}
}

// ApplyFile overlays settings from a YAML config file. Zero-valued file
// fields leave the existing value untouched.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if file.Input != "" {
		c.Input = file.Input
	}
	if file.Output != "" {
		c.Output = file.Output
	}
	if file.BaseDate != "" {
		c.BaseDate = file.BaseDate
	}
	if file.WindowSeconds != 0 {
		c.WindowSeconds = file.WindowSeconds
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	return nil
}

// Validate checks the settings the extraction core depends on.
func (c Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input directory is required")
	}
	if c.WindowSeconds <= 0 {
		return fmt.Errorf("window_seconds must be positive, got %d", c.WindowSeconds)
	}
	if c.BaseDate != "" {
		if _, err := time.Parse("2006-01-02", c.BaseDate); err != nil {
			return fmt.Errorf("base_date must be YYYY-MM-DD: %w", err)
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
