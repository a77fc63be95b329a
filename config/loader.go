// ABOUTME: Configuration loading from YAML file and environment
// ABOUTME: Resolves the file path from flag, FICHAS_CONFIG or the XDG config directory
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigPath returns $XDG_CONFIG_HOME/fichas/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load reads configuration. Priority: ENV > YAML > env-default tags.
// An explicit path (argument or FICHAS_CONFIG) must exist; the XDG default
// is optional.
func Load(path string) (*Config, error) {
	var cfg Config

	explicitPath := path != ""
	if !explicitPath {
		if envPath := os.Getenv("FICHAS_CONFIG"); envPath != "" {
			path = envPath
			explicitPath = true
		} else {
			path = DefaultConfigPath()
		}
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks values the engine cannot work around.
func (c *Config) Validate() error {
	var errs []error

	if c.Display.DateLayout == "" {
		errs = append(errs, errors.New("display.date_layout must not be empty"))
	}
	if c.Display.TextareaThreshold <= 0 {
		errs = append(errs, fmt.Errorf("display.textarea_threshold must be positive, got %d", c.Display.TextareaThreshold))
	}
	if c.Display.TimeZone != "" {
		if _, err := time.LoadLocation(c.Display.TimeZone); err != nil {
			errs = append(errs, fmt.Errorf("display.time_zone: %w", err))
		}
	}
	if c.Mongo.Timeout <= 0 {
		errs = append(errs, errors.New("mongo.timeout must be positive"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json; got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
