// Package config loads runtime settings from an optional YAML file and
// CAMPAIGNCORE_* environment variables. Environment values override the
// file; command-line flags in main override both.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "CAMPAIGNCORE_"

// Save backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is the runtime configuration.
type Config struct {
	// Backend selects where save slots are kept: "file" or "sqlite".
	Backend string `yaml:"backend" env:"BACKEND"`
	SaveDir string `yaml:"save_dir" env:"SAVE_DIR"`
	DBPath  string `yaml:"db_path" env:"DB_PATH"`
	// Seed fixes the dice stream; 0 seeds from system entropy.
	Seed       int64  `yaml:"seed" env:"SEED"`
	Difficulty string `yaml:"difficulty" env:"DIFFICULTY"`
	Plain      bool   `yaml:"plain" env:"PLAIN"`
	// LogFile receives diagnostics; empty writes them to stderr.
	LogFile string `yaml:"log_file" env:"LOG_FILE"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: BackendFile,
		SaveDir: "saves",
		DBPath:  "campaigncore.db",
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped
// when path is empty or the file does not exist), then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	return cfg, cfg.Validate()
}

// Validate checks field values.
func (c Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case BackendFile:
		if strings.TrimSpace(c.SaveDir) == "" {
			return fmt.Errorf("save_dir is required for the %s backend", BackendFile)
		}
	case BackendSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("db_path is required for the %s backend", BackendSQLite)
		}
	default:
		return fmt.Errorf("unknown save backend %q (want %s or %s)", c.Backend, BackendFile, BackendSQLite)
	}
	return nil
}
