// Package config loads and saves .lor/config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/corey/lor/internal/domain/index"
	"github.com/corey/lor/internal/domain/lookup"
	"github.com/corey/lor/internal/logging"
)

// Log controls daemon and CLI logging.
type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Build controls the index pipeline.
type Build struct {
	SkipMalformed      bool   `yaml:"skip_malformed"`
	ReleaseGroupPolicy string `yaml:"release_group_policy"`
	// Collectables points at collectables.yaml. Relative paths resolve
	// against DataDir.
	Collectables string `yaml:"collectables,omitempty"`
}

// Lookup controls the runtime service.
type Lookup struct {
	FuzzyThreshold    int `yaml:"fuzzy_threshold"`
	AutocompleteLimit int `yaml:"autocomplete_limit"`
	CacheSize         int `yaml:"cache_size"`
}

// Config is the in-memory form of .lor/config.yaml. Relative paths are
// relative to the project root.
type Config struct {
	DataDir  string `yaml:"data_dir"`
	DBPath   string `yaml:"db_path,omitempty"`
	HTTPPort int    `yaml:"http_port,omitempty"`
	Log      Log    `yaml:"log"`
	Build    Build  `yaml:"build"`
	Lookup   Lookup `yaml:"lookup"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DataDir: "data",
		Log: Log{
			Level: string(logging.LevelInfo),
		},
		Build: Build{
			ReleaseGroupPolicy: string(index.SecondEarliest),
			Collectables:       "collectables.yaml",
		},
		Lookup: Lookup{
			FuzzyThreshold:    lookup.FuzzyThreshold,
			AutocompleteLimit: lookup.DefaultAutocompleteLimit,
			CacheSize:         lookup.DefaultCacheSize,
		},
	}
}

// Load reads path over the defaults. A missing file yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save marshals cfg and writes it to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// Validate rejects values the pipeline or service cannot use.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if _, err := index.ParseReleaseGroupPolicy(c.Build.ReleaseGroupPolicy); err != nil {
		return err
	}
	if c.Lookup.FuzzyThreshold < 0 {
		return fmt.Errorf("lookup.fuzzy_threshold must be >= 0, got %d", c.Lookup.FuzzyThreshold)
	}
	if c.Lookup.AutocompleteLimit < 0 {
		return fmt.Errorf("lookup.autocomplete_limit must be >= 0, got %d", c.Lookup.AutocompleteLimit)
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port out of range: %d", c.HTTPPort)
	}
	return nil
}

// Policy returns the parsed release group policy. Call after Validate.
func (c *Config) Policy() index.ReleaseGroupPolicy {
	p, _ := index.ParseReleaseGroupPolicy(c.Build.ReleaseGroupPolicy)
	return p
}

// Resolve makes p absolute against base. Empty stays empty.
func Resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Logging converts the log section for logging.NewLogger.
func (c *Config) Logging(component string) *logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = logging.Level(c.Log.Level)
	lc.JSONFormat = c.Log.JSON
	lc.Component = component
	return lc
}
