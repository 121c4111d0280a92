package emptyletters

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// Config collects all settings of a run. Zero values in a config file keep
// the defaults.
type Config struct {
	Endpoint       string `toml:"endpoint"`
	Base           string `toml:"base"`
	NumbersFile    string `toml:"numbers_file"`
	ExcludeFile    string `toml:"exclude_file"`
	CacheDir       string `toml:"cache_dir"`
	OutputDir      string `toml:"output_dir"`
	Workers        int    `toml:"workers"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
	RefreshBefore  string `toml:"refresh_before"`
}

// DefaultConfig mirrors the directory layout of the project: input lists
// under input/, raw documents under cache/, letters under output/xml/.
func DefaultConfig() Config {
	return Config{
		Endpoint:       DefaultEndpoint,
		Base:           DefaultBase,
		NumbersFile:    "input/all_numbers.txt",
		ExcludeFile:    "input/exclude.txt",
		CacheDir:       "cache",
		OutputDir:      "output/xml",
		Workers:        DefaultWorkers,
		TimeoutSeconds: 60,
		MaxRetries:     4,
	}
}

// LoadConfig returns the defaults, overlaid with the values of a TOML file,
// if path is not empty.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ExpandPaths replaces a leading ~ in all paths with the home directory.
func (c *Config) ExpandPaths() (err error) {
	for _, p := range []*string{&c.NumbersFile, &c.ExcludeFile, &c.CacheDir, &c.OutputDir} {
		if *p, err = homedir.Expand(*p); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks for settings a run cannot do without.
func (c Config) Validate() error {
	switch {
	case c.Endpoint == "":
		return ErrNoEndpoint
	case c.Base == "":
		return ErrNoBase
	case c.NumbersFile == "":
		return errors.New("config: numbers file is required")
	case c.CacheDir == "":
		return errors.New("config: cache directory is required")
	case c.OutputDir == "":
		return errors.New("config: output directory is required")
	case c.Workers < 1:
		return fmt.Errorf("config: workers must be positive, got %d", c.Workers)
	case c.TimeoutSeconds < 1:
		return fmt.Errorf("config: timeout must be positive, got %d", c.TimeoutSeconds)
	case c.MaxRetries < 1:
		return fmt.Errorf("config: max retries must be positive, got %d", c.MaxRetries)
	}
	_, err := ParseCutoff(c.RefreshBefore)
	return err
}

// Timeout returns the per request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NewMetadataCache wires a cache with a resilient client as configured.
func (c Config) NewMetadataCache() (*MetadataCache, error) {
	cutoff, err := ParseCutoff(c.RefreshBefore)
	if err != nil {
		return nil, err
	}
	cache := NewMetadataCache(c.CacheDir, NewResilientClient(c.Timeout(), c.MaxRetries))
	cache.Endpoint = c.Endpoint
	cache.Base = c.Base
	cache.RefreshBefore = cutoff
	return cache, nil
}
