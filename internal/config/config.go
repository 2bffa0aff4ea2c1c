// Package config loads the TOML configuration file and applies
// defaults and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default file locations, rooted in the user's home directory.
const (
	DefaultDirName  = ".asistentelegal"
	DefaultFileName = "config.toml"
)

// Config is the full application configuration.
type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Worker    WorkerConfig    `toml:"worker"`
	Sweep     SweepConfig     `toml:"sweep"`
	Chunker   ChunkerConfig   `toml:"chunker"`
	Fetch     FetchConfig     `toml:"fetch"`
}

// StorageConfig configures the SQLite database location.
type StorageConfig struct {
	// DataDir holds the database file. Empty means
	// ~/.asistentelegal/data.
	DataDir string `toml:"data_dir"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	// APIKey authenticates against the provider. The
	// OPENAI_API_KEY environment variable takes precedence.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `toml:"base_url"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// Dimensions is the embedding vector size.
	Dimensions int `toml:"dimensions"`

	// BatchSize caps how many texts go to the provider per request.
	BatchSize int `toml:"batch_size"`

	// RequestsPerSecond paces provider calls.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// WorkerConfig configures the job queue workers.
type WorkerConfig struct {
	// Concurrency is how many jobs run at once.
	Concurrency int `toml:"concurrency"`

	// PollIntervalSeconds is how often an idle worker checks for jobs.
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
}

// SweepConfig configures the stuck-document reconciliation sweep.
type SweepConfig struct {
	// IntervalMinutes is how often the sweep runs.
	IntervalMinutes int `toml:"interval_minutes"`

	// StuckTimeoutMinutes is how long a document may sit in a
	// processing state before the sweep recovers it.
	StuckTimeoutMinutes int `toml:"stuck_timeout_minutes"`
}

// ChunkerConfig configures text splitting.
type ChunkerConfig struct {
	TargetSize int `toml:"target_size"`
	MinSize    int `toml:"min_size"`
	MaxSize    int `toml:"max_size"`
	Overlap    int `toml:"overlap"`
}

// FetchConfig configures source content downloads.
type FetchConfig struct {
	// TimeoutSeconds bounds a single download.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// MaxBytes caps the payload size.
	MaxBytes int64 `toml:"max_bytes"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:          "openai",
			Model:             "text-embedding-3-small",
			Dimensions:        1536,
			BatchSize:         100,
			RequestsPerSecond: 2,
		},
		Worker: WorkerConfig{
			Concurrency:         2,
			PollIntervalSeconds: 1,
		},
		Sweep: SweepConfig{
			IntervalMinutes:     5,
			StuckTimeoutMinutes: 30,
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 30,
			MaxBytes:       20 << 20,
		},
	}
}

// DefaultPath returns ~/.asistentelegal/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName, DefaultFileName), nil
}

// Load reads the configuration from path, falling back to defaults
// when the file does not exist. An empty path means the default
// location. The OPENAI_API_KEY environment variable overrides the
// stored API key.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file means defaults.
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to path, creating the directory.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Embedding.APIKey = key
	}
}

// applyDefaults fills zero fields so a sparse file still yields a
// usable configuration.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = def.Embedding.Provider
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = def.Embedding.Model
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = def.Embedding.Dimensions
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = def.Embedding.BatchSize
	}
	if c.Embedding.RequestsPerSecond <= 0 {
		c.Embedding.RequestsPerSecond = def.Embedding.RequestsPerSecond
	}
	if c.Worker.Concurrency <= 0 {
		c.Worker.Concurrency = def.Worker.Concurrency
	}
	if c.Worker.PollIntervalSeconds <= 0 {
		c.Worker.PollIntervalSeconds = def.Worker.PollIntervalSeconds
	}
	if c.Sweep.IntervalMinutes <= 0 {
		c.Sweep.IntervalMinutes = def.Sweep.IntervalMinutes
	}
	if c.Sweep.StuckTimeoutMinutes <= 0 {
		c.Sweep.StuckTimeoutMinutes = def.Sweep.StuckTimeoutMinutes
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = def.Fetch.TimeoutSeconds
	}
	if c.Fetch.MaxBytes <= 0 {
		c.Fetch.MaxBytes = def.Fetch.MaxBytes
	}
}

// SweepInterval returns the sweep interval as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Sweep.IntervalMinutes) * time.Minute
}

// StuckTimeout returns the stuck-document timeout as a duration.
func (c *Config) StuckTimeout() time.Duration {
	return time.Duration(c.Sweep.StuckTimeoutMinutes) * time.Minute
}

// PollInterval returns the worker poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Worker.PollIntervalSeconds) * time.Second
}

// FetchTimeout returns the download timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}
