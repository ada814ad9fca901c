// Package config provides unified configuration for the Eventmill pipeline.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for a pipeline run.
type Config struct {
	// DataDir is the base directory for the persisted store
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// InputDir is the directory scanned for telemetry export files
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// OutputDir is the directory the artifacts are published into
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Reference holds the reference feed locations
	Reference ReferenceConfig `json:"reference" yaml:"reference"`

	// Reporting holds reporting/derivation settings
	Reporting ReportingConfig `json:"reporting" yaml:"reporting"`

	// Storage configures optional artifact publication to object storage
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// ReferenceConfig holds locations of borrowed read-only reference data.
type ReferenceConfig struct {
	// SnapshotPath is the organizational snapshot feed (CSV). Absence is
	// non-fatal; enrichment is skipped for the run.
	SnapshotPath string `json:"snapshot_path" yaml:"snapshot_path"`

	// StoryTitlesPath is the optional story_id -> title lookup (CSV)
	StoryTitlesPath string `json:"story_titles_path" yaml:"story_titles_path"`
}

// ReportingConfig holds derivation settings.
type ReportingConfig struct {
	// Timezone is the reporting timezone events are localized to
	Timezone string `json:"timezone" yaml:"timezone"`
}

// StorageConfig holds artifact publication configuration.
type StorageConfig struct {
	// Type is the publication target: "" (disabled), local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local publication path (for local type)
	Path string `json:"path" yaml:"path"`

	// Prefix is the object path prefix artifacts are uploaded under
	Prefix string `json:"prefix" yaml:"prefix"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 publication configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// DefaultConfig returns the default configuration for local use.
func DefaultConfig() *Config {
	return &Config{
		DataDir:   "./data",
		InputDir:  "./input",
		OutputDir: "./output",
		Reference: ReferenceConfig{
			SnapshotPath:    "",
			StoryTitlesPath: "",
		},
		Reporting: ReportingConfig{
			Timezone: "Europe/Berlin",
		},
		Storage: StorageConfig{
			Type:   "",
			Prefix: "eventmill",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.InputDir == "" {
		c.InputDir = "./input"
	}
	if c.OutputDir == "" {
		c.OutputDir = "./output"
	}
	if c.Reference.SnapshotPath == "" {
		c.Reference.SnapshotPath = filepath.Join(c.DataDir, "hr_history.csv")
	}
	if c.Reference.StoryTitlesPath == "" {
		c.Reference.StoryTitlesPath = filepath.Join(c.DataDir, "story_titles.csv")
	}
	if c.Reporting.Timezone == "" {
		c.Reporting.Timezone = "Europe/Berlin"
	}
	if c.Storage.Type == "local" && c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "published")
	}
}

// StorePath returns the path to the persisted store database.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "eventmill.db")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.InputDir == "" {
		return fmt.Errorf("input_dir is required")
	}

	switch c.Storage.Type {
	case "", "local", "s3":
		// Valid types
	default:
		return fmt.Errorf("invalid storage type: %s (must be empty, local, or s3)", c.Storage.Type)
	}
	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when storage type is s3")
	}

	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("invalid reporting timezone %q: %w", c.Reporting.Timezone, err)
	}

	return nil
}

// Location returns the parsed reporting timezone. Validate must have passed.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Reporting.Timezone)
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the EVENTMILL_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("EVENTMILL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("EVENTMILL_INPUT_DIR"); v != "" {
		cfg.InputDir = v
	}
	if v := os.Getenv("EVENTMILL_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}

	// Reference feeds
	if v := os.Getenv("EVENTMILL_SNAPSHOT_PATH"); v != "" {
		cfg.Reference.SnapshotPath = v
	}
	if v := os.Getenv("EVENTMILL_STORY_TITLES_PATH"); v != "" {
		cfg.Reference.StoryTitlesPath = v
	}

	// Reporting
	if v := os.Getenv("EVENTMILL_REPORTING_TIMEZONE"); v != "" {
		cfg.Reporting.Timezone = v
	}

	// Storage
	if v := os.Getenv("EVENTMILL_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("EVENTMILL_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("EVENTMILL_STORAGE_PREFIX"); v != "" {
		cfg.Storage.Prefix = v
	}
	if v := os.Getenv("EVENTMILL_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("EVENTMILL_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("EVENTMILL_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.InputDir,
		c.OutputDir,
	}
	if c.Storage.Type == "local" {
		dirs = append(dirs, c.Storage.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
