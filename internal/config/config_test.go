package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config must validate: %v", err)
	}
	if cfg.Reporting.Timezone != "Europe/Berlin" {
		t.Errorf("Expected Europe/Berlin default, got %s", cfg.Reporting.Timezone)
	}
}

func TestResolveDerivesPaths(t *testing.T) {
	cfg := &Config{DataDir: "/var/eventmill"}
	cfg.Resolve()

	if cfg.Reference.SnapshotPath != filepath.Join("/var/eventmill", "hr_history.csv") {
		t.Errorf("Unexpected snapshot path: %s", cfg.Reference.SnapshotPath)
	}
	if cfg.Reference.StoryTitlesPath != filepath.Join("/var/eventmill", "story_titles.csv") {
		t.Errorf("Unexpected story titles path: %s", cfg.Reference.StoryTitlesPath)
	}
	if cfg.StorePath() != filepath.Join("/var/eventmill", "eventmill.db") {
		t.Errorf("Unexpected store path: %s", cfg.StorePath())
	}
}

func TestResolveLocalStorageDefault(t *testing.T) {
	cfg := &Config{DataDir: "/var/eventmill", Storage: StorageConfig{Type: "local"}}
	cfg.Resolve()
	if cfg.Storage.Path != filepath.Join("/var/eventmill", "published") {
		t.Errorf("Unexpected local storage path: %s", cfg.Storage.Path)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing data dir", func(c *Config) { c.DataDir = "" }},
		{"missing input dir", func(c *Config) { c.InputDir = "" }},
		{"unknown storage type", func(c *Config) { c.Storage.Type = "ftp" }},
		{"s3 without bucket", func(c *Config) { c.Storage.Type = "s3" }},
		{"bad timezone", func(c *Config) { c.Reporting.Timezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Resolve()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadFromFileYAML(t *testing.T) {
	dir, err := os.MkdirTemp("", "eventmill-config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	content := `
data_dir: /srv/eventmill/data
input_dir: /srv/eventmill/in
reporting:
  timezone: UTC
storage:
  type: s3
  prefix: telemetry
  s3:
    bucket: my-bucket
    region: eu-central-1
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	cfg.Resolve()

	if cfg.DataDir != "/srv/eventmill/data" || cfg.InputDir != "/srv/eventmill/in" {
		t.Errorf("Paths not loaded: %+v", cfg)
	}
	if cfg.Reporting.Timezone != "UTC" {
		t.Errorf("Timezone not loaded: %s", cfg.Reporting.Timezone)
	}
	if cfg.Storage.S3.Bucket != "my-bucket" || cfg.Storage.Prefix != "telemetry" {
		t.Errorf("Storage not loaded: %+v", cfg.Storage)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Loaded config must validate: %v", err)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("EVENTMILL_DATA_DIR", "/env/data")
	t.Setenv("EVENTMILL_REPORTING_TIMEZONE", "UTC")
	t.Setenv("EVENTMILL_STORAGE_TYPE", "local")
	t.Setenv("EVENTMILL_STORAGE_PATH", "/env/published")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)
	cfg.Resolve()

	if cfg.DataDir != "/env/data" {
		t.Errorf("Env override not applied: %s", cfg.DataDir)
	}
	if cfg.Reporting.Timezone != "UTC" {
		t.Errorf("Env timezone not applied: %s", cfg.Reporting.Timezone)
	}
	if cfg.Storage.Type != "local" || cfg.Storage.Path != "/env/published" {
		t.Errorf("Env storage not applied: %+v", cfg.Storage)
	}
}
