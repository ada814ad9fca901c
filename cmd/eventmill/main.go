// Package main implements the eventmill batch pipeline binary. One
// invocation discovers telemetry export files, merges changed ones into
// the event store and regenerates the reporting artifacts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/eventmill/eventmill/internal/config"
	"github.com/eventmill/eventmill/internal/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML or JSON config file")
		force      = flag.Bool("force", false, "reprocess all input files regardless of manifest status")
		forceFile  = flag.String("file", "", "reprocess this input file (base name) regardless of manifest status")
		fullReset  = flag.Bool("full-reset", false, "delete the store and rebuild from all input files")
	)
	flag.Parse()

	// A .env file in the working directory overrides nothing; it only
	// provides variables not already set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] failed to load .env: %v", err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stats, err := pipeline.Run(ctx, cfg, pipeline.Options{
		Force:     *force,
		ForceFile: *forceFile,
		FullReset: *fullReset,
	})
	stats.PrintSummary()
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}
	if stats.HasFailures() {
		os.Exit(1)
	}
}

// loadConfig builds the effective configuration: defaults, then the
// optional config file, then environment overrides.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	config.LoadFromEnv(cfg)
	cfg.Resolve()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
