// Package pipeline orchestrates one batch invocation: discovery, delta
// detection, per-file merge, enrichment and artifact export. One file's
// failure never aborts the batch; failed files stay eligible for the next
// run.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"time"

	"github.com/eventmill/eventmill/internal/config"
	"github.com/eventmill/eventmill/internal/derive"
	apperrors "github.com/eventmill/eventmill/internal/errors"
	"github.com/eventmill/eventmill/internal/export"
	"github.com/eventmill/eventmill/internal/hr"
	"github.com/eventmill/eventmill/internal/manifest"
	"github.com/eventmill/eventmill/internal/observability"
	"github.com/eventmill/eventmill/internal/source"
	"github.com/eventmill/eventmill/internal/storage"
	"github.com/eventmill/eventmill/internal/store"
	"github.com/eventmill/eventmill/pkg/types"
)

// Options control the run mode.
type Options struct {
	// Force reprocesses every discovered file regardless of its manifest
	// status.
	Force bool

	// ForceFile names one input file (by base name) to reprocess regardless
	// of its manifest status. Other files follow normal delta rules.
	ForceFile string

	// FullReset deletes the store (events and manifest) before the run, so
	// every file classifies as new.
	FullReset bool
}

// Run executes one pipeline invocation and returns its statistics. The
// returned error is non-nil only for run-level failures (store unusable,
// export failed); per-file problems are recorded in the stats instead.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*observability.RunStats, error) {
	stats := observability.NewRunStats()
	log.Printf("[INFO] starting run %s (force=%v, force_file=%q, full_reset=%v)",
		stats.RunID, opts.Force, opts.ForceFile, opts.FullReset)

	loc, err := cfg.Location()
	if err != nil {
		return stats, fmt.Errorf("pipeline: invalid reporting timezone: %w", err)
	}

	if opts.FullReset {
		log.Printf("[WARN] full reset: deleting store at %s", cfg.StorePath())
		if err := store.Reset(cfg.StorePath()); err != nil {
			return stats, err
		}
	}

	st, err := store.Open(cfg.StorePath())
	if err != nil {
		return stats, err
	}
	defer st.Close()

	catalog, err := manifest.NewSQLiteCatalog(st.DB())
	if err != nil {
		return stats, err
	}

	if err := ingest(ctx, cfg, st, catalog, opts, stats); err != nil {
		return stats, err
	}

	total, err := st.CountEvents(ctx)
	if err != nil {
		return stats, err
	}
	stats.RecordStore(total)

	enriched, err := enrich(ctx, cfg, st, loc, stats)
	if err != nil {
		return stats, err
	}

	paths, err := export.NewExporter(cfg.OutputDir).WriteAll(enriched)
	for _, p := range paths {
		stats.RecordArtifact(p)
	}
	if err != nil {
		return stats, err
	}

	if err := publish(ctx, cfg, paths, stats); err != nil {
		return stats, err
	}
	return stats, nil
}

// ingest discovers input files and merges new and modified ones in strict
// ascending extracted-date order.
func ingest(ctx context.Context, cfg *config.Config, st *store.EventStore, catalog manifest.Catalog, opts Options, stats *observability.RunStats) error {
	files, err := source.Discover(cfg.InputDir)
	if err != nil {
		return err
	}
	log.Printf("[INFO] discovered %d input files in %s", len(files), cfg.InputDir)

	forceSeen := false
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		hash, err := source.HashFile(file.Path)
		if err != nil {
			stats.RecordFile(observability.FileReport{
				Filename: file.Name,
				Outcome:  observability.OutcomeFailed,
				Reason:   err.Error(),
			})
			continue
		}

		status, err := manifest.Classify(ctx, catalog, file.Name, hash)
		if err != nil {
			return err
		}
		forced := opts.Force || file.Name == opts.ForceFile
		if file.Name == opts.ForceFile {
			forceSeen = true
		}
		if status == manifest.StatusUnchanged && !forced {
			stats.RecordFile(observability.FileReport{
				Filename: file.Name,
				Outcome:  observability.OutcomeSkipped,
				Reason:   string(status),
			})
			continue
		}

		res, err := source.Parse(file.Path)
		if err != nil {
			log.Printf("[ERROR] %s: %v", file.Name, err)
			stats.RecordFile(observability.FileReport{
				Filename: file.Name,
				Outcome:  observability.OutcomeFailed,
				Reason:   err.Error(),
			})
			continue
		}

		rec := &manifest.Record{
			Filename:    file.Name,
			ContentHash: hash,
			RowCount:    int64(len(res.Events)),
		}
		if file.HasDate {
			d := file.ExtractedDate
			rec.ExtractedDate = &d
		}

		merged, err := st.Merge(ctx, res.Events, rec, catalog)
		if err != nil {
			log.Printf("[ERROR] %s: %v (file stays reprocessable: %v)",
				file.Name, err, apperrors.IsRetryable(err))
			stats.RecordFile(observability.FileReport{
				Filename: file.Name,
				Outcome:  observability.OutcomeFailed,
				Reason:   err.Error(),
			})
			continue
		}

		stats.RecordFile(observability.FileReport{
			Filename:       file.Name,
			Outcome:        observability.OutcomeProcessed,
			Rows:           merged.Inserted,
			Superseded:     merged.Deleted,
			SkippedRows:    res.SkippedRows,
			DroppedColumns: res.DroppedColumns,
			WholeSecond:    !res.SubSecond && len(res.Events) > 0,
		})
	}
	if opts.ForceFile != "" && !forceSeen {
		log.Printf("[WARN] forced file %s not found in %s", opts.ForceFile, cfg.InputDir)
	}
	return nil
}

// enrich loads the merged corpus and derives all reporting columns. Both
// reference feeds are optional: a missing snapshot feed degrades
// enrichment, a missing title feed just leaves titles empty.
func enrich(ctx context.Context, cfg *config.Config, st *store.EventStore, loc *time.Location, stats *observability.RunStats) ([]*types.EnrichedEvent, error) {
	events, err := st.AllEvents(ctx)
	if err != nil {
		return nil, err
	}

	snapshots, err := hr.LoadSnapshots(cfg.Reference.SnapshotPath)
	if err != nil {
		log.Printf("[WARN] organizational enrichment skipped: %v", err)
		snapshots = nil
	} else {
		log.Printf("[INFO] loaded %d snapshots for %d actors", snapshots.Size(), snapshots.Actors())
	}

	titles, err := derive.LoadStoryTitles(cfg.Reference.StoryTitlesPath)
	if err != nil {
		log.Printf("[INFO] story titles unavailable: %v", err)
		titles = nil
	} else {
		log.Printf("[INFO] loaded %d story titles", len(titles))
	}

	enriched, deriveStats := derive.Derive(events, snapshots, titles, loc)
	stats.RecordEnrichment(len(enriched), deriveStats.WithActorRef, deriveStats.WithOrg, deriveStats.Actions)
	return enriched, nil
}

// publish uploads the artifacts through the configured object storage.
// Publication is best-effort per artifact but any failure fails the run,
// since downstream consumers read from the publication target.
func publish(ctx context.Context, cfg *config.Config, paths []string, stats *observability.RunStats) error {
	target, err := newPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}

	for _, p := range paths {
		objectPath := path.Join(cfg.Storage.Prefix, filepath.Base(p))
		if err := target.Upload(ctx, p, objectPath); err != nil {
			return apperrors.NewExportError(apperrors.CodePublishFailed,
				fmt.Sprintf("failed to publish %s", objectPath), err)
		}
		stats.RecordUpload(objectPath)
	}
	return nil
}

// newPublisher builds the publication target from configuration, nil when
// publication is disabled.
func newPublisher(ctx context.Context, cfg *config.Config) (storage.ObjectStorage, error) {
	switch cfg.Storage.Type {
	case "":
		return nil, nil
	case "local":
		return storage.NewLocalStorage(cfg.Storage.Path)
	case "s3":
		return storage.NewS3Storage(ctx, cfg.Storage.S3.Bucket, storage.S3Config{
			Region:   cfg.Storage.S3.Region,
			Endpoint: cfg.Storage.S3.Endpoint,
		})
	default:
		return nil, fmt.Errorf("pipeline: unknown storage type %q", cfg.Storage.Type)
	}
}
