// Package export materializes the run artifacts: three Parquet files
// written atomically into the output directory. Every write goes to a
// uniquely-suffixed temporary sibling first and is renamed into place, so
// a crashed run never leaves a truncated artifact under the final name.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	apperrors "github.com/eventmill/eventmill/internal/errors"
	"github.com/eventmill/eventmill/pkg/types"
)

// Artifact filenames within the output directory.
const (
	EventsFile      = "events.parquet"
	EventsAnonFile  = "events_anon.parquet"
	EventsStoryFile = "events_story.parquet"
)

// Exporter writes run artifacts into a fixed output directory.
type Exporter struct {
	outputDir string
}

// NewExporter creates an exporter over the given output directory.
func NewExporter(outputDir string) *Exporter {
	return &Exporter{outputDir: outputDir}
}

// WriteAll materializes all three artifacts and returns their paths in a
// stable order. Artifacts are independent; the first failure aborts the
// export, leaving earlier artifacts already renamed into place.
func (e *Exporter) WriteAll(events []*types.EnrichedEvent) ([]string, error) {
	eventRows := make([]EventRow, 0, len(events))
	anonRows := make([]EventRow, 0, len(events))
	for _, ev := range events {
		eventRows = append(eventRows, buildEventRow(ev))
		anonRows = append(anonRows, buildAnonRow(ev))
	}
	storyRows := BuildStoryAggregate(events)

	paths := make([]string, 0, 3)

	p, err := writeParquet(e.outputDir, EventsFile, eventRows)
	if err != nil {
		return paths, err
	}
	paths = append(paths, p)

	p, err = writeParquet(e.outputDir, EventsAnonFile, anonRows)
	if err != nil {
		return paths, err
	}
	paths = append(paths, p)

	p, err = writeParquet(e.outputDir, EventsStoryFile, storyRows)
	if err != nil {
		return paths, err
	}
	return append(paths, p), nil
}

// writeParquet writes rows as a snappy-compressed Parquet file via a
// temporary sibling plus rename.
func writeParquet[T any](dir, name string, rows []T) (string, error) {
	final := filepath.Join(dir, name)
	tmp := final + ".tmp-" + uuid.NewString()

	f, err := os.Create(tmp)
	if err != nil {
		return "", apperrors.NewExportError(apperrors.CodeWriteFailed,
			fmt.Sprintf("failed to create temporary artifact for %s", name), err)
	}

	w := parquet.NewGenericWriter[T](f, parquet.Compression(&parquet.Snappy))
	if _, err := w.Write(rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", apperrors.NewExportError(apperrors.CodeWriteFailed,
			fmt.Sprintf("failed to write %s", name), err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", apperrors.NewExportError(apperrors.CodeWriteFailed,
			fmt.Sprintf("failed to finalize %s", name), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", apperrors.NewExportError(apperrors.CodeWriteFailed,
			fmt.Sprintf("failed to close %s", name), err)
	}

	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", apperrors.NewExportError(apperrors.CodeWriteFailed,
			fmt.Sprintf("failed to publish %s", name), err)
	}
	return final, nil
}
