// Package observability provides run statistics tracking and the operator
// summary printed after every pipeline invocation.
package observability

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileOutcome is the terminal per-file status of one run.
type FileOutcome string

const (
	OutcomeProcessed FileOutcome = "processed"
	OutcomeSkipped   FileOutcome = "skipped"
	OutcomeFailed    FileOutcome = "failed"
)

// FileReport records how one input file fared.
type FileReport struct {
	Filename string
	Outcome  FileOutcome

	// Reason explains skips and failures ("unchanged", error text)
	Reason string

	// Rows is the number of rows merged from this file
	Rows int64

	// Superseded is the number of prior rows this file's merge replaced
	Superseded int64

	// SkippedRows counts rows dropped for unparseable timestamps
	SkippedRows int

	// DroppedColumns are headers discarded during normalization
	DroppedColumns []string

	// WholeSecond flags files whose timestamps carried no sub-second
	// precision, degrading identity-tuple fidelity
	WholeSecond bool
}

// RunStats accumulates everything the operator summary reports. Methods
// are safe for concurrent use.
type RunStats struct {
	mu sync.Mutex

	// RunID uniquely identifies this invocation in logs and summaries
	RunID string

	startedAt time.Time
	files     []FileReport

	rowsMerged    int64
	rowsSuperseded int64

	storedEvents int64

	// enrichment coverage
	enrichedEvents int
	withActorRef   int
	withOrg        int

	actions map[string]int

	artifacts []string
	uploaded  []string
}

// NewRunStats starts tracking a new run.
func NewRunStats() *RunStats {
	return &RunStats{
		RunID:     uuid.NewString(),
		startedAt: time.Now(),
		actions:   make(map[string]int),
	}
}

// RecordFile adds one file's report and folds its row counts into the run
// totals.
func (r *RunStats) RecordFile(report FileReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, report)
	if report.Outcome == OutcomeProcessed {
		r.rowsMerged += report.Rows
		r.rowsSuperseded += report.Superseded
	}
}

// RecordStore sets the post-merge event count.
func (r *RunStats) RecordStore(events int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storedEvents = events
}

// RecordEnrichment sets the derivation coverage numbers.
func (r *RunStats) RecordEnrichment(enriched, withActorRef, withOrg int, actions map[string]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enrichedEvents = enriched
	r.withActorRef = withActorRef
	r.withOrg = withOrg
	for action, n := range actions {
		r.actions[action] += n
	}
}

// RecordArtifact notes a written artifact path.
func (r *RunStats) RecordArtifact(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts = append(r.artifacts, path)
}

// RecordUpload notes a published object path.
func (r *RunStats) RecordUpload(objectPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploaded = append(r.uploaded, objectPath)
}

// CountByOutcome returns how many files ended in the given outcome.
func (r *RunStats) CountByOutcome(outcome FileOutcome) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, f := range r.files {
		if f.Outcome == outcome {
			n++
		}
	}
	return n
}

// Files returns a copy of the per-file reports in processing order.
func (r *RunStats) Files() []FileReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]FileReport, len(r.files))
	copy(out, r.files)
	return out
}

// HasFailures reports whether any file failed.
func (r *RunStats) HasFailures() bool {
	return r.CountByOutcome(OutcomeFailed) > 0
}

// PrintSummary logs the operator summary for the run.
func (r *RunStats) PrintSummary() {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.startedAt).Round(time.Millisecond)
	processed, skipped, failed := 0, 0, 0
	for _, f := range r.files {
		switch f.Outcome {
		case OutcomeProcessed:
			processed++
		case OutcomeSkipped:
			skipped++
		case OutcomeFailed:
			failed++
		}
	}

	log.Printf("[INFO] run %s finished in %s", r.RunID, elapsed)
	log.Printf("[INFO] files: %d processed, %d skipped, %d failed",
		processed, skipped, failed)
	log.Printf("[INFO] rows: %d merged (%d superseded), %d in store",
		r.rowsMerged, r.rowsSuperseded, r.storedEvents)

	for _, f := range r.files {
		switch f.Outcome {
		case OutcomeProcessed:
			detail := fmt.Sprintf("%d rows", f.Rows)
			if f.Superseded > 0 {
				detail += fmt.Sprintf(", %d superseded", f.Superseded)
			}
			if f.SkippedRows > 0 {
				detail += fmt.Sprintf(", %d rows skipped", f.SkippedRows)
			}
			log.Printf("[INFO]   %s: %s", f.Filename, detail)
		case OutcomeSkipped:
			log.Printf("[INFO]   %s: skipped (%s)", f.Filename, f.Reason)
		case OutcomeFailed:
			log.Printf("[ERROR]  %s: failed (%s)", f.Filename, f.Reason)
		}
		if f.WholeSecond {
			log.Printf("[WARN]   %s: timestamps carry no sub-second precision", f.Filename)
		}
		if len(f.DroppedColumns) > 0 {
			log.Printf("[WARN]   %s: dropped columns: %v", f.Filename, f.DroppedColumns)
		}
	}

	if r.enrichedEvents > 0 {
		log.Printf("[INFO] enrichment: %d events, %d with actor ref, %d with org match",
			r.enrichedEvents, r.withActorRef, r.withOrg)

		labels := make([]string, 0, len(r.actions))
		for action := range r.actions {
			labels = append(labels, action)
		}
		sort.Strings(labels)
		for _, action := range labels {
			log.Printf("[INFO]   action %-12s %d", action, r.actions[action])
		}
	}

	for _, path := range r.artifacts {
		log.Printf("[INFO] artifact: %s", path)
	}
	for _, obj := range r.uploaded {
		log.Printf("[INFO] published: %s", obj)
	}
}
