// Package manifest tracks which input files have been merged into the event
// store. One record per file ever successfully processed; a record is
// replaced, never appended, when the same filename reappears with a
// different content hash.
package manifest

import (
	"context"
	"database/sql"
	"time"
)

// Status classifies an input file against the manifest.
type Status string

const (
	// StatusNew means the filename has never been processed.
	StatusNew Status = "new"

	// StatusUnchanged means the filename was processed with the same
	// content hash; the file is skipped with no side effects.
	StatusUnchanged Status = "unchanged"

	// StatusModified means the filename was processed but its content hash
	// differs; the file is reprocessed fully.
	StatusModified Status = "modified"
)

// Record is one manifest entry for a successfully merged file.
type Record struct {
	Filename    string
	ContentHash string
	RowCount    int64
	ProcessedAt time.Time

	// ExtractedDate is the filename suffix date, nil when absent
	ExtractedDate *time.Time
}

// Execer is the subset of database/sql used to write a manifest record
// inside the caller's transaction, so a merge and its manifest entry commit
// atomically.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Catalog is the injectable manifest state store. The pipeline receives it
// by handle so tests can substitute an in-memory instance.
type Catalog interface {
	// Lookup returns the record for a filename, or nil when unseen.
	Lookup(ctx context.Context, filename string) (*Record, error)

	// Record replaces-or-inserts the manifest entry for rec.Filename.
	Record(ctx context.Context, rec *Record) error

	// RecordTx writes the entry through the caller's transaction.
	RecordTx(ctx context.Context, tx Execer, rec *Record) error

	// All returns every record, ordered by extracted date then filename.
	All(ctx context.Context) ([]*Record, error)
}

// Classify decides how a file relates to the manifest: unseen filenames are
// NEW, matching hashes UNCHANGED, differing hashes MODIFIED.
func Classify(ctx context.Context, cat Catalog, filename, contentHash string) (Status, error) {
	existing, err := cat.Lookup(ctx, filename)
	if err != nil {
		return "", err
	}
	switch {
	case existing == nil:
		return StatusNew, nil
	case existing.ContentHash == contentHash:
		return StatusUnchanged, nil
	default:
		return StatusModified, nil
	}
}
