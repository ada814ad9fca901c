package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteCatalog implements Catalog over the shared store database.
type SQLiteCatalog struct {
	db *sql.DB
}

// NewSQLiteCatalog creates a catalog over an already-open store database
// and ensures the manifest schema exists.
func NewSQLiteCatalog(db *sql.DB) (*SQLiteCatalog, error) {
	for _, stmt := range AllSchemaSQL() {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("manifest: failed to initialize schema: %w", err)
		}
	}
	return &SQLiteCatalog{db: db}, nil
}

// Lookup returns the record for a filename, or nil when unseen.
func (c *SQLiteCatalog) Lookup(ctx context.Context, filename string) (*Record, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT filename, content_hash, row_count, processed_at, extracted_date
		 FROM processed_files WHERE filename = ?`, filename)

	rec, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: failed to look up %s: %w", filename, err)
	}
	return rec, nil
}

// Record replaces-or-inserts the manifest entry for rec.Filename.
func (c *SQLiteCatalog) Record(ctx context.Context, rec *Record) error {
	return c.RecordTx(ctx, c.db, rec)
}

// RecordTx writes the entry through the caller's transaction. The existing
// row is deleted first so a modified file replaces, never duplicates, its
// manifest entry.
func (c *SQLiteCatalog) RecordTx(ctx context.Context, tx Execer, rec *Record) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM processed_files WHERE filename = ?", rec.Filename); err != nil {
		return fmt.Errorf("manifest: failed to supersede %s: %w", rec.Filename, err)
	}

	var extracted interface{}
	if rec.ExtractedDate != nil {
		extracted = rec.ExtractedDate.UTC().Format("2006-01-02")
	}

	processedAt := rec.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO processed_files (filename, content_hash, row_count, processed_at, extracted_date)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.Filename, rec.ContentHash, rec.RowCount, processedAt.Unix(), extracted)
	if err != nil {
		return fmt.Errorf("manifest: failed to record %s: %w", rec.Filename, err)
	}
	return nil
}

// All returns every record, ordered by extracted date then filename.
func (c *SQLiteCatalog) All(ctx context.Context) ([]*Record, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT filename, content_hash, row_count, processed_at, extracted_date
		 FROM processed_files
		 ORDER BY extracted_date IS NULL, extracted_date, filename`)
	if err != nil {
		return nil, fmt.Errorf("manifest: failed to query records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("manifest: failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("manifest: error iterating records: %w", err)
	}
	return records, nil
}

// scanRecord scans one manifest row via the given Scan function.
func scanRecord(scan func(dest ...interface{}) error) (*Record, error) {
	var rec Record
	var processedAtUnix int64
	var extracted sql.NullString

	if err := scan(&rec.Filename, &rec.ContentHash, &rec.RowCount, &processedAtUnix, &extracted); err != nil {
		return nil, err
	}

	rec.ProcessedAt = time.Unix(processedAtUnix, 0)
	if extracted.Valid {
		if d, err := time.ParseInLocation("2006-01-02", extracted.String, time.UTC); err == nil {
			rec.ExtractedDate = &d
		}
	}
	return &rec, nil
}
