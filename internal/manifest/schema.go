package manifest

// Schema contains the SQL definition of the processed_files table. The
// manifest lives in the same SQLite database as the event store so that a
// merge and its manifest record commit in one transaction: a crash between
// the two leaves the file classified as reprocessable, never silently
// skipped.

// CreateProcessedFilesTableSQL creates the manifest table.
const CreateProcessedFilesTableSQL = `
CREATE TABLE IF NOT EXISTS processed_files (
    filename       TEXT PRIMARY KEY,
    content_hash   TEXT NOT NULL,
    row_count      INTEGER NOT NULL,
    processed_at   INTEGER NOT NULL,
    extracted_date TEXT
)`

// AllSchemaSQL returns all schema statements for the manifest.
func AllSchemaSQL() []string {
	return []string{CreateProcessedFilesTableSQL}
}
