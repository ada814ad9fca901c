// Package store implements the durable event store: a single SQLite
// database holding the merged event corpus and, in the same file, the
// processed-file manifest. Sharing one database is what makes the per-file
// merge atomic: the delete-then-insert and the manifest record commit in
// one transaction.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/golang/snappy"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spaolacci/murmur3"

	apperrors "github.com/eventmill/eventmill/internal/errors"
	"github.com/eventmill/eventmill/internal/manifest"
	"github.com/eventmill/eventmill/pkg/types"
)

// tsLayout is the column encoding for event timestamps: microsecond
// precision, UTC, lexicographically ordered. It matches the identity
// tuple's canonical encoding so the primary key and Identity.Encode agree
// on equality.
const tsLayout = "2006-01-02 15:04:05.000000"

// EventStore is the SQLite-backed event store. It owns the database handle;
// the manifest catalog is layered over the same handle via DB().
type EventStore struct {
	db   *sql.DB
	path string
}

// MergeResult reports what one file's merge did to the store.
type MergeResult struct {
	Deleted  int64
	Inserted int64
}

// Open opens (creating if necessary) the event store at path and ensures
// the schema exists. The store is a single-writer database; WAL mode keeps
// readers unblocked during the merge and the busy timeout absorbs brief
// lock contention from external inspection tools.
func Open(path string) (*EventStore, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, apperrors.NewStoreError(apperrors.CodeMergeFailed,
			fmt.Sprintf("failed to open event store at %s", path), err)
	}

	// Single connection: SQLite serializes writers anyway, and one
	// connection keeps transaction semantics obvious.
	db.SetMaxOpenConns(1)

	for _, stmt := range AllSchemaSQL() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, apperrors.NewStoreError(apperrors.CodeMergeFailed,
				"failed to initialize event store schema", err)
		}
	}

	return &EventStore{db: db, path: path}, nil
}

// DB exposes the underlying handle so the manifest catalog can share the
// database and participate in merge transactions.
func (s *EventStore) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *EventStore) Path() string {
	return s.path
}

// Close closes the database.
func (s *EventStore) Close() error {
	return s.db.Close()
}

// Merge replaces the store's rows for every identity tuple in events and
// records the file in the manifest, all in one transaction. Rows are
// deleted by tuple before insertion, so re-merging a file is idempotent
// and a later file silently supersedes overlapping rows from an earlier
// one. On any error the transaction rolls back and the store is unchanged.
func (s *EventStore) Merge(ctx context.Context, events []*types.CanonicalEvent, rec *manifest.Record, cat manifest.Catalog) (MergeResult, error) {
	var res MergeResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, apperrors.NewStoreError(apperrors.CodeMergeFailed,
			"failed to begin merge transaction", err).WithFile(rec.Filename)
	}
	defer tx.Rollback()

	del, err := tx.PrepareContext(ctx,
		`DELETE FROM events
		 WHERE identity_hash = ? AND timestamp = ? AND actor_id = ? AND session_id = ? AND name = ?`)
	if err != nil {
		return res, apperrors.NewStoreError(apperrors.CodeMergeFailed,
			"failed to prepare delete", err).WithFile(rec.Filename)
	}
	defer del.Close()

	ins, err := tx.PrepareContext(ctx,
		`INSERT INTO events
		 (timestamp, actor_id, session_id, name, identity_hash, event_id,
		  actor_ref, email, link_label, link_type, page, props, sub_second)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return res, apperrors.NewStoreError(apperrors.CodeMergeFailed,
			"failed to prepare insert", err).WithFile(rec.Filename)
	}
	defer ins.Close()

	for _, ev := range events {
		id := ev.Identity()
		hash := int64(murmur3.Sum64([]byte(id.Encode())))
		ts := id.Timestamp.UTC().Format(tsLayout)

		dres, err := del.ExecContext(ctx, hash, ts, id.ActorID, id.SessionID, id.Name)
		if err != nil {
			return res, apperrors.NewStoreError(apperrors.CodeMergeFailed,
				"failed to delete superseded rows", err).WithFile(rec.Filename)
		}
		if n, err := dres.RowsAffected(); err == nil {
			res.Deleted += n
		}

		props, err := encodeProps(ev.Props)
		if err != nil {
			return res, apperrors.NewStoreError(apperrors.CodeMergeFailed,
				"failed to encode event properties", err).WithFile(rec.Filename)
		}

		subSecond := 0
		if ev.SubSecond {
			subSecond = 1
		}

		if _, err := ins.ExecContext(ctx,
			ts, id.ActorID, id.SessionID, id.Name, hash, id.Hash(),
			ev.ActorRef, ev.Email, ev.LinkLabel, ev.LinkType, ev.Page,
			props, subSecond); err != nil {
			return res, apperrors.NewStoreError(apperrors.CodeMergeFailed,
				"failed to insert event", err).WithFile(rec.Filename)
		}
		res.Inserted++
	}

	if err := cat.RecordTx(ctx, tx, rec); err != nil {
		return res, apperrors.NewStoreError(apperrors.CodeManifestFailed,
			"failed to record manifest entry", err).WithFile(rec.Filename)
	}

	if err := tx.Commit(); err != nil {
		return res, apperrors.NewStoreError(apperrors.CodeMergeFailed,
			"failed to commit merge", err).WithFile(rec.Filename)
	}
	return res, nil
}

// AllEvents loads the full corpus ordered by actor, timestamp, session and
// name. The order is deterministic so downstream derivation sees the same
// input on every run over the same store.
func (s *EventStore) AllEvents(ctx context.Context) ([]*types.CanonicalEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, actor_id, session_id, name,
		        actor_ref, email, link_label, link_type, page, props, sub_second
		 FROM events
		 ORDER BY actor_id, timestamp, session_id, name`)
	if err != nil {
		return nil, apperrors.NewStoreError(apperrors.CodeMergeFailed,
			"failed to query events", err)
	}
	defer rows.Close()

	var events []*types.CanonicalEvent
	for rows.Next() {
		var ev types.CanonicalEvent
		var ts string
		var props []byte
		var subSecond int

		if err := rows.Scan(&ts, &ev.ActorID, &ev.SessionID, &ev.Name,
			&ev.ActorRef, &ev.Email, &ev.LinkLabel, &ev.LinkType, &ev.Page,
			&props, &subSecond); err != nil {
			return nil, apperrors.NewStoreError(apperrors.CodeMergeFailed,
				"failed to scan event", err)
		}

		parsed, err := time.ParseInLocation(tsLayout, ts, time.UTC)
		if err != nil {
			return nil, apperrors.NewStoreError(apperrors.CodeMergeFailed,
				fmt.Sprintf("corrupt timestamp column %q", ts), err)
		}
		ev.Timestamp = parsed
		ev.SubSecond = subSecond != 0

		if ev.Props, err = decodeProps(props); err != nil {
			return nil, apperrors.NewStoreError(apperrors.CodeMergeFailed,
				"failed to decode event properties", err)
		}

		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError(apperrors.CodeMergeFailed,
			"error iterating events", err)
	}
	return events, nil
}

// CountEvents returns the number of stored events.
func (s *EventStore) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&n); err != nil {
		return 0, apperrors.NewStoreError(apperrors.CodeMergeFailed,
			"failed to count events", err)
	}
	return n, nil
}

// Reset deletes the database file and its WAL sidecars. The next Open
// starts from an empty store and an empty manifest, so every input file
// classifies as new again.
func Reset(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return apperrors.NewStoreError(apperrors.CodeResetFailed,
				fmt.Sprintf("failed to remove %s", p), err)
		}
	}
	return nil
}

// encodeProps renders the residual property map as a Snappy-compressed
// JSON blob, nil for an empty map.
func encodeProps(props map[string]string) ([]byte, error) {
	if len(props) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, raw), nil
}

// decodeProps is the inverse of encodeProps.
func decodeProps(blob []byte) (map[string]string, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	raw, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, err
	}
	var props map[string]string
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, err
	}
	return props, nil
}
