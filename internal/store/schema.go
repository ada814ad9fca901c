package store

// The events table holds exactly one row per identity tuple. The tuple
// itself is the primary key; identity_hash is a murmur3-64 of the canonical
// identity encoding, kept as a secondary indexed column so the merge can
// pre-filter its delete by a single integer comparison before the full
// tuple guard.

// CreateEventsTableSQL creates the event table.
const CreateEventsTableSQL = `
CREATE TABLE IF NOT EXISTS events (
    timestamp     TEXT NOT NULL,
    actor_id      TEXT NOT NULL,
    session_id    TEXT NOT NULL,
    name          TEXT NOT NULL,
    identity_hash INTEGER NOT NULL,
    event_id      TEXT NOT NULL,
    actor_ref     TEXT NOT NULL DEFAULT '',
    email         TEXT NOT NULL DEFAULT '',
    link_label    TEXT NOT NULL DEFAULT '',
    link_type     TEXT NOT NULL DEFAULT '',
    page          TEXT NOT NULL DEFAULT '',
    props         BLOB,
    sub_second    INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (timestamp, actor_id, session_id, name)
) WITHOUT ROWID`

// CreateIdentityHashIndexSQL indexes the merge's delete pre-filter.
const CreateIdentityHashIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_events_identity_hash ON events(identity_hash)`

// CreateActorTimeIndexSQL indexes the enrichment load order.
const CreateActorTimeIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_events_actor_time ON events(actor_id, timestamp)`

// AllSchemaSQL returns all schema statements for the event store.
func AllSchemaSQL() []string {
	return []string{
		CreateEventsTableSQL,
		CreateIdentityHashIndexSQL,
		CreateActorTimeIndexSQL,
	}
}
