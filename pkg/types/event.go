// Package types provides core data types for Eventmill.
package types

import (
	"fmt"
	"time"

	"github.com/spaolacci/murmur3"
)

// CanonicalEvent is one telemetry record normalized to the fixed field set.
// Instances are immutable once parsed; a re-ingested file supersedes prior
// rows sharing the same identity tuple, it never mutates them.
type CanonicalEvent struct {
	// Timestamp is the event time in UTC
	Timestamp time.Time `json:"timestamp"`

	// ActorID identifies the end user who triggered the event
	ActorID string `json:"actor_id"`

	// SessionID identifies the browser session the event belongs to
	SessionID string `json:"session_id"`

	// Name is the telemetry event name (e.g., "click")
	Name string `json:"name"`

	// ActorRef is the normalized organizational identifier (zero-padded
	// numeric form), empty when the source carried none
	ActorRef string `json:"actor_ref,omitempty"`

	// Email is the actor's email address as exported, if present
	Email string `json:"email,omitempty"`

	// LinkLabel is the clicked element's label text
	LinkLabel string `json:"link_label,omitempty"`

	// LinkType is the clicked element's type
	LinkType string `json:"link_type,omitempty"`

	// Page is the page title or URL the event was raised on
	Page string `json:"page,omitempty"`

	// Props holds residual custom properties that have no canonical field.
	// Stored as a Snappy-compressed JSON blob.
	Props map[string]string `json:"props,omitempty"`

	// SubSecond records whether the source encoding carried sub-second
	// timestamp precision
	SubSecond bool `json:"-"`
}

// Identity is the composite merge key. The tuple is assumed unique across
// all ingested files; after any merge the store holds exactly one row per
// tuple.
type Identity struct {
	Timestamp time.Time
	ActorID   string
	SessionID string
	Name      string
}

// Identity returns the event's composite merge key.
func (e *CanonicalEvent) Identity() Identity {
	return Identity{
		Timestamp: e.Timestamp,
		ActorID:   e.ActorID,
		SessionID: e.SessionID,
		Name:      e.Name,
	}
}

// Encode returns the canonical wire form of the identity tuple, used both
// for hashing and for stable comparisons. Timestamps are rendered at
// microsecond precision in UTC, matching the store's column resolution.
func (id Identity) Encode() string {
	return fmt.Sprintf("%s|%s|%s|%s",
		id.Timestamp.UTC().Format("2006-01-02 15:04:05.000000"),
		id.ActorID, id.SessionID, id.Name)
}

// Hash returns a stable 128-bit surrogate identifier for the identity
// tuple, rendered as 32 hex characters. Downstream consumers join on it
// without replicating the tuple encoding.
func (id Identity) Hash() string {
	h1, h2 := murmur3.Sum128([]byte(id.Encode()))
	return fmt.Sprintf("%016x%016x", h1, h2)
}

// EnrichedEvent is a CanonicalEvent plus organizational attributes and all
// derived columns. Regenerated in full on every run; never a source of truth.
type EnrichedEvent struct {
	CanonicalEvent

	// EventID is the identity tuple's surrogate hash
	EventID string

	// Org holds the as-of joined organizational attributes, nil when the
	// actor has no snapshots or no actor ref was present
	Org *OrgAttributes

	// LocalTime is the timestamp localized to the reporting timezone
	LocalTime time.Time

	// LocalDate is LocalTime's date in YYYY-MM-DD form
	LocalDate string

	// Hour is LocalTime's hour of day (0-23)
	Hour int

	// Weekday is LocalTime's weekday name
	Weekday string

	// WeekdayNum is the ISO weekday number (Monday=1 .. Sunday=7)
	WeekdayNum int

	// SessionKey is "<localDate>_<actorID>_<sessionID>"
	SessionKey string

	// Seq is the 1-based position of the event within its session
	Seq int

	// PrevEvent is the previous event's name within the session, empty for
	// the first event
	PrevEvent string

	// PrevEventID is the previous event's surrogate hash, empty for the first
	PrevEventID string

	// PrevTimestamp is the previous event's timestamp, nil for the first
	PrevTimestamp *time.Time

	// GapMillis is the millisecond gap to the previous event, nil for the first
	GapMillis *int64

	// GapBucket is the categorical range GapMillis falls into
	GapBucket string

	// StoryID is the leading digit run of LinkLabel, empty when absent
	StoryID string

	// StoryTitle is resolved from the optional story title feed
	StoryTitle string

	// Action is the classified action label
	Action string
}
