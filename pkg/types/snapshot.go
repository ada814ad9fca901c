package types

import "time"

// OrgAttributes are the organizational attributes resolved for an actor as of
// an event's date.
type OrgAttributes struct {
	Division        string `json:"division,omitempty"`
	Unit            string `json:"unit,omitempty"`
	Region          string `json:"region,omitempty"`
	Country         string `json:"country,omitempty"`
	JobTitle        string `json:"job_title,omitempty"`
	ManagementLevel string `json:"management_level,omitempty"`
}

// OrgSnapshot is one row of the slowly-changing organizational reference
// feed: an actor's attributes as of a snapshot date. Append-only, reloaded
// each run, never owned by the event store.
type OrgSnapshot struct {
	// ActorID is the normalized organizational identifier
	ActorID string

	// SnapshotDate is the date the attributes were captured (midnight UTC)
	SnapshotDate time.Time

	OrgAttributes
}
