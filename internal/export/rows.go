package export

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/eventmill/eventmill/pkg/types"
)

// rowTimeLayout renders timestamps into artifact columns at microsecond
// precision, matching the store's column resolution.
const rowTimeLayout = "2006-01-02 15:04:05.000000"

// EventRow is the event-grain artifact schema. Organizational attributes
// are flattened; absent values stay empty strings so BI tools see a stable
// column set.
type EventRow struct {
	EventID    string `parquet:"event_id"`
	Timestamp  string `parquet:"timestamp"`
	ActorID    string `parquet:"actor_id"`
	SessionID  string `parquet:"session_id"`
	Name       string `parquet:"name"`
	ActorRef   string `parquet:"actor_ref"`
	Email      string `parquet:"email"`
	LinkLabel  string `parquet:"link_label"`
	LinkType   string `parquet:"link_type"`
	Page       string `parquet:"page"`

	Division        string `parquet:"division"`
	Unit            string `parquet:"unit"`
	Region          string `parquet:"region"`
	Country         string `parquet:"country"`
	JobTitle        string `parquet:"job_title"`
	ManagementLevel string `parquet:"management_level"`

	LocalTime  string `parquet:"local_time"`
	LocalDate  string `parquet:"local_date"`
	Hour       int32  `parquet:"hour"`
	Weekday    string `parquet:"weekday"`
	WeekdayNum int32  `parquet:"weekday_num"`

	SessionKey    string `parquet:"session_key"`
	Seq           int32  `parquet:"seq"`
	PrevEvent     string `parquet:"prev_event"`
	PrevEventID   string `parquet:"prev_event_id"`
	PrevTimestamp string `parquet:"prev_timestamp"`
	GapMillis     *int64 `parquet:"gap_millis,optional"`
	GapBucket     string `parquet:"gap_bucket"`

	StoryID    string `parquet:"story_id"`
	StoryTitle string `parquet:"story_title"`
	Action     string `parquet:"action"`
}

// buildEventRow flattens one enriched event.
func buildEventRow(e *types.EnrichedEvent) EventRow {
	row := EventRow{
		EventID:    e.EventID,
		Timestamp:  e.Timestamp.UTC().Format(rowTimeLayout),
		ActorID:    e.ActorID,
		SessionID:  e.SessionID,
		Name:       e.Name,
		ActorRef:   e.ActorRef,
		Email:      e.Email,
		LinkLabel:  e.LinkLabel,
		LinkType:   e.LinkType,
		Page:       e.Page,
		LocalTime:  e.LocalTime.Format("2006-01-02 15:04:05"),
		LocalDate:  e.LocalDate,
		Hour:       int32(e.Hour),
		Weekday:    e.Weekday,
		WeekdayNum: int32(e.WeekdayNum),
		SessionKey: e.SessionKey,
		Seq:        int32(e.Seq),
		PrevEvent:  e.PrevEvent,
		PrevEventID: e.PrevEventID,
		GapBucket:  e.GapBucket,
		StoryID:    e.StoryID,
		StoryTitle: e.StoryTitle,
		Action:     e.Action,
	}
	if e.Org != nil {
		row.Division = e.Org.Division
		row.Unit = e.Org.Unit
		row.Region = e.Org.Region
		row.Country = e.Org.Country
		row.JobTitle = e.Org.JobTitle
		row.ManagementLevel = e.Org.ManagementLevel
	}
	if e.PrevTimestamp != nil {
		row.PrevTimestamp = e.PrevTimestamp.UTC().Format(rowTimeLayout)
	}
	if e.GapMillis != nil {
		gap := *e.GapMillis
		row.GapMillis = &gap
	}
	return row
}

// buildAnonRow produces the anonymized variant of a row: the actor ID and
// actor ref are replaced by SHA-256 digests and the email is dropped. The
// session key embeds the raw actor ID, so it is recomputed over the digest.
func buildAnonRow(e *types.EnrichedEvent) EventRow {
	row := buildEventRow(e)
	row.ActorID = anonymizeID(e.ActorID)
	if e.ActorRef != "" {
		row.ActorRef = anonymizeID(e.ActorRef)
	}
	row.Email = ""
	row.SessionKey = e.LocalDate + "_" + row.ActorID + "_" + e.SessionID
	return row
}

// anonymizeID returns the SHA-256 hex digest of an identifier.
func anonymizeID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

// StoryRow is the story-engagement artifact schema: per story, local date,
// division and region, counts of events, distinct actors and distinct
// sessions plus the per-action breakdown. Rows classified Other never
// contribute.
type StoryRow struct {
	StoryID    string `parquet:"story_id"`
	StoryTitle string `parquet:"story_title"`
	LocalDate  string `parquet:"local_date"`
	Division   string `parquet:"division"`
	Region     string `parquet:"region"`

	Events   int64 `parquet:"events"`
	Actors   int64 `parquet:"actors"`
	Sessions int64 `parquet:"sessions"`

	OpenForms   int64 `parquet:"open_forms"`
	Submits     int64 `parquet:"submits"`
	Cancels     int64 `parquet:"cancels"`
	ViewPrompts int64 `parquet:"view_prompts"`
	Hides       int64 `parquet:"hides"`
	Reads       int64 `parquet:"reads"`
	Shares      int64 `parquet:"shares"`
	Likes       int64 `parquet:"likes"`
}
