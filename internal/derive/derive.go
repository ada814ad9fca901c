// Package derive implements feature derivation over the merged event
// corpus: timezone localization, session sequencing, gap bucketing, action
// classification and story resolution. Derivation is a pure function of
// its inputs; the same store contents always yield the same enriched rows.
package derive

import (
	"fmt"
	"sort"
	"time"

	"github.com/eventmill/eventmill/internal/hr"
	"github.com/eventmill/eventmill/pkg/types"
)

// Stats summarizes one derivation pass for the run report.
type Stats struct {
	// WithActorRef counts events carrying a normalized actor ref
	WithActorRef int

	// WithOrg counts events that resolved organizational attributes
	WithOrg int

	// Actions counts enriched events per action label
	Actions map[string]int
}

// Derive enriches the full corpus. The snapshot index and title map may be
// nil, in which case organizational attributes stay absent and titles stay
// empty; derivation itself never fails.
func Derive(events []*types.CanonicalEvent, snapshots *hr.SnapshotIndex, titles map[string]string, loc *time.Location) ([]*types.EnrichedEvent, *Stats) {
	stats := &Stats{Actions: make(map[string]int)}
	enriched := make([]*types.EnrichedEvent, 0, len(events))

	for _, ev := range events {
		local := ev.Timestamp.In(loc)
		e := &types.EnrichedEvent{
			CanonicalEvent: *ev,
			EventID:        ev.Identity().Hash(),
			LocalTime:      local,
			LocalDate:      local.Format("2006-01-02"),
			Hour:           local.Hour(),
			Weekday:        local.Weekday().String(),
			WeekdayNum:     isoWeekday(local.Weekday()),
			StoryID:        ExtractStoryID(ev.LinkLabel),
			Action:         ClassifyAction(ev.LinkLabel),
		}
		e.SessionKey = fmt.Sprintf("%s_%s_%s", e.LocalDate, ev.ActorID, ev.SessionID)

		if e.StoryID != "" && titles != nil {
			e.StoryTitle = titles[e.StoryID]
		}

		if ev.ActorRef != "" {
			stats.WithActorRef++
			if snapshots != nil {
				if attrs := snapshots.Lookup(ev.ActorRef, ev.Timestamp); attrs != nil {
					e.Org = attrs
					stats.WithOrg++
				}
			}
		}

		stats.Actions[e.Action]++
		enriched = append(enriched, e)
	}

	sequenceSessions(enriched)
	return enriched, stats
}

// sequenceSessions groups enriched events by session key, orders each
// session by timestamp (event ID as the deterministic tiebreak) and fills
// the sequence, predecessor and gap columns. The output slice ends up
// sorted by session key then sequence.
func sequenceSessions(events []*types.EnrichedEvent) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].SessionKey != events[j].SessionKey {
			return events[i].SessionKey < events[j].SessionKey
		}
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		return events[i].EventID < events[j].EventID
	})

	for i, e := range events {
		if i == 0 || events[i-1].SessionKey != e.SessionKey {
			e.Seq = 1
			e.GapBucket = BucketFirstEvent
			continue
		}

		prev := events[i-1]
		e.Seq = prev.Seq + 1
		e.PrevEvent = prev.Name
		e.PrevEventID = prev.EventID
		ts := prev.Timestamp
		e.PrevTimestamp = &ts

		gap := e.Timestamp.Sub(prev.Timestamp).Milliseconds()
		e.GapMillis = &gap
		e.GapBucket = GapBucket(gap)
	}
}

// isoWeekday maps Go's Sunday-first weekday onto ISO numbering, Monday=1
// through Sunday=7.
func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}
