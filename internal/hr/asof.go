package hr

import (
	"sort"
	"time"

	"github.com/eventmill/eventmill/pkg/types"
)

// SnapshotIndex holds per-actor snapshots sorted by date, supporting the
// as-of lookup with a binary search instead of a per-event scan.
type SnapshotIndex struct {
	byActor map[string][]types.OrgSnapshot
	count   int
}

// NewIndex builds an index over the given snapshots.
func NewIndex(snaps []types.OrgSnapshot) *SnapshotIndex {
	idx := &SnapshotIndex{
		byActor: make(map[string][]types.OrgSnapshot),
		count:   len(snaps),
	}
	for _, s := range snaps {
		idx.byActor[s.ActorID] = append(idx.byActor[s.ActorID], s)
	}
	for actor := range idx.byActor {
		list := idx.byActor[actor]
		sort.Slice(list, func(i, j int) bool {
			return list[i].SnapshotDate.Before(list[j].SnapshotDate)
		})
	}
	return idx
}

// Lookup resolves the organizational attributes for an actor as of the
// event date. Policy:
//  1. the latest snapshot with snapshot_date <= eventDate
//  2. otherwise the earliest snapshot with snapshot_date > eventDate
//     (event predates the actor's first snapshot)
//  3. nil when the actor has no snapshots — "unknown organization", not
//     an error
func (idx *SnapshotIndex) Lookup(actorID string, eventDate time.Time) *types.OrgAttributes {
	snaps := idx.byActor[actorID]
	if len(snaps) == 0 {
		return nil
	}

	day := eventDate.UTC().Truncate(24 * time.Hour)

	// First index whose snapshot date is strictly after the event date.
	i := sort.Search(len(snaps), func(k int) bool {
		return snaps[k].SnapshotDate.After(day)
	})

	if i > 0 {
		attrs := snaps[i-1].OrgAttributes
		return &attrs
	}
	attrs := snaps[0].OrgAttributes
	return &attrs
}

// Actors returns the number of distinct actors in the index.
func (idx *SnapshotIndex) Actors() int {
	return len(idx.byActor)
}

// Size returns the total number of snapshots.
func (idx *SnapshotIndex) Size() int {
	return idx.count
}
