package hr

import (
	"testing"
	"time"

	"github.com/eventmill/eventmill/pkg/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func snap(actor string, at time.Time, division string) types.OrgSnapshot {
	return types.OrgSnapshot{
		ActorID:       actor,
		SnapshotDate:  at,
		OrgAttributes: types.OrgAttributes{Division: division, Region: "EMEA"},
	}
}

func TestLookupLatestAtOrBefore(t *testing.T) {
	idx := NewIndex([]types.OrgSnapshot{
		snap("00000001", date(2026, 1, 1), "Sales"),
		snap("00000001", date(2026, 3, 1), "Marketing"),
		snap("00000001", date(2026, 6, 1), "Ops"),
	})

	tests := []struct {
		name  string
		event time.Time
		want  string
	}{
		{"between snapshots", date(2026, 4, 15), "Marketing"},
		{"exactly on snapshot date", date(2026, 3, 1), "Marketing"},
		{"after last snapshot", date(2026, 12, 31), "Ops"},
		{"on first snapshot date", date(2026, 1, 1), "Sales"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.Lookup("00000001", tt.event)
			if got == nil {
				t.Fatal("Expected attributes, got nil")
			}
			if got.Division != tt.want {
				t.Errorf("Expected division %s, got %s", tt.want, got.Division)
			}
		})
	}
}

func TestLookupFallbackToEarliest(t *testing.T) {
	idx := NewIndex([]types.OrgSnapshot{
		snap("00000001", date(2026, 3, 1), "Marketing"),
		snap("00000001", date(2026, 6, 1), "Ops"),
	})

	// Event predates the actor's first snapshot: the earliest one applies.
	got := idx.Lookup("00000001", date(2025, 11, 20))
	if got == nil {
		t.Fatal("Expected fallback attributes, got nil")
	}
	if got.Division != "Marketing" {
		t.Errorf("Expected earliest snapshot's division, got %s", got.Division)
	}
}

func TestLookupUnknownActor(t *testing.T) {
	idx := NewIndex([]types.OrgSnapshot{
		snap("00000001", date(2026, 3, 1), "Marketing"),
	})

	if got := idx.Lookup("00000099", date(2026, 3, 1)); got != nil {
		t.Errorf("Expected nil for unknown actor, got %+v", got)
	}
}

func TestLookupIgnoresTimeOfDay(t *testing.T) {
	idx := NewIndex([]types.OrgSnapshot{
		snap("00000001", date(2026, 3, 1), "Marketing"),
	})

	// A late-evening event on the snapshot date still matches it.
	got := idx.Lookup("00000001", time.Date(2026, 3, 1, 23, 45, 0, 0, time.UTC))
	if got == nil || got.Division != "Marketing" {
		t.Errorf("Expected snapshot-date match regardless of time of day, got %+v", got)
	}
}

func TestIndexUnsortedInput(t *testing.T) {
	idx := NewIndex([]types.OrgSnapshot{
		snap("00000001", date(2026, 6, 1), "Ops"),
		snap("00000001", date(2026, 1, 1), "Sales"),
		snap("00000001", date(2026, 3, 1), "Marketing"),
	})

	got := idx.Lookup("00000001", date(2026, 2, 1))
	if got == nil || got.Division != "Sales" {
		t.Errorf("Expected Sales for Feb event over unsorted input, got %+v", got)
	}
	if idx.Actors() != 1 {
		t.Errorf("Expected 1 actor, got %d", idx.Actors())
	}
	if idx.Size() != 3 {
		t.Errorf("Expected 3 snapshots, got %d", idx.Size())
	}
}
