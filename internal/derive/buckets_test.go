package derive

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestGapBucket(t *testing.T) {
	tests := []struct {
		millis int64
		want   string
	}{
		{0, "< 0.5s"},
		{499, "< 0.5s"},
		{500, "0.5-1s"},
		{501, "0.5-1s"},
		{1000, "0.5-1s"},
		{1001, "1-2s"},
		{2000, "1-2s"},
		{3500, "2-5s"},
		{5000, "2-5s"},
		{7500, "5-10s"},
		{10000, "5-10s"},
		{15000, "10-30s"},
		{30000, "10-30s"},
		{45000, "30-60s"},
		{60000, "30-60s"},
		{60001, "> 60s"},
		{299000, "> 60s"},
	}

	for _, tt := range tests {
		if got := GapBucket(tt.millis); got != tt.want {
			t.Errorf("GapBucket(%d) = %q, want %q", tt.millis, got, tt.want)
		}
	}
}

func TestGapBucketProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	known := make(map[string]bool)
	for _, label := range BucketLabels() {
		known[label] = true
	}

	properties.Property("every gap maps to exactly one known bucket", prop.ForAll(
		func(millis int64) bool {
			label := GapBucket(millis)
			return label != BucketFirstEvent && known[label]
		},
		gen.Int64Range(0, 10_000_000),
	))

	properties.Property("bucket assignment is monotone in the gap", prop.ForAll(
		func(a, b int64) bool {
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			labels := BucketLabels()
			rank := make(map[string]int, len(labels))
			for i, l := range labels {
				rank[l] = i
			}
			return rank[GapBucket(lo)] <= rank[GapBucket(hi)]
		},
		gen.Int64Range(0, 10_000_000),
		gen.Int64Range(0, 10_000_000),
	))

	properties.TestingRun(t)
}

func TestGapBucketBoundariesContiguous(t *testing.T) {
	// The first bound is exclusive: the label changes at the bound itself.
	first := gapBoundaries[0]
	if got := GapBucket(first.upperMillis - 1); got != first.label {
		t.Errorf("GapBucket(%d) = %q, want %q", first.upperMillis-1, got, first.label)
	}
	if got := GapBucket(first.upperMillis); got == first.label {
		t.Errorf("Expected bucket change at %d, still %q", first.upperMillis, got)
	}

	// Every later bound is inclusive: the label changes at bound+1.
	for _, b := range gapBoundaries[1:] {
		at := GapBucket(b.upperMillis)
		after := GapBucket(b.upperMillis + 1)
		if at != b.label {
			t.Errorf("GapBucket(%d) = %q, want %q", b.upperMillis, at, b.label)
		}
		if after == b.label {
			t.Errorf("Expected bucket change after %d, still %q", b.upperMillis, after)
		}
	}
}
