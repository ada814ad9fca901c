package derive

// BucketFirstEvent labels the session's first event, which has no gap.
const BucketFirstEvent = "First Event"

// gapBoundaries are the upper bounds of the gap buckets in milliseconds.
// The first bound is exclusive so that exactly 500ms reads as "0.5-1s",
// agreeing with its label; every later bound is inclusive (1000ms is
// "0.5-1s"). Anything beyond the last bound is "> 60s". Together with
// BucketFirstEvent the buckets partition every possible gap.
var gapBoundaries = []struct {
	upperMillis int64
	label       string
}{
	{500, "< 0.5s"},
	{1000, "0.5-1s"},
	{2000, "1-2s"},
	{5000, "2-5s"},
	{10000, "5-10s"},
	{30000, "10-30s"},
	{60000, "30-60s"},
}

// bucketOverflow labels gaps beyond the last boundary.
const bucketOverflow = "> 60s"

// GapBucket maps a non-negative millisecond gap onto its bucket label.
func GapBucket(gapMillis int64) string {
	if gapMillis < gapBoundaries[0].upperMillis {
		return gapBoundaries[0].label
	}
	for _, b := range gapBoundaries[1:] {
		if gapMillis <= b.upperMillis {
			return b.label
		}
	}
	return bucketOverflow
}

// BucketLabels returns every bucket label in ascending gap order, the
// first-event label included. Used by the run summary to print breakdowns
// in a stable order.
func BucketLabels() []string {
	labels := make([]string, 0, len(gapBoundaries)+2)
	labels = append(labels, BucketFirstEvent)
	for _, b := range gapBoundaries {
		labels = append(labels, b.label)
	}
	return append(labels, bucketOverflow)
}
