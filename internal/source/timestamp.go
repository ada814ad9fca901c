package source

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Timestamp layouts accepted across the two encodings: ISO (with and
// without fraction), App Insights dd/mm/yyyy, and German dd.mm.yyyy forms.
// Naive values are interpreted as UTC.
var tsLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05.999999Z07:00",
	"2006-01-02T15:04:05.999999",
	"02/01/2006 15:04:05.999999",
	"02/01/2006 15:04",
	"02/01/2006",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
}

// overlongFractionRe matches fractional seconds beyond microsecond
// precision; the excess digits are truncated before parsing.
var overlongFractionRe = regexp.MustCompile(`(\.\d{6})\d+`)

// serialNumberRe matches Excel serial date numbers.
var serialNumberRe = regexp.MustCompile(`^\d{4,6}(\.\d+)?$`)

// excelEpoch is day zero of the Excel 1900 date system.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// parseTimestamp parses one timestamp cell. The second return reports
// whether the value carried sub-second precision: a present-but-zero
// fraction still counts as whole-second, matching how precision loss is
// detected per file.
func parseTimestamp(val string) (time.Time, bool, error) {
	// Excel cells sometimes surface as raw serial numbers.
	if serialNumberRe.MatchString(val) {
		serial, err := strconv.ParseFloat(val, 64)
		if err == nil {
			t := excelEpoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
			// Serial fractions below one second are representation noise.
			t = t.Round(time.Second)
			return t, false, nil
		}
	}

	val = overlongFractionRe.ReplaceAllString(val, "$1")

	for _, layout := range tsLayouts {
		t, err := time.ParseInLocation(layout, val, time.UTC)
		if err != nil {
			continue
		}
		t = t.UTC()
		return t, t.Nanosecond() != 0, nil
	}

	return time.Time{}, false, fmt.Errorf("source: unrecognized timestamp format: %q", val)
}
