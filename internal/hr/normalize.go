// Package hr implements the organizational as-of join: loading the
// slowly-changing snapshot feed and resolving, per event, the attributes
// valid at (or nearest to) the event's timestamp.
package hr

import (
	"regexp"
	"strings"
)

// actorIDWidth is the fixed width of the organizational identifier.
const actorIDWidth = 8

var (
	trailingDecimalRe = regexp.MustCompile(`\.0$`)
	allDigitsRe       = regexp.MustCompile(`^\d+$`)
)

// NormalizeActorID normalizes an organizational identifier to its canonical
// fixed-width, zero-padded numeric form. The identifier field is sourced
// inconsistently across the two encodings: Excel float conversion appends a
// trailing ".0" and drops leading zeros, e.g. "1234567.0" -> "01234567".
// Non-numeric values are returned trimmed but otherwise untouched.
func NormalizeActorID(raw string) string {
	s := strings.TrimSpace(raw)
	s = trailingDecimalRe.ReplaceAllString(s, "")
	if s == "" || !allDigitsRe.MatchString(s) {
		return s
	}
	for len(s) < actorIDWidth {
		s = "0" + s
	}
	return s
}
