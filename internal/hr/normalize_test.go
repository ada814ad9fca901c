package hr

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNormalizeActorID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already canonical", "00123456", "00123456"},
		{"short numeric padded", "1234567", "01234567"},
		{"excel float suffix", "1234567.0", "01234567"},
		{"excel float full width", "12345678.0", "12345678"},
		{"whitespace trimmed", "  1234567 ", "01234567"},
		{"single digit", "7", "00000007"},
		{"longer than width untouched", "123456789", "123456789"},
		{"non-numeric passthrough", "EXT-7781", "EXT-7781"},
		{"non-numeric with dot-zero", "abc.0", "abc"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeActorID(tt.input); got != tt.want {
				t.Errorf("NormalizeActorID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeActorIDProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("idempotent", prop.ForAll(
		func(n uint32) bool {
			once := NormalizeActorID(fmt.Sprintf("%d", n))
			return NormalizeActorID(once) == once
		},
		gen.UInt32(),
	))

	properties.Property("numeric IDs reach fixed width", prop.ForAll(
		func(n uint32) bool {
			got := NormalizeActorID(fmt.Sprintf("%d", n))
			return len(got) >= actorIDWidth
		},
		gen.UInt32(),
	))

	properties.Property("excel float form agrees with plain form", prop.ForAll(
		func(n uint32) bool {
			plain := NormalizeActorID(fmt.Sprintf("%d", n))
			excel := NormalizeActorID(fmt.Sprintf("%d.0", n))
			return plain == excel
		},
		gen.UInt32(),
	))

	properties.TestingRun(t)
}
