package kinopoisk

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestLooseFloat_Decode(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
	}{
		{"number", `8.1`, 8.1},
		{"integer", `7`, 7},
		{"quoted number", `"6.5"`, 6.5},
		{"null", `null`, 0},
		{"empty string", `""`, 0},
		{"garbage string", `"N/A"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f looseFloat
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &f))
			assert.Equal(t, tt.expected, float64(f))
		})
	}
}

// TestLooseFloat_NeverFailsProperty checks that any string payload decodes
// without error: a parseable number keeps its value, everything else
// coerces to zero.
func TestLooseFloat_NeverFailsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "payload")
		raw, err := json.Marshal(s)
		if err != nil {
			t.Skip("unencodable string")
		}

		var f looseFloat
		if err := json.Unmarshal(raw, &f); err != nil {
			t.Fatalf("looseFloat decode failed for %q: %v", s, err)
		}

		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) {
			return
		}
		if float64(f) != v {
			t.Fatalf("parseable %q decoded to %v, want %v", s, float64(f), v)
		}
	})
}

func TestLooseString_Decode(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"string", `"2:28"`, "2:28"},
		{"bare number", `2010`, "2010"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ls looseString
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ls))
			assert.Equal(t, tt.expected, string(ls))
		})
	}
}

// TestTruncateOverviewProperty checks the truncation invariants for any
// input: short inputs pass through verbatim, long ones come back as exactly
// the first 150 characters plus the ellipsis marker.
func TestTruncateOverviewProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "overview")
		got := truncateOverview(s)

		if utf8.RuneCountInString(s) <= overviewLimit {
			if got != s {
				t.Fatalf("short overview must be verbatim: %q -> %q", s, got)
			}
			return
		}

		if !strings.HasSuffix(got, "...") {
			t.Fatalf("truncated overview must end with the marker: %q", got)
		}
		if utf8.RuneCountInString(got) != overviewLimit+3 {
			t.Fatalf("truncated overview must be %d characters plus marker, got %d",
				overviewLimit, utf8.RuneCountInString(got))
		}
		if string([]rune(s)[:overviewLimit]) != strings.TrimSuffix(got, "...") {
			t.Fatalf("truncated overview must keep the source prefix")
		}
	})
}
