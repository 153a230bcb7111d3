package parser

import (
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// isDate reports whether s reads as a calendar date. Parsing is lenient:
// statement dates come as "01/15/2020" while hand-built inputs use ISO dates.
func isDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

// ParseDate parses a transaction date in any layout dateparse understands.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// roundHalfUp rounds halves toward positive infinity, so -2.5 becomes -2.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// firstOf returns the first non-empty column value among keys.
func firstOf(row Row, keys []int) string {
	for _, k := range keys {
		if v := row[k]; v != "" {
			return v
		}
	}
	return ""
}
