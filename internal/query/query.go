// Package query filters and orders patient and alert collections for the
// dashboard views. Every function returns a new slice and leaves its input
// untouched.
package query

import (
	"math"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FilterAll disables a categorical filter.
const FilterAll = "all"

var negInf = math.Inf(-1)

// Direction is the sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection returns Asc for "asc" (any case) and Desc for everything else.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Asc)) {
		return Asc
	}
	return Desc
}

func (d Direction) sign() int {
	if d == Asc {
		return 1
	}
	return -1
}

func isAll(filter string) bool {
	f := strings.TrimSpace(filter)
	return f == "" || strings.EqualFold(f, FilterAll)
}

func normalizeSearch(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// matchesAny reports whether q is a substring of any lowercased field.
// An empty q matches everything.
func matchesAny(q string, fields ...string) bool {
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// compareFloat orders two keys where -Inf stands in for missing values.
// Two missing values compare equal.
func compareFloat(a, b float64) int {
	switch {
	case a == b:
		return 0
	case math.IsNaN(a) || math.IsNaN(b):
		return 0
	case a < b:
		return -1
	default:
		return 1
	}
}

func compareBool(a, b bool) int {
	return boolToInt(a) - boolToInt(b)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Collators keep internal buffers, so each sort gets its own.
func newCollator(numeric bool) *collate.Collator {
	if numeric {
		return collate.New(language.English, collate.Numeric)
	}
	return collate.New(language.English)
}
