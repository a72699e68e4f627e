package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Reading is an optional numeric measurement (vital sign, age).
// The zero value is an absent reading.
type Reading struct {
	Value float64
	Valid bool
}

// Some returns a present reading.
func Some(v float64) Reading {
	return Reading{Value: v, Valid: true}
}

// Get returns the value and whether it is present and finite.
func (r Reading) Get() (float64, bool) {
	if !r.Valid || math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return 0, false
	}
	return r.Value, true
}

// Positive reports whether the reading is present, finite and greater than zero.
// Only positive readings take part in averages and distributions.
func (r Reading) Positive() bool {
	v, ok := r.Get()
	return ok && v > 0
}

// UnmarshalJSON accepts numbers and numeric strings. Anything else decodes
// to an absent reading instead of failing the whole record.
func (r *Reading) UnmarshalJSON(data []byte) error {
	*r = Reading{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == 'n' {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*r = Some(v)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*r = Some(v)
	}
	return nil
}

// MarshalJSON writes absent readings as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	v, ok := r.Get()
	if !ok {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
}

// Text is a free-text field that tolerates non-string JSON values.
// Numbers and booleans are coerced to their string form, null to "".
type Text string

// String returns the text value.
func (t Text) String() string {
	return string(t)
}

// UnmarshalJSON never fails on a well-formed JSON value.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text(coerceText(bytes.TrimSpace(data)))
	return nil
}

func coerceText(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	switch data[0] {
	case 'n':
		return ""
	case 't':
		return "true"
	case 'f':
		return "false"
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ""
		}
		return s
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return ""
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, coerceText(bytes.TrimSpace(item)))
		}
		return strings.Join(parts, ",")
	case '{':
		return ""
	default:
		v, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return string(data)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// Flag is a boolean that also accepts numbers and strings.
type Flag bool

// UnmarshalJSON: numbers are true when non-zero; strings use strconv.ParseBool
// and otherwise count as true when non-empty.
func (f *Flag) UnmarshalJSON(data []byte) error {
	*f = false
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case 'n':
		return nil
	case 't':
		*f = true
	case 'f':
		*f = false
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		if b, err := strconv.ParseBool(s); err == nil {
			*f = Flag(b)
			return nil
		}
		*f = s != ""
	case '[', '{':
		*f = true
	default:
		v, err := strconv.ParseFloat(string(data), 64)
		*f = Flag(err == nil && v != 0 && !math.IsNaN(v))
	}
	return nil
}
