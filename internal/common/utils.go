package common

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// IsNull reports whether a raw JSON value is absent or a literal null.
func IsNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// CoerceFloat converts a loosely-typed JSON scalar into a float.
// It returns nil when the value is absent or null, and NaN when the value is
// present but not a number or a numeric string (e.g. "-", true, {}).
func CoerceFloat(raw json.RawMessage) *float64 {
	if IsNull(raw) {
		return nil
	}

	var text string
	trimmed := bytes.TrimSpace(raw)
	switch trimmed[0] {
	case '"':
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nan()
		}
		text = strings.TrimSpace(text)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(trimmed)
	default:
		return nan()
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nan()
	}
	return &f
}

// Text renders a raw JSON scalar as plain text. Strings are unquoted, numbers
// keep their literal form and null/absent values become "".
func Text(raw json.RawMessage) string {
	if IsNull(raw) {
		return ""
	}
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

// IsFinite returns true if f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func nan() *float64 {
	f := math.NaN()
	return &f
}
