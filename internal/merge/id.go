package merge

import (
	"strconv"
	"strings"
)

// CanonicalID coerces an identifier to its canonical integer-like string.
// Source identifiers arrive float-formatted ("12345.0") from some
// extracts; placeholder values become "". Non-numeric values pass through
// trimmed so opaque identifiers still join against themselves.
func CanonicalID(v string) string {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "", "nan", "none":
		return ""
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return strconv.FormatInt(int64(f), 10)
	}
	return v
}

// parseIntOrZero mirrors the lenient numeric coercion the source tables
// need: anything unparsable becomes the 0 sentinel.
func parseIntOrZero(v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}
