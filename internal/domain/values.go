package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// AsNumber converts a recorded or raw answer to a float64. Strings may carry
// thousands separators. NaN and infinities are rejected.
func AsNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// AsBool converts a raw answer to a boolean, accepting common yes/no synonyms.
func AsBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "yes", "y", "true", "haan", "ha", "1":
			return true, true
		case "no", "n", "false", "nahi", "nahin", "0":
			return false, true
		}
	}
	if f, ok := AsNumber(v); ok && (f == 0 || f == 1) {
		return f == 1, true
	}
	return false, false
}

// Fold trims and lower-cases s for case-insensitive comparison.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
