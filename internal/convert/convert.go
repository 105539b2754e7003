// Package convert provides loose conversions for values coming back from
// database drivers and request arguments.
// This package has no dependencies on other internal packages to avoid circular imports.
package convert

import (
	"strconv"
	"strings"
)

// ToInt converts various types to int with a fallback value.
// Handles integer, float, string and []byte values; surrounding whitespace
// in strings is ignored.
func ToInt(v interface{}, fallback int) int {
	switch val := v.(type) {
	case int:
		return val
	case int32:
		return int(val)
	case int64:
		return int(val)
	case uint:
		return int(val)
	case uint64:
		return int(val)
	case float32:
		return int(val)
	case float64:
		return int(val)
	case []byte:
		return ToInt(string(val), fallback)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return n
		}
	}
	return fallback
}

// ToFloat converts numeric, string and []byte values to float64.
func ToFloat(v interface{}, fallback float64) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case []byte:
		return ToFloat(string(val), fallback)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f
		}
	}
	return fallback
}

// ToBool understands the checkbox spellings used by HTML forms and ticket
// custom fields: "1", "on", "true", "yes" (and their negatives).
func ToBool(v interface{}, fallback bool) bool {
	switch val := v.(type) {
	case bool:
		return val
	case int:
		return val != 0
	case int64:
		return val != 0
	case []byte:
		return ToBool(string(val), fallback)
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "on", "true", "yes":
			return true
		case "0", "off", "false", "no":
			return false
		}
	}
	return fallback
}

// ToString converts various types to string.
// Handles string, []byte, int, int64, float64 and bool types.
func ToString(v interface{}, fallback string) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return fallback
}
