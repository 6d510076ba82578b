// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import "time"

// Field accessors tolerant of backend type drift: JSON decoding yields
// float64 for numbers and RFC3339 strings for times, mongo yields int32/
// int64 and time.Time, the memory store returns whatever was written.

// String returns the string value of a field, or "" if absent.
func String(fields map[string]any, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

// Int returns the integer value of a field, or 0 if absent.
func Int(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// StringSlice returns the string-slice value of a field, or nil if absent.
func StringSlice(fields map[string]any, key string) []string {
	switch v := fields[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Time returns the time value of a field, or the zero time if absent or
// unparseable.
func Time(fields map[string]any, key string) time.Time {
	switch v := fields[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
