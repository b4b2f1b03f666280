// Package jsonutil contains helpers for tolerant JSON handling.
package jsonutil

import (
	"encoding/json"
	"fmt"
)

// FlexibleStringValue converts an arbitrary decoded JSON value to a string,
// handling upstreams that return numbers or booleans where a string id is
// expected. Returns empty string for nil.
func FlexibleStringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case json.Number:
		return val.String()
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
