package common

import "fmt"

// RequiredString extracts a required string argument, rejecting missing,
// non-string, and empty values.
func RequiredString(args map[string]interface{}, name string) (string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return "", fmt.Errorf("%s is required", name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	if s == "" {
		return "", fmt.Errorf("%s cannot be empty", name)
	}
	return s, nil
}

// OptionalString extracts an optional string argument, returning def when
// absent or empty.
func OptionalString(args map[string]interface{}, name, def string) string {
	if raw, ok := args[name]; ok {
		if s, ok := raw.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// OptionalInt extracts an optional numeric argument. JSON numbers arrive as
// float64; non-positive and malformed values fall back to def.
func OptionalInt(args map[string]interface{}, name string, def int64) int64 {
	if raw, ok := args[name]; ok {
		if f, ok := raw.(float64); ok && f > 0 {
			return int64(f)
		}
	}
	return def
}

// OptionalBool extracts an optional boolean argument, returning def when
// absent or not a boolean.
func OptionalBool(args map[string]interface{}, name string, def bool) bool {
	if raw, ok := args[name]; ok {
		if b, ok := raw.(bool); ok {
			return b
		}
	}
	return def
}
