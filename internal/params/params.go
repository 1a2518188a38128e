// Package params provides typed access to loosely typed parameter maps as
// they come out of YAML config files and blueprint manifests.
package params

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Error definitions for the params package.
var (
	ErrUnknownKey = errors.New("unknown parameter")
	ErrWrongType  = errors.New("parameter has wrong type")
)

// Params holds keyword parameters for a constructor.
type Params map[string]any

// Get retrieves a typed value from a map[string]any.
// If the key is missing or the type cannot be converted, it returns the default value.
func Get[T any](m map[string]any, key string, defaultValue T) T {
	v, err := Lookup(m, key, defaultValue)
	if err != nil {
		return defaultValue
	}
	return v
}

// Lookup is the strict form of Get: a missing key yields the default, but a
// present value that cannot be converted to T is an error.
func Lookup[T any](m map[string]any, key string, defaultValue T) (T, error) {
	val, ok := m[key]
	if !ok || val == nil {
		return defaultValue, nil
	}

	var out any
	switch any(defaultValue).(type) {
	case int:
		switch x := val.(type) {
		case int:
			out = x
		case int64:
			out = int(x)
		case uint64:
			out = int(x)
		case float64:
			if x == float64(int(x)) {
				out = int(x)
			}
		}
	case float64:
		switch x := val.(type) {
		case float64:
			out = x
		case int:
			out = float64(x)
		case int64:
			out = float64(x)
		case uint64:
			out = float64(x)
		}
	case string:
		if s, ok := val.(string); ok {
			out = s
		}
	case bool:
		if b, ok := val.(bool); ok {
			out = b
		}
	case []int:
		out = toSlice(val, func(v any) (int, bool) {
			f, ok := number(v)
			return int(f), ok && f == float64(int(f))
		})
	case []float64:
		out = toSlice(val, number)
	default:
		// fallback: if type matches exactly
		if v2, ok := val.(T); ok {
			return v2, nil
		}
	}

	if v, ok := out.(T); ok {
		return v, nil
	}

	return defaultValue, fmt.Errorf("%w: %s is %T", ErrWrongType, key, val)
}

// CheckKeys returns ErrUnknownKey if m holds any key outside allowed.
func CheckKeys(m map[string]any, allowed ...string) error {
	var unknown []string
	for k := range m {
		if !slices.Contains(allowed, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	slices.Sort(unknown)
	return fmt.Errorf("%w: %s (accepted: %s)", ErrUnknownKey, strings.Join(unknown, ", "), strings.Join(allowed, ", "))
}

// Merge returns a new map holding base overlaid by override.
func Merge(base, override map[string]any) Params {
	out := make(Params, len(base)+len(override))
	maps.Copy(out, base)
	maps.Copy(out, override)
	return out
}

// Clone returns a shallow copy of p, never nil.
func (p Params) Clone() Params {
	return Merge(p, nil)
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func toSlice[E any](val any, conv func(any) (E, bool)) any {
	switch x := val.(type) {
	case []E:
		return x
	case []any:
		out := make([]E, 0, len(x))
		for _, item := range x {
			e, ok := conv(item)
			if !ok {
				return nil
			}
			out = append(out, e)
		}
		return out
	}
	return nil
}
