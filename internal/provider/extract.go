package provider

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ExtractValue normalizes a numeric value from a decoded JSON document.
//
// The NHL API mostly returns flat numbers but occasionally stringified ones;
// localized objects like {"default": 3} also show up. This handles all three.
//
// Returns ok=false for missing, null, non-numeric and non-finite values; the
// caller decides whether absent means zero.
func ExtractValue(val interface{}) (float64, bool) {
	if val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case json.Number:
		f, err := v.Float64()
		return finite(f, err == nil)
	case float64:
		return finite(v, true)
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return finite(f, err == nil)
	case map[string]interface{}:
		if inner, exists := v["default"]; exists && inner != nil {
			return ExtractValue(inner)
		}
		return 0, false
	default:
		return 0, false
	}
}

func finite(f float64, ok bool) (float64, bool) {
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// --------------------------------------------------------------------------
// Extraction strategies
// --------------------------------------------------------------------------

// Strategy extracts one logical value from a document. ok=false means the
// shape it knows about is not present.
type Strategy[T any] func(Node) (T, bool)

// FirstOf tries strategies in order and returns the first success.
func FirstOf[T any](strategies ...Strategy[T]) Strategy[T] {
	return func(n Node) (T, bool) {
		for _, s := range strategies {
			if v, ok := s(n); ok {
				return v, true
			}
		}
		var zero T
		return zero, false
	}
}

// StringAt reads a non-empty string (or number rendered as string) at path.
func StringAt(path ...string) Strategy[string] {
	return func(n Node) (string, bool) {
		return n.Path(path...).String()
	}
}

// IntAt reads a whole number at path.
func IntAt(path ...string) Strategy[int64] {
	return func(n Node) (int64, bool) {
		return n.Path(path...).Int()
	}
}

// OptInt runs an int strategy and returns nil when absent.
func OptInt(s Strategy[int64], n Node) *int {
	v, ok := s(n)
	if !ok {
		return nil
	}
	i := int(v)
	return &i
}

// OptString runs a string strategy and returns nil when absent.
func OptString(s Strategy[string], n Node) *string {
	v, ok := s(n)
	if !ok {
		return nil
	}
	return &v
}
