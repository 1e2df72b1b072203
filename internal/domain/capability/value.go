package capability

import (
	"encoding/json"
	"fmt"
)

const maxDepth = 64

// Normalize deep-copies v into the closed JSON-like value domain. Integers
// and floats collapse to float64, json.Number is parsed, slices and
// string-keyed maps are rebuilt recursively. Functions, channels, structs and
// other host types are rejected.
func Normalize(v Value) (Value, error) {
	return normalize(v, 0)
}

// NormalizeSlice normalizes each element of args into a fresh slice.
func NormalizeSlice(args []Value) ([]Value, error) {
	out := make([]Value, len(args))
	for i, a := range args {
		n, err := normalize(a, 0)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

func normalize(v Value, depth int) (Value, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("value nesting exceeds %d levels", maxDepth)
	}

	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool, float64, string:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int8:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint:
		return float64(t), nil
	case uint8:
		return float64(t), nil
	case uint16:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", t.String())
		}
		return f, nil
	case []Value:
		out := make([]Value, len(t))
		for i, e := range t {
			n, err := normalize(e, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]Value:
		out := make(map[string]Value, len(t))
		for k, e := range t {
			n, err := normalize(e, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// Stringify renders a value the way the sandbox console does: strings pass
// through unchanged, everything else is JSON-encoded.
func Stringify(v Value) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
