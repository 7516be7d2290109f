package document

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ResponsiveValue holds one scalar per viewport class. The desktop entry is
// mandatory and is the fallback for every narrower viewport.
type ResponsiveValue map[Viewport]any

// NewResponsiveValue builds a ResponsiveValue from a generic map, rejecting
// unknown viewport keys, non-scalar entries and a missing desktop entry.
func NewResponsiveValue(raw map[string]any) (ResponsiveValue, error) {
	rv := make(ResponsiveValue, len(raw))
	for key, val := range raw {
		vp, err := ParseViewport(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponsive, err)
		}
		scalar, err := normalizeScalar(val)
		if err != nil {
			return nil, fmt.Errorf("%w: viewport %s: %v", ErrInvalidResponsive, vp, err)
		}
		rv[vp] = scalar
	}
	if err := rv.Validate(); err != nil {
		return nil, err
	}
	return rv, nil
}

// Validate checks the desktop entry is present and defined
func (rv ResponsiveValue) Validate() error {
	if v, ok := rv[ViewportDesktop]; !ok || v == nil {
		return fmt.Errorf("%w: missing desktop value", ErrInvalidResponsive)
	}
	return nil
}

// Resolve walks the cascade for vp and returns the first defined entry
func (rv ResponsiveValue) Resolve(vp Viewport) any {
	for _, candidate := range vp.cascade() {
		if v, ok := rv[candidate]; ok && v != nil {
			return v
		}
	}
	return rv[ViewportDesktop]
}

// Clone returns an independent copy
func (rv ResponsiveValue) Clone() ResponsiveValue {
	out := make(ResponsiveValue, len(rv))
	for k, v := range rv {
		out[k] = v
	}
	return out
}

// MarshalJSON writes the entries in viewport order for stable output
func (rv ResponsiveValue) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(rv))
	for k := range rv {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	out := make(map[string]any, len(rv))
	for _, k := range keys {
		out[k] = rv[Viewport(k)]
	}
	return json.Marshal(out)
}

// Resolve returns the concrete scalar of value for the given viewport.
// Plain scalars are returned unchanged; nil yields fallback.
func Resolve(value any, vp Viewport, fallback any) any {
	switch v := value.(type) {
	case nil:
		return fallback
	case ResponsiveValue:
		if r := v.Resolve(vp); r != nil {
			return r
		}
		return fallback
	default:
		return v
	}
}

// NormalizeValue converts a setting value into its canonical form: float64 for
// numbers, ResponsiveValue for viewport maps. Invalid shapes are rejected.
func NormalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case ResponsiveValue:
		for vp, entry := range v {
			if !vp.IsValid() {
				return nil, fmt.Errorf("%w: unknown viewport %q", ErrInvalidResponsive, vp)
			}
			if _, err := normalizeScalar(entry); err != nil {
				return nil, fmt.Errorf("%w: viewport %s: %v", ErrInvalidResponsive, vp, err)
			}
		}
		if err := v.Validate(); err != nil {
			return nil, err
		}
		out := make(ResponsiveValue, len(v))
		for vp, entry := range v {
			out[vp], _ = normalizeScalar(entry)
		}
		return out, nil
	case map[string]any:
		return NewResponsiveValue(v)
	case map[Viewport]any:
		return NormalizeValue(ResponsiveValue(v))
	default:
		return normalizeScalar(v)
	}
}

func normalizeScalar(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string, bool, float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported setting value of type %T", value)
	}
}
