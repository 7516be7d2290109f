package document

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"go.uber.org/multierr"
)

// Settings maps a setting key to a scalar or a ResponsiveValue. Values held by a
// node that is part of a tree snapshot are never modified in place.
type Settings map[string]any

// NewSettings normalizes every entry of raw into a Settings map
func NewSettings(raw map[string]any) (Settings, error) {
	out := make(Settings, len(raw))
	for key, val := range raw {
		norm, err := NormalizeValue(val)
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", key, err)
		}
		if norm != nil {
			out[key] = norm
		}
	}
	return out, nil
}

// Clone returns a deep copy
func (s Settings) Clone() Settings {
	if s == nil {
		return Settings{}
	}
	out := make(Settings, len(s))
	for k, v := range s {
		if rv, ok := v.(ResponsiveValue); ok {
			out[k] = rv.Clone()
			continue
		}
		out[k] = v
	}
	return out
}

// Merge returns a copy of s with partial applied on top. A nil value removes
// the key; unknown keys are kept as given.
func (s Settings) Merge(partial map[string]any) (Settings, error) {
	out := s.Clone()
	for key, val := range partial {
		norm, err := NormalizeValue(val)
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", key, err)
		}
		if norm == nil {
			delete(out, key)
			continue
		}
		out[key] = norm
	}
	return out, nil
}

// Keys returns the setting keys in sorted order
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve returns the concrete value of key for vp
func (s Settings) Resolve(key string, vp Viewport, fallback any) any {
	return Resolve(s[key], vp, fallback)
}

// ResolveAll resolves every setting for vp
func (s Settings) ResolveAll(vp Viewport) map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		out[k] = Resolve(v, vp, nil)
	}
	return out
}

// String resolves key as a string
func (s Settings) String(key string, vp Viewport, fallback string) string {
	switch v := s.Resolve(key, vp, nil).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return fallback
}

// Number resolves key as a float64, parsing numeric strings
func (s Settings) Number(key string, vp Viewport, fallback float64) float64 {
	switch v := s.Resolve(key, vp, nil).(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Bool resolves key as a bool
func (s Settings) Bool(key string, vp Viewport, fallback bool) bool {
	switch v := s.Resolve(key, vp, nil).(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// Validate reports every value that is not in a storable shape, such as a
// ResponsiveValue without a desktop entry. Keys are checked in sorted order.
func (s Settings) Validate() error {
	var errs error
	for _, key := range s.Keys() {
		if _, err := NormalizeValue(s[key]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("setting %q: %w", key, err))
		}
	}
	return errs
}

// Equal reports whether s and o hold the same values
func (s Settings) Equal(o Settings) bool {
	if len(s) != len(o) {
		return false
	}
	for k, v := range s {
		w, ok := o[k]
		if !ok || !reflect.DeepEqual(v, w) {
			return false
		}
	}
	return true
}

// UnmarshalJSON decodes and validates settings; viewport objects become
// ResponsiveValues and must carry a desktop entry.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	settings, err := NewSettings(raw)
	if err != nil {
		return err
	}
	*s = settings
	return nil
}
