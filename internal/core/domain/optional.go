package domain

import (
	"encoding/json"
	"strings"
)

// Optional is a payload field that is either present with a value or absent.
// Absent fields report IsZero, so `json:",omitzero"` keeps them off the wire.
type Optional[T any] struct {
	value   T
	present bool
}

// Some returns a present optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// None returns an absent optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// OptionalString treats blank strings as absent and trims the rest.
func OptionalString(s string) Optional[string] {
	s = strings.TrimSpace(s)
	if s == "" {
		return None[string]()
	}
	return Some(s)
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// IsPresent returns true if a value is set.
func (o Optional[T]) IsPresent() bool {
	return o.present
}

// IsZero reports absence. Used by encoding/json for omitzero.
func (o Optional[T]) IsZero() bool {
	return !o.present
}

// Or returns o when present, otherwise fallback.
func (o Optional[T]) Or(fallback Optional[T]) Optional[T] {
	if o.present {
		return o
	}
	return fallback
}

// MarshalJSON encodes the value, or null when absent.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes a value; null leaves the optional absent.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
