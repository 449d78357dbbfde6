package payload

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Field keeps "absent" apart from "explicit null".
// Set is false when the key was missing from the payload; Null is true when it carried null.
// Err holds a type mismatch the decoder tolerated; see UnmarshalJSON.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
	Err   error
}

func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// Present reports whether the key carried a non-null value.
func (f Field[T]) Present() bool {
	return f.Set && !f.Null
}

// Ptr returns nil unless the field carried a value.
func (f Field[T]) Ptr() *T {
	if !f.Present() {
		return nil
	}
	v := f.Value
	return &v
}

// Or returns the value when present, fallback otherwise.
func (f Field[T]) Or(fallback T) T {
	if !f.Present() {
		return fallback
	}
	return f.Value
}

// UnmarshalJSON never fails on a wrongly typed value. A value of the wrong
// shape leaves the field unset, so callers apply the same policy as for a
// missing key. A composite value with a bad member keeps what did decode.
// Either way the mismatch is kept in Err.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	var zero T
	f.Set = true
	f.Err = nil

	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		f.Value = zero
		return nil
	}

	f.Null = false

	err := json.Unmarshal(b, &f.Value)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return err
	}

	f.Err = err

	// the whole value had the wrong shape
	if typeErr.Field == "" {
		f.Set = false
		f.Value = zero
	}

	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
