// Package patch provides optional-field types for partial updates.
//
// A request struct declares the fields a client may change as Field or Nullable
// values. Decoding marks a field as Set only when its key is present in the JSON
// body, so update code can apply exactly the supplied fields:
//
//	type GenrePatch struct {
//	    Name patch.Field[string] `json:"name" binding:"omitnil,min=1,max=50"`
//	}
//
//	if p.Name.Set {
//	    updates["name"] = p.Name.Value
//	}
package patch

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrNull is returned when a non-nullable field is explicitly set to null.
var ErrNull = errors.New("field may not be null")

var nullLiteral = []byte("null")

// Valuer exposes the value a validator should see. Unset (and null) fields
// report nil, which "omitnil" rules skip.
type Valuer interface {
	ValidationValue() any
}

// Field is an optional, non-nullable value.
type Field[T any] struct {
	Value T
	Set   bool
}

// Some returns a Field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Get returns the value and whether it was supplied.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Set
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), nullLiteral) {
		return ErrNull
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = v
	f.Set = true
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return nullLiteral, nil
	}
	return json.Marshal(f.Value)
}

func (f Field[T]) ValidationValue() any {
	if !f.Set {
		return nil
	}
	return f.Value
}

// Nullable is an optional value that may be explicitly cleared with JSON null.
type Nullable[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Value returns a Nullable holding v.
func Value[T any](v T) Nullable[T] {
	return Nullable[T]{Value: v, Set: true}
}

// Null returns a Nullable that clears the stored value.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true, Null: true}
}

// Ptr converts a set Nullable into the pointer form stored on entities.
// A null value yields nil.
func (n Nullable[T]) Ptr() *T {
	if !n.Set || n.Null {
		return nil
	}
	v := n.Value
	return &v
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), nullLiteral) {
		var zero T
		n.Value = zero
		n.Null = true
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = v
	n.Null = false
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Set || n.Null {
		return nullLiteral, nil
	}
	return json.Marshal(n.Value)
}

func (n Nullable[T]) ValidationValue() any {
	if !n.Set || n.Null {
		return nil
	}
	return n.Value
}
