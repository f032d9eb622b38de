package model

import "encoding/json"

// Optional marks whether a field was supplied at all, independent of its value.
// A JSON body of {"bio": ""} yields Set=true with an empty Value, while a body
// without "bio" (or with "bio": null) leaves Set=false.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a supplied Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return err
	}
	o.Set = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Apply writes the value into dst when the field was supplied.
func (o Optional[T]) Apply(dst *T) {
	if o.Set {
		*dst = o.Value
	}
}
