// Package types provides the positional row and value model consumed by the
// partitioning core.
package types

// Struct is a positional read view over an ordered tuple of values.
type Struct interface {
	// Get returns the value at pos within this struct. Null values are nil.
	Get(pos int) any
}

// Row is a struct view that can additionally materialize nested struct
// values. Positions are zero-based ordinals within the immediately enclosing
// struct.
type Row interface {
	Struct

	// GetStruct returns the nested struct stored at pos. size is the number
	// of fields in the nested struct's type, for row representations that
	// need it to materialize the view. Returns nil when the value is null.
	GetStruct(pos, size int) Row
}

// Values is a Row backed by a plain slice, with nested structs stored as
// nested Values. It is the reference row implementation for callers that do
// not bring their own row container.
type Values []any

// Get returns the value at pos.
func (v Values) Get(pos int) any { return v[pos] }

// GetStruct returns the nested Values at pos, or nil when the value is null.
func (v Values) GetStruct(pos, size int) Row {
	if v[pos] == nil {
		return nil
	}
	return v[pos].(Values)
}
