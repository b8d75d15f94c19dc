package schema

import (
	"fmt"
	"strings"
)

// Type describes a column type: one of the primitive types, or Struct for
// nested columns.
type Type interface {
	// String returns the canonical name of the type.
	String() string

	// Primitive reports whether the type is a leaf (non-nested) type.
	Primitive() bool
}

// Primitive enumerates the leaf column types.
type Primitive int

const (
	Bool Primitive = iota
	Int32
	Int64
	Float32
	Float64
	Date
	Timestamp
	String
	UUID
	Binary
)

var primitiveNames = [...]string{
	"boolean",
	"int",
	"long",
	"float",
	"double",
	"date",
	"timestamp",
	"string",
	"uuid",
	"binary",
}

// String returns the canonical name of the primitive type.
func (p Primitive) String() string {
	if p < 0 || int(p) >= len(primitiveNames) {
		return fmt.Sprintf("unknown(%d)", int(p))
	}
	return primitiveNames[p]
}

// Primitive reports true for all primitive types.
func (p Primitive) Primitive() bool { return true }

// Field is a named, identified entry of a struct type.
type Field struct {
	// ID identifies the field across schema versions
	ID int

	// Name is the field name within its enclosing struct
	Name string

	// Type is the field's column type
	Type Type

	// Optional indicates whether the field value can be null
	Optional bool
}

// Optional returns an optional field with the given id, name and type.
func Optional(id int, name string, t Type) Field {
	return Field{ID: id, Name: name, Type: t, Optional: true}
}

// Required returns a required field with the given id, name and type.
func Required(id int, name string, t Type) Field {
	return Field{ID: id, Name: name, Type: t}
}

// Struct is the only nested type: an ordered list of fields.
type Struct struct {
	Fields []Field
}

// StructOf builds a struct type from the given fields.
func StructOf(fields ...Field) Struct {
	return Struct{Fields: fields}
}

// String renders the struct type as "struct<name: type, ...>".
func (s Struct) String() string {
	var sb strings.Builder
	sb.WriteString("struct<")
	for i, f := range s.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d: %s: %s", f.ID, f.Name, f.Type)
	}
	sb.WriteString(">")
	return sb.String()
}

// Primitive reports false: structs are nested types.
func (s Struct) Primitive() bool { return false }
