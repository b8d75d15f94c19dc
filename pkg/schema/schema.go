// Package schema models the column schema tree consumed by the partitioning
// core: named, identified fields that are either primitive or nested structs.
package schema

import (
	"fmt"
	"strings"
)

// Schema is an immutable tree of fields rooted at an anonymous struct.
// Lookup indexes over the whole tree are built once at construction, so a
// Schema is safe to share across concurrent readers.
type Schema struct {
	root       Struct
	byID       map[int]Field
	byName     map[string]Field
	maxFieldID int
}

// New builds a schema from the given top-level fields. Nested fields are
// addressable by dotted path names, e.g. "data.user.country".
func New(fields ...Field) *Schema {
	s := &Schema{
		root:   StructOf(fields...),
		byID:   make(map[int]Field),
		byName: make(map[string]Field),
	}
	s.index(s.root, "")
	return s
}

func (s *Schema) index(st Struct, prefix string) {
	for _, f := range st.Fields {
		name := f.Name
		if prefix != "" {
			name = prefix + "." + f.Name
		}
		s.byID[f.ID] = f
		s.byName[name] = f
		if f.ID > s.maxFieldID {
			s.maxFieldID = f.ID
		}
		if nested, ok := f.Type.(Struct); ok {
			s.index(nested, name)
		}
	}
}

// Fields returns the top-level fields of the schema.
func (s *Schema) Fields() []Field { return s.root.Fields }

// AsStruct returns the root struct type of the schema.
func (s *Schema) AsStruct() Struct { return s.root }

// FindField returns the field with the given id anywhere in the tree.
func (s *Schema) FindField(id int) (Field, bool) {
	f, ok := s.byID[id]
	return f, ok
}

// FindFieldByName returns the field with the given dotted path name.
func (s *Schema) FindFieldByName(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// FindType returns the type of the field with the given id.
func (s *Schema) FindType(id int) (Type, bool) {
	f, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return f.Type, true
}

// MaxFieldID returns the largest field id anywhere in the tree, or zero for
// an empty schema.
func (s *Schema) MaxFieldID() int { return s.maxFieldID }

// String renders the schema as one "id: name: type" line per top-level field.
func (s *Schema) String() string {
	var sb strings.Builder
	sb.WriteString("table {")
	for _, f := range s.root.Fields {
		fmt.Fprintf(&sb, "\n  %d: %s: %s", f.ID, f.Name, f.Type)
	}
	if len(s.root.Fields) > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}
