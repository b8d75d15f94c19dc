// Package accessor compiles positional accessors for the primitive fields of
// a schema tree. One compiled set is built per schema and reused by every
// row evaluation against it.
package accessor

import (
	"github.com/driftlake/driftlake/pkg/schema"
	"github.com/driftlake/driftlake/pkg/types"
)

// Accessor extracts one primitive field's raw value from a root row.
// Accessors are immutable and hold no per-call state, so a compiled set is
// safe to share across concurrent evaluations of different rows.
type Accessor interface {
	Get(row types.Row) any
}

// positionAccessor reads a field directly from the given row.
type positionAccessor struct {
	p int
}

func (a *positionAccessor) Get(row types.Row) any {
	return row.Get(a.p)
}

// position2Accessor reads a field one required struct level down, without a
// null check on the intermediate struct.
type position2Accessor struct {
	p0, size0 int
	p1        int
}

func (a *position2Accessor) Get(row types.Row) any {
	return row.GetStruct(a.p0, a.size0).Get(a.p1)
}

// position3Accessor reads a field two required struct levels down.
type position3Accessor struct {
	p0, size0 int
	p1, size1 int
	p2        int
}

func (a *position3Accessor) Get(row types.Row) any {
	return row.GetStruct(a.p0, a.size0).GetStruct(a.p1, a.size1).Get(a.p2)
}

// wrappedPositionAccessor covers optional intermediate structs and nesting
// beyond three levels: it materializes the struct at p, short-circuits to
// nil when the struct is null, and recurses into the inner accessor
// otherwise.
type wrappedPositionAccessor struct {
	p, size int
	inner   Accessor
}

func (a *wrappedPositionAccessor) Get(row types.Row) any {
	inner := row.GetStruct(a.p, a.size)
	if inner == nil {
		return nil
	}
	return a.inner.Get(inner)
}

// forPosition returns the direct accessor for a leaf at pos within its
// immediately containing struct.
func forPosition(pos int) Accessor {
	return &positionAccessor{p: pos}
}

// forLevel composes one more level of nesting at pos over inner. Optional
// levels always take the wrapped variant; required levels flatten into the
// two- and three-position variants while the inner accessor allows it, and
// fall back to wrapping beyond that.
func forLevel(pos int, optional bool, st schema.Struct, inner Accessor) Accessor {
	size := len(st.Fields)
	if optional {
		// the wrapped position handles null layers
		return &wrappedPositionAccessor{p: pos, size: size, inner: inner}
	}

	switch in := inner.(type) {
	case *positionAccessor:
		return &position2Accessor{p0: pos, size0: size, p1: in.p}
	case *position2Accessor:
		return &position3Accessor{p0: pos, size0: size, p1: in.p0, size1: in.size0, p2: in.p1}
	default:
		return &wrappedPositionAccessor{p: pos, size: size, inner: inner}
	}
}

// Compile walks the schema bottom-up and returns an accessor for every
// primitive field id reachable from the root, keyed by field id.
func Compile(s *schema.Schema) map[int]Accessor {
	compiled := compileStruct(s.AsStruct())
	if compiled == nil {
		return map[int]Accessor{}
	}
	return compiled
}

// compileStruct returns the accessor mapping for one struct level, re-rooting
// every child accessor at this level, or nil when the subtree holds no
// primitive fields.
func compileStruct(st schema.Struct) map[int]Accessor {
	accessors := make(map[int]Accessor)
	for i, f := range st.Fields {
		if nested, ok := f.Type.(schema.Struct); ok {
			child := compileStruct(nested)
			if child == nil {
				continue
			}
			for id, inner := range child {
				accessors[id] = forLevel(i, f.Optional, nested, inner)
			}
		} else {
			accessors[f.ID] = forPosition(i)
		}
	}

	if len(accessors) == 0 {
		return nil
	}
	return accessors
}
