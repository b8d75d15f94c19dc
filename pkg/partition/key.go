package partition

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/driftlake/driftlake/internal/accessor"
	derrors "github.com/driftlake/driftlake/internal/errors"
	"github.com/driftlake/driftlake/pkg/transform"
	"github.com/driftlake/driftlake/pkg/types"
)

// Key is the per-row partition evaluation engine: one accessor and one
// transform per spec field, plus the current transformed-value tuple.
//
// The tuple is mutable scratch state owned exclusively by the Key. Partition
// overwrites it in place, so any caller retaining a key beyond the current
// row must take a Copy first; for buffer-backed string values the underlying
// bytes may also be recycled by the row source independent of the overwrite.
// A Key must not be evaluated concurrently: use one Key (or a Copy) per
// goroutine. The spec, accessors and transforms are shared and read-only.
type Key struct {
	spec       *Spec
	accessors  []accessor.Accessor
	transforms []transform.Transform
	tuple      []any
}

// NewKey compiles the accessor set for the spec's schema and returns a key
// ready to evaluate rows. Compilation happens once here; every source column
// of the spec must resolve to a compiled accessor.
func NewKey(spec *Spec) (*Key, error) {
	n := len(spec.fields)
	k := &Key{
		spec:       spec,
		accessors:  make([]accessor.Accessor, n),
		transforms: make([]transform.Transform, n),
		tuple:      make([]any, n),
	}

	compiled := accessor.Compile(spec.schema)
	for i, f := range spec.fields {
		acc, ok := compiled[f.SourceID]
		if !ok {
			return nil, derrors.NewAccessorError(derrors.CodeNoAccessor,
				fmt.Sprintf("cannot build accessor for partition field %s", f))
		}
		k.accessors[i] = acc
		k.transforms[i] = f.Transform
	}
	return k, nil
}

// Spec returns the partition spec this key evaluates.
func (k *Key) Spec() *Spec { return k.spec }

// Partition evaluates row into the key's tuple, running each accessor and
// then each transform. The previous row's values are overwritten in place;
// references into the tuple held across calls observe the new row.
func (k *Key) Partition(row types.Row) {
	for i := range k.tuple {
		k.tuple[i] = k.transforms[i].Apply(k.accessors[i].Get(row))
	}
}

// Copy returns an independent key sharing the same spec, accessors and
// transforms but with a private tuple. Entries declaring the
// types.OwnedValue capability are deep-copied; everything else is immutable
// and copied by reference.
func (k *Key) Copy() *Key {
	dup := &Key{
		spec:       k.spec,
		accessors:  k.accessors,
		transforms: k.transforms,
		tuple:      make([]any, len(k.tuple)),
	}
	for i, v := range k.tuple {
		if owned, ok := v.(types.OwnedValue); ok {
			dup.tuple[i] = owned.ToOwned()
		} else {
			dup.tuple[i] = v
		}
	}
	return dup
}

// Get returns the tuple value at pos. Buffer-backed string values are
// exposed as plain strings, since consumers treat partition values as
// generic text.
func (k *Key) Get(pos int) any {
	return normalize(k.tuple[pos])
}

// Set overwrites the tuple value at pos, for consumers that fill keys from
// their own row representation.
func (k *Key) Set(pos int, v any) {
	k.tuple[pos] = v
}

// ToPath renders the current tuple as a partition path.
func (k *Key) ToPath() string {
	return k.spec.PartitionToPath(k)
}

// Equal reports structural equality of the evaluated tuples. Two keys with
// equal transformed values are equal even when built from different specs;
// partition directories deduplicate on values, not spec identity.
func (k *Key) Equal(other *Key) bool {
	if len(k.tuple) != len(other.tuple) {
		return false
	}
	for i, v := range k.tuple {
		if !reflect.DeepEqual(normalize(v), normalize(other.tuple[i])) {
			return false
		}
	}
	return true
}

// Hash returns a 64-bit hash of the tuple contents, consistent with Equal.
func (k *Key) Hash() uint64 {
	d := xxhash.New()
	for i, v := range k.tuple {
		fmt.Fprintf(d, "%d:%T:%v;", i, normalize(v), normalize(v))
	}
	return d.Sum64()
}

// String renders the tuple as "[v0, v1, ...]".
func (k *Key) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, v := range k.tuple {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v", v)
	}
	sb.WriteString("]")
	return sb.String()
}

// normalize maps buffer-backed strings to plain strings so that equality,
// hashing and Get do not distinguish a value from its owned copy.
func normalize(v any) any {
	if s, ok := v.(types.RawString); ok {
		return s.String()
	}
	return v
}
