package transform

import (
	"fmt"

	"github.com/driftlake/driftlake/pkg/schema"
	"github.com/driftlake/driftlake/pkg/types"
)

// truncate reduces source values to a coarser width: integers round down to
// a multiple of the width, strings and binary keep their leading w units.
type truncate struct {
	w int
}

// Truncate returns the transform truncating source values to width w.
func Truncate(w int) Transform { return truncate{w} }

func (t truncate) Apply(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case int32:
		return v - floorMod32(v, int32(t.w))
	case int64:
		return v - floorMod64(v, int64(t.w))
	case string:
		runes := []rune(v)
		if len(runes) <= t.w {
			return v
		}
		return string(runes[:t.w])
	case types.RawString:
		// still aliases the producer's buffer; Copy handles ownership
		if len(v) <= t.w {
			return v
		}
		return v[:t.w]
	case []byte:
		if len(v) <= t.w {
			return v
		}
		return v[:t.w]
	default:
		panic(fmt.Sprintf("%s: unsupported value type %T", t, v))
	}
}

func (t truncate) CanTransform(st schema.Type) bool {
	switch st {
	case schema.Int32, schema.Int64, schema.String, schema.Binary:
		return true
	default:
		return false
	}
}

func (t truncate) ResultType(st schema.Type) schema.Type { return st }

func (t truncate) ToHumanString(v any) string { return human(v) }

func (t truncate) String() string { return fmt.Sprintf("truncate[%d]", t.w) }

// floorMod32 returns the mathematical modulus, non-negative for positive
// widths, so negative values truncate toward negative infinity.
func floorMod32(v, w int32) int32 {
	r := v % w
	if r < 0 {
		r += w
	}
	return r
}

func floorMod64(v, w int64) int64 {
	r := v % w
	if r < 0 {
		r += w
	}
	return r
}
