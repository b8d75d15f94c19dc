package transform

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/spaolacci/murmur3"

	"github.com/driftlake/driftlake/pkg/schema"
	"github.com/driftlake/driftlake/pkg/types"
)

// bucket hashes source values into a fixed number of buckets with 32-bit
// Murmur3 over a canonical byte form, so equal values land in the same
// bucket regardless of their physical width.
type bucket struct {
	n int
}

// Bucket returns the transform hashing source values into n buckets.
func Bucket(n int) Transform { return bucket{n} }

func (b bucket) Apply(v any) any {
	if v == nil {
		return nil
	}
	return int32((int(b.hash(v)) & math.MaxInt32) % b.n)
}

func (b bucket) hash(v any) uint32 {
	switch v := v.(type) {
	case int32:
		return hashLong(int64(v))
	case int64:
		return hashLong(v)
	case int:
		return hashLong(int64(v))
	case time.Time:
		return hashLong(v.UnixMicro())
	case string:
		return murmur3.Sum32([]byte(v))
	case types.RawString:
		return murmur3.Sum32([]byte(v))
	case uuid.UUID:
		return murmur3.Sum32(v[:])
	case []byte:
		return murmur3.Sum32(v)
	default:
		panic(fmt.Sprintf("%s: unsupported value type %T", b, v))
	}
}

func (b bucket) CanTransform(t schema.Type) bool {
	switch t {
	case schema.Int32, schema.Int64, schema.Date, schema.Timestamp,
		schema.String, schema.UUID, schema.Binary:
		return true
	default:
		return false
	}
}

func (b bucket) ResultType(t schema.Type) schema.Type { return schema.Int32 }

func (b bucket) ToHumanString(v any) string { return human(v) }

func (b bucket) String() string { return fmt.Sprintf("bucket[%d]", b.n) }

// hashLong hashes integer-like values through their 8-byte little-endian
// form, so int and long columns with the same value bucket identically.
func hashLong(v int64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return murmur3.Sum32(buf[:])
}
