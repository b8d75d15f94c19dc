// Package transform provides the partition transforms applied to source
// column values: identity, time-unit truncations, hash bucketing and value
// truncation. Transforms are stateless, deterministic and side-effect free.
package transform

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	derrors "github.com/driftlake/driftlake/internal/errors"
	"github.com/driftlake/driftlake/pkg/schema"
	"github.com/driftlake/driftlake/pkg/types"
)

// Transform maps a source column value to a partition value.
//
// Apply must map nil to nil: a null source column produces a null partition
// value under every transform.
type Transform interface {
	// Apply transforms a raw source value into a partition value.
	Apply(v any) any

	// CanTransform reports whether the transform accepts source values of
	// the given type.
	CanTransform(t schema.Type) bool

	// ResultType returns the partition value type for the given source type.
	ResultType(t schema.Type) schema.Type

	// ToHumanString renders an already-transformed value for use in
	// partition paths. Nil renders as "null".
	ToHumanString(v any) string

	// String returns the canonical textual form of the transform, stable
	// across versions and resolvable with Parse.
	String() string
}

var transformPattern = regexp.MustCompile(`^([a-z]+)(?:\[(\d+)\])?$`)

// Parse resolves a transform from its canonical string form, e.g.
// "identity", "hour", "bucket[16]" or "truncate[4]".
func Parse(s string) (Transform, error) {
	match := transformPattern.FindStringSubmatch(s)
	if match == nil {
		return nil, derrors.NewSpecError(derrors.CodeUnknownTransform,
			fmt.Sprintf("cannot parse transform %q", s))
	}

	name, arg := match[1], match[2]
	switch name {
	case "identity":
		if arg == "" {
			return Identity(), nil
		}
	case "year":
		if arg == "" {
			return Year(), nil
		}
	case "month":
		if arg == "" {
			return Month(), nil
		}
	case "day":
		if arg == "" {
			return Day(), nil
		}
	case "hour":
		if arg == "" {
			return Hour(), nil
		}
	case "bucket":
		if n, err := strconv.Atoi(arg); err == nil && n > 0 {
			return Bucket(n), nil
		}
	case "truncate":
		if w, err := strconv.Atoi(arg); err == nil && w > 0 {
			return Truncate(w), nil
		}
	}

	return nil, derrors.NewSpecError(derrors.CodeUnknownTransform,
		fmt.Sprintf("unknown transform %q", s))
}

// human renders a value the way the identity transform would: the canonical
// textual form of the value itself.
func human(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case types.RawString:
		return v.String()
	case []byte:
		return base64.StdEncoding.EncodeToString(v)
	case uuid.UUID:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
