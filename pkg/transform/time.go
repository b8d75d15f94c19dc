package transform

import (
	"fmt"
	"time"

	"github.com/driftlake/driftlake/pkg/schema"
)

type timeUnit int

const (
	unitYear timeUnit = iota
	unitMonth
	unitDay
	unitHour
)

var unitNames = [...]string{"year", "month", "day", "hour"}

// timeTransform truncates date or timestamp values to a calendar unit. The
// transformed value is the int32 ordinal of that unit since 1970-01-01.
type timeTransform struct {
	unit timeUnit
}

// Year returns the transform producing year ordinals since 1970.
func Year() Transform { return timeTransform{unitYear} }

// Month returns the transform producing month ordinals since 1970-01.
func Month() Transform { return timeTransform{unitMonth} }

// Day returns the transform producing day ordinals since 1970-01-01.
func Day() Transform { return timeTransform{unitDay} }

// Hour returns the transform producing hour ordinals since 1970-01-01T00.
func Hour() Transform { return timeTransform{unitHour} }

func (t timeTransform) Apply(v any) any {
	if v == nil {
		return nil
	}

	ts, ok := v.(time.Time)
	if !ok {
		panic(fmt.Sprintf("%s: unsupported value type %T", t, v))
	}

	utc := ts.UTC()
	switch t.unit {
	case unitYear:
		return int32(utc.Year() - 1970)
	case unitMonth:
		return int32((utc.Year()-1970)*12 + int(utc.Month()) - 1)
	case unitDay:
		return int32(floorDiv(utc.Unix(), 86400))
	default:
		return int32(floorDiv(utc.Unix(), 3600))
	}
}

func (t timeTransform) CanTransform(st schema.Type) bool {
	switch st {
	case schema.Timestamp:
		return true
	case schema.Date:
		// an hour of a date is meaningless
		return t.unit != unitHour
	default:
		return false
	}
}

func (t timeTransform) ResultType(st schema.Type) schema.Type { return schema.Int32 }

func (t timeTransform) ToHumanString(v any) string {
	if v == nil {
		return "null"
	}

	ord, ok := v.(int32)
	if !ok {
		panic(fmt.Sprintf("%s: unsupported value type %T", t, v))
	}

	switch t.unit {
	case unitYear:
		return fmt.Sprintf("%d", 1970+int(ord))
	case unitMonth:
		// time.Date normalizes month overflow, including negative ordinals
		return time.Date(1970, time.Month(1+int(ord)), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
	case unitDay:
		return time.Unix(int64(ord)*86400, 0).UTC().Format("2006-01-02")
	default:
		return time.Unix(int64(ord)*3600, 0).UTC().Format("2006-01-02-15")
	}
}

func (t timeTransform) String() string { return unitNames[t.unit] }

// floorDiv divides rounding toward negative infinity, so pre-1970 instants
// land in the preceding unit rather than the following one.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
