// Package partition implements partition specs and per-row partition keys:
// which source columns are transformed and how, how the transformed tuple is
// derived from a row, and how it renders as a partition path.
package partition

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	derrors "github.com/driftlake/driftlake/internal/errors"
	"github.com/driftlake/driftlake/pkg/schema"
	"github.com/driftlake/driftlake/pkg/transform"
	"github.com/driftlake/driftlake/pkg/types"
)

// FieldIDStart is the first field id assigned to partition struct fields,
// keeping them disjoint from source schema field ids.
const FieldIDStart = 1000

// Field declares that one source column, after applying a transform,
// contributes one component of a row's partition value.
type Field struct {
	// SourceID is the source column id in the table schema
	SourceID int

	// Name is the partition field name, used in paths and the partition
	// struct type
	Name string

	// Transform produces the partition value from the source value
	Transform transform.Transform
}

// String renders the field as "name: transform(sourceId)".
func (f Field) String() string {
	return fmt.Sprintf("%s: %s(%d)", f.Name, f.Transform, f.SourceID)
}

// Spec is the immutable, ordered collection of partition fields for one
// table schema. Field order is fixed at build time: it defines the partition
// struct layout and the path segment order. Specs are safe to share across
// concurrent readers.
type Spec struct {
	schema *schema.Schema
	fields []Field

	// derived lookups, computed once on first use
	lazy          sync.Once
	bySourceID    map[int]Field
	byName        map[string]Field
	partitionType schema.Struct
}

var unpartitionedSpec = &Spec{schema: schema.New()}

// Unpartitioned returns the spec for tables with no partitioning: an empty
// spec over an empty schema. It is a process-wide singleton.
func Unpartitioned() *Spec { return unpartitionedSpec }

// Schema returns the source schema this spec was built for.
func (s *Spec) Schema() *schema.Schema { return s.schema }

// Fields returns the partition fields in declaration order.
func (s *Spec) Fields() []Field { return slices.Clone(s.fields) }

// NumFields returns the number of partition fields.
func (s *Spec) NumFields() int { return len(s.fields) }

// FieldBySourceID returns the partition field deriving from the given source
// column id.
func (s *Spec) FieldBySourceID(sourceID int) (Field, bool) {
	s.init()
	f, ok := s.bySourceID[sourceID]
	return f, ok
}

// FieldByName returns the partition field with the given name.
func (s *Spec) FieldByName(name string) (Field, bool) {
	s.init()
	f, ok := s.byName[name]
	return f, ok
}

func (s *Spec) init() {
	s.lazy.Do(func() {
		s.bySourceID = make(map[int]Field, len(s.fields))
		s.byName = make(map[string]Field, len(s.fields))
		structFields := make([]schema.Field, len(s.fields))
		for i, f := range s.fields {
			s.bySourceID[f.SourceID] = f
			s.byName[f.Name] = f

			sourceType, _ := s.schema.FindType(f.SourceID)
			// always optional: a null source column or a partition field
			// added after the fact both produce null partition values
			structFields[i] = schema.Optional(FieldIDStart+i, f.Name, f.Transform.ResultType(sourceType))
		}
		s.partitionType = schema.StructOf(structFields...)
	})
}

// PartitionType returns the struct type of partition values produced under
// this spec. Field ids are assigned from FieldIDStart in field order.
func (s *Spec) PartitionType() schema.Struct {
	s.init()
	return s.partitionType
}

// PartitionToPath renders a tuple of already-transformed partition values as
// "name0=value0/name1=value1/...". Values are the transforms' human strings,
// escaped with URL form encoding. An empty spec renders the empty string.
func (s *Spec) PartitionToPath(data types.Struct) string {
	var sb strings.Builder
	for i, f := range s.fields {
		if i > 0 {
			sb.WriteString("/")
		}
		sb.WriteString(f.Name)
		sb.WriteString("=")
		sb.WriteString(url.QueryEscape(f.Transform.ToHumanString(data.Get(i))))
	}
	return sb.String()
}

// CompatibleWith reports whether other produces the same partitioning as
// this spec: same length, pairwise equal source ids and canonical transform
// forms. Field names may differ across schema evolution.
func (s *Spec) CompatibleWith(other *Spec) bool {
	if s.Equals(other) {
		return true
	}

	if len(s.fields) != len(other.fields) {
		return false
	}

	for i, f := range s.fields {
		o := other.fields[i]
		if f.SourceID != o.SourceID || f.Transform.String() != o.Transform.String() {
			return false
		}
	}
	return true
}

// Equals reports structural equality over the ordered field list: name,
// source id and transform at every position. Specs with the same fields in
// different order are unequal.
func (s *Spec) Equals(other *Spec) bool {
	if s == other {
		return true
	}

	if len(s.fields) != len(other.fields) {
		return false
	}

	for i, f := range s.fields {
		o := other.fields[i]
		if f.SourceID != o.SourceID || f.Name != o.Name || f.Transform.String() != o.Transform.String() {
			return false
		}
	}
	return true
}

// String renders the spec as one "name: transform(sourceId)" line per field.
func (s *Spec) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for _, f := range s.fields {
		sb.WriteString("\n  ")
		sb.WriteString(f.String())
	}
	if len(s.fields) > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString("]")
	return sb.String()
}

// Builder accumulates partition fields for a schema. Name and source column
// constraints are checked immediately by each add method; whole-spec
// validation runs in Build.
type Builder struct {
	schema *schema.Schema
	fields []Field
	names  map[string]struct{}
}

// BuilderFor returns a partition spec builder for the given schema.
func BuilderFor(s *schema.Schema) *Builder {
	return &Builder{schema: s, names: make(map[string]struct{})}
}

func (b *Builder) checkAndAddName(name string) error {
	if name == "" {
		return derrors.NewSpecError(derrors.CodeEmptyName,
			"cannot use empty partition field name")
	}
	if _, used := b.names[name]; used {
		return derrors.NewSpecError(derrors.CodeDuplicateName,
			fmt.Sprintf("cannot use partition field name more than once: %s", name))
	}
	b.names[name] = struct{}{}
	return nil
}

func (b *Builder) findSourceColumn(sourceName string) (schema.Field, error) {
	col, ok := b.schema.FindFieldByName(sourceName)
	if !ok {
		return schema.Field{}, derrors.NewSpecError(derrors.CodeUnknownColumn,
			fmt.Sprintf("cannot find source column: %s", sourceName))
	}
	return col, nil
}

func (b *Builder) add(sourceName, name string, t transform.Transform) error {
	if err := b.checkAndAddName(name); err != nil {
		return err
	}
	col, err := b.findSourceColumn(sourceName)
	if err != nil {
		return err
	}
	b.fields = append(b.fields, Field{SourceID: col.ID, Name: name, Transform: t})
	return nil
}

// Identity adds an identity partition on the named source column.
func (b *Builder) Identity(sourceName string) error {
	return b.add(sourceName, sourceName, transform.Identity())
}

// Year adds a year partition named "<column>_year".
func (b *Builder) Year(sourceName string) error {
	return b.add(sourceName, sourceName+"_year", transform.Year())
}

// Month adds a month partition named "<column>_month".
func (b *Builder) Month(sourceName string) error {
	return b.add(sourceName, sourceName+"_month", transform.Month())
}

// Day adds a day partition named "<column>_day".
func (b *Builder) Day(sourceName string) error {
	return b.add(sourceName, sourceName+"_day", transform.Day())
}

// Hour adds an hour partition named "<column>_hour".
func (b *Builder) Hour(sourceName string) error {
	return b.add(sourceName, sourceName+"_hour", transform.Hour())
}

// Bucket adds a hash bucket partition named "<column>_bucket".
func (b *Builder) Bucket(sourceName string, numBuckets int) error {
	return b.add(sourceName, sourceName+"_bucket", transform.Bucket(numBuckets))
}

// Truncate adds a truncation partition named "<column>_trunc".
func (b *Builder) Truncate(sourceName string, width int) error {
	return b.add(sourceName, sourceName+"_trunc", transform.Truncate(width))
}

// Add adds a partition field by source column id and canonical transform
// string, e.g. Add(2, "ts_day", "day") or Add(1, "id_bucket", "bucket[16]").
func (b *Builder) Add(sourceID int, name, transformStr string) error {
	if err := b.checkAndAddName(name); err != nil {
		return err
	}
	if _, ok := b.schema.FindField(sourceID); !ok {
		return derrors.NewSpecError(derrors.CodeUnknownColumn,
			fmt.Sprintf("cannot find source column: %d", sourceID))
	}
	t, err := transform.Parse(transformStr)
	if err != nil {
		return err
	}
	b.fields = append(b.fields, Field{SourceID: sourceID, Name: name, Transform: t})
	return nil
}

// Build finalizes the field order (insertion order) and validates the spec
// against the schema. The returned spec is immutable.
func (b *Builder) Build() (*Spec, error) {
	spec := &Spec{schema: b.schema, fields: slices.Clone(b.fields)}
	if err := checkCompatibility(spec, b.schema); err != nil {
		return nil, err
	}
	return spec, nil
}

// checkCompatibility validates every partition field against the schema:
// sources must resolve to primitive types accepted by their transforms, and
// source field ids must stay clear of the partition field id range. All
// violations are reported together.
func checkCompatibility(spec *Spec, s *schema.Schema) error {
	var result *multierror.Error

	for _, f := range spec.fields {
		sourceType, ok := s.FindType(f.SourceID)
		if !ok {
			result = multierror.Append(result, derrors.NewValidationError(derrors.CodeUnknownColumn,
				fmt.Sprintf("cannot find source column for partition field %s", f)))
			continue
		}
		if !sourceType.Primitive() {
			result = multierror.Append(result, derrors.NewValidationError(derrors.CodeNonPrimitiveSource,
				fmt.Sprintf("cannot partition by non-primitive source field: %s", sourceType)))
			continue
		}
		if !f.Transform.CanTransform(sourceType) {
			result = multierror.Append(result, derrors.NewValidationError(derrors.CodeIncompatibleTransform,
				fmt.Sprintf("invalid source type %s for transform: %s", sourceType, f.Transform)))
		}
	}

	if len(spec.fields) > 0 && s.MaxFieldID() >= FieldIDStart {
		result = multierror.Append(result, derrors.NewValidationError(derrors.CodeFieldIDOverflow,
			fmt.Sprintf("schema field ids reach %d; partition field ids start at %d and could collide",
				s.MaxFieldID(), FieldIDStart)))
	}

	return result.ErrorOrNil()
}
