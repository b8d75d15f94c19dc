package partition

import (
	"errors"
	"testing"

	derrors "github.com/driftlake/driftlake/internal/errors"
	"github.com/driftlake/driftlake/pkg/schema"
	"github.com/driftlake/driftlake/pkg/transform"
	"github.com/driftlake/driftlake/pkg/types"
)

func tableSchema() *schema.Schema {
	return schema.New(
		schema.Required(1, "id", schema.Int64),
		schema.Required(2, "ts", schema.Timestamp),
		schema.Required(3, "data", schema.StructOf(
			schema.Required(4, "user", schema.StructOf(
				schema.Optional(5, "country", schema.String),
			)),
		)),
		schema.Optional(6, "category", schema.String),
	)
}

func mustBuild(t *testing.T, build func(b *Builder) error) *Spec {
	t.Helper()
	b := BuilderFor(tableSchema())
	if err := build(b); err != nil {
		t.Fatalf("unexpected builder error: %v", err)
	}
	spec, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	return spec
}

func TestBuilder_DuplicateName(t *testing.T) {
	b := BuilderFor(tableSchema())
	if err := b.Identity("category"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := b.Identity("category")
	if err == nil {
		t.Fatal("expected duplicate name error")
	}
	if derrors.GetCode(err) != derrors.CodeDuplicateName {
		t.Errorf("got code %q, want %q", derrors.GetCode(err), derrors.CodeDuplicateName)
	}
}

func TestBuilder_EmptyName(t *testing.T) {
	b := BuilderFor(tableSchema())
	err := b.Add(1, "", "identity")
	if derrors.GetCode(err) != derrors.CodeEmptyName {
		t.Errorf("got %v, want EMPTY_NAME", err)
	}
}

func TestBuilder_UnknownColumn(t *testing.T) {
	b := BuilderFor(tableSchema())

	if err := b.Identity("missing"); derrors.GetCode(err) != derrors.CodeUnknownColumn {
		t.Errorf("by name: got %v, want UNKNOWN_COLUMN", err)
	}
	if err := b.Add(99, "p", "identity"); derrors.GetCode(err) != derrors.CodeUnknownColumn {
		t.Errorf("by id: got %v, want UNKNOWN_COLUMN", err)
	}
}

func TestBuilder_UnknownTransform(t *testing.T) {
	b := BuilderFor(tableSchema())
	err := b.Add(1, "p", "wavelet[3]")
	if derrors.GetCode(err) != derrors.CodeUnknownTransform {
		t.Errorf("got %v, want UNKNOWN_TRANSFORM", err)
	}
}

func TestBuild_ValidationReportsAllViolations(t *testing.T) {
	b := BuilderFor(tableSchema())
	// struct source and a transform that cannot take a string
	if err := b.Add(3, "by_data", "identity"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Hour("category"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := b.Build()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, derrors.NewValidationError(derrors.CodeNonPrimitiveSource, "")) {
		t.Errorf("missing non-primitive violation in %v", err)
	}
	if !errors.Is(err, derrors.NewValidationError(derrors.CodeIncompatibleTransform, "")) {
		t.Errorf("missing incompatible transform violation in %v", err)
	}
}

func TestBuild_FieldIDOverflow(t *testing.T) {
	s := schema.New(schema.Required(1000, "id", schema.Int64))
	b := BuilderFor(s)
	if err := b.Identity("id"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := b.Build()
	if !errors.Is(err, derrors.NewValidationError(derrors.CodeFieldIDOverflow, "")) {
		t.Errorf("got %v, want FIELD_ID_OVERFLOW", err)
	}
}

func TestSpec_PartitionType(t *testing.T) {
	spec := mustBuild(t, func(b *Builder) error {
		if err := b.Identity("id"); err != nil {
			return err
		}
		if err := b.Hour("ts"); err != nil {
			return err
		}
		return b.Truncate("category", 2)
	})

	pt := spec.PartitionType()
	if len(pt.Fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(pt.Fields))
	}

	want := []schema.Field{
		{ID: 1000, Name: "id", Type: schema.Int64, Optional: true},
		{ID: 1001, Name: "ts_hour", Type: schema.Int32, Optional: true},
		{ID: 1002, Name: "category_trunc", Type: schema.String, Optional: true},
	}
	for i, f := range pt.Fields {
		if f != want[i] {
			t.Errorf("field %d: got %+v, want %+v", i, f, want[i])
		}
	}
}

func TestSpec_PartitionToPathEscapes(t *testing.T) {
	spec := mustBuild(t, func(b *Builder) error {
		return b.Identity("category")
	})

	path := spec.PartitionToPath(types.Values{"a b/c&d"})
	if path != "category=a+b%2Fc%26d" {
		t.Errorf("got %q", path)
	}
}

func TestSpec_PartitionToPathNull(t *testing.T) {
	spec := mustBuild(t, func(b *Builder) error {
		return b.Identity("category")
	})

	if got := spec.PartitionToPath(types.Values{nil}); got != "category=null" {
		t.Errorf("got %q, want category=null", got)
	}
}

func TestSpec_CompatibleWith(t *testing.T) {
	base := mustBuild(t, func(b *Builder) error {
		if err := b.Bucket("id", 16); err != nil {
			return err
		}
		return b.Day("ts")
	})

	// same source ids and transforms under different names
	renamed := mustBuild(t, func(b *Builder) error {
		if err := b.Add(1, "id_b16", "bucket[16]"); err != nil {
			return err
		}
		return b.Add(2, "event_day", "day")
	})
	if !base.CompatibleWith(renamed) {
		t.Error("renamed fields should stay compatible")
	}
	if base.Equals(renamed) {
		t.Error("renamed fields should not be equal")
	}

	differentTransform := mustBuild(t, func(b *Builder) error {
		if err := b.Bucket("id", 32); err != nil {
			return err
		}
		return b.Day("ts")
	})
	if base.CompatibleWith(differentTransform) {
		t.Error("different bucket widths should be incompatible")
	}

	shorter := mustBuild(t, func(b *Builder) error {
		return b.Bucket("id", 16)
	})
	if base.CompatibleWith(shorter) {
		t.Error("different lengths should be incompatible")
	}
}

func TestSpec_EqualsIsOrderSensitive(t *testing.T) {
	ab := mustBuild(t, func(b *Builder) error {
		if err := b.Identity("id"); err != nil {
			return err
		}
		return b.Day("ts")
	})
	ba := mustBuild(t, func(b *Builder) error {
		if err := b.Day("ts"); err != nil {
			return err
		}
		return b.Identity("id")
	})

	if ab.Equals(ba) {
		t.Error("reordered fields should not be equal")
	}
	if ab.CompatibleWith(ba) {
		t.Error("reordered fields should not be compatible")
	}
	if !ab.Equals(ab) {
		t.Error("a spec should equal itself")
	}
}

func TestSpec_Lookups(t *testing.T) {
	spec := mustBuild(t, func(b *Builder) error {
		return b.Hour("ts")
	})

	f, ok := spec.FieldBySourceID(2)
	if !ok || f.Name != "ts_hour" {
		t.Errorf("by source id: got %+v, %v", f, ok)
	}
	f, ok = spec.FieldByName("ts_hour")
	if !ok || f.SourceID != 2 {
		t.Errorf("by name: got %+v, %v", f, ok)
	}
	if _, ok := spec.FieldBySourceID(1); ok {
		t.Error("source 1 is not partitioned")
	}
}

func TestSpec_String(t *testing.T) {
	spec := mustBuild(t, func(b *Builder) error {
		return b.Hour("ts")
	})
	want := "[\n  ts_hour: hour(2)\n]"
	if spec.String() != want {
		t.Errorf("got %q, want %q", spec.String(), want)
	}

	if Unpartitioned().String() != "[]" {
		t.Errorf("got %q, want []", Unpartitioned().String())
	}
}

func TestUnpartitioned(t *testing.T) {
	u := Unpartitioned()

	if u.NumFields() != 0 {
		t.Errorf("unpartitioned spec should have no fields")
	}
	if u != Unpartitioned() {
		t.Error("unpartitioned spec should be a singleton")
	}
	if got := u.PartitionToPath(types.Values{}); got != "" {
		t.Errorf("got %q, want empty path", got)
	}
	if len(u.PartitionType().Fields) != 0 {
		t.Error("unpartitioned type should have no fields")
	}
}

func TestSpec_NestedSourceColumn(t *testing.T) {
	spec := mustBuild(t, func(b *Builder) error {
		return b.Identity("data.user.country")
	})

	f := spec.Fields()[0]
	if f.SourceID != 5 || f.Name != "data.user.country" {
		t.Errorf("got %+v", f)
	}
	if f.Transform.String() != transform.Identity().String() {
		t.Errorf("got transform %s", f.Transform)
	}
}
