package transform

import "github.com/driftlake/driftlake/pkg/schema"

type identity struct{}

// Identity returns the transform that passes source values through
// unchanged.
func Identity() Transform { return identity{} }

func (identity) Apply(v any) any { return v }

func (identity) CanTransform(t schema.Type) bool { return t.Primitive() }

func (identity) ResultType(t schema.Type) schema.Type { return t }

func (identity) ToHumanString(v any) string { return human(v) }

func (identity) String() string { return "identity" }
