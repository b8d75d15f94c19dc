package types

import "testing"

func TestValues_Get(t *testing.T) {
	row := Values{int32(7), "us", nil}

	if got := row.Get(0); got != int32(7) {
		t.Errorf("got %v, want 7", got)
	}
	if got := row.Get(1); got != "us" {
		t.Errorf("got %v, want us", got)
	}
	if got := row.Get(2); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestValues_GetStruct(t *testing.T) {
	row := Values{Values{Values{"nested"}}, nil}

	inner := row.GetStruct(0, 1)
	if inner == nil {
		t.Fatal("expected nested struct, got nil")
	}
	leaf := inner.GetStruct(0, 1)
	if got := leaf.Get(0); got != "nested" {
		t.Errorf("got %v, want nested", got)
	}

	if row.GetStruct(1, 1) != nil {
		t.Error("null struct value should materialize as nil")
	}
}

func TestRawString_ToOwned(t *testing.T) {
	buf := []byte("hello")
	raw := RawString(buf)

	owned := raw.ToOwned().(RawString)
	buf[0] = 'j'

	if raw.String() != "jello" {
		t.Errorf("raw should observe buffer reuse, got %q", raw.String())
	}
	if owned.String() != "hello" {
		t.Errorf("owned copy must not observe buffer reuse, got %q", owned.String())
	}
}
