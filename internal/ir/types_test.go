package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Type trees built directly (pointer/array/struct, no cyclic blocks
// involved) are safe to diff wholesale with go-cmp, unlike the block
// graphs a loop produces (see internal/lower's driver/stmt tests).
func TestArrayOfPointerToStructTreeShape(t *testing.T) {
	field := FieldType{Name: "x", Type: IntType{Bits: 32, Signed: true}, Offset: 0}
	st := &StructType{Name: "Point", Fields: []FieldType{field}, Size: 4, Align: 4}

	got := ArrayType{Elem: PointerType{Elem: st}, Len: 3}
	want := ArrayType{
		Elem: PointerType{Elem: &StructType{
			Name:   "Point",
			Fields: []FieldType{{Name: "x", Type: IntType{Bits: 32, Signed: true}, Offset: 0}},
			Size:   4,
			Align:  4,
		}},
		Len: 3,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("array-of-pointer-to-struct type tree mismatch (-want +got):\n%s", diff)
	}
}

func TestFunctionReturnTypeTreeMismatchIsDetected(t *testing.T) {
	want := PointerType{Elem: IntType{Bits: 32, Signed: true}}
	got := PointerType{Elem: IntType{Bits: 64, Signed: true}}

	diff := cmp.Diff(want, got)
	if diff == "" {
		t.Fatal("expected cmp.Diff to report a mismatch between i32* and i64*")
	}
}
