package ctypes

import (
	"testing"

	"github.com/ccirgen/ccirgen/internal/ir"
)

func TestPointerCanonicalIdentity(t *testing.T) {
	p := NewPool()

	p1 := p.PointerTo(p.Int)
	p2 := p.PointerTo(p.Int)
	if p1 != p2 {
		t.Fatalf("PointerTo(int) returned distinct values: %p != %p", p1, p2)
	}

	pp1 := p.PointerTo(p1)
	pp2 := p.PointerTo(p2)
	if pp1 != pp2 {
		t.Fatalf("PointerTo(pointer to int) not canonical: %p != %p", pp1, pp2)
	}

	p3 := p.PointerTo(p.UInt)
	if p1 == p3 {
		t.Fatalf("pointer to int and pointer to unsigned int must not alias")
	}
}

func TestIntegerEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b CType
		want bool
	}{
		{"same rank and sign", &IntegerCType{Rank: RankInt, Signed: true}, &IntegerCType{Rank: RankInt, Signed: true}, true},
		{"different sign", &IntegerCType{Rank: RankInt, Signed: true}, &IntegerCType{Rank: RankInt, Signed: false}, false},
		{"different rank", &IntegerCType{Rank: RankInt, Signed: true}, &IntegerCType{Rank: RankLong, Signed: true}, false},
		{"void vs int", &VoidCType{}, &IntegerCType{Rank: RankInt, Signed: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equals(tt.b); got != tt.want {
				t.Errorf("Equals = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArrayCompleteIsIdempotentInPlace(t *testing.T) {
	p := NewPool()
	arr := NewArrayCType(p.Char, 0, true)
	if !arr.Incomplete {
		t.Fatalf("expected incomplete array before Complete")
	}
	arr.Complete(12)
	if arr.Incomplete || arr.Size != 12 {
		t.Fatalf("Complete did not update Size/Incomplete: %+v", arr)
	}
	irArr, ok := arr.IR().(ir.ArrayType)
	if !ok {
		t.Fatalf("IR() returned %T, want ir.ArrayType", arr.IR())
	}
	if irArr.Len != 12 || irArr.Incomplete {
		t.Fatalf("backing IR array type was not mutated in place: %+v", irArr)
	}
}

func TestStructStringUsesTagOrAnonymous(t *testing.T) {
	named := &StructCType{Tag: "point"}
	if got, want := named.String(), "struct point"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	anon := &StructCType{}
	if got, want := anon.String(), "struct <anonymous>"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	union := &StructCType{Tag: "u", Union: true}
	if got, want := union.String(), "union u"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
