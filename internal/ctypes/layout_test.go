package ctypes

import "testing"

func TestLayoutFieldsStructPadding(t *testing.T) {
	p := NewPool()
	// struct { char a; int b; char c; } on a 4-byte-aligned int:
	// a@0, pad to 4, b@4..8, c@8, tail pad to 12 (align 4).
	fields := []Field{
		{Name: "a", Type: p.Char},
		{Name: "b", Type: p.Int},
		{Name: "c", Type: p.Char},
	}
	laidOut, size, align := LayoutFields(fields, false, false)
	want := []int{0, 4, 8}
	for i, f := range laidOut {
		if f.Offset != want[i] {
			t.Errorf("field %s offset = %d, want %d", f.Name, f.Offset, want[i])
		}
	}
	if size != 12 {
		t.Errorf("size = %d, want 12", size)
	}
	if align != 4 {
		t.Errorf("align = %d, want 4", align)
	}
}

func TestLayoutFieldsPacked(t *testing.T) {
	p := NewPool()
	fields := []Field{
		{Name: "a", Type: p.Char},
		{Name: "b", Type: p.Int},
	}
	laidOut, size, align := LayoutFields(fields, false, true)
	if laidOut[0].Offset != 0 || laidOut[1].Offset != 1 {
		t.Errorf("packed offsets = %d, %d, want 0, 1", laidOut[0].Offset, laidOut[1].Offset)
	}
	if size != 5 {
		t.Errorf("packed size = %d, want 5", size)
	}
	if align != 1 {
		t.Errorf("packed align = %d, want 1", align)
	}
}

func TestLayoutFieldsUnion(t *testing.T) {
	p := NewPool()
	fields := []Field{
		{Name: "i", Type: p.Int},
		{Name: "c", Type: p.Char},
	}
	laidOut, size, align := LayoutFields(fields, true, false)
	for _, f := range laidOut {
		if f.Offset != 0 {
			t.Errorf("union field %s offset = %d, want 0", f.Name, f.Offset)
		}
	}
	if size != 4 || align != 4 {
		t.Errorf("union size/align = %d/%d, want 4/4", size, align)
	}
}

func TestEnsureTagThenCompleteTagUpdatesAllHandles(t *testing.T) {
	env := NewEnv()
	forward := env.EnsureTag("point", false)
	if !forward.Incomplete {
		t.Fatalf("expected incomplete forward declaration")
	}
	ptrToForward := env.Pool.PointerTo(forward)

	env.CompleteTag(forward, []Field{
		{Name: "x", Type: env.Pool.Int},
		{Name: "y", Type: env.Pool.Int},
	}, false)

	if forward.Incomplete {
		t.Fatalf("expected struct to be complete after CompleteTag")
	}
	if ptrToForward.Pointee.(*StructCType).Incomplete {
		t.Fatalf("pointer taken before completion must observe completion in place")
	}
	again := env.LookupTag("point")
	if again != forward {
		t.Fatalf("LookupTag must return the same canonical struct")
	}
}
