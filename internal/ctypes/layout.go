package ctypes

// alignOf and sizeOf mirror ir.AlignOfIrType/ir.SizeOfIrType but are kept
// local to ctypes so the layout algorithm can run before a StructCType has
// been asked to produce its backing ir.StructType (the IR type's own
// size/align are in fact computed from the CType layout, not the other
// way around — see NewStruct below).
func alignOf(t CType) int {
	switch tt := t.(type) {
	case *VoidCType:
		return 1
	case *IntegerCType:
		bytes := tt.Rank.bits() / 8
		return bytes
	case *PointerCType:
		return 8
	case *ArrayCType:
		return alignOf(tt.Elem)
	case *StructCType:
		return tt.Align
	default:
		return 8
	}
}

func sizeOf(t CType) int {
	switch tt := t.(type) {
	case *VoidCType:
		return 0
	case *IntegerCType:
		return tt.Rank.bits() / 8
	case *PointerCType:
		return 8
	case *ArrayCType:
		return sizeOf(tt.Elem) * tt.Size
	case *StructCType:
		return tt.Size
	default:
		return 0
	}
}

// SizeOf returns the byte size of t, as size_of_ir_type would over t.IR()
// (§8's `sizeof(T) == size_of_ir_type(c_type_to_ir(T))` property).
func SizeOf(t CType) int { return sizeOf(t) }

// AlignOf returns the byte alignment of t.
func AlignOf(t CType) int { return alignOf(t) }

func roundUp(offset, align int) int {
	if align <= 1 {
		return offset
	}
	rem := offset % align
	if rem == 0 {
		return offset
	}
	return offset + (align - rem)
}

// LayoutFields computes each field's byte offset and the aggregate's
// overall size/align, following the ordinary C struct/union rules
// (§4.1): struct members are laid out in declaration order, each aligned
// to its own natural alignment (or 1 byte if packed), with trailing
// padding so the whole type's size is a multiple of its alignment; union
// members all start at offset 0 and the union's size is its largest
// member's size rounded up to the largest member's alignment.
func LayoutFields(fields []Field, union, packed bool) (laidOut []Field, size, align int) {
	laidOut = make([]Field, len(fields))
	align = 1

	if union {
		for i, f := range fields {
			fa := alignOf(f.Type)
			if packed {
				fa = 1
			}
			if fa > align {
				align = fa
			}
			fs := sizeOf(f.Type)
			if fs > size {
				size = fs
			}
			laidOut[i] = Field{Name: f.Name, Type: f.Type, Offset: 0}
		}
		size = roundUp(size, align)
		return laidOut, size, align
	}

	offset := 0
	for i, f := range fields {
		fa := alignOf(f.Type)
		if packed {
			fa = 1
		}
		if fa > align {
			align = fa
		}
		offset = roundUp(offset, fa)
		laidOut[i] = Field{Name: f.Name, Type: f.Type, Offset: offset}
		offset += sizeOf(f.Type)
	}
	size = roundUp(offset, align)
	return laidOut, size, align
}
