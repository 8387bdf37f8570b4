// Package ir is the downstream IR builder the lowering engine targets
// (§6): a typed, block-structured, three-address form with translation-unit
// scoped pools for globals, functions, and struct layouts. Block allocation
// and instruction emission are the "external collaborator" primitives
// spec.md §6 lists; this package is that collaborator's data model.
package ir

import (
	"fmt"
	"strings"
)

// Type is the IR's own type lattice — a lighter mirror of ctypes.CType,
// kept separate because the core's declared contract (§6) is a builder
// API operating on IR types, not on C types directly; ctypes.CType caches
// the IR type each CType lowers to via CTypeToIR.
type Type interface {
	irType()
	String() string
}

type VoidType struct{}

func (VoidType) irType()        {}
func (VoidType) String() string { return "void" }

// IntType is an integer of the given bit width and signedness. Booleans
// produced by comparisons use IntType{Bits: 32, Signed: true} (the
// "comparison producing boolean integer" primitive of §6).
type IntType struct {
	Bits   int
	Signed bool
}

func (IntType) irType() {}
func (t IntType) String() string {
	if t.Signed {
		return fmt.Sprintf("i%d", t.Bits)
	}
	return fmt.Sprintf("u%d", t.Bits)
}

type PointerType struct{ Elem Type }

func (PointerType) irType()        {}
func (t PointerType) String() string { return t.Elem.String() + "*" }

type ArrayType struct {
	Elem       Type
	Len        int
	Incomplete bool
}

func (ArrayType) irType() {}
func (t ArrayType) String() string {
	if t.Incomplete {
		return fmt.Sprintf("[%s]", t.Elem.String())
	}
	return fmt.Sprintf("[%d x %s]", t.Len, t.Elem.String())
}

type FieldType struct {
	Name   string
	Type   Type
	Offset int
}

// StructType is a named aggregate registered in a TranslationUnit's struct
// pool (trans_unit_add_struct, §6); Union distinguishes struct from union
// layout semantics for SizeOfIrType/AlignOfIrType callers.
type StructType struct {
	Name   string
	Fields []FieldType
	Size   int
	Align  int
	Union  bool
	Packed bool
}

func (*StructType) irType() {}
func (t *StructType) String() string {
	if t.Name != "" {
		return "%" + t.Name
	}
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Type.String()
	}
	return "{" + strings.Join(names, ", ") + "}"
}

type FuncType struct {
	Params   []Type
	Return   Type
	Variadic bool
}

func (FuncType) irType() {}
func (t FuncType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	variadic := ""
	if t.Variadic {
		variadic = ", ..."
	}
	return fmt.Sprintf("%s (%s%s)", t.Return.String(), strings.Join(parts, ", "), variadic)
}

// SizeOfIrType returns the size in bytes of t (size_of_ir_type, §6).
func SizeOfIrType(t Type) int {
	switch v := t.(type) {
	case VoidType:
		return 0
	case IntType:
		return v.Bits / 8
	case PointerType:
		return 8
	case ArrayType:
		if v.Incomplete {
			return 0
		}
		return v.Len * SizeOfIrType(v.Elem)
	case *StructType:
		return v.Size
	case FuncType:
		return 8 // function values are always carried as pointers
	default:
		panic(fmt.Sprintf("ir: SizeOfIrType: unhandled type %T", t))
	}
}

// AlignOfIrType returns the alignment in bytes of t (align_of_ir_type, §6).
func AlignOfIrType(t Type) int {
	switch v := t.(type) {
	case VoidType:
		return 1
	case IntType:
		return v.Bits / 8
	case PointerType:
		return 8
	case ArrayType:
		return AlignOfIrType(v.Elem)
	case *StructType:
		return v.Align
	case FuncType:
		return 8
	default:
		panic(fmt.Sprintf("ir: AlignOfIrType: unhandled type %T", t))
	}
}

// Equal reports whether two IR types are structurally identical. Pointer
// and struct identity is additionally canonical at the ctypes layer
// (pointer-type caching, §8), so this is a structural fallback used by
// the IR builder's own sanity checks (phi incoming-type agreement, etc.).
func Equal(a, b Type) bool {
	switch av := a.(type) {
	case VoidType:
		_, ok := b.(VoidType)
		return ok
	case IntType:
		bv, ok := b.(IntType)
		return ok && av == bv
	case PointerType:
		bv, ok := b.(PointerType)
		return ok && Equal(av.Elem, bv.Elem)
	case ArrayType:
		bv, ok := b.(ArrayType)
		return ok && av.Len == bv.Len && av.Incomplete == bv.Incomplete && Equal(av.Elem, bv.Elem)
	case *StructType:
		bv, ok := b.(*StructType)
		return ok && av == bv
	case FuncType:
		bv, ok := b.(FuncType)
		if !ok || av.Variadic != bv.Variadic || len(av.Params) != len(bv.Params) || !Equal(av.Return, bv.Return) {
			return false
		}
		for i := range av.Params {
			if !Equal(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
