// Package ctypes is the Type Environment of spec.md §2/§4.1: interned
// catalogs of tagged (struct/union/enum) and typedef-named C types, a
// pool for canonical pointer types, and the struct/union field-layout
// algorithm. It is a leaf package — the declarator resolver that folds
// an AST declarator chain into a CType lives in internal/lower, which
// also needs the constant evaluator (for array lengths) and therefore
// cannot itself be a dependency of this package without a cycle; see
// DESIGN.md's "Module layout" note.
package ctypes

import (
	"fmt"
	"strings"

	"github.com/ccirgen/ccirgen/internal/ir"
)

// CType is the closed variant set of §3's data model: Void | Integer |
// Pointer | Array | Struct | Function.
type CType interface {
	String() string
	Equals(CType) bool
	// IR returns the backing IR type this CType lowers to (c_type_to_ir, §8).
	IR() ir.Type
	cTypeNode()
}

// IsScalar reports whether t is neither a struct/union nor an array nor a
// function — the set of types an r-value load actually dereferences (§4.3).
func IsScalar(t CType) bool {
	switch t.(type) {
	case *StructCType, *ArrayCType, *FunctionCType:
		return false
	default:
		return true
	}
}

// Rank orders integer types for the usual arithmetic conversions (§4.3.1,
// GLOSSARY "Rank"): Char < Short < Int < Long < LongLong.
type Rank int

const (
	RankChar Rank = iota
	RankShort
	RankInt
	RankLong
	RankLongLong
)

func (r Rank) bits() int {
	switch r {
	case RankChar:
		return 8
	case RankShort:
		return 16
	case RankInt:
		return 32
	default: // RankLong, RankLongLong
		return 64
	}
}

func (r Rank) String() string {
	return [...]string{"char", "short", "int", "long", "long long"}[r]
}

// VoidCType is `void`.
type VoidCType struct{}

func (*VoidCType) cTypeNode()      {}
func (*VoidCType) String() string  { return "void" }
func (*VoidCType) IR() ir.Type     { return ir.VoidType{} }
func (t *VoidCType) Equals(o CType) bool {
	_, ok := o.(*VoidCType)
	return ok
}

// IntegerCType is any of char/short/int/long/long long, signed or unsigned.
type IntegerCType struct {
	Rank   Rank
	Signed bool
}

func (*IntegerCType) cTypeNode() {}
func (t *IntegerCType) String() string {
	sign := "signed "
	if !t.Signed {
		sign = "unsigned "
	}
	if t.Rank == RankInt {
		sign = ""
		if !t.Signed {
			sign = "unsigned "
		}
	}
	return sign + t.Rank.String()
}
func (t *IntegerCType) IR() ir.Type {
	return ir.IntType{Bits: t.Rank.bits(), Signed: t.Signed}
}
func (t *IntegerCType) Equals(o CType) bool {
	ot, ok := o.(*IntegerCType)
	return ok && ot.Rank == t.Rank && ot.Signed == t.Signed
}

// PointerCType is a pointer to Pointee. Canonicalized by Pool.PointerTo,
// never constructed directly, so two requests for "pointer to T" are
// identity-equal (§8).
type PointerCType struct {
	Pointee CType
}

func (*PointerCType) cTypeNode()     {}
func (t *PointerCType) String() string { return t.Pointee.String() + " *" }
func (t *PointerCType) IR() ir.Type   { return ir.PointerType{Elem: t.Pointee.IR()} }
func (t *PointerCType) Equals(o CType) bool {
	ot, ok := o.(*PointerCType)
	return ok && t.Pointee.Equals(ot.Pointee)
}

// ArrayCType is an array of Elem. Incomplete is true until Size is known
// (via an explicit length, or inference from a brace/string initializer,
// §4.1/§4.4); an incomplete array may be completed exactly once (§3).
type ArrayCType struct {
	Elem       CType
	Size       int
	Incomplete bool
	irType     ir.ArrayType // backing IR array type, mutated in place on completion
}

func NewArrayCType(elem CType, size int, incomplete bool) *ArrayCType {
	return &ArrayCType{
		Elem:       elem,
		Size:       size,
		Incomplete: incomplete,
		irType:     ir.ArrayType{Elem: elem.IR(), Len: size, Incomplete: incomplete},
	}
}

func (*ArrayCType) cTypeNode() {}
func (t *ArrayCType) String() string {
	if t.Incomplete {
		return t.Elem.String() + " []"
	}
	return fmt.Sprintf("%s [%d]", t.Elem.String(), t.Size)
}
func (t *ArrayCType) IR() ir.Type { return t.irType } // t.irType is ir.ArrayType (value), satisfies ir.Type
func (t *ArrayCType) Equals(o CType) bool {
	ot, ok := o.(*ArrayCType)
	return ok && t.Incomplete == ot.Incomplete && t.Size == ot.Size && t.Elem.Equals(ot.Elem)
}

// Complete fills in an incomplete array's length (e.g. from initializer
// inference, §4.4) exactly once.
func (t *ArrayCType) Complete(size int) {
	t.Size = size
	t.Incomplete = false
	t.irType.Len = size
	t.irType.Incomplete = false
}

// Field is one struct/union member: name, type, and byte offset (§3, §4.1).
type Field struct {
	Name   string
	Type   CType
	Offset int
}

// StructCType is a struct or union (Union discriminates), possibly
// incomplete (forward-declared but not yet given a body, §4.1).
type StructCType struct {
	Tag        string
	Fields     []Field
	Align      int
	Size       int
	Incomplete bool
	Packed     bool
	Union      bool
	irType     *ir.StructType
}

func (*StructCType) cTypeNode() {}
func (t *StructCType) String() string {
	kw := "struct"
	if t.Union {
		kw = "union"
	}
	if t.Tag != "" {
		return kw + " " + t.Tag
	}
	return kw + " <anonymous>"
}
func (t *StructCType) IR() ir.Type { return t.irType }
func (t *StructCType) Equals(o CType) bool {
	ot, ok := o.(*StructCType)
	return ok && t == ot // struct types are canonical per tag, §8
}

// FieldIndex returns the index of the named field, or -1.
func (t *StructCType) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// FunctionCType is a C function type: parameter types, return type, and
// whether it is variadic (§3).
type FunctionCType struct {
	Return   CType
	Params   []CType
	Variadic bool
}

func (*FunctionCType) cTypeNode() {}
func (t *FunctionCType) String() string {
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
func (t *FunctionCType) IR() ir.Type {
	params := make([]ir.Type, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.IR()
	}
	return ir.FuncType{Params: params, Return: t.Return.IR(), Variadic: t.Variadic}
}
func (t *FunctionCType) Equals(o CType) bool {
	ot, ok := o.(*FunctionCType)
	if !ok || t.Variadic != ot.Variadic || len(t.Params) != len(ot.Params) || !t.Return.Equals(ot.Return) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equals(ot.Params[i]) {
			return false
		}
	}
	return true
}
