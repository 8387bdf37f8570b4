package ir

import "fmt"

// ValueKind discriminates the handful of things that can flow as an
// operand in the IR: the result of an instruction, a function parameter,
// a compile-time integer immediate, or the address of a global.
type ValueKind int

const (
	InstrResult ValueKind = iota
	ParamValue
	ImmInt
	GlobalAddr
)

// Value is the IrValue of spec.md §3: every build_* primitive that
// produces a result returns one. Kept as a small tagged struct (not an
// instruction pointer) so it can be copied freely into phi incoming lists,
// call argument slices, and CInit leaves without aliasing concerns.
type Value struct {
	Kind ValueKind
	Type Type

	// InstrResult / ParamValue: a stable register number, printed as %N.
	Reg int

	// ImmInt: the immediate value, reinterpreted per Type's width/signedness.
	Int int64

	// GlobalAddr: the referenced global's name.
	Global string
}

func (v Value) String() string {
	switch v.Kind {
	case ImmInt:
		return fmt.Sprintf("%d", v.Int)
	case GlobalAddr:
		return "@" + v.Global
	default:
		return fmt.Sprintf("%%%d", v.Reg)
	}
}

// ConstInt builds an immediate integer Value of the given IR type.
func ConstInt(t Type, value int64) Value {
	return Value{Kind: ImmInt, Type: t, Int: value}
}

// GlobalRef builds a Value naming the address of a global.
func GlobalRef(name string, t Type) Value {
	return Value{Kind: GlobalAddr, Type: PointerType{Elem: t}, Global: name}
}

// IsZeroConst reports whether v is the compile-time integer constant 0,
// the "null-pointer constant" test of §4.3's comparison rules.
func IsZeroConst(v Value) bool {
	return v.Kind == ImmInt && v.Int == 0
}
