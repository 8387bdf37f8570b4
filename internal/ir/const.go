package ir

import (
	"fmt"
	"strings"
)

// Const is a compile-time constant mirror used for global initializers
// (§4.4's "lowered into an IrConst mirror") and the constant-expression
// evaluator's result (§4.2). It is deliberately a different type from
// Value: a Const never appears as an instruction operand, only as a
// global's initializer or as the payload the const evaluator hands back
// to array-length/case-label/enumerator/designator-index call sites.
type Const interface {
	constNode()
	Type() Type
	String() string
}

// IntConst is an integer or character constant.
type IntConst struct {
	Typ   Type
	Value int64
}

func (IntConst) constNode()      {}
func (c IntConst) Type() Type    { return c.Typ }
func (c IntConst) String() string { return fmt.Sprintf("%d", c.Value) }

// GlobalAddrConst is the address of a global, optionally offset — the
// "global-address constant" §4.2 says the evaluator may also produce.
type GlobalAddrConst struct {
	Name   string
	Typ    Type
	Offset int
}

func (GlobalAddrConst) constNode()       {}
func (c GlobalAddrConst) Type() Type     { return c.Typ }
func (c GlobalAddrConst) String() string { return fmt.Sprintf("@%s+%d", c.Name, c.Offset) }

// ZeroConst is the zero-fill representation for an unset CInit leaf.
type ZeroConst struct{ Typ Type }

func (ZeroConst) constNode()       {}
func (c ZeroConst) Type() Type     { return c.Typ }
func (c ZeroConst) String() string { return "zeroinitializer" }

// ArrayConst is a fully-elaborated array constant (add_array_const, §6).
type ArrayConst struct {
	Typ      Type
	Elements []Const
}

func (ArrayConst) constNode()   {}
func (c ArrayConst) Type() Type { return c.Typ }
func (c ArrayConst) String() string {
	parts := make([]string, len(c.Elements))
	for i, e := range c.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// StructConst is a fully-elaborated struct/union constant (add_struct_const, §6).
type StructConst struct {
	Typ    Type
	Fields []Const
}

func (StructConst) constNode()   {}
func (c StructConst) Type() Type { return c.Typ }
func (c StructConst) String() string {
	parts := make([]string, len(c.Fields))
	for i, e := range c.Fields {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
