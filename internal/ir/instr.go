package ir

import (
	"fmt"
	"strings"
)

// BinOp enumerates the typed binary operators build_binary_instr accepts.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	SDiv
	UDiv
	SRem
	URem
	And
	Or
	Xor
	Shl
	Shr // unsigned (logical) shift — spec.md §9 notes signed arithmetic shift is unimplemented
)

func (op BinOp) String() string {
	return [...]string{"add", "sub", "mul", "sdiv", "udiv", "srem", "urem", "and", "or", "xor", "shl", "shr"}[op]
}

// UnOp enumerates the typed unary operators build_unary_instr accepts.
type UnOp int

const (
	Neg UnOp = iota
	Not // bitwise not
)

func (op UnOp) String() string { return [...]string{"neg", "not"}[op] }

// ConvOp enumerates the conversion kinds build_type_instr accepts (§4.3.1).
type ConvOp int

const (
	Truncate ConvOp = iota
	ZeroExtend
	SignExtend
	IntToPtr
	PtrToInt
	Bitcast // pointer<->pointer, array/func decay — a type-only no-op on the value
)

func (op ConvOp) String() string {
	return [...]string{"trunc", "zext", "sext", "inttoptr", "ptrtoint", "bitcast"}[op]
}

// CmpKind enumerates the comparison predicates build_cmp accepts.
type CmpKind int

const (
	CmpEq CmpKind = iota
	CmpNe
	CmpSlt
	CmpSle
	CmpSgt
	CmpSge
	CmpUlt
	CmpUle
	CmpUgt
	CmpUge
)

func (c CmpKind) String() string {
	return [...]string{"eq", "ne", "slt", "sle", "sgt", "sge", "ult", "ule", "ugt", "uge"}[c]
}

// Opcode discriminates Instr's variant (the "tagged sum type" §9 asks for).
type Opcode int

const (
	OpLocal Opcode = iota
	OpLoad
	OpStore
	OpBinary
	OpUnary
	OpConvert
	OpCmp
	OpField
	OpBranch
	OpCond
	OpPhi
	OpCall
	OpRet
	OpRetVoid
	OpVaStart
)

// PhiIncoming is one (predecessor block, value) pair of a phi instruction.
type PhiIncoming struct {
	Block *Block
	Value Value
}

// Instr is one IR instruction. Not every field is meaningful for every
// Op — see the comment on each field — matching spec.md §9's guidance to
// prefer a closed tagged variant with exhaustive dispatch over per-op
// struct hierarchies, since the downstream builder API (§6) is itself
// flat (one build_* call per shape).
type Instr struct {
	Op Opcode

	// Dest is this instruction's result, or nil for instructions with no
	// result (store, branch, cond, ret, ret_void).
	Dest *Value

	// OpLocal: Type is the allocated object's type; Dest.Type is a pointer to it.
	// OpLoad: Args[0] is the pointer, Type is the loaded type.
	// OpStore: Args[0] is the pointer, Args[1] is the stored value.
	// OpBinary/OpUnary: BinOp/UnOp names the operator, Args holds operands.
	// OpConvert: ConvOp names the conversion, Args[0] is the source, Type is the target.
	// OpCmp: Cmp names the predicate, Args holds operands.
	// OpField: Args[0] is the aggregate pointer, AggrType is its C/IR aggregate
	//          type, Index selects the field/element.
	// OpCall: Args[0] is the callee value, Args[1:] are arguments, Type is the
	//         declared (possibly void) return type.
	// OpVaStart: Args[0] is the va_list pointer.
	Type     Type
	BinOp    BinOp
	UnOp     UnOp
	ConvOp   ConvOp
	Cmp      CmpKind
	AggrType Type
	Index    int
	Args     []Value

	// OpBranch: Target is the destination block.
	// OpCond: Cond is in Args[0], Then/Else are the destination blocks.
	Target *Block
	Then   *Block
	Else   *Block

	// OpPhi: Incoming holds one entry per predecessor.
	Incoming []PhiIncoming

	// OpRet: Args[0] is the returned value (absent for OpRetVoid).
}

func (i *Instr) String() string {
	var b strings.Builder
	if i.Dest != nil {
		fmt.Fprintf(&b, "%s = ", i.Dest.String())
	}
	switch i.Op {
	case OpLocal:
		fmt.Fprintf(&b, "local %s", i.Type.String())
	case OpLoad:
		fmt.Fprintf(&b, "load %s, %s", i.Type.String(), i.Args[0].String())
	case OpStore:
		fmt.Fprintf(&b, "store %s, %s", i.Args[0].String(), i.Args[1].String())
	case OpBinary:
		fmt.Fprintf(&b, "%s %s, %s", i.BinOp.String(), i.Args[0].String(), i.Args[1].String())
	case OpUnary:
		fmt.Fprintf(&b, "%s %s", i.UnOp.String(), i.Args[0].String())
	case OpConvert:
		fmt.Fprintf(&b, "%s %s to %s", i.ConvOp.String(), i.Args[0].String(), i.Type.String())
	case OpCmp:
		fmt.Fprintf(&b, "cmp.%s %s, %s", i.Cmp.String(), i.Args[0].String(), i.Args[1].String())
	case OpField:
		fmt.Fprintf(&b, "field %s, %d", i.Args[0].String(), i.Index)
	case OpBranch:
		fmt.Fprintf(&b, "br %s", i.Target.Name)
	case OpCond:
		fmt.Fprintf(&b, "br.cond %s, %s, %s", i.Args[0].String(), i.Then.Name, i.Else.Name)
	case OpPhi:
		parts := make([]string, len(i.Incoming))
		for idx, inc := range i.Incoming {
			parts[idx] = fmt.Sprintf("[%s: %s]", inc.Block.Name, inc.Value.String())
		}
		fmt.Fprintf(&b, "phi %s %s", i.Type.String(), strings.Join(parts, ", "))
	case OpCall:
		argStrs := make([]string, len(i.Args)-1)
		for idx, a := range i.Args[1:] {
			argStrs[idx] = a.String()
		}
		fmt.Fprintf(&b, "call %s(%s)", i.Args[0].String(), strings.Join(argStrs, ", "))
	case OpRet:
		fmt.Fprintf(&b, "ret %s", i.Args[0].String())
	case OpRetVoid:
		b.WriteString("ret void")
	case OpVaStart:
		fmt.Fprintf(&b, "va_start %s", i.Args[0].String())
	}
	return b.String()
}

// IsTerminator reports whether Op ends a basic block (§8: "every basic
// block ends with exactly one terminator").
func (i *Instr) IsTerminator() bool {
	switch i.Op {
	case OpBranch, OpCond, OpRet, OpRetVoid:
		return true
	default:
		return false
	}
}
