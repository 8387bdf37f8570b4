package ir

import "fmt"

// Builder is the collaborator spec.md §6 calls "downstream IR builder
// primitives": it holds the single mutable cursor (current function,
// current block) the lowering engine's Env drives as it walks the AST.
// Blocks are allocated via AddBlock independently from being appended to
// the function's emission order via Append — see §4.5/§9's "allocate
// eagerly, append on emission reaching it" discipline for break/continue/
// update/after/case blocks.
type Builder struct {
	Func         *Function
	Cur          *Block
	nextBlockID  int
}

// NewBuilder starts building fn's body.
func NewBuilder(fn *Function) *Builder {
	return &Builder{Func: fn}
}

// AddBlock allocates (but does not append) a new basic block whose name
// is derived from hint plus a uniquifying counter.
func (b *Builder) AddBlock(hint string) *Block {
	id := b.nextBlockID
	b.nextBlockID++
	return &Block{Name: fmt.Sprintf("%s.%d", hint, id)}
}

// Append adds blk to the function's emission order and makes it current.
func (b *Builder) Append(blk *Block) {
	b.Func.Blocks = append(b.Func.Blocks, blk)
	b.Cur = blk
}

// BuildLocal allocates a stack slot of type t and yields its pointer value.
func (b *Builder) BuildLocal(t Type) Value {
	dest := Value{Kind: InstrResult, Type: PointerType{Elem: t}, Reg: b.Func.newReg()}
	b.Cur.append(&Instr{Op: OpLocal, Type: t, Dest: &dest})
	return dest
}

// BuildLoad loads a value of type t from ptr.
func (b *Builder) BuildLoad(ptr Value, t Type) Value {
	dest := Value{Kind: InstrResult, Type: t, Reg: b.Func.newReg()}
	b.Cur.append(&Instr{Op: OpLoad, Type: t, Args: []Value{ptr}, Dest: &dest})
	return dest
}

// BuildStore stores value through ptr.
func (b *Builder) BuildStore(ptr, value Value) {
	b.Cur.append(&Instr{Op: OpStore, Args: []Value{ptr, value}})
}

// BuildBinaryInstr emits a typed binary operator; the result type is a's type.
func (b *Builder) BuildBinaryInstr(op BinOp, a, cVal Value) Value {
	dest := Value{Kind: InstrResult, Type: a.Type, Reg: b.Func.newReg()}
	b.Cur.append(&Instr{Op: OpBinary, BinOp: op, Type: a.Type, Args: []Value{a, cVal}, Dest: &dest})
	return dest
}

// BuildUnaryInstr emits a typed unary operator; the result type is the operand's type.
func (b *Builder) BuildUnaryInstr(op UnOp, a Value) Value {
	dest := Value{Kind: InstrResult, Type: a.Type, Reg: b.Func.newReg()}
	b.Cur.append(&Instr{Op: OpUnary, UnOp: op, Type: a.Type, Args: []Value{a}, Dest: &dest})
	return dest
}

// BuildTypeInstr emits a conversion of a to type t (§4.3.1).
func (b *Builder) BuildTypeInstr(op ConvOp, a Value, t Type) Value {
	dest := Value{Kind: InstrResult, Type: t, Reg: b.Func.newReg()}
	b.Cur.append(&Instr{Op: OpConvert, ConvOp: op, Type: t, Args: []Value{a}, Dest: &dest})
	return dest
}

// BuildCmp emits a comparison, producing a boolean (32-bit signed int) result.
func (b *Builder) BuildCmp(cmp CmpKind, a, c2 Value) Value {
	boolType := IntType{Bits: 32, Signed: true}
	dest := Value{Kind: InstrResult, Type: boolType, Reg: b.Func.newReg()}
	b.Cur.append(&Instr{Op: OpCmp, Cmp: cmp, Type: boolType, Args: []Value{a, c2}, Dest: &dest})
	return dest
}

// BuildField computes the address of aggrPtr's field/element `index`,
// where aggrType is the aggregate's (struct or array) IR type.
func (b *Builder) BuildField(aggrPtr Value, aggrType Type, index int) Value {
	elemType := fieldElemType(aggrType, index)
	dest := Value{Kind: InstrResult, Type: PointerType{Elem: elemType}, Reg: b.Func.newReg()}
	b.Cur.append(&Instr{Op: OpField, AggrType: aggrType, Index: index, Args: []Value{aggrPtr}, Dest: &dest})
	return dest
}

func fieldElemType(aggrType Type, index int) Type {
	switch t := aggrType.(type) {
	case *StructType:
		return t.Fields[index].Type
	case ArrayType:
		return t.Elem
	default:
		panic(fmt.Sprintf("ir: BuildField: not an aggregate type: %T", aggrType))
	}
}

// BuildBranch terminates the current block with an unconditional jump.
func (b *Builder) BuildBranch(target *Block) {
	b.Cur.append(&Instr{Op: OpBranch, Target: target})
}

// BuildUnresolvedBranch terminates the current block with a branch whose
// Target is filled in later (a goto's label may not have been seen yet,
// §4.5/§4.6's goto-fixup pass). Returns the instruction so the caller can
// patch Target once the label resolves.
func (b *Builder) BuildUnresolvedBranch() *Instr {
	instr := &Instr{Op: OpBranch}
	b.Cur.append(instr)
	return instr
}

// BuildCond terminates the current block with a conditional branch.
func (b *Builder) BuildCond(cond Value, then, els *Block) {
	b.Cur.append(&Instr{Op: OpCond, Args: []Value{cond}, Then: then, Else: els})
}

// BuildRet terminates the current block, returning value.
func (b *Builder) BuildRet(value Value) {
	b.Cur.append(&Instr{Op: OpRet, Args: []Value{value}})
}

// BuildRetVoid terminates the current block with a void return.
func (b *Builder) BuildRetVoid() {
	b.Cur.append(&Instr{Op: OpRetVoid})
}

// BuildPhi allocates a phi instruction of type t with `arity` incoming
// slots, all initially zero-valued; fill them with PhiSetParam. Returns
// the underlying *Instr (not a Value) because the caller must keep a
// handle to mutate it as predecessors are discovered — PhiValue extracts
// the Value once all slots are set.
func (b *Builder) BuildPhi(t Type, arity int) *Instr {
	dest := Value{Kind: InstrResult, Type: t, Reg: b.Func.newReg()}
	instr := &Instr{Op: OpPhi, Type: t, Dest: &dest, Incoming: make([]PhiIncoming, arity)}
	b.Cur.append(instr)
	return instr
}

// PhiSetParam fills incoming slot i of phi with (block, value) — phi_set_param, §6.
func PhiSetParam(phi *Instr, i int, block *Block, value Value) {
	phi.Incoming[i] = PhiIncoming{Block: block, Value: value}
}

// PhiValue extracts phi's result Value.
func PhiValue(phi *Instr) Value { return *phi.Dest }

// BuildCall emits a call to callee with the given declared (possibly void)
// return type and arguments; Dest is nil when retType is VoidType.
func (b *Builder) BuildCall(callee Value, retType Type, args []Value) Value {
	allArgs := make([]Value, 0, len(args)+1)
	allArgs = append(allArgs, callee)
	allArgs = append(allArgs, args...)
	instr := &Instr{Op: OpCall, Type: retType, Args: allArgs}
	if _, isVoid := retType.(VoidType); !isVoid {
		dest := Value{Kind: InstrResult, Type: retType, Reg: b.Func.newReg()}
		instr.Dest = &dest
		b.Cur.append(instr)
		return dest
	}
	b.Cur.append(instr)
	return Value{Kind: InstrResult, Type: VoidType{}}
}

// BuildBuiltinVaStart emits the va_start builtin over vaListPtr (§4.3).
func (b *Builder) BuildBuiltinVaStart(vaListPtr Value) {
	b.Cur.append(&Instr{Op: OpVaStart, Args: []Value{vaListPtr}})
}
