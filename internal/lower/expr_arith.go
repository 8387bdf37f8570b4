package lower

import (
	"github.com/ccirgen/ccirgen/internal/ast"
	"github.com/ccirgen/ccirgen/internal/creport"
	"github.com/ccirgen/ccirgen/internal/ctypes"
	"github.com/ccirgen/ccirgen/internal/ir"
)

// convert implements convert_type (§4.3.1): the general conversion of a
// term to a target CType. Integer-to-integer truncates, zero-extends
// (unsigned source) or sign-extends (signed source); integer-to-pointer
// zero-extends to 64 bits first, then casts; pointer-to-pointer,
// array-to-pointer, and function-to-pointer are no-ops on the value;
// conversion to void produces a discardable value.
func (e *Env) convert(t Term, target ctypes.CType) (Term, error) {
	t = e.decay(t)
	if t.Type.Equals(target) {
		return Term{Type: target, Value: retag(t.Value, target.IR())}, nil
	}

	if _, ok := target.(*ctypes.VoidCType); ok {
		return Term{Type: target, Value: ir.Value{Type: ir.VoidType{}}}, nil
	}

	switch src := t.Type.(type) {
	case *ctypes.IntegerCType:
		if dst, ok := target.(*ctypes.IntegerCType); ok {
			sb := src.IR().(ir.IntType).Bits
			db := dst.IR().(ir.IntType).Bits
			switch {
			case sb == db:
				return Term{Type: target, Value: retag(t.Value, dst.IR())}, nil
			case sb < db:
				op := ir.ZeroExtend
				if src.Signed {
					op = ir.SignExtend
				}
				return Term{Type: target, Value: e.Builder.BuildTypeInstr(op, t.Value, dst.IR())}, nil
			default:
				return Term{Type: target, Value: e.Builder.BuildTypeInstr(ir.Truncate, t.Value, dst.IR())}, nil
			}
		}
		if _, ok := target.(*ctypes.PointerCType); ok {
			wide := e.Builder.BuildTypeInstr(ir.ZeroExtend, t.Value, ir.IntType{Bits: 64, Signed: false})
			v := e.Builder.BuildTypeInstr(ir.IntToPtr, wide, target.IR())
			return Term{Type: target, Value: v}, nil
		}

	case *ctypes.PointerCType:
		if _, ok := target.(*ctypes.PointerCType); ok {
			return Term{Type: target, Value: e.Builder.BuildTypeInstr(ir.Bitcast, t.Value, target.IR())}, nil
		}
		if dst, ok := target.(*ctypes.IntegerCType); ok {
			return Term{Type: target, Value: e.Builder.BuildTypeInstr(ir.PtrToInt, t.Value, dst.IR())}, nil
		}
	}

	return Term{}, e.Fail(creport.New(creport.EXP006, "expr", "invalid conversion from "+t.Type.String()+" to "+target.String(), nil))
}

// commonArithType picks the usual-arithmetic-conversions target for two
// integer operand types (§4.3.1): same signedness keeps the
// higher-rank type; mixed signedness converts toward the unsigned type
// if its rank is ≥ the signed type's rank, else toward the signed type.
func commonArithType(a, b *ctypes.IntegerCType) *ctypes.IntegerCType {
	if a.Signed == b.Signed {
		if a.Rank >= b.Rank {
			return a
		}
		return b
	}
	var uns, sgn *ctypes.IntegerCType
	if a.Signed {
		sgn, uns = a, b
	} else {
		sgn, uns = b, a
	}
	if uns.Rank >= sgn.Rank {
		return uns
	}
	return sgn
}

func isPointer(t ctypes.CType) (*ctypes.PointerCType, bool) {
	p, ok := t.(*ctypes.PointerCType)
	return p, ok
}

func isInteger(t ctypes.CType) (*ctypes.IntegerCType, bool) {
	i, ok := t.(*ctypes.IntegerCType)
	return i, ok
}

// lowerBinary dispatches a binary expression by operator family (§4.3).
func (e *Env) lowerBinary(b *ast.BinaryExpr, ctx ExprContext) (Term, error) {
	switch b.Op {
	case ast.OpLogAnd, ast.OpLogOr:
		return e.lowerShortCircuit(b, ctx)
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return e.lowerCompare(b, ctx)
	default:
		l, err := e.LowerExpr(b.Left, ctx)
		if err != nil {
			return Term{}, err
		}
		r, err := e.LowerExpr(b.Right, ctx)
		if err != nil {
			return Term{}, err
		}
		return e.applyArith(b.Op, l, r, &b.Pos)
	}
}

// applyArith implements §4.3's "Binary arithmetic" rule: array operands
// decay; integer-integer applies the usual conversions then emits the
// op; pointer-involving add/sub scale by the pointee size.
func (e *Env) applyArith(op ast.BinaryOperator, l, r Term, pos *ast.Pos) (Term, error) {
	l, r = e.decay(l), e.decay(r)

	lp, lIsPtr := isPointer(l.Type)
	rp, rIsPtr := isPointer(r.Type)

	switch {
	case lIsPtr && rIsPtr && op == ast.OpSub:
		return e.pointerDiff(l, lp, r)
	case lIsPtr && !rIsPtr && (op == ast.OpAdd || op == ast.OpSub):
		return e.pointerPlusInt(l, lp, r, op == ast.OpSub)
	case rIsPtr && !lIsPtr && op == ast.OpAdd:
		return e.pointerPlusInt(r, rp, l, false)
	}

	li, lok := isInteger(l.Type)
	ri, rok := isInteger(r.Type)
	if !lok || !rok {
		return Term{}, e.Fail(creport.New(creport.EXP006, "expr", "invalid operand types for binary operator", nil))
	}
	common := commonArithType(li, ri)
	lc, err := e.convert(l, common)
	if err != nil {
		return Term{}, err
	}
	rc, err := e.convert(r, common)
	if err != nil {
		return Term{}, err
	}

	binOp, ok := binOpFor(op, common.Signed)
	if !ok {
		return Term{}, e.Fail(creport.Bug(creport.BUG003, "expr", "unknown binary operator"))
	}
	v := e.Builder.BuildBinaryInstr(binOp, lc.Value, rc.Value)
	return Term{Type: common, Value: v}, nil
}

func binOpFor(op ast.BinaryOperator, signed bool) (ir.BinOp, bool) {
	switch op {
	case ast.OpAdd:
		return ir.Add, true
	case ast.OpSub:
		return ir.Sub, true
	case ast.OpMul:
		return ir.Mul, true
	case ast.OpDiv:
		if signed {
			return ir.SDiv, true
		}
		return ir.UDiv, true
	case ast.OpMod:
		if signed {
			return ir.SRem, true
		}
		return ir.URem, true
	case ast.OpBitAnd:
		return ir.And, true
	case ast.OpBitOr:
		return ir.Or, true
	case ast.OpBitXor:
		return ir.Xor, true
	case ast.OpShl:
		return ir.Shl, true
	case ast.OpShr:
		// Unsigned (logical) shift is emitted for all right shifts;
		// signed arithmetic shift is an open question (§9), not implemented.
		return ir.Shr, true
	default:
		return 0, false
	}
}

// pointerPlusInt implements pointer+integer / integer+pointer /
// pointer-integer: when the integer is a compile-time constant, emit a
// field/index instruction; otherwise scale and add/subtract in a
// pointer-sized integer, then cast back.
func (e *Env) pointerPlusInt(ptrTerm Term, pt *ctypes.PointerCType, intTerm Term, negate bool) (Term, error) {
	if intTerm.Value.Kind == ir.ImmInt {
		idx := intTerm.Value.Int
		if negate {
			idx = -idx
		}
		v := e.Builder.BuildField(ptrTerm.Value, ir.ArrayType{Elem: pt.Pointee.IR(), Incomplete: true}, int(idx))
		return Term{Type: ptrTerm.Type, Value: v}, nil
	}

	elemSize := int64(ctypes.SizeOf(pt.Pointee))
	idxI64, err := e.convert(intTerm, e.ptrdiffType())
	if err != nil {
		return Term{}, err
	}
	scaled := e.Builder.BuildBinaryInstr(ir.Mul, idxI64.Value, ir.ConstInt(idxI64.Value.Type, elemSize))
	ptrAsInt := e.Builder.BuildTypeInstr(ir.PtrToInt, ptrTerm.Value, idxI64.Value.Type)
	op := ir.Add
	if negate {
		op = ir.Sub
	}
	summed := e.Builder.BuildBinaryInstr(op, ptrAsInt, scaled)
	result := e.Builder.BuildTypeInstr(ir.IntToPtr, summed, pt.IR())
	return Term{Type: ptrTerm.Type, Value: result}, nil
}

// pointerDiff implements pointer-pointer subtraction: integer difference
// divided by the pointee size, result typed as the signed ptrdiff_t
// analogue (§4.3).
func (e *Env) pointerDiff(l Term, lp *ctypes.PointerCType, r Term) (Term, error) {
	ptrdiffT := e.ptrdiffType()
	li := e.Builder.BuildTypeInstr(ir.PtrToInt, l.Value, ptrdiffT.IR())
	ri := e.Builder.BuildTypeInstr(ir.PtrToInt, r.Value, ptrdiffT.IR())
	diff := e.Builder.BuildBinaryInstr(ir.Sub, li, ri)
	elemSize := int64(ctypes.SizeOf(lp.Pointee))
	if elemSize == 0 {
		elemSize = 1
	}
	quot := e.Builder.BuildBinaryInstr(ir.SDiv, diff, ir.ConstInt(ptrdiffT.IR(), elemSize))
	return Term{Type: ptrdiffT, Value: quot}, nil
}

// lowerCompare implements §4.3's comparison rules: a pointer vs. the
// null-pointer constant 0 converts the 0; pointer vs. pointer compares
// directly; integer vs. integer applies the usual conversions and picks
// signed/unsigned compare accordingly.
func (e *Env) lowerCompare(b *ast.BinaryExpr, ctx ExprContext) (Term, error) {
	l, err := e.LowerExpr(b.Left, ctx)
	if err != nil {
		return Term{}, err
	}
	r, err := e.LowerExpr(b.Right, ctx)
	if err != nil {
		return Term{}, err
	}
	l, r = e.decay(l), e.decay(r)

	lp, lIsPtr := isPointer(l.Type)
	rp, rIsPtr := isPointer(r.Type)

	var cmpVal ir.Value
	switch {
	case lIsPtr && rIsPtr:
		_ = lp
		_ = rp
		cmpVal = e.Builder.BuildCmp(cmpKindFor(b.Op, false), l.Value, r.Value)

	case lIsPtr && !rIsPtr:
		if !ir.IsZeroConst(r.Value) {
			return Term{}, e.Fail(creport.New(creport.EXP003, "expr", "pointer compared against non-null-constant integer", spanAt(b.Pos)))
		}
		nullPtr := ir.ConstInt(l.Value.Type, 0)
		cmpVal = e.Builder.BuildCmp(cmpKindFor(b.Op, false), l.Value, nullPtr)

	case rIsPtr && !lIsPtr:
		if !ir.IsZeroConst(l.Value) {
			return Term{}, e.Fail(creport.New(creport.EXP003, "expr", "pointer compared against non-null-constant integer", spanAt(b.Pos)))
		}
		nullPtr := ir.ConstInt(r.Value.Type, 0)
		cmpVal = e.Builder.BuildCmp(cmpKindFor(b.Op, false), nullPtr, r.Value)

	default:
		li, lok := isInteger(l.Type)
		ri, rok := isInteger(r.Type)
		if !lok || !rok {
			return Term{}, e.Fail(creport.New(creport.EXP006, "expr", "invalid operand types for comparison", spanAt(b.Pos)))
		}
		common := commonArithType(li, ri)
		lc, err := e.convert(l, common)
		if err != nil {
			return Term{}, err
		}
		rc, err := e.convert(r, common)
		if err != nil {
			return Term{}, err
		}
		cmpVal = e.Builder.BuildCmp(cmpKindFor(b.Op, !common.Signed), lc.Value, rc.Value)
	}
	return Term{Type: e.Types.Pool.Int, Value: cmpVal}, nil
}

func cmpKindFor(op ast.BinaryOperator, unsigned bool) ir.CmpKind {
	switch op {
	case ast.OpEq:
		return ir.CmpEq
	case ast.OpNe:
		return ir.CmpNe
	case ast.OpLt:
		if unsigned {
			return ir.CmpUlt
		}
		return ir.CmpSlt
	case ast.OpLe:
		if unsigned {
			return ir.CmpUle
		}
		return ir.CmpSle
	case ast.OpGt:
		if unsigned {
			return ir.CmpUgt
		}
		return ir.CmpSgt
	default: // OpGe
		if unsigned {
			return ir.CmpUge
		}
		return ir.CmpSge
	}
}

// lowerShortCircuit implements §4.3's `&&`/`||`: evaluate LHS, compare
// to produce a boolean, branch; in the RHS block evaluate RHS and
// compare to zero; merge with a two-way phi whose LHS-false (for `&&`)
// or LHS-true (for `||`) predecessor contributes the short-circuit
// literal.
func (e *Env) lowerShortCircuit(b *ast.BinaryExpr, ctx ExprContext) (Term, error) {
	boolT := e.Types.Pool.Int
	l, err := e.LowerExpr(b.Left, ctx)
	if err != nil {
		return Term{}, err
	}
	lCmp := e.Builder.BuildCmp(ir.CmpNe, l.Value, ir.ConstInt(l.Value.Type, 0))

	rhsBlock := e.Builder.AddBlock("logic.rhs")
	joinBlock := e.Builder.AddBlock("logic.join")

	shortCircuitLit := int64(0)
	if b.Op == ast.OpLogOr {
		shortCircuitLit = 1
	}

	shortCircuitPred := e.Builder.Cur
	if b.Op == ast.OpLogAnd {
		e.Builder.BuildCond(lCmp, rhsBlock, joinBlock)
	} else {
		e.Builder.BuildCond(lCmp, joinBlock, rhsBlock)
	}

	e.Builder.Append(rhsBlock)
	r, err := e.LowerExpr(b.Right, ctx)
	if err != nil {
		return Term{}, err
	}
	rCmp := e.Builder.BuildCmp(ir.CmpNe, r.Value, ir.ConstInt(r.Value.Type, 0))
	rhsPred := e.Builder.Cur
	e.Builder.BuildBranch(joinBlock)

	e.Builder.Append(joinBlock)
	phi := e.Builder.BuildPhi(boolT.IR(), 2)
	ir.PhiSetParam(phi, 0, shortCircuitPred, ir.ConstInt(boolT.IR(), shortCircuitLit))
	ir.PhiSetParam(phi, 1, rhsPred, rCmp)
	return Term{Type: boolT, Value: ir.PhiValue(phi)}, nil
}

// lowerTernary implements §4.3's `?:`: lower condition, split into
// then/else blocks, lower each branch, apply conversions in each
// predecessor block, then phi-merge.
func (e *Env) lowerTernary(t *ast.TernaryExpr, ctx ExprContext) (Term, error) {
	cond, err := e.LowerExpr(t.Cond, ctx)
	if err != nil {
		return Term{}, err
	}
	condBool := e.Builder.BuildCmp(ir.CmpNe, cond.Value, ir.ConstInt(cond.Value.Type, 0))

	thenBlock := e.Builder.AddBlock("ternary.then")
	elseBlock := e.Builder.AddBlock("ternary.else")
	joinBlock := e.Builder.AddBlock("ternary.join")
	e.Builder.BuildCond(condBool, thenBlock, elseBlock)

	e.Builder.Append(thenBlock)
	thenTerm, err := e.LowerExpr(t.Then, ctx)
	if err != nil {
		return Term{}, err
	}
	e.Builder.Append(elseBlock)
	elseTerm, err := e.LowerExpr(t.Else, ctx)
	if err != nil {
		return Term{}, err
	}

	resultType := thenTerm.Type
	if li, ok := isInteger(thenTerm.Type); ok {
		if ri, ok2 := isInteger(elseTerm.Type); ok2 {
			resultType = commonArithType(li, ri)
		}
	}

	e.Builder.Append(thenBlock)
	thenConv, err := e.convert(thenTerm, resultType)
	if err != nil {
		return Term{}, err
	}
	thenPred := e.Builder.Cur
	e.Builder.BuildBranch(joinBlock)

	e.Builder.Append(elseBlock)
	elseConv, err := e.convert(elseTerm, resultType)
	if err != nil {
		return Term{}, err
	}
	elsePred := e.Builder.Cur
	e.Builder.BuildBranch(joinBlock)

	e.Builder.Append(joinBlock)
	phi := e.Builder.BuildPhi(resultType.IR(), 2)
	ir.PhiSetParam(phi, 0, thenPred, thenConv.Value)
	ir.PhiSetParam(phi, 1, elsePred, elseConv.Value)
	return Term{Type: resultType, Value: ir.PhiValue(phi)}, nil
}
