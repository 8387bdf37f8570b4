package lower

import (
	"github.com/ccirgen/ccirgen/internal/ast"
	"github.com/ccirgen/ccirgen/internal/creport"
	"github.com/ccirgen/ccirgen/internal/ctypes"
	"github.com/ccirgen/ccirgen/internal/ir"
)

// lowerAssign implements plain `=` (§4.3): the target lowers as an
// l-value, the source as an r-value, then storeAssign picks the
// scalar-store or aggregate-memcpy path.
func (e *Env) lowerAssign(a *ast.AssignExpr, ctx ExprContext) (Term, error) {
	if ctx == ConstContext {
		return Term{}, e.Fail(creport.New(creport.CST002, "constexpr", "assignment is not allowed in a constant expression", spanAt(a.Pos)))
	}
	lv, err := e.LowerExpr(a.Target, LValueContext)
	if err != nil {
		return Term{}, err
	}
	rv, err := e.LowerExpr(a.Value, RValueContext)
	if err != nil {
		return Term{}, err
	}
	return e.storeAssign(lv, rv)
}

// lowerCompoundAssign implements `+=`/`-=`/etc. (§4.3): read-modify-write
// through applyArith (so pointer-arithmetic compound assignment works),
// converting the combined value back to the target's type before storing.
func (e *Env) lowerCompoundAssign(c *ast.CompoundAssignExpr, ctx ExprContext) (Term, error) {
	if ctx == ConstContext {
		return Term{}, e.Fail(creport.New(creport.CST002, "constexpr", "compound assignment is not allowed in a constant expression", spanAt(c.Pos)))
	}
	lv, err := e.LowerExpr(c.Target, LValueContext)
	if err != nil {
		return Term{}, err
	}
	old := e.Builder.BuildLoad(lv.Value, lv.Type.IR())
	oldTerm := Term{Type: lv.Type, Value: old}

	rv, err := e.LowerExpr(c.Value, RValueContext)
	if err != nil {
		return Term{}, err
	}
	combined, err := e.applyArith(c.Op, oldTerm, rv, &c.Pos)
	if err != nil {
		return Term{}, err
	}
	converted, err := e.convert(combined, lv.Type)
	if err != nil {
		return Term{}, err
	}
	e.Builder.BuildStore(lv.Value, converted.Value)
	return converted, nil
}

// lowerIndex implements `base[index]` as `*(base + index)` (§4.3),
// reusing applyArith's pointer-arithmetic path so a constant index
// lowers through the cheap BuildField shortcut.
func (e *Env) lowerIndex(ix *ast.IndexExpr, ctx ExprContext) (Term, error) {
	base, err := e.LowerExpr(ix.Base, RValueContext)
	if err != nil {
		return Term{}, err
	}
	idx, err := e.LowerExpr(ix.Index, ctx)
	if err != nil {
		return Term{}, err
	}
	sum, err := e.applyArith(ast.OpAdd, base, idx, &ix.Pos)
	if err != nil {
		return Term{}, err
	}
	pt, ok := sum.Type.(*ctypes.PointerCType)
	if !ok {
		return Term{}, e.Fail(creport.New(creport.EXP006, "expr", "indexed expression is not a pointer or array", spanAt(ix.Pos)))
	}
	return Term{Type: pt.Pointee, Value: retag(sum.Value, ir.PointerType{Elem: pt.Pointee.IR()}), IsLValue: true}, nil
}

// lowerField implements `.field` and `->field` (§4.3): `.` requires an
// l-value struct/union operand, `->` an r-value pointer-to-struct/union
// operand; both compute the field's address via BuildField.
func (e *Env) lowerField(f *ast.FieldExpr, ctx ExprContext) (Term, error) {
	var base Term
	var err error
	var st *ctypes.StructCType

	if f.Arrow {
		base, err = e.LowerExpr(f.Base, RValueContext)
		if err != nil {
			return Term{}, err
		}
		base = e.decay(base)
		pt, ok := base.Type.(*ctypes.PointerCType)
		if !ok {
			return Term{}, e.Fail(creport.New(creport.EXP006, "expr", "-> applied to a non-pointer", spanAt(f.Pos)))
		}
		st, ok = pt.Pointee.(*ctypes.StructCType)
		if !ok {
			return Term{}, e.Fail(creport.New(creport.EXP006, "expr", "-> applied to a pointer to a non-struct/union", spanAt(f.Pos)))
		}
	} else {
		base, err = e.LowerExpr(f.Base, LValueContext)
		if err != nil {
			return Term{}, err
		}
		var ok bool
		st, ok = base.Type.(*ctypes.StructCType)
		if !ok {
			return Term{}, e.Fail(creport.New(creport.EXP006, "expr", ". applied to a non-struct/union", spanAt(f.Pos)))
		}
	}

	idx := st.FieldIndex(f.Field)
	if idx < 0 {
		return Term{}, e.Fail(creport.New(creport.EXP007, "expr", "unknown field: "+f.Field, spanAt(f.Pos)))
	}
	field := st.Fields[idx]
	v := e.Builder.BuildField(base.Value, st.IR(), idx)
	return Term{Type: field.Type, Value: v, IsLValue: true}, nil
}

// structReturnSlot allocates the implicit hidden-pointer return slot a
// struct-returning function's ABI needs (§9's struct-return-by-hidden-
// pointer decision): the slot is passed as the call's first argument
// and the call itself is typed void.
func (e *Env) structReturnSlot(fnType *ctypes.FunctionCType) (bool, ir.Value) {
	if st, ok := fnType.Return.(*ctypes.StructCType); ok {
		return true, e.Builder.BuildLocal(st.IR())
	}
	return false, ir.Value{}
}

// lowerCall implements function calls (§4.3): resolves the callee to a
// function type (direct or through a function pointer), checks arity,
// converts each argument to its declared parameter type (variadic tail
// arguments pass through unconverted — §9 leaves the default-argument-
// promotion rule unimplemented), and applies the struct-return ABI when
// the declared return type is a struct/union. `__builtin_va_start`,
// `__builtin_va_end`, and `__builtin_va_arg` are recognized by identifier
// ahead of the generic callee path, since they never resolve through
// Scope.Lookup like an ordinary function.
func (e *Env) lowerCall(c *ast.CallExpr) (Term, error) {
	if ident, ok := c.Callee.(*ast.IdentExpr); ok {
		switch ident.Name {
		case "__builtin_va_start":
			return e.lowerBuiltinVaStart(c)
		case "__builtin_va_end":
			return e.lowerBuiltinVaEnd(c)
		case "__builtin_va_arg":
			return e.lowerBuiltinVaArg(c)
		}
	}

	callee, err := e.LowerExpr(c.Callee, RValueContext)
	if err != nil {
		return Term{}, err
	}
	callee = e.decay(callee)

	var fnType *ctypes.FunctionCType
	switch ct := callee.Type.(type) {
	case *ctypes.FunctionCType:
		fnType = ct
	case *ctypes.PointerCType:
		ft, ok := ct.Pointee.(*ctypes.FunctionCType)
		if !ok {
			return Term{}, e.Fail(creport.New(creport.EXP004, "expr", "call to a non-function pointer", spanAt(c.Pos)))
		}
		fnType = ft
	default:
		return Term{}, e.Fail(creport.New(creport.EXP004, "expr", "call to a non-function value", spanAt(c.Pos)))
	}

	if fnType.Variadic {
		if len(c.Args) < len(fnType.Params) {
			return Term{}, e.Fail(creport.New(creport.EXP005, "expr", "too few arguments for a variadic function", spanAt(c.Pos)))
		}
	} else if len(c.Args) != len(fnType.Params) {
		return Term{}, e.Fail(creport.New(creport.EXP005, "expr", "argument count does not match function type", spanAt(c.Pos)))
	}

	structReturn, retSlot := e.structReturnSlot(fnType)
	args := make([]ir.Value, 0, len(c.Args)+1)
	if structReturn {
		args = append(args, retSlot)
	}
	for i, a := range c.Args {
		v, aerr := e.LowerExpr(a, RValueContext)
		if aerr != nil {
			return Term{}, aerr
		}
		v = e.decay(v)
		if i < len(fnType.Params) {
			conv, cerr := e.convert(v, fnType.Params[i])
			if cerr != nil {
				return Term{}, cerr
			}
			args = append(args, conv.Value)
		} else {
			args = append(args, v.Value)
		}
	}

	retIR := fnType.Return.IR()
	if structReturn {
		retIR = ir.VoidType{}
	}
	result := e.Builder.BuildCall(callee.Value, retIR, args)
	if structReturn {
		return Term{Type: fnType.Return, Value: retag(retSlot, ir.PointerType{Elem: fnType.Return.IR()}), IsLValue: true}, nil
	}
	return Term{Type: fnType.Return, Value: result}, nil
}

// lowerBuiltinVaStart implements `__builtin_va_start(ap, last)` (§4.3):
// the second argument only tells a real compiler which named parameter
// precedes the ellipsis, so it is lowered for its side effects and then
// discarded; the va_list pointer drives ir.OpVaStart directly.
func (e *Env) lowerBuiltinVaStart(c *ast.CallExpr) (Term, error) {
	if len(c.Args) != 2 {
		return Term{}, e.Fail(creport.New(creport.EXP005, "expr", "__builtin_va_start takes exactly 2 arguments", spanAt(c.Pos)))
	}
	ap, err := e.LowerExpr(c.Args[0], RValueContext)
	if err != nil {
		return Term{}, err
	}
	ap = e.decay(ap)
	if _, err := e.LowerExpr(c.Args[1], RValueContext); err != nil {
		return Term{}, err
	}
	e.Builder.BuildBuiltinVaStart(retag(ap.Value, voidPtrIR()))
	return e.voidTerm(), nil
}

// lowerBuiltinVaEnd implements `__builtin_va_end(ap)` (§4.3) as a no-op:
// ap is still lowered so an unbound identifier is reported, but nothing
// is emitted.
func (e *Env) lowerBuiltinVaEnd(c *ast.CallExpr) (Term, error) {
	if len(c.Args) != 1 {
		return Term{}, e.Fail(creport.New(creport.EXP005, "expr", "__builtin_va_end takes exactly 1 argument", spanAt(c.Pos)))
	}
	if _, err := e.LowerExpr(c.Args[0], RValueContext); err != nil {
		return Term{}, err
	}
	return e.voidTerm(), nil
}

// lowerBuiltinVaArg implements `__builtin_va_arg(ap, T)` (§4.3): the
// requested type rides in the same SizeofTypeExpr carrier sizeof(T)
// uses, since the AST has no separate type-argument node. It lowers
// into a call to the __builtin_va_arg_uint64 runtime helper, then
// converts the 64-bit unsigned result down to T.
func (e *Env) lowerBuiltinVaArg(c *ast.CallExpr) (Term, error) {
	if len(c.Args) != 2 {
		return Term{}, e.Fail(creport.New(creport.EXP005, "expr", "__builtin_va_arg takes exactly 2 arguments", spanAt(c.Pos)))
	}
	ap, err := e.LowerExpr(c.Args[0], RValueContext)
	if err != nil {
		return Term{}, err
	}
	ap = e.decay(ap)
	tn, ok := c.Args[1].(*ast.SizeofTypeExpr)
	if !ok {
		return Term{}, e.Fail(creport.New(creport.EXP006, "expr", "__builtin_va_arg's second argument must name a type", spanAt(c.Pos)))
	}
	target, err := e.ResolveTypeName(tn.Type)
	if err != nil {
		return Term{}, err
	}
	helperRet := e.Types.Pool.ULongLong
	helper := e.ensureExternFunc(ir.BuiltinVaArgUint64(), []ir.Type{voidPtrIR()}, helperRet.IR(), false)
	raw := e.Builder.BuildCall(helper, helperRet.IR(), []ir.Value{retag(ap.Value, voidPtrIR())})
	return e.convert(Term{Type: helperRet, Value: raw}, target)
}

// voidTerm returns the Term a void-typed builtin call yields.
func (e *Env) voidTerm() Term {
	return Term{Type: e.Types.Pool.Void, Value: ir.Value{Kind: ir.InstrResult, Type: ir.VoidType{}}}
}

// lowerSizeofExpr implements `sizeof <expr>` (§4.3): the operand is
// lowered purely to discover its type inside a discarded scratch
// function (§4.2), then sizeTType-typed with the resulting byte count.
func (e *Env) lowerSizeofExpr(s *ast.SizeofExprExpr) (Term, error) {
	v, err := e.sizeofExprConst(s.Operand)
	if err != nil {
		return Term{}, err
	}
	t := e.sizeTType()
	return Term{Type: t, Value: ir.ConstInt(t.IR(), v)}, nil
}

// lowerSizeofType implements `sizeof(T)`: a direct type-name resolution,
// no expression lowering involved.
func (e *Env) lowerSizeofType(s *ast.SizeofTypeExpr) (Term, error) {
	t, err := e.ResolveTypeName(s.Type)
	if err != nil {
		return Term{}, err
	}
	sz := ctypes.SizeOf(t)
	st := e.sizeTType()
	return Term{Type: st, Value: ir.ConstInt(st.IR(), int64(sz))}, nil
}

// lowerCast implements an explicit cast (§4.3): lower the operand in
// the surrounding context, then apply convert to the resolved target type.
func (e *Env) lowerCast(c *ast.CastExpr, ctx ExprContext) (Term, error) {
	v, err := e.LowerExpr(c.Operand, ctx)
	if err != nil {
		return Term{}, err
	}
	target, err := e.ResolveTypeName(c.Type)
	if err != nil {
		return Term{}, err
	}
	return e.convert(v, target)
}

// lowerCompoundLiteral implements `(T){ ... }` (§4.3, §4.4): allocate a
// fresh local of the named type and run the initializer compiler over
// it, yielding an l-value term for the literal.
func (e *Env) lowerCompoundLiteral(c *ast.CompoundLiteralExpr) (Term, error) {
	t, err := e.ResolveTypeName(c.Type)
	if err != nil {
		return Term{}, err
	}
	slot := e.Builder.BuildLocal(t.IR())
	if err := e.compileLocalInitializer(t, c.Init, slot); err != nil {
		return Term{}, err
	}
	return Term{Type: t, Value: slot, IsLValue: true}, nil
}
