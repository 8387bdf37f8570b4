package lower

import (
	"github.com/ccirgen/ccirgen/internal/ast"
	"github.com/ccirgen/ccirgen/internal/creport"
	"github.com/ccirgen/ccirgen/internal/ctypes"
	"github.com/ccirgen/ccirgen/internal/ir"
	"github.com/ccirgen/ccirgen/internal/srcnorm"
)

// ExprContext selects one of the three modes ir_gen_expr runs in (§4.3).
type ExprContext int

const (
	// RValueContext is the default: scalars are loaded, aggregates and
	// functions remain as pointer values.
	RValueContext ExprContext = iota
	// LValueContext is permitted only for identifiers, field access,
	// indexing, and dereference.
	LValueContext
	// ConstContext forbids side-effecting operators and binds identifiers
	// to their binding's literal value.
	ConstContext
)

// LowerExpr is ir_gen_expr(expr, ctx) -> Term (§4.3): it computes the raw
// term for expr, then applies the context rule — load a scalar l-value
// in RValueContext, require an l-value in LValueContext, forbid side
// effects in ConstContext.
func (e *Env) LowerExpr(expr ast.Expr, ctx ExprContext) (Term, error) {
	raw, err := e.lowerRaw(expr, ctx)
	if err != nil {
		return Term{}, err
	}
	switch ctx {
	case LValueContext:
		if !raw.IsLValue {
			return Term{}, e.Fail(creport.New(creport.EXP002, "expr", "expression does not denote an l-value", spanAt(expr.Position())))
		}
		return raw, nil
	default: // RValueContext, ConstContext
		if raw.IsLValue && ctypes.IsScalar(raw.Type) {
			v := e.Builder.BuildLoad(raw.Value, raw.Type.IR())
			return Term{Type: raw.Type, Value: v}, nil
		}
		raw.IsLValue = false
		return raw, nil
	}
}

// lowerRaw computes a term's natural shape (l-value or r-value) without
// applying the context's load/forbid rules; LowerExpr applies those.
func (e *Env) lowerRaw(expr ast.Expr, ctx ExprContext) (Term, error) {
	switch ex := expr.(type) {
	case *ast.IntLiteral:
		// Integer literal typing uses a placeholder (int) — TODO: a
		// complete C99 suffix/range rule is not implemented (open question).
		t := e.Types.Pool.Int
		return Term{Type: t, Value: ir.ConstInt(t.IR(), int64(ex.Value))}, nil

	case *ast.StringLiteral:
		return e.lowerStringLiteral(ex)

	case *ast.IdentExpr:
		b, ok := e.Scope.Lookup(ex.Name)
		if !ok {
			return Term{}, e.Fail(creport.New(creport.EXP001, "expr", "unbound identifier: "+ex.Name, spanAt(ex.Pos)))
		}
		return b.Term, nil

	case *ast.UnaryExpr:
		return e.lowerUnary(ex, ctx)

	case *ast.PostfixExpr:
		return e.lowerPostfix(ex, ctx)

	case *ast.BinaryExpr:
		return e.lowerBinary(ex, ctx)

	case *ast.AssignExpr:
		return e.lowerAssign(ex, ctx)

	case *ast.CompoundAssignExpr:
		return e.lowerCompoundAssign(ex, ctx)

	case *ast.TernaryExpr:
		return e.lowerTernary(ex, ctx)

	case *ast.IndexExpr:
		return e.lowerIndex(ex, ctx)

	case *ast.FieldExpr:
		return e.lowerField(ex, ctx)

	case *ast.CallExpr:
		if ctx == ConstContext {
			return Term{}, e.Fail(creport.New(creport.CST002, "constexpr", "call is not allowed in a constant expression", spanAt(ex.Pos)))
		}
		return e.lowerCall(ex)

	case *ast.SizeofExprExpr:
		return e.lowerSizeofExpr(ex)

	case *ast.SizeofTypeExpr:
		return e.lowerSizeofType(ex)

	case *ast.CastExpr:
		return e.lowerCast(ex, ctx)

	case *ast.CompoundLiteralExpr:
		return e.lowerCompoundLiteral(ex)

	case *ast.CommaExpr:
		if ctx == ConstContext {
			return Term{}, e.Fail(creport.New(creport.CST002, "constexpr", "comma is not allowed in a constant expression", spanAt(ex.Pos)))
		}
		if _, err := e.LowerExpr(ex.Left, RValueContext); err != nil {
			return Term{}, err
		}
		return e.lowerRaw(ex.Right, ctx)

	default:
		return Term{}, e.Fail(creport.Bug(creport.BUG003, "expr", "unhandled expression node"))
	}
}

func retag(v ir.Value, t ir.Type) ir.Value {
	v.Type = t
	return v
}

// decay applies array-to-pointer / function-to-pointer decay to an
// already-lowered r-value term; both are no-ops on the value, since
// arrays and functions are always carried as pointer values already.
func (e *Env) decay(t Term) Term {
	switch ct := t.Type.(type) {
	case *ctypes.ArrayCType:
		pt := e.Types.Pool.PointerTo(ct.Elem)
		return Term{Type: pt, Value: retag(t.Value, pt.IR())}
	case *ctypes.FunctionCType:
		pt := e.Types.Pool.PointerTo(ct)
		return Term{Type: pt, Value: retag(t.Value, pt.IR())}
	default:
		return t
	}
}

func (e *Env) lowerStringLiteral(s *ast.StringLiteral) (Term, error) {
	charT := e.Types.Pool.Char
	bytes := srcnorm.Bytes(s.Value)
	bytes = append(append([]byte{}, bytes...), 0)

	arrT := ctypes.NewArrayCType(charT, len(bytes), false)
	name := e.Unit.NextStringLiteralName()

	elems := make([]ir.Const, len(bytes))
	for i, b := range bytes {
		elems[i] = ir.IntConst{Typ: charT.IR(), Value: int64(int8(b))}
	}
	g := &ir.Global{
		Name:    name,
		Type:    arrT.IR(),
		Linkage: ir.LinkageLocal,
		Init:    ir.ArrayConst{Typ: arrT.IR(), Elements: elems},
	}
	e.Unit.AddVar(g)

	return Term{Type: arrT, Value: ir.GlobalRef(name, arrT.IR()), IsLValue: true}, nil
}

func (e *Env) lowerUnary(u *ast.UnaryExpr, ctx ExprContext) (Term, error) {
	switch u.Op {
	case ast.OpAddrOf:
		inner, err := e.LowerExpr(u.Operand, LValueContext)
		if err != nil {
			return Term{}, err
		}
		pt := e.Types.Pool.PointerTo(inner.Type)
		return Term{Type: pt, Value: retag(inner.Value, pt.IR())}, nil

	case ast.OpDeref:
		inner, err := e.LowerExpr(u.Operand, RValueContext)
		if err != nil {
			return Term{}, err
		}
		inner = e.decay(inner)
		pt, ok := inner.Type.(*ctypes.PointerCType)
		if !ok {
			return Term{}, e.Fail(creport.New(creport.EXP002, "expr", "dereference of non-pointer", spanAt(u.Pos)))
		}
		return Term{Type: pt.Pointee, Value: retag(inner.Value, ir.PointerType{Elem: pt.Pointee.IR()}), IsLValue: true}, nil

	case ast.OpNeg:
		inner, err := e.LowerExpr(u.Operand, ctx)
		if err != nil {
			return Term{}, err
		}
		v := e.Builder.BuildUnaryInstr(ir.Neg, inner.Value)
		return Term{Type: inner.Type, Value: v}, nil

	case ast.OpBitNot:
		inner, err := e.LowerExpr(u.Operand, ctx)
		if err != nil {
			return Term{}, err
		}
		v := e.Builder.BuildUnaryInstr(ir.Not, inner.Value)
		return Term{Type: inner.Type, Value: v}, nil

	case ast.OpLogNot:
		inner, err := e.LowerExpr(u.Operand, ctx)
		if err != nil {
			return Term{}, err
		}
		zero := ir.ConstInt(inner.Value.Type, 0)
		v := e.Builder.BuildCmp(ir.CmpEq, inner.Value, zero)
		return Term{Type: e.Types.Pool.Int, Value: v}, nil

	case ast.OpPreInc:
		return e.compoundStep(u.Operand, ast.OpAdd, true)

	case ast.OpPreDec:
		return e.compoundStep(u.Operand, ast.OpSub, true)

	default:
		return Term{}, e.Fail(creport.Bug(creport.BUG003, "expr", "unhandled unary operator"))
	}
}

func (e *Env) lowerPostfix(p *ast.PostfixExpr, ctx ExprContext) (Term, error) {
	if ctx == ConstContext {
		return Term{}, e.Fail(creport.New(creport.CST002, "constexpr", "increment/decrement is not allowed in a constant expression", spanAt(p.Pos)))
	}
	switch p.Op {
	case ast.OpPostInc:
		return e.compoundStep(p.Operand, ast.OpAdd, false)
	case ast.OpPostDec:
		return e.compoundStep(p.Operand, ast.OpSub, false)
	default:
		return Term{}, e.Fail(creport.Bug(creport.BUG003, "expr", "unhandled postfix operator"))
	}
}

// compoundStep implements pre/post increment/decrement: read the
// l-value, combine with the constant 1 via the general compound-assign
// path, write back, and return either the new (pre) or old (post) value
// (§4.3 "Pre/post increment/decrement").
func (e *Env) compoundStep(operand ast.Expr, op ast.BinaryOperator, returnNew bool) (Term, error) {
	lv, err := e.LowerExpr(operand, LValueContext)
	if err != nil {
		return Term{}, err
	}
	old := e.Builder.BuildLoad(lv.Value, lv.Type.IR())
	oldTerm := Term{Type: lv.Type, Value: old}

	one := Term{Type: e.Types.Pool.Int, Value: ir.ConstInt(e.Types.Pool.Int.IR(), 1)}
	combined, err := e.applyArith(op, oldTerm, one, nil)
	if err != nil {
		return Term{}, err
	}
	converted, err := e.convert(combined, lv.Type)
	if err != nil {
		return Term{}, err
	}
	e.Builder.BuildStore(lv.Value, converted.Value)

	if returnNew {
		return converted, nil
	}
	return oldTerm, nil
}
