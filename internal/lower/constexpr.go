package lower

import (
	"github.com/ccirgen/ccirgen/internal/ast"
	"github.com/ccirgen/ccirgen/internal/creport"
	"github.com/ccirgen/ccirgen/internal/ctypes"
	"github.com/ccirgen/ccirgen/internal/ir"
)

// EvalConstInt implements the integer-constant-expression evaluator
// §4.2 calls for from array lengths, enum values, bit-field widths, and
// case labels: a direct recursive fold over the AST in Go arithmetic,
// with no Builder involved, since these call sites run before any
// function (or even any Builder) necessarily exists. Non-integer
// constant expressions (an initializer's `&global`, a string literal
// address) are a different shape and go through the initializer
// compiler's own CInit walk instead — see DESIGN.md.
func (e *Env) EvalConstInt(expr ast.Expr) (int64, error) {
	return e.foldConstInt(expr)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (e *Env) foldConstInt(expr ast.Expr) (int64, error) {
	switch ex := expr.(type) {
	case *ast.IntLiteral:
		return int64(ex.Value), nil

	case *ast.IdentExpr:
		b, ok := e.Scope.Lookup(ex.Name)
		if !ok || !b.Constant {
			return 0, e.Fail(creport.New(creport.CST001, "constexpr", "not a compile-time constant: "+ex.Name, spanAt(ex.Pos)))
		}
		return b.Term.Value.Int, nil

	case *ast.UnaryExpr:
		switch ex.Op {
		case ast.OpNeg:
			v, err := e.foldConstInt(ex.Operand)
			return -v, err
		case ast.OpBitNot:
			v, err := e.foldConstInt(ex.Operand)
			return ^v, err
		case ast.OpLogNot:
			v, err := e.foldConstInt(ex.Operand)
			if err != nil {
				return 0, err
			}
			return boolToInt(v == 0), nil
		default:
			return 0, e.Fail(creport.New(creport.CST002, "constexpr", "operator not allowed in a constant expression", spanAt(ex.Pos)))
		}

	case *ast.BinaryExpr:
		return e.foldConstBinary(ex)

	case *ast.TernaryExpr:
		c, err := e.foldConstInt(ex.Cond)
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return e.foldConstInt(ex.Then)
		}
		return e.foldConstInt(ex.Else)

	case *ast.CastExpr:
		v, err := e.foldConstInt(ex.Operand)
		if err != nil {
			return 0, err
		}
		t, terr := e.ResolveTypeName(ex.Type)
		if terr != nil {
			return 0, terr
		}
		return truncateToType(t, v), nil

	case *ast.SizeofTypeExpr:
		t, err := e.ResolveTypeName(ex.Type)
		if err != nil {
			return 0, err
		}
		return int64(ctypes.SizeOf(t)), nil

	case *ast.SizeofExprExpr:
		return e.sizeofExprConst(ex.Operand)

	default:
		return 0, e.Fail(creport.New(creport.CST002, "constexpr", "expression not allowed in a constant expression", spanAt(expr.Position())))
	}
}

func (e *Env) foldConstBinary(ex *ast.BinaryExpr) (int64, error) {
	l, err := e.foldConstInt(ex.Left)
	if err != nil {
		return 0, err
	}
	r, err := e.foldConstInt(ex.Right)
	if err != nil {
		return 0, err
	}
	switch ex.Op {
	case ast.OpAdd:
		return l + r, nil
	case ast.OpSub:
		return l - r, nil
	case ast.OpMul:
		return l * r, nil
	case ast.OpDiv:
		if r == 0 {
			return 0, e.Fail(creport.New(creport.CST001, "constexpr", "division by zero in constant expression", spanAt(ex.Pos)))
		}
		return l / r, nil
	case ast.OpMod:
		if r == 0 {
			return 0, e.Fail(creport.New(creport.CST001, "constexpr", "division by zero in constant expression", spanAt(ex.Pos)))
		}
		return l % r, nil
	case ast.OpBitAnd:
		return l & r, nil
	case ast.OpBitOr:
		return l | r, nil
	case ast.OpBitXor:
		return l ^ r, nil
	case ast.OpShl:
		return l << uint(r), nil
	case ast.OpShr:
		return l >> uint(r), nil
	case ast.OpEq:
		return boolToInt(l == r), nil
	case ast.OpNe:
		return boolToInt(l != r), nil
	case ast.OpLt:
		return boolToInt(l < r), nil
	case ast.OpLe:
		return boolToInt(l <= r), nil
	case ast.OpGt:
		return boolToInt(l > r), nil
	case ast.OpGe:
		return boolToInt(l >= r), nil
	case ast.OpLogAnd:
		return boolToInt(l != 0 && r != 0), nil
	default: // OpLogOr
		return boolToInt(l != 0 || r != 0), nil
	}
}

// truncateToType reinterprets v as if stored into a variable of type t,
// mirroring the narrowing half of convert (§4.3.1) without a Builder.
func truncateToType(t ctypes.CType, v int64) int64 {
	it, ok := t.(*ctypes.IntegerCType)
	if !ok {
		return v
	}
	bits := it.IR().(ir.IntType).Bits
	if bits >= 64 {
		return v
	}
	mask := int64(1)<<uint(bits) - 1
	v &= mask
	if it.Signed && v&(int64(1)<<uint(bits-1)) != 0 {
		v -= int64(1) << uint(bits)
	}
	return v
}

// constIntValue builds the immediate IR value an integer constant of
// type t and value v lowers to, used to bind enumerators as constant
// terms (§4.1).
func constIntValue(t ctypes.CType, v int64) ir.Value {
	return ir.ConstInt(t.IR(), v)
}

// withScratchBuilder runs fn with a throwaway function and Builder
// installed as current, restoring whatever was current afterward. Used
// only by sizeof(<expr>) (§4.3's "operand is lowered in a sandboxed
// scratch function purely to discover its type, then discarded") —
// every other constant-expression call site (array lengths, enum
// values, case labels) uses foldConstInt instead, which needs no
// Builder at all.
func (e *Env) withScratchBuilder(fn func() error) error {
	savedBuilder, savedFunc, savedFnC := e.Builder, e.curFunc, e.curFnC
	scratch := &ir.Function{Name: "__sizeof_scratch"}
	e.curFunc = scratch
	e.curFnC = nil
	e.Builder = ir.NewBuilder(scratch)
	e.Builder.Append(e.Builder.AddBlock("entry"))

	err := fn()

	e.Builder, e.curFunc, e.curFnC = savedBuilder, savedFunc, savedFnC
	return err
}

// sizeofExprConst computes sizeof(expr)'s value by lowering expr for
// its type alone, inside a scratch function whose instructions are
// never linked into the translation unit.
func (e *Env) sizeofExprConst(expr ast.Expr) (int64, error) {
	var size int64
	err := e.withScratchBuilder(func() error {
		t, err := e.LowerExpr(expr, RValueContext)
		if err != nil {
			return err
		}
		size = int64(ctypes.SizeOf(t.Type))
		return nil
	})
	return size, err
}

// EvalConst implements §4.2's general constant-expression evaluator for
// the initializer compiler's call sites, which — unlike EvalConstInt's
// array-length/enum/case-label call sites — may legitimately produce an
// address constant (`&global`, a bare array/function identifier, a
// string literal) rather than only an integer. An integer-shaped
// expression still folds through EvalConstInt/foldConstInt; only the
// address shapes get special-cased here, so no Builder is needed even
// for this broader evaluator.
func (e *Env) EvalConst(expr ast.Expr) (Term, error) {
	switch ex := expr.(type) {
	case *ast.UnaryExpr:
		if ex.Op == ast.OpAddrOf {
			return e.constAddrOf(ex.Operand)
		}
	case *ast.IdentExpr:
		if b, ok := e.Scope.Lookup(ex.Name); ok && b.Term.Value.Kind == ir.GlobalAddr {
			return b.Term, nil
		}
	case *ast.StringLiteral:
		return e.lowerStringLiteral(ex)
	case *ast.CastExpr:
		inner, err := e.EvalConst(ex.Operand)
		if err != nil {
			return Term{}, err
		}
		if inner.Value.Kind == ir.GlobalAddr {
			target, terr := e.ResolveTypeName(ex.Type)
			if terr != nil {
				return Term{}, terr
			}
			return Term{Type: target, Value: retag(inner.Value, target.IR())}, nil
		}
	}

	v, err := e.foldConstInt(expr)
	if err != nil {
		return Term{}, err
	}
	t := e.Types.Pool.Int
	return Term{Type: t, Value: ir.ConstInt(t.IR(), v)}, nil
}

// constAddrOf resolves `&identifier` without a Builder. Address-of a
// sub-object (`&arr[i]`, `&s.field`) inside a constant expression is not
// implemented — a backend would need element/field offset composition
// this evaluator doesn't do.
func (e *Env) constAddrOf(operand ast.Expr) (Term, error) {
	ex, ok := operand.(*ast.IdentExpr)
	if !ok {
		return Term{}, e.Fail(creport.Unimplemented("constexpr", "address-of a sub-object in a constant expression", spanAt(operand.Position())))
	}
	b, found := e.Scope.Lookup(ex.Name)
	if !found {
		return Term{}, e.Fail(creport.New(creport.EXP001, "expr", "unbound identifier: "+ex.Name, spanAt(ex.Pos)))
	}
	pt := e.Types.Pool.PointerTo(b.Term.Type)
	return Term{Type: pt, Value: retag(b.Term.Value, pt.IR())}, nil
}
