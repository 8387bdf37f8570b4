package lower

import (
	"github.com/ccirgen/ccirgen/internal/ast"
	"github.com/ccirgen/ccirgen/internal/creport"
	"github.com/ccirgen/ccirgen/internal/ctypes"
	"github.com/ccirgen/ccirgen/internal/ir"
	"github.com/ccirgen/ccirgen/internal/srcnorm"
)

// compileLocalInitializer implements §4.4's initializer compiler for
// automatic storage: a scalar initializer stores through the Builder
// directly, a brace initializer recurses element-by-element over a
// zero-filled slot so that trailing, un-listed elements read as zero
// (C99 6.7.8p21) without a separate zero pass for every leaf.
func (e *Env) compileLocalInitializer(t ctypes.CType, init ast.Initializer, slot ir.Value) error {
	switch in := init.(type) {
	case ast.ExprInitializer:
		return e.compileExprInitializer(t, in.Expr, slot)
	case ast.BraceInitializer:
		if err := e.zeroFill(t, slot); err != nil {
			return err
		}
		return e.compileBraceInitializer(t, in, slot)
	default:
		return e.Fail(creport.Bug(creport.BUG003, "initializer", "unhandled initializer node"))
	}
}

// compileExprInitializer handles the one non-scalar shape an expression
// initializer may take — a string literal initializing a char array —
// plus the ordinary scalar/struct-copy case shared with assignment.
func (e *Env) compileExprInitializer(t ctypes.CType, expr ast.Expr, slot ir.Value) error {
	if at, ok := t.(*ctypes.ArrayCType); ok {
		if sl, ok := expr.(*ast.StringLiteral); ok {
			return e.compileStringIntoArray(at, sl, slot)
		}
	}
	rv, err := e.LowerExpr(expr, RValueContext)
	if err != nil {
		return err
	}
	lv := Term{Type: t, Value: slot, IsLValue: true}
	_, err = e.storeAssign(lv, rv)
	return err
}

// compileStringIntoArray implements §4.4's "a char array initialized by
// a string literal copies the bytes (NUL included when it fits) element
// by element, stopping at the array's length" rule, completing an
// incomplete array to the literal's length (NUL included) first.
func (e *Env) compileStringIntoArray(at *ctypes.ArrayCType, sl *ast.StringLiteral, slot ir.Value) error {
	bytes := srcnorm.Bytes(sl.Value)
	bytes = append(append([]byte{}, bytes...), 0)
	if at.Incomplete {
		at.Complete(len(bytes))
	}
	n := at.Size
	if len(bytes) < n {
		n = len(bytes)
	}
	for i := 0; i < n; i++ {
		ptr := e.Builder.BuildField(slot, at.IR(), i)
		e.Builder.BuildStore(ptr, ir.ConstInt(at.Elem.IR(), int64(int8(bytes[i]))))
	}
	return nil
}

// zeroFill implements §4.4's "an object not fully covered by its
// initializer is zeroed" rule via a single memset call over the whole
// object, cheaper than a store per leaf for large aggregates.
func (e *Env) zeroFill(t ctypes.CType, slot ir.Value) error {
	size := ctypes.SizeOf(t)
	memset := e.ensureExternFunc(ir.BuiltinMemset(),
		[]ir.Type{voidPtrIR(), ir.IntType{Bits: 32, Signed: true}, e.sizeTType().IR()}, voidPtrIR(), false)
	e.Builder.BuildCall(memset, ir.VoidType{}, []ir.Value{
		retag(slot, voidPtrIR()),
		ir.ConstInt(ir.IntType{Bits: 32, Signed: true}, 0),
		ir.ConstInt(e.sizeTType().IR(), int64(size)),
	})
	return nil
}

// compileBraceInitializer dispatches a brace-enclosed initializer to the
// array or struct/union element walk; a designator on a scalar type is
// ill-formed (§4.4, INI001).
func (e *Env) compileBraceInitializer(t ctypes.CType, br ast.BraceInitializer, slot ir.Value) error {
	switch ct := t.(type) {
	case *ctypes.ArrayCType:
		return e.compileArrayBrace(ct, br, slot)
	case *ctypes.StructCType:
		return e.compileStructBrace(ct, br, slot)
	default:
		return e.Fail(creport.New(creport.INI001, "initializer", "brace initializer applied to a scalar type", nil))
	}
}

// compileArrayBrace walks an array's brace initializer in order,
// applying an index designator when present (§4.4's designated
// initializer rule) and completing an incomplete array to the highest
// index touched, the way a top-level `int a[] = {1,2,3}` infers length 3.
func (e *Env) compileArrayBrace(at *ctypes.ArrayCType, br ast.BraceInitializer, slot ir.Value) error {
	idx := 0
	maxIdx := -1
	for _, el := range br.Elements {
		for _, d := range el.Designators {
			ixd, ok := d.(ast.IndexDesignator)
			if !ok {
				return e.Fail(creport.New(creport.INI001, "initializer", "field designator applied to an array", nil))
			}
			v, err := e.EvalConstInt(ixd.Index)
			if err != nil {
				return err
			}
			idx = int(v)
		}
		if !at.Incomplete && idx >= at.Size {
			return e.Fail(creport.New(creport.INI002, "initializer", "too many initializer elements for array", nil))
		}
		ptr := e.Builder.BuildField(slot, at.IR(), idx)
		if err := e.compileLocalInitializer(at.Elem, el.Init, ptr); err != nil {
			return err
		}
		if idx > maxIdx {
			maxIdx = idx
		}
		idx++
	}
	if at.Incomplete {
		at.Complete(maxIdx + 1)
	}
	return nil
}

// compileStructBrace walks a struct/union's brace initializer in
// declaration order, applying a field designator when present; a union
// only ever has one active member, so each element simply targets its
// designated (or first, if none given) field.
func (e *Env) compileStructBrace(st *ctypes.StructCType, br ast.BraceInitializer, slot ir.Value) error {
	fieldIdx := 0
	for _, el := range br.Elements {
		for _, d := range el.Designators {
			fd, ok := d.(ast.FieldDesignator)
			if !ok {
				return e.Fail(creport.New(creport.INI001, "initializer", "index designator applied to a struct/union", nil))
			}
			i := st.FieldIndex(fd.Field)
			if i < 0 {
				return e.Fail(creport.New(creport.EXP007, "initializer", "unknown field: "+fd.Field, nil))
			}
			fieldIdx = i
		}
		if fieldIdx >= len(st.Fields) {
			return e.Fail(creport.New(creport.INI002, "initializer", "too many initializer elements for struct/union", nil))
		}
		field := st.Fields[fieldIdx]
		ptr := e.Builder.BuildField(slot, st.IR(), fieldIdx)
		if err := e.compileLocalInitializer(field.Type, el.Init, ptr); err != nil {
			return err
		}
		fieldIdx++
		if st.Union {
			break
		}
	}
	return nil
}

// compileConstInitializer is compileLocalInitializer's global/static-
// storage counterpart (§4.4): instead of Builder stores, it elaborates a
// full ir.Const tree suitable as an ir.Global's Init.
func (e *Env) compileConstInitializer(t ctypes.CType, init ast.Initializer) (ir.Const, error) {
	switch in := init.(type) {
	case ast.ExprInitializer:
		return e.compileConstExprInitializer(t, in.Expr)
	case ast.BraceInitializer:
		return e.compileConstBraceInitializer(t, in)
	default:
		return nil, e.Fail(creport.Bug(creport.BUG003, "initializer", "unhandled initializer node"))
	}
}

func (e *Env) compileConstExprInitializer(t ctypes.CType, expr ast.Expr) (ir.Const, error) {
	if at, ok := t.(*ctypes.ArrayCType); ok {
		if sl, ok := expr.(*ast.StringLiteral); ok {
			return e.constStringArray(at, sl), nil
		}
	}
	term, err := e.EvalConst(expr)
	if err != nil {
		return nil, err
	}
	switch term.Value.Kind {
	case ir.GlobalAddr:
		return ir.GlobalAddrConst{Name: term.Value.Global, Typ: t.IR()}, nil
	default:
		return ir.IntConst{Typ: t.IR(), Value: truncateToType(t, term.Value.Int)}, nil
	}
}

// constStringArray is compileStringIntoArray's const-storage counterpart:
// a string literal elaborates directly to an ArrayConst of IntConst bytes.
func (e *Env) constStringArray(at *ctypes.ArrayCType, sl *ast.StringLiteral) ir.Const {
	bytes := srcnorm.Bytes(sl.Value)
	bytes = append(append([]byte{}, bytes...), 0)
	if at.Incomplete {
		at.Complete(len(bytes))
	}
	n := at.Size
	elems := make([]ir.Const, n)
	for i := 0; i < n; i++ {
		var b byte
		if i < len(bytes) {
			b = bytes[i]
		}
		elems[i] = ir.IntConst{Typ: at.Elem.IR(), Value: int64(int8(b))}
	}
	return ir.ArrayConst{Typ: at.IR(), Elements: elems}
}

func (e *Env) compileConstBraceInitializer(t ctypes.CType, br ast.BraceInitializer) (ir.Const, error) {
	switch ct := t.(type) {
	case *ctypes.ArrayCType:
		return e.constArrayBrace(ct, br)
	case *ctypes.StructCType:
		return e.constStructBrace(ct, br)
	default:
		return nil, e.Fail(creport.New(creport.INI001, "initializer", "brace initializer applied to a scalar type", nil))
	}
}

func (e *Env) constArrayBrace(at *ctypes.ArrayCType, br ast.BraceInitializer) (ir.Const, error) {
	slots := map[int]ir.Const{}
	idx := 0
	maxIdx := -1
	for _, el := range br.Elements {
		for _, d := range el.Designators {
			ixd, ok := d.(ast.IndexDesignator)
			if !ok {
				return nil, e.Fail(creport.New(creport.INI001, "initializer", "field designator applied to an array", nil))
			}
			v, err := e.EvalConstInt(ixd.Index)
			if err != nil {
				return nil, err
			}
			idx = int(v)
		}
		if !at.Incomplete && idx >= at.Size {
			return nil, e.Fail(creport.New(creport.INI002, "initializer", "too many initializer elements for array", nil))
		}
		c, err := e.compileConstInitializer(at.Elem, el.Init)
		if err != nil {
			return nil, err
		}
		slots[idx] = c
		if idx > maxIdx {
			maxIdx = idx
		}
		idx++
	}
	if at.Incomplete {
		at.Complete(maxIdx + 1)
	}
	elems := make([]ir.Const, at.Size)
	for i := 0; i < at.Size; i++ {
		if c, ok := slots[i]; ok {
			elems[i] = c
		} else {
			elems[i] = ir.ZeroConst{Typ: at.Elem.IR()}
		}
	}
	return ir.ArrayConst{Typ: at.IR(), Elements: elems}, nil
}

func (e *Env) constStructBrace(st *ctypes.StructCType, br ast.BraceInitializer) (ir.Const, error) {
	slots := make([]ir.Const, len(st.Fields))
	set := make([]bool, len(st.Fields))
	fieldIdx := 0
	for _, el := range br.Elements {
		for _, d := range el.Designators {
			fd, ok := d.(ast.FieldDesignator)
			if !ok {
				return nil, e.Fail(creport.New(creport.INI001, "initializer", "index designator applied to a struct/union", nil))
			}
			i := st.FieldIndex(fd.Field)
			if i < 0 {
				return nil, e.Fail(creport.New(creport.EXP007, "initializer", "unknown field: "+fd.Field, nil))
			}
			fieldIdx = i
		}
		if fieldIdx >= len(st.Fields) {
			return nil, e.Fail(creport.New(creport.INI002, "initializer", "too many initializer elements for struct/union", nil))
		}
		c, err := e.compileConstInitializer(st.Fields[fieldIdx].Type, el.Init)
		if err != nil {
			return nil, err
		}
		slots[fieldIdx] = c
		set[fieldIdx] = true
		fieldIdx++
		if st.Union {
			break
		}
	}
	for i, f := range st.Fields {
		if !set[i] {
			slots[i] = ir.ZeroConst{Typ: f.Type.IR()}
		}
	}
	return ir.StructConst{Typ: st.IR(), Fields: slots}, nil
}
