package lower

import (
	"github.com/ccirgen/ccirgen/internal/ctypes"
	"github.com/ccirgen/ccirgen/internal/ir"
)

// voidPtrIR is the IR type a `void *` parameter/return lowers to; the
// memcpy/memset runtime builtins are declared against it (§4.3, §4.4).
func voidPtrIR() ir.Type { return ir.PointerType{Elem: ir.VoidType{}} }

// ensureExternFunc registers (once per translation unit) an extern
// function declaration and returns a callee Value for it — used to call
// through to the memcpy/memset runtime builtins §4.3's "struct and
// array assignment is a byte copy" and §4.4's "a single call to the
// memset builtin" require.
func (e *Env) ensureExternFunc(name string, params []ir.Type, ret ir.Type, variadic bool) ir.Value {
	for _, fn := range e.Unit.Functions {
		if fn.Name == name {
			return ir.GlobalRef(name, fnIrType(fn))
		}
	}
	fnParams := make([]ir.Param, len(params))
	for i, p := range params {
		fnParams[i] = ir.Param{Type: p}
	}
	fn := &ir.Function{Name: name, Params: fnParams, ReturnType: ret, Variadic: variadic, Linkage: ir.LinkageGlobal}
	e.Unit.AddFunction(fn)
	return ir.GlobalRef(name, ir.FuncType{Params: params, Return: ret, Variadic: variadic})
}

func fnIrType(fn *ir.Function) ir.Type {
	params := make([]ir.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Type
	}
	return ir.FuncType{Params: params, Return: fn.ReturnType, Variadic: fn.Variadic}
}

// storeAssign implements §4.3's assignment rule at the value-storage
// level shared by `=`, compound assignment's writeback, and initializer
// compilation: a struct/array target is a byte copy through memcpy,
// anything else converts to the target type and stores directly.
func (e *Env) storeAssign(lv, rv Term) (Term, error) {
	switch lv.Type.(type) {
	case *ctypes.StructCType, *ctypes.ArrayCType:
		size := ctypes.SizeOf(lv.Type)
		memcpy := e.ensureExternFunc(ir.BuiltinMemcpy(),
			[]ir.Type{voidPtrIR(), voidPtrIR(), e.sizeTType().IR()}, voidPtrIR(), false)
		sizeVal := ir.ConstInt(e.sizeTType().IR(), int64(size))
		e.Builder.BuildCall(memcpy, ir.VoidType{},
			[]ir.Value{retag(lv.Value, voidPtrIR()), retag(rv.Value, voidPtrIR()), sizeVal})
		return Term{Type: lv.Type, Value: lv.Value, IsLValue: true}, nil
	default:
		converted, err := e.convert(rv, lv.Type)
		if err != nil {
			return Term{}, err
		}
		e.Builder.BuildStore(lv.Value, converted.Value)
		return converted, nil
	}
}
