package lower

import (
	"github.com/ccirgen/ccirgen/internal/ast"
	"github.com/ccirgen/ccirgen/internal/config"
	"github.com/ccirgen/ccirgen/internal/creport"
	"github.com/ccirgen/ccirgen/internal/ctypes"
	"github.com/ccirgen/ccirgen/internal/ir"
)

// LowerTranslationUnit implements §4.6's top-level driver: each toplevel
// node (a function definition or a declaration) lowers in source order;
// inline deferral means a plain `inline` function's body may still be
// pending emission after every node has been walked, so a final pass
// checks for deferred bodies nothing ever triggered (left unemitted —
// §4.6 "inline without a triggering extern redeclaration contributes no
// definition to this translation unit", matching C99 6.7.4p7).
func LowerTranslationUnit(target *config.Target, decls []ast.Toplevel) (*ir.TranslationUnit, []*creport.Report) {
	e := NewEnv(target)
	for _, top := range decls {
		if err := e.lowerToplevel(top); err != nil {
			return e.Unit, e.Reports
		}
	}
	return e.Unit, e.Reports
}

// LowerToplevel lowers a single toplevel node against e, for a caller
// (`ccirgen repl`) that wants to step through a translation unit one
// form at a time rather than all at once via LowerTranslationUnit.
func (e *Env) LowerToplevel(top ast.Toplevel) error {
	return e.lowerToplevel(top)
}

func (e *Env) lowerToplevel(top ast.Toplevel) error {
	switch t := top.(type) {
	case *ast.FunctionDef:
		return e.lowerFunctionDef(t)
	case *ast.Decl:
		return e.lowerGlobalDecl(t)
	default:
		return e.Fail(creport.Bug(creport.BUG003, "driver", "unhandled toplevel node"))
	}
}

// lowerFunctionDef implements §4.6's function-definition handling: a
// plain `inline` definition (neither `static` nor `extern`) is withheld
// until a matching `extern` redeclaration triggers it; every other
// function definition emits immediately.
func (e *Env) lowerFunctionDef(fd *ast.FunctionDef) error {
	storage, inline, base, err := e.ClassifySpecifiers(fd.Specs)
	if err != nil {
		return err
	}
	name, ctype, err := e.DeclToCDecl(base, fd.Declarator)
	if err != nil {
		return err
	}
	fnType, ok := ctype.(*ctypes.FunctionCType)
	if !ok {
		return e.Fail(creport.Bug(creport.BUG003, "driver", "function definition declarator is not a function type"))
	}

	if inline && storage != ast.Extern && storage != ast.Static {
		e.DeferInline(name, fnType, fd)
		return nil
	}

	linkage := ir.LinkageGlobal
	if storage == ast.Static {
		linkage = ir.LinkageLocal
	}
	return e.emitFunctionBody(name, fnType, fd, linkage)
}

// lowerGlobalDecl implements §4.1/§4.6's top-level (non-definition)
// declaration handling: a typedef binds a name, a function-typed
// declarator either registers an extern prototype or — when it's an
// `extern` redeclaration matching a deferred inline body — triggers that
// body's emission, and anything else is a global variable.
func (e *Env) lowerGlobalDecl(d *ast.Decl) error {
	storage, _, base, err := e.ClassifySpecifiers(d.Specs)
	if err != nil {
		return err
	}
	for _, id := range d.InitDeclarators {
		name, t, derr := e.DeclToCDecl(base, id.Declarator)
		if derr != nil {
			return derr
		}
		if storage == ast.Typedef {
			e.Types.DefineTypedef(name, t)
			continue
		}
		if fnType, ok := t.(*ctypes.FunctionCType); ok {
			if err := e.lowerFunctionDecl(name, fnType, storage); err != nil {
				return err
			}
			continue
		}
		if err := e.lowerGlobalVar(name, t, storage, id.Initializer); err != nil {
			return err
		}
	}
	return nil
}

// lowerFunctionDecl handles a bare function prototype: an `extern`
// redeclaration matching a pending deferred-inline body triggers that
// body's emission (§4.6); otherwise it registers an external declaration
// with no body, unless the name is already bound (an ordinary repeated
// prototype, a no-op).
func (e *Env) lowerFunctionDecl(name string, fnType *ctypes.FunctionCType, storage ast.StorageClass) error {
	if d := e.TakeDeferredInline(name); d != nil {
		if !fnType.Equals(d.FuncType) {
			return e.Fail(creport.New(creport.LNK002, "driver", "extern redeclaration disagrees with deferred inline definition: "+name, spanAt(d.Def.Pos)))
		}
		return e.emitFunctionBody(name, d.FuncType, d.Def, ir.LinkageGlobal)
	}
	if _, bound := e.Scope.Lookup(name); bound {
		return nil
	}
	e.Unit.AddFunction(&ir.Function{Name: name, Params: irParams(fnType), ReturnType: fnType.Return.IR(), Variadic: fnType.Variadic, Linkage: ir.LinkageGlobal})
	e.Scope.Define(Binding{Name: name, Term: Term{Type: fnType, Value: ir.GlobalRef(name, fnType.IR())}})
	return nil
}

func irParams(fnType *ctypes.FunctionCType) []ir.Param {
	params := make([]ir.Param, len(fnType.Params))
	for i, p := range fnType.Params {
		params[i] = ir.Param{Type: p.IR()}
	}
	return params
}

// lowerGlobalVar implements §4.4's global-storage initializer path: a
// `static` variable gets file-local linkage, an initializer elaborates
// through compileConstInitializer into an ir.Const tree, and a variable
// with neither `extern` nor an initializer is tentative (zero-initialized
// by the backend, Init left nil).
func (e *Env) lowerGlobalVar(name string, t ctypes.CType, storage ast.StorageClass, init ast.Initializer) error {
	if b, bound := e.Scope.Lookup(name); bound {
		if !b.Term.Type.Equals(t) {
			return e.Fail(creport.New(creport.LNK003, "driver", "conflicting redeclaration of global: "+name, nil))
		}
	}

	linkage := ir.LinkageGlobal
	if storage == ast.Static {
		linkage = ir.LinkageLocal
	}
	g := &ir.Global{Name: name, Type: t.IR(), Linkage: linkage, Extern: storage == ast.Extern}
	if init != nil {
		c, err := e.compileConstInitializer(t, init)
		if err != nil {
			return err
		}
		g.Init = c
	}
	e.Unit.AddVar(g)
	e.Scope.Define(Binding{Name: name, Term: Term{Type: t, Value: ir.GlobalRef(name, t.IR()), IsLValue: true}})
	return nil
}

// emitFunctionBody lowers a function definition's body into a fresh IR
// function: the struct-return ABI's hidden pointer (if any) binds first
// as parameter 0 under retSlotName, each declared parameter copies into
// a local slot so it can be reassigned like any other local (§4.3's
// l-value rule for parameters), and a function whose body falls off the
// end without an explicit return gets an implicit void return (undefined
// behavior in C for a value-returning function, but still requires a
// well-formed terminator here, §8).
func (e *Env) emitFunctionBody(name string, fnType *ctypes.FunctionCType, fd *ast.FunctionDef, linkage ir.Linkage) error {
	structReturn := false
	params := make([]ir.Param, 0, len(fnType.Params)+1)
	if _, ok := fnType.Return.(*ctypes.StructCType); ok {
		structReturn = true
		params = append(params, ir.Param{Name: retSlotName, Type: ir.PointerType{Elem: fnType.Return.IR()}})
	}
	paramNames := paramDeclNames(fd.Declarator)
	for i, pt := range fnType.Params {
		pname := ""
		if i < len(paramNames) {
			pname = paramNames[i]
		}
		params = append(params, ir.Param{Name: pname, Type: pt.IR()})
	}

	retIR := fnType.Return.IR()
	if structReturn {
		retIR = ir.VoidType{}
	}
	fn := &ir.Function{Name: name, Params: params, ReturnType: retIR, Variadic: fnType.Variadic, Linkage: linkage}
	e.Unit.AddFunction(fn)
	e.Scope.Define(Binding{Name: name, Term: Term{Type: fnType, Value: ir.GlobalRef(name, fnType.IR())}})

	e.EnterFunction(fn, fnType)
	e.PushScope()
	entry := e.Builder.AddBlock("entry")
	e.Builder.Append(entry)

	offset := 0
	if structReturn {
		e.Scope.Define(Binding{Name: retSlotName, Term: Term{
			Type:  fnType.Return,
			Value: ir.Value{Kind: ir.ParamValue, Type: params[0].Type, Reg: 0},
		}})
		offset = 1
	}
	for i, pt := range fnType.Params {
		if i >= len(paramNames) || paramNames[i] == "" {
			continue
		}
		pv := ir.Value{Kind: ir.ParamValue, Type: pt.IR(), Reg: i + offset}
		slot := e.Builder.BuildLocal(pt.IR())
		e.Builder.BuildStore(slot, pv)
		e.Scope.Define(Binding{Name: paramNames[i], Term: Term{Type: pt, Value: slot, IsLValue: true}})
	}

	if err := e.LowerStmt(fd.Body); err != nil {
		e.PopScope()
		return err
	}
	e.PopScope()

	if !e.Builder.Cur.Terminated() {
		e.Builder.BuildRetVoid()
	}

	return e.ResolveFixups()
}

// paramDeclNames extracts each parameter's declared name, in order, from
// a function definition's declarator chain (the FunctionDeclarator
// buried under any pointer/array wrapping of the return type).
func paramDeclNames(d ast.Declarator) []string {
	fn := findFunctionDeclarator(d)
	if fn == nil {
		return nil
	}
	names := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		names[i] = declaratorName(p.Declarator)
	}
	return names
}

func findFunctionDeclarator(d ast.Declarator) *ast.FunctionDeclarator {
	switch dd := d.(type) {
	case ast.FunctionDeclarator:
		return &dd
	case ast.PointerDeclarator:
		return findFunctionDeclarator(dd.Pointee)
	case ast.NestedDeclarator:
		return findFunctionDeclarator(dd.Inner)
	case ast.ArrayDeclarator:
		return findFunctionDeclarator(dd.Base)
	default:
		return nil
	}
}

func declaratorName(d ast.Declarator) string {
	switch dd := d.(type) {
	case nil:
		return ""
	case ast.IdentifierDeclarator:
		return dd.Name
	case ast.PointerDeclarator:
		return declaratorName(dd.Pointee)
	case ast.NestedDeclarator:
		return declaratorName(dd.Inner)
	case ast.ArrayDeclarator:
		return declaratorName(dd.Base)
	case ast.FunctionDeclarator:
		return declaratorName(dd.Base)
	default:
		return ""
	}
}
