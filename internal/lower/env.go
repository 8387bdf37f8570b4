// Package lower is the lowering engine of spec.md §2: the declarator
// resolver, constant-expression evaluator, initializer compiler,
// expression lowerer, statement lowerer, and top-level driver all share
// one mutable Env and one package, because the spec's own dependency
// graph — declarator resolution needs constant evaluation needs
// expression lowering needs the type environment — is a cycle if split
// across packages that import each other. See DESIGN.md.
package lower

import (
	"github.com/ccirgen/ccirgen/internal/ast"
	"github.com/ccirgen/ccirgen/internal/config"
	"github.com/ccirgen/ccirgen/internal/creport"
	"github.com/ccirgen/ccirgen/internal/ctypes"
	"github.com/ccirgen/ccirgen/internal/ir"
)

// SwitchCase records one case label seen in the innermost switch's body
// (§3's SwitchCase, §4.5 "Switch"/"Case / default").
type SwitchCase struct {
	Value int64
	Block *ir.Block
}

// ctrlFrame is one entry of the break/continue/switch-case stack. A loop
// frame has both Break and Continue set and Switch nil; a switch frame
// has Break set, Continue nil (continue passes through to the nearest
// enclosing loop frame), and Switch non-nil.
type ctrlFrame struct {
	Break    *ir.Block
	Continue *ir.Block
	Switch   *switchState
}

type switchState struct {
	Cases        []SwitchCase
	HasDefault   bool
	DefaultBlock *ir.Block
}

// gotoFixup is a goto statement's unresolved branch (§3's GotoFixup,
// §4.5 "Goto"): Branch is the instruction whose Target field is nil
// until the fixup pass patches it in against LabelName.
type gotoFixup struct {
	LabelName string
	Branch    *ir.Instr
	Span      *ast.Span
}

// deferredInline is a function whose `inline` (non-extern) definition
// has been seen but whose body is withheld until a matching
// `extern inline` re-declaration triggers emission (§4.6).
type deferredInline struct {
	FuncType *ctypes.FunctionCType
	Def      *ast.FunctionDef
	Emitted  bool
}

// Env is the lowering engine's single mutable state record (§3, §9
// "mutable environment without globals"): current scope, type
// environment, current function context, control-flow target stack,
// label/fixup tables, and inline-function deferrals. Exactly one Env
// exists per translation unit.
type Env struct {
	Types   *ctypes.Env
	Target  *config.Target
	Unit    *ir.TranslationUnit
	Scope   *Scope

	Builder *ir.Builder
	curFunc *ir.Function
	curFnC  *ctypes.FunctionCType // current C function type, for return conversions

	ctrl []ctrlFrame // break/continue/switch-case stack, innermost last

	labels map[string]*ir.Block // goto labels, reset per function
	fixups []gotoFixup          // goto fixups, resolved at end of function

	inline map[string]*deferredInline

	stringLitTypeCache ctypes.CType // array-of-char element type memo

	Reports []*creport.Report // accumulated diagnostics; first Ill-formed/Unimplemented aborts the unit
}

// NewEnv creates the lowering state for one translation unit.
func NewEnv(target *config.Target) *Env {
	return &Env{
		Types:  ctypes.NewEnv(),
		Target: target,
		Unit:   ir.NewTranslationUnit(),
		Scope:  NewScope(nil),
		labels: make(map[string]*ir.Block),
		inline: make(map[string]*deferredInline),
	}
}

// Fail records an Ill-formed-program or Unimplemented report and returns
// it wrapped as an error; callers propagate it upward to the driver,
// which aborts translation of the unit (§7: no partial IR on failure).
func (e *Env) Fail(rep *creport.Report) error {
	e.Reports = append(e.Reports, rep)
	return creport.Wrap(rep)
}

// PushScope opens a new lexical scope as the current scope's child.
func (e *Env) PushScope() { e.Scope = NewScope(e.Scope) }

// PopScope restores the enclosing scope.
func (e *Env) PopScope() { e.Scope = e.Scope.Parent() }

// PushLoop enters a loop construct, installing its break/continue targets.
func (e *Env) PushLoop(brk, cont *ir.Block) {
	e.ctrl = append(e.ctrl, ctrlFrame{Break: brk, Continue: cont})
}

// PushSwitch enters a switch construct; continue passes through to the
// nearest enclosing loop frame, consistent with C's scoping of continue.
func (e *Env) PushSwitch(brk *ir.Block) *switchState {
	st := &switchState{}
	e.ctrl = append(e.ctrl, ctrlFrame{Break: brk, Switch: st})
	return st
}

// PopCtrl leaves the innermost loop or switch frame.
func (e *Env) PopCtrl() {
	e.ctrl = e.ctrl[:len(e.ctrl)-1]
}

// BreakTarget returns the nearest enclosing loop/switch's break block, or
// nil if break appears outside any (a caller error, §4.5).
func (e *Env) BreakTarget() *ir.Block {
	if len(e.ctrl) == 0 {
		return nil
	}
	return e.ctrl[len(e.ctrl)-1].Break
}

// ContinueTarget returns the nearest enclosing LOOP's continue block,
// skipping over switch frames, or nil if continue appears outside any loop.
func (e *Env) ContinueTarget() *ir.Block {
	for i := len(e.ctrl) - 1; i >= 0; i-- {
		if e.ctrl[i].Continue != nil {
			return e.ctrl[i].Continue
		}
	}
	return nil
}

// CurrentSwitch returns the innermost switch's case-accumulation state.
// A case/default nested inside a loop that is itself nested inside a
// switch still binds to that switch, so this walks past loop frames
// rather than stopping at the first one.
func (e *Env) CurrentSwitch() *switchState {
	for i := len(e.ctrl) - 1; i >= 0; i-- {
		if e.ctrl[i].Switch != nil {
			return e.ctrl[i].Switch
		}
	}
	return nil
}

// DefineLabel records a goto target within the current function.
func (e *Env) DefineLabel(name string, blk *ir.Block) {
	e.labels[name] = blk
}

// AddFixup records an unresolved goto for end-of-function resolution.
func (e *Env) AddFixup(label string, branch *ir.Instr, span *ast.Span) {
	e.fixups = append(e.fixups, gotoFixup{LabelName: label, Branch: branch, Span: span})
}

// ResolveFixups patches every pending goto's branch target against the
// label table, reporting LNK001 for any label never defined in this
// function, then resets both tables for the next function.
func (e *Env) ResolveFixups() error {
	for _, fx := range e.fixups {
		blk, ok := e.labels[fx.LabelName]
		if !ok {
			return e.Fail(creport.New(creport.LNK001, "driver", "undefined goto label: "+fx.LabelName, fx.Span))
		}
		fx.Branch.Target = blk
	}
	e.labels = make(map[string]*ir.Block)
	e.fixups = nil
	return nil
}

// EnterFunction installs fn/fnType as the current function context.
func (e *Env) EnterFunction(fn *ir.Function, fnType *ctypes.FunctionCType) {
	e.curFunc = fn
	e.curFnC = fnType
	e.Builder = ir.NewBuilder(fn)
}

// CurrentFunction returns the IR function currently being lowered.
func (e *Env) CurrentFunction() *ir.Function { return e.curFunc }

// CurrentFunctionType returns the C type of the function currently being
// lowered, used by Return to convert the result to the declared type.
func (e *Env) CurrentFunctionType() *ctypes.FunctionCType { return e.curFnC }

// DeferInline records fn's body for later emission (§4.6).
func (e *Env) DeferInline(name string, fnType *ctypes.FunctionCType, def *ast.FunctionDef) {
	e.inline[name] = &deferredInline{FuncType: fnType, Def: def}
}

// TakeDeferredInline returns and marks-emitted the deferred body matching
// name, if one is pending and not already emitted.
func (e *Env) TakeDeferredInline(name string) *deferredInline {
	d, ok := e.inline[name]
	if !ok || d.Emitted {
		return nil
	}
	d.Emitted = true
	return d
}
