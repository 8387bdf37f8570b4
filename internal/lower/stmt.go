package lower

import (
	"github.com/ccirgen/ccirgen/internal/ast"
	"github.com/ccirgen/ccirgen/internal/creport"
	"github.com/ccirgen/ccirgen/internal/ctypes"
	"github.com/ccirgen/ccirgen/internal/ir"
)

// retSlotName binds the hidden return-pointer parameter a struct-
// returning function's ABI needs (§9) in its top-level scope; not a
// valid C identifier, so it can never collide with a declared one.
const retSlotName = "__ret_slot"

// LowerStmt implements ir_gen_stmt of §4.5: each statement shape lowers
// to one or more basic blocks, threading the Builder's current block
// forward. Blocks left dangling at the end of a function are the
// driver's job to close off, not this function's.
func (e *Env) LowerStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.CompoundStmt:
		return e.lowerCompound(s)
	case *ast.ExprStmt:
		return e.lowerExprStmt(s)
	case *ast.IfStmt:
		return e.lowerIf(s)
	case *ast.WhileStmt:
		return e.lowerWhile(s)
	case *ast.DoWhileStmt:
		return e.lowerDoWhile(s)
	case *ast.ForStmt:
		return e.lowerFor(s)
	case *ast.SwitchStmt:
		return e.lowerSwitch(s)
	case *ast.CaseStmt:
		return e.lowerCase(s)
	case *ast.DefaultStmt:
		return e.lowerDefault(s)
	case *ast.LabeledStmt:
		return e.lowerLabeled(s)
	case *ast.GotoStmt:
		return e.lowerGoto(s)
	case *ast.BreakStmt:
		return e.lowerBreak(s)
	case *ast.ContinueStmt:
		return e.lowerContinue(s)
	case *ast.ReturnStmt:
		return e.lowerReturn(s)
	case *ast.DeclStmt:
		return e.lowerLocalDecl(s.Decl)
	default:
		return e.Fail(creport.Bug(creport.BUG003, "stmt", "unhandled statement node"))
	}
}

// lowerCompound implements `{ ... }` (§4.5): a fresh block scope, with
// each item either a Stmt or a *ast.Decl (local declaration).
func (e *Env) lowerCompound(c *ast.CompoundStmt) error {
	e.PushScope()
	defer e.PopScope()
	for _, item := range c.Items {
		switch it := item.(type) {
		case *ast.Decl:
			if err := e.lowerLocalDecl(it); err != nil {
				return err
			}
		case ast.Stmt:
			if err := e.LowerStmt(it); err != nil {
				return err
			}
		default:
			return e.Fail(creport.Bug(creport.BUG003, "stmt", "compound statement item is neither a Decl nor a Stmt"))
		}
	}
	return nil
}

// lowerLocalDecl implements a declaration appearing inside a function
// body (§4.1/§4.4): a `typedef` binds the name in the type environment
// and stops there; otherwise each init-declarator allocates a local slot
// and, if initialized, compiles its initializer.
func (e *Env) lowerLocalDecl(d *ast.Decl) error {
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
		slot := e.Builder.BuildLocal(t.IR())
		e.Scope.Define(Binding{Name: name, Term: Term{Type: t, Value: slot, IsLValue: true}})
		if id.Initializer != nil {
			if ierr := e.compileLocalInitializer(t, id.Initializer, slot); ierr != nil {
				return ierr
			}
		}
	}
	return nil
}

func (e *Env) lowerExprStmt(s *ast.ExprStmt) error {
	if s.Expr == nil {
		return nil
	}
	_, err := e.LowerExpr(s.Expr, RValueContext)
	return err
}

// lowerIf implements §4.5's if/else: condition compared against zero,
// conditional branch to then/else blocks, both rejoining at a shared
// merge block (dropped if control can't reach it from either side, left
// to the driver's dead-block cleanup rather than tracked here).
func (e *Env) lowerIf(s *ast.IfStmt) error {
	cond, err := e.lowerCondition(s.Cond)
	if err != nil {
		return err
	}
	thenBlk := e.Builder.AddBlock("if.then")
	mergeBlk := e.Builder.AddBlock("if.end")
	elseBlk := mergeBlk
	if s.Else != nil {
		elseBlk = e.Builder.AddBlock("if.else")
	}
	e.Builder.BuildCond(cond, thenBlk, elseBlk)

	e.Builder.Append(thenBlk)
	if err := e.LowerStmt(s.Then); err != nil {
		return err
	}
	e.Builder.BuildBranch(mergeBlk)

	if s.Else != nil {
		e.Builder.Append(elseBlk)
		if err := e.LowerStmt(s.Else); err != nil {
			return err
		}
		e.Builder.BuildBranch(mergeBlk)
	}

	e.Builder.Append(mergeBlk)
	return nil
}

// lowerCondition lowers an rvalue and compares it against zero, the
// common shape every controlling expression in §4.5 needs.
func (e *Env) lowerCondition(expr ast.Expr) (ir.Value, error) {
	t, err := e.LowerExpr(expr, RValueContext)
	if err != nil {
		return ir.Value{}, err
	}
	t = e.decay(t)
	zero := ir.ConstInt(t.Value.Type, 0)
	return e.Builder.BuildCmp(ir.CmpNe, t.Value, zero), nil
}

// lowerWhile implements §4.5's while: test block re-entered from the
// body's fallthrough, break/continue both targeting the test block's
// surrounding blocks per the loop frame.
func (e *Env) lowerWhile(s *ast.WhileStmt) error {
	testBlk := e.Builder.AddBlock("while.cond")
	bodyBlk := e.Builder.AddBlock("while.body")
	endBlk := e.Builder.AddBlock("while.end")

	e.Builder.BuildBranch(testBlk)
	e.Builder.Append(testBlk)
	cond, err := e.lowerCondition(s.Cond)
	if err != nil {
		return err
	}
	e.Builder.BuildCond(cond, bodyBlk, endBlk)

	e.Builder.Append(bodyBlk)
	e.PushLoop(endBlk, testBlk)
	if err := e.LowerStmt(s.Body); err != nil {
		e.PopCtrl()
		return err
	}
	e.PopCtrl()
	e.Builder.BuildBranch(testBlk)

	e.Builder.Append(endBlk)
	return nil
}

// lowerDoWhile implements §4.5's do/while: body runs once unconditionally
// before the test, continue targets the test block (not the body entry).
func (e *Env) lowerDoWhile(s *ast.DoWhileStmt) error {
	bodyBlk := e.Builder.AddBlock("do.body")
	testBlk := e.Builder.AddBlock("do.cond")
	endBlk := e.Builder.AddBlock("do.end")

	e.Builder.BuildBranch(bodyBlk)
	e.Builder.Append(bodyBlk)
	e.PushLoop(endBlk, testBlk)
	if err := e.LowerStmt(s.Body); err != nil {
		e.PopCtrl()
		return err
	}
	e.PopCtrl()
	e.Builder.BuildBranch(testBlk)

	e.Builder.Append(testBlk)
	cond, err := e.lowerCondition(s.Cond)
	if err != nil {
		return err
	}
	e.Builder.BuildCond(cond, bodyBlk, endBlk)

	e.Builder.Append(endBlk)
	return nil
}

// lowerFor implements §4.5's for: Init runs once in the current block
// (its own scope, so a declared loop variable doesn't leak), Cond
// defaults to "true" when absent, Post runs after the body and before
// the next Cond test, and continue targets the Post block rather than
// the test block.
func (e *Env) lowerFor(s *ast.ForStmt) error {
	e.PushScope()
	defer e.PopScope()

	switch init := s.Init.(type) {
	case nil:
	case *ast.Decl:
		if err := e.lowerLocalDecl(init); err != nil {
			return err
		}
	case *ast.ExprStmt:
		if err := e.lowerExprStmt(init); err != nil {
			return err
		}
	default:
		return e.Fail(creport.Bug(creport.BUG003, "stmt", "for-statement init is neither nil, a Decl, nor an ExprStmt"))
	}

	testBlk := e.Builder.AddBlock("for.cond")
	bodyBlk := e.Builder.AddBlock("for.body")
	postBlk := e.Builder.AddBlock("for.post")
	endBlk := e.Builder.AddBlock("for.end")

	e.Builder.BuildBranch(testBlk)
	e.Builder.Append(testBlk)
	if s.Cond != nil {
		cond, err := e.lowerCondition(s.Cond)
		if err != nil {
			return err
		}
		e.Builder.BuildCond(cond, bodyBlk, endBlk)
	} else {
		e.Builder.BuildBranch(bodyBlk)
	}

	e.Builder.Append(bodyBlk)
	e.PushLoop(endBlk, postBlk)
	if err := e.LowerStmt(s.Body); err != nil {
		e.PopCtrl()
		return err
	}
	e.PopCtrl()
	e.Builder.BuildBranch(postBlk)

	e.Builder.Append(postBlk)
	if s.Post != nil {
		if _, err := e.LowerExpr(s.Post, RValueContext); err != nil {
			return err
		}
	}
	e.Builder.BuildBranch(testBlk)

	e.Builder.Append(endBlk)
	return nil
}

// lowerSwitch implements §4.5's switch: the tag is lowered once, the
// body is lowered for its case/default side effects into freestanding
// blocks with nothing threaded between them, and only after the body has
// registered every case does the dispatch block's terminator get built
// (a multi-way compare-and-branch chain, since the IR has no native
// switch instruction), because a forward `case` can precede the block
// that tests for it (C allows `switch` bodies that aren't even the
// switch's own compound statement).
func (e *Env) lowerSwitch(s *ast.SwitchStmt) error {
	tag, err := e.LowerExpr(s.Tag, RValueContext)
	if err != nil {
		return err
	}
	tag = e.decay(tag)

	dispatchBlk := e.Builder.AddBlock("switch.dispatch")
	bodyBlk := e.Builder.AddBlock("switch.body")
	endBlk := e.Builder.AddBlock("switch.end")

	e.Builder.BuildBranch(dispatchBlk)

	e.Builder.Append(bodyBlk)
	st := e.PushSwitch(endBlk)
	if err := e.LowerStmt(s.Body); err != nil {
		e.PopCtrl()
		return err
	}
	e.PopCtrl()
	e.Builder.BuildBranch(endBlk)

	e.Builder.Append(dispatchBlk)
	for _, c := range st.Cases {
		nextBlk := e.Builder.AddBlock("switch.next")
		eq := e.Builder.BuildCmp(ir.CmpEq, tag.Value, ir.ConstInt(tag.Value.Type, c.Value))
		e.Builder.BuildCond(eq, c.Block, nextBlk)
		e.Builder.Append(nextBlk)
	}
	if st.HasDefault {
		e.Builder.BuildBranch(st.DefaultBlock)
	} else {
		e.Builder.BuildBranch(endBlk)
	}

	e.Builder.Append(endBlk)
	return nil
}

// lowerCase implements a `case` label (§4.5): falls through into a fresh
// block registered with the innermost switch's dispatch table, erroring
// if no switch encloses it or the constant repeats one already seen.
func (e *Env) lowerCase(s *ast.CaseStmt) error {
	st := e.CurrentSwitch()
	if st == nil {
		return e.Fail(creport.New(creport.STM004, "stmt", "case outside a switch", spanAt(s.Pos)))
	}
	v, err := e.EvalConstInt(s.Value)
	if err != nil {
		return err
	}
	for _, c := range st.Cases {
		if c.Value == v {
			return e.Fail(creport.New(creport.STM003, "stmt", "duplicate case constant", spanAt(s.Pos)))
		}
	}
	blk := e.Builder.AddBlock("switch.case")
	e.Builder.BuildBranch(blk)
	e.Builder.Append(blk)
	st.Cases = append(st.Cases, SwitchCase{Value: v, Block: blk})
	return e.LowerStmt(s.Body)
}

// lowerDefault implements `default:` (§4.5): registers the fallthrough
// block as the innermost switch's default target.
func (e *Env) lowerDefault(s *ast.DefaultStmt) error {
	st := e.CurrentSwitch()
	if st == nil {
		return e.Fail(creport.New(creport.STM004, "stmt", "default outside a switch", spanAt(s.Pos)))
	}
	if st.HasDefault {
		return e.Fail(creport.New(creport.STM003, "stmt", "duplicate default label", spanAt(s.Pos)))
	}
	blk := e.Builder.AddBlock("switch.default")
	e.Builder.BuildBranch(blk)
	e.Builder.Append(blk)
	st.HasDefault = true
	st.DefaultBlock = blk
	return e.LowerStmt(s.Body)
}

// lowerLabeled implements a goto label (§4.5): falls through into a
// fresh block recorded in the function's label table for later fixup
// resolution.
func (e *Env) lowerLabeled(s *ast.LabeledStmt) error {
	blk := e.Builder.AddBlock("label." + s.Label)
	e.Builder.BuildBranch(blk)
	e.Builder.Append(blk)
	e.DefineLabel(s.Label, blk)
	return e.LowerStmt(s.Body)
}

// lowerGoto implements §4.5's goto: emits a branch with a nil target,
// recorded as a fixup for ResolveFixups to patch once every label in the
// function has been seen.
func (e *Env) lowerGoto(s *ast.GotoStmt) error {
	branch := e.Builder.BuildUnresolvedBranch()
	e.AddFixup(s.Label, branch, spanAt(s.Pos))
	unreachable := e.Builder.AddBlock("after.goto")
	e.Builder.Append(unreachable)
	return nil
}

func (e *Env) lowerBreak(s *ast.BreakStmt) error {
	target := e.BreakTarget()
	if target == nil {
		return e.Fail(creport.New(creport.STM001, "stmt", "break outside a loop or switch", spanAt(s.Pos)))
	}
	e.Builder.BuildBranch(target)
	unreachable := e.Builder.AddBlock("after.break")
	e.Builder.Append(unreachable)
	return nil
}

func (e *Env) lowerContinue(s *ast.ContinueStmt) error {
	target := e.ContinueTarget()
	if target == nil {
		return e.Fail(creport.New(creport.STM002, "stmt", "continue outside a loop", spanAt(s.Pos)))
	}
	e.Builder.BuildBranch(target)
	unreachable := e.Builder.AddBlock("after.continue")
	e.Builder.Append(unreachable)
	return nil
}

// lowerReturn implements §4.5's return: a bare `return;` only valid for
// void functions, a valued return converted to the function's declared
// return type (struct returns instead copy through the hidden slot, §9).
func (e *Env) lowerReturn(s *ast.ReturnStmt) error {
	fnType := e.CurrentFunctionType()
	if s.Value == nil {
		e.Builder.BuildRetVoid()
	} else {
		v, err := e.LowerExpr(s.Value, RValueContext)
		if err != nil {
			return err
		}
		if _, ok := fnType.Return.(*ctypes.StructCType); ok {
			slot, sok := e.Scope.Lookup(retSlotName)
			if !sok {
				return e.Fail(creport.Bug(creport.BUG003, "stmt", "struct-returning function has no hidden return slot bound"))
			}
			lv := Term{Type: fnType.Return, Value: slot.Term.Value, IsLValue: true}
			if _, serr := e.storeAssign(lv, v); serr != nil {
				return serr
			}
			e.Builder.BuildRetVoid()
		} else {
			converted, cerr := e.convert(v, fnType.Return)
			if cerr != nil {
				return cerr
			}
			e.Builder.BuildRet(converted.Value)
		}
	}
	unreachable := e.Builder.AddBlock("after.return")
	e.Builder.Append(unreachable)
	return nil
}
