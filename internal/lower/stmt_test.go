package lower

import (
	"testing"

	"github.com/ccirgen/ccirgen/internal/ast"
	"github.com/ccirgen/ccirgen/internal/config"
	"github.com/ccirgen/ccirgen/internal/creport"
)

// classify(int n) {
//   switch (n) {
//   case 1: return 10;
//   case 2: return 20;
//   default: return 0;
//   }
// }
func classifyFunctionDef() *ast.FunctionDef {
	return &ast.FunctionDef{
		Specs: intSpecs(),
		Declarator: ast.FunctionDeclarator{
			Base:   ast.IdentifierDeclarator{Name: "classify"},
			Params: []ast.ParamDecl{{Specs: intSpecs(), Declarator: ast.IdentifierDeclarator{Name: "n"}}},
		},
		Body: &ast.CompoundStmt{Items: []ast.Node{
			&ast.SwitchStmt{
				Tag: ident("n"),
				Body: &ast.CompoundStmt{Items: []ast.Node{
					&ast.CaseStmt{Value: intLit(1), Body: &ast.ReturnStmt{Value: intLit(10)}},
					&ast.CaseStmt{Value: intLit(2), Body: &ast.ReturnStmt{Value: intLit(20)}},
					&ast.DefaultStmt{Body: &ast.ReturnStmt{Value: intLit(0)}},
				}},
			},
		}},
	}
}

func TestLowerSwitchCaseDefault(t *testing.T) {
	unit, reports := LowerTranslationUnit(config.Default(), []ast.Toplevel{classifyFunctionDef()})
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	assertAllTerminated(t, unit.Functions[0])
}

// forward goto: int skip(void) { goto done; return 1; done: return 2; }
func forwardGotoFunctionDef() *ast.FunctionDef {
	return &ast.FunctionDef{
		Specs: intSpecs(),
		Declarator: ast.FunctionDeclarator{
			Base:     ast.IdentifierDeclarator{Name: "skip"},
			VoidOnly: true,
		},
		Body: &ast.CompoundStmt{Items: []ast.Node{
			&ast.GotoStmt{Label: "done"},
			&ast.ReturnStmt{Value: intLit(1)},
			&ast.LabeledStmt{Label: "done", Body: &ast.ReturnStmt{Value: intLit(2)}},
		}},
	}
}

func TestLowerForwardGotoResolves(t *testing.T) {
	unit, reports := LowerTranslationUnit(config.Default(), []ast.Toplevel{forwardGotoFunctionDef()})
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	fn := unit.Functions[0]
	assertAllTerminated(t, fn)
	for _, b := range fn.Blocks {
		if term := b.Terminator(); term != nil && term.Target != nil {
			if term.Target.Name == "" {
				t.Errorf("block %s: resolved goto target has empty name", b.Name)
			}
		}
	}
}

func TestLowerUndefinedGotoLabelReportsLNK001(t *testing.T) {
	fn := &ast.FunctionDef{
		Specs:      intSpecs(),
		Declarator: ast.FunctionDeclarator{Base: ast.IdentifierDeclarator{Name: "bad"}, VoidOnly: true},
		Body: &ast.CompoundStmt{Items: []ast.Node{
			&ast.GotoStmt{Label: "nowhere"},
			&ast.ReturnStmt{},
		}},
	}
	_, reports := LowerTranslationUnit(config.Default(), []ast.Toplevel{fn})
	if len(reports) != 1 || reports[0].Code != creport.LNK001 {
		t.Fatalf("expected a single LNK001 report, got %+v", reports)
	}
}

func TestLowerBreakOutsideLoopReportsSTM001(t *testing.T) {
	fn := &ast.FunctionDef{
		Specs:      intSpecs(),
		Declarator: ast.FunctionDeclarator{Base: ast.IdentifierDeclarator{Name: "bad"}, VoidOnly: true},
		Body: &ast.CompoundStmt{Items: []ast.Node{
			&ast.BreakStmt{},
		}},
	}
	_, reports := LowerTranslationUnit(config.Default(), []ast.Toplevel{fn})
	if len(reports) != 1 || reports[0].Code != creport.STM001 {
		t.Fatalf("expected a single STM001 report, got %+v", reports)
	}
}

func TestLowerContinueOutsideLoopReportsSTM002(t *testing.T) {
	fn := &ast.FunctionDef{
		Specs:      intSpecs(),
		Declarator: ast.FunctionDeclarator{Base: ast.IdentifierDeclarator{Name: "bad"}, VoidOnly: true},
		Body: &ast.CompoundStmt{Items: []ast.Node{
			&ast.ContinueStmt{},
		}},
	}
	_, reports := LowerTranslationUnit(config.Default(), []ast.Toplevel{fn})
	if len(reports) != 1 || reports[0].Code != creport.STM002 {
		t.Fatalf("expected a single STM002 report, got %+v", reports)
	}
}

// while-loop with a continue and a break, both valid: exercises
// PushLoop/PopCtrl and the break/continue block wiring together.
//
//	int firstEven(int n) {
//	    int i = 0;
//	    while (i < n) {
//	        if (i % 2 != 0) { i = i + 1; continue; }
//	        break;
//	    }
//	    return i;
//	}
func firstEvenFunctionDef() *ast.FunctionDef {
	return &ast.FunctionDef{
		Specs: intSpecs(),
		Declarator: ast.FunctionDeclarator{
			Base:   ast.IdentifierDeclarator{Name: "firstEven"},
			Params: []ast.ParamDecl{{Specs: intSpecs(), Declarator: ast.IdentifierDeclarator{Name: "n"}}},
		},
		Body: &ast.CompoundStmt{Items: []ast.Node{
			&ast.DeclStmt{Decl: &ast.Decl{
				Specs: intSpecs(),
				InitDeclarators: []ast.InitDeclarator{{
					Declarator:  ast.IdentifierDeclarator{Name: "i"},
					Initializer: ast.ExprInitializer{Expr: intLit(0)},
				}},
			}},
			&ast.WhileStmt{
				Cond: &ast.BinaryExpr{Op: ast.OpLt, Left: ident("i"), Right: ident("n")},
				Body: &ast.CompoundStmt{Items: []ast.Node{
					&ast.IfStmt{
						Cond: &ast.BinaryExpr{Op: ast.OpNe, Left: &ast.BinaryExpr{Op: ast.OpMod, Left: ident("i"), Right: intLit(2)}, Right: intLit(0)},
						Then: &ast.CompoundStmt{Items: []ast.Node{
							&ast.ExprStmt{Expr: &ast.AssignExpr{Target: ident("i"), Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: ident("i"), Right: intLit(1)}}},
							&ast.ContinueStmt{},
						}},
					},
					&ast.BreakStmt{},
				}},
			},
			&ast.ReturnStmt{Value: ident("i")},
		}},
	}
}

func TestLowerWhileBreakContinue(t *testing.T) {
	unit, reports := LowerTranslationUnit(config.Default(), []ast.Toplevel{firstEvenFunctionDef()})
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	assertAllTerminated(t, unit.Functions[0])
}
