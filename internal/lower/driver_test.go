package lower

import (
	"testing"

	"github.com/ccirgen/ccirgen/internal/ast"
	"github.com/ccirgen/ccirgen/internal/config"
	"github.com/ccirgen/ccirgen/internal/ir"
)

func intSpecs() []ast.DeclSpecifier {
	return []ast.DeclSpecifier{ast.TypeKeywordSpecifier{Keyword: ast.KwInt}}
}

func ident(name string) *ast.IdentExpr { return &ast.IdentExpr{Name: name} }

func intLit(v uint64) *ast.IntLiteral { return &ast.IntLiteral{Value: v} }

// every block reachable from fn.Blocks must end in exactly one
// terminator (§8's invariant the statement lowerer is responsible for).
func assertAllTerminated(t *testing.T, fn *ir.Function) {
	t.Helper()
	for _, b := range fn.Blocks {
		if !b.Terminated() {
			t.Errorf("function %s: block %s has no terminator", fn.Name, b.Name)
		}
	}
}

// add(int a, int b) { return a + b; }
func addFunctionDef() *ast.FunctionDef {
	return &ast.FunctionDef{
		Specs: intSpecs(),
		Declarator: ast.FunctionDeclarator{
			Base: ast.IdentifierDeclarator{Name: "add"},
			Params: []ast.ParamDecl{
				{Specs: intSpecs(), Declarator: ast.IdentifierDeclarator{Name: "a"}},
				{Specs: intSpecs(), Declarator: ast.IdentifierDeclarator{Name: "b"}},
			},
		},
		Body: &ast.CompoundStmt{Items: []ast.Node{
			&ast.ReturnStmt{Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: ident("a"), Right: ident("b")}},
		}},
	}
}

func TestLowerSimpleFunction(t *testing.T) {
	unit, reports := LowerTranslationUnit(config.Default(), []ast.Toplevel{addFunctionDef()})
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	if len(unit.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(unit.Functions))
	}
	fn := unit.Functions[0]
	if fn.Name != "add" {
		t.Errorf("expected function named add, got %s", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Errorf("expected 2 params, got %d", len(fn.Params))
	}
	assertAllTerminated(t, fn)

	last := fn.Blocks[len(fn.Blocks)-1].Terminator()
	if last.Op != ir.OpRet {
		t.Errorf("expected final block to end in OpRet, got %v", last.Op)
	}
}

// maxOf(int a, int b) { if (a > b) return a; return b; }
func maxOfFunctionDef() *ast.FunctionDef {
	return &ast.FunctionDef{
		Specs: intSpecs(),
		Declarator: ast.FunctionDeclarator{
			Base: ast.IdentifierDeclarator{Name: "maxOf"},
			Params: []ast.ParamDecl{
				{Specs: intSpecs(), Declarator: ast.IdentifierDeclarator{Name: "a"}},
				{Specs: intSpecs(), Declarator: ast.IdentifierDeclarator{Name: "b"}},
			},
		},
		Body: &ast.CompoundStmt{Items: []ast.Node{
			&ast.IfStmt{
				Cond: &ast.BinaryExpr{Op: ast.OpGt, Left: ident("a"), Right: ident("b")},
				Then: &ast.ReturnStmt{Value: ident("a")},
			},
			&ast.ReturnStmt{Value: ident("b")},
		}},
	}
}

func TestLowerIfWithoutElseBothPathsTerminate(t *testing.T) {
	unit, reports := LowerTranslationUnit(config.Default(), []ast.Toplevel{maxOfFunctionDef()})
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	fn := unit.Functions[0]
	assertAllTerminated(t, fn)
	if len(fn.Blocks) < 3 {
		t.Errorf("expected at least 3 blocks (entry, then, merge), got %d", len(fn.Blocks))
	}
}

// struct Point { int x; int y; }; struct Point origin(void) {
//   struct Point p; p.x = 0; p.y = 0; return p;
// }
func pointToplevels() []ast.Toplevel {
	tagDecl := &ast.Decl{Specs: []ast.DeclSpecifier{ast.StructSpecifier{
		Kind: ast.StructKind, Tag: "Point", HasBody: true,
		Fields: []ast.FieldDecl{
			{Specs: intSpecs(), Declarator: ast.IdentifierDeclarator{Name: "x"}},
			{Specs: intSpecs(), Declarator: ast.IdentifierDeclarator{Name: "y"}},
		},
	}}}
	pointSpec := func() []ast.DeclSpecifier {
		return []ast.DeclSpecifier{ast.StructSpecifier{Kind: ast.StructKind, Tag: "Point"}}
	}
	fn := &ast.FunctionDef{
		Specs: pointSpec(),
		Declarator: ast.FunctionDeclarator{
			Base:     ast.IdentifierDeclarator{Name: "origin"},
			VoidOnly: true,
		},
		Body: &ast.CompoundStmt{Items: []ast.Node{
			&ast.DeclStmt{Decl: &ast.Decl{
				Specs:           pointSpec(),
				InitDeclarators: []ast.InitDeclarator{{Declarator: ast.IdentifierDeclarator{Name: "p"}}},
			}},
			&ast.ExprStmt{Expr: &ast.AssignExpr{Target: &ast.FieldExpr{Base: ident("p"), Field: "x"}, Value: intLit(0)}},
			&ast.ExprStmt{Expr: &ast.AssignExpr{Target: &ast.FieldExpr{Base: ident("p"), Field: "y"}, Value: intLit(0)}},
			&ast.ReturnStmt{Value: ident("p")},
		}},
	}
	return []ast.Toplevel{tagDecl, fn}
}

func TestLowerStructReturnABI(t *testing.T) {
	unit, reports := LowerTranslationUnit(config.Default(), pointToplevels())
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	if len(unit.Structs) != 1 {
		t.Fatalf("expected the Point tag to register in Unit.Structs, got %d", len(unit.Structs))
	}
	fn := unit.Functions[0]
	if len(fn.Params) != 1 || fn.Params[0].Name != retSlotName {
		t.Fatalf("expected a single hidden %s parameter, got %+v", retSlotName, fn.Params)
	}
	if _, ok := fn.ReturnType.(ir.VoidType); !ok {
		t.Errorf("a struct-returning function's IR return type should be void, got %T", fn.ReturnType)
	}
	assertAllTerminated(t, fn)
}

// int counter; int bump(void) { counter = counter + 1; return counter; }
func globalsToplevels() []ast.Toplevel {
	counterDecl := &ast.Decl{
		Specs:           intSpecs(),
		InitDeclarators: []ast.InitDeclarator{{Declarator: ast.IdentifierDeclarator{Name: "counter"}}},
	}
	fn := &ast.FunctionDef{
		Specs: intSpecs(),
		Declarator: ast.FunctionDeclarator{
			Base:     ast.IdentifierDeclarator{Name: "bump"},
			VoidOnly: true,
		},
		Body: &ast.CompoundStmt{Items: []ast.Node{
			&ast.ExprStmt{Expr: &ast.AssignExpr{Target: ident("counter"), Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: ident("counter"), Right: intLit(1)}}},
			&ast.ReturnStmt{Value: ident("counter")},
		}},
	}
	return []ast.Toplevel{counterDecl, fn}
}

func TestLowerTentativeGlobal(t *testing.T) {
	unit, reports := LowerTranslationUnit(config.Default(), globalsToplevels())
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	if len(unit.Globals) != 1 {
		t.Fatalf("expected 1 global, got %d", len(unit.Globals))
	}
	g := unit.Globals[0]
	if g.Name != "counter" {
		t.Errorf("expected global named counter, got %s", g.Name)
	}
	if g.Init != nil {
		t.Errorf("a tentative definition with no initializer should leave Init nil, got %+v", g.Init)
	}
	if g.Linkage != ir.LinkageGlobal {
		t.Errorf("a plain (non-static) global should have global linkage, got %v", g.Linkage)
	}
}

func TestLowerStaticGlobalHasLocalLinkage(t *testing.T) {
	decl := &ast.Decl{
		Specs: []ast.DeclSpecifier{ast.StorageClassSpecifier{Class: ast.Static}, ast.TypeKeywordSpecifier{Keyword: ast.KwInt}},
		InitDeclarators: []ast.InitDeclarator{{
			Declarator:  ast.IdentifierDeclarator{Name: "hidden"},
			Initializer: ast.ExprInitializer{Expr: intLit(7)},
		}},
	}
	unit, reports := LowerTranslationUnit(config.Default(), []ast.Toplevel{decl})
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	g := unit.Globals[0]
	if g.Linkage != ir.LinkageLocal {
		t.Errorf("expected static global to have local linkage, got %v", g.Linkage)
	}
	ic, ok := g.Init.(ir.IntConst)
	if !ok {
		t.Fatalf("expected an IntConst initializer, got %T", g.Init)
	}
	if ic.Value != 7 {
		t.Errorf("expected initializer value 7, got %d", ic.Value)
	}
}

// recursive: int fact(int n) { if (n < 2) return 1; return n * fact(n - 1); }
func factFunctionDef() *ast.FunctionDef {
	return &ast.FunctionDef{
		Specs: intSpecs(),
		Declarator: ast.FunctionDeclarator{
			Base:   ast.IdentifierDeclarator{Name: "fact"},
			Params: []ast.ParamDecl{{Specs: intSpecs(), Declarator: ast.IdentifierDeclarator{Name: "n"}}},
		},
		Body: &ast.CompoundStmt{Items: []ast.Node{
			&ast.IfStmt{
				Cond: &ast.BinaryExpr{Op: ast.OpLt, Left: ident("n"), Right: intLit(2)},
				Then: &ast.ReturnStmt{Value: intLit(1)},
			},
			&ast.ReturnStmt{Value: &ast.BinaryExpr{
				Op: ast.OpMul, Left: ident("n"),
				Right: &ast.CallExpr{Callee: ident("fact"), Args: []ast.Expr{
					&ast.BinaryExpr{Op: ast.OpSub, Left: ident("n"), Right: intLit(1)},
				}},
			}},
		}},
	}
}

func TestLowerRecursiveCallResolvesSelf(t *testing.T) {
	unit, reports := LowerTranslationUnit(config.Default(), []ast.Toplevel{factFunctionDef()})
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	assertAllTerminated(t, unit.Functions[0])
}
