package lower

import (
	"testing"

	"github.com/ccirgen/ccirgen/internal/ast"
	"github.com/ccirgen/ccirgen/internal/config"
	"github.com/ccirgen/ccirgen/internal/ir"
)

func voidPtrParam(name string) ast.ParamDecl {
	return ast.ParamDecl{
		Specs:      []ast.DeclSpecifier{ast.TypeKeywordSpecifier{Keyword: ast.KwVoid}},
		Declarator: ast.PointerDeclarator{Pointee: ast.IdentifierDeclarator{Name: name}},
	}
}

func sizeofIntType() *ast.SizeofTypeExpr {
	return &ast.SizeofTypeExpr{Type: ast.TypeName{Specs: intSpecs()}}
}

// int first_arg(void *ap, int tag) {
//     __builtin_va_start(ap, tag);
//     int x = __builtin_va_arg(ap, int);
//     __builtin_va_end(ap);
//     return x;
// }
func vaArgFunctionDef() *ast.FunctionDef {
	return &ast.FunctionDef{
		Specs: intSpecs(),
		Declarator: ast.FunctionDeclarator{
			Base: ast.IdentifierDeclarator{Name: "first_arg"},
			Params: []ast.ParamDecl{
				voidPtrParam("ap"),
				{Specs: intSpecs(), Declarator: ast.IdentifierDeclarator{Name: "tag"}},
			},
			Variadic: true,
		},
		Body: &ast.CompoundStmt{
			Items: []ast.Node{
				&ast.ExprStmt{Expr: &ast.CallExpr{
					Callee: ident("__builtin_va_start"),
					Args:   []ast.Expr{ident("ap"), ident("tag")},
				}},
				&ast.DeclStmt{Decl: &ast.Decl{
					Specs: intSpecs(),
					InitDeclarators: []ast.InitDeclarator{{
						Declarator: ast.IdentifierDeclarator{Name: "x"},
						Initializer: ast.ExprInitializer{Expr: &ast.CallExpr{
							Callee: ident("__builtin_va_arg"),
							Args:   []ast.Expr{ident("ap"), sizeofIntType()},
						}},
					}},
				}},
				&ast.ExprStmt{Expr: &ast.CallExpr{
					Callee: ident("__builtin_va_end"),
					Args:   []ast.Expr{ident("ap")},
				}},
				&ast.ReturnStmt{Value: ident("x")},
			},
		},
	}
}

func TestLowerVaStartEmitsOpVaStart(t *testing.T) {
	unit, reports := LowerTranslationUnit(config.Default(), []ast.Toplevel{vaArgFunctionDef()})
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	fn := unit.Functions[0]
	assertAllTerminated(t, fn)

	var sawVaStart bool
	for _, b := range fn.Blocks {
		for _, in := range b.Instrs {
			if in.Op == ir.OpVaStart {
				sawVaStart = true
				if len(in.Args) != 1 {
					t.Errorf("expected va_start to take exactly 1 argument, got %d", len(in.Args))
				}
			}
		}
	}
	if !sawVaStart {
		t.Error("expected __builtin_va_start to lower to an OpVaStart instruction")
	}
}

func TestLowerVaArgCallsRuntimeHelperAndConverts(t *testing.T) {
	unit, reports := LowerTranslationUnit(config.Default(), []ast.Toplevel{vaArgFunctionDef()})
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}

	var helper *ir.Function
	for _, fn := range unit.Functions {
		if fn.Name == ir.BuiltinVaArgUint64() {
			helper = fn
		}
	}
	if helper == nil {
		t.Fatal("expected __builtin_va_arg_uint64 to be registered as an extern function")
	}
	if len(helper.Params) != 1 {
		t.Errorf("expected the va_arg helper to take 1 parameter, got %d", len(helper.Params))
	}

	fn := unit.Functions[0]
	var sawCall, sawConvert bool
	for _, b := range fn.Blocks {
		for i, in := range b.Instrs {
			if in.Op == ir.OpCall && in.Args[0].Global == ir.BuiltinVaArgUint64() {
				sawCall = true
				// the 64-bit helper result must be narrowed to int by a
				// following OpConvert before the store into x.
				for _, next := range b.Instrs[i+1:] {
					if next.Op == ir.OpConvert {
						sawConvert = true
					}
				}
			}
		}
	}
	if !sawCall {
		t.Error("expected __builtin_va_arg to call the __builtin_va_arg_uint64 helper")
	}
	if !sawConvert {
		t.Error("expected the helper's uint64 result to be converted to the requested type")
	}
}

func TestLowerVaStartWrongArityReportsEXP005(t *testing.T) {
	fn := vaArgFunctionDef()
	body := fn.Body.(*ast.CompoundStmt)
	call := body.Items[0].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	call.Args = call.Args[:1]

	_, reports := LowerTranslationUnit(config.Default(), []ast.Toplevel{fn})
	if len(reports) != 1 {
		t.Fatalf("expected exactly 1 report, got %d: %+v", len(reports), reports)
	}
	if reports[0].Code != "EXP005" {
		t.Errorf("expected EXP005, got %s", reports[0].Code)
	}
}
