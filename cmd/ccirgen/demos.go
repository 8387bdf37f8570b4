package main

import "github.com/ccirgen/ccirgen/internal/ast"

// demo is one named, hand-built translation unit `ccirgen build`/
// `dump-types`/`dump-ir`/`repl` can run — a stand-in for the tokenizer
// and grammar parser, which are out-of-scope external collaborators
// this core never implements (spec.md §1). Each demo's Toplevels field
// is exactly what a real parser would hand the lowering engine for the
// C source quoted in Source.
type demo struct {
	Name   string
	Source string
	Toplevels []ast.Toplevel
}

// demoCatalog is the fixed set `ccirgen` ships with, each exercising a
// distinct slice of the lowering engine end to end.
var demoCatalog = []demo{fibDemo(), pointDemo(), globalsDemo()}

func findDemo(name string) *demo {
	for i := range demoCatalog {
		if demoCatalog[i].Name == name {
			return &demoCatalog[i]
		}
	}
	return nil
}

func at(line int) ast.Pos { return ast.Pos{File: "demo.c", Line: line} }

func ident(name string) *ast.IdentExpr { return &ast.IdentExpr{Name: name} }

func intLit(v uint64) *ast.IntLiteral { return &ast.IntLiteral{Value: v} }

func intSpec() []ast.DeclSpecifier {
	return []ast.DeclSpecifier{ast.TypeKeywordSpecifier{Keyword: ast.KwInt}}
}

// fibDemo exercises recursion, an if/return early-exit, and the
// recursive-call self-binding emitFunctionBody registers before
// lowering a function's own body.
//
//	int fib(int n) {
//	    if (n < 2) return n;
//	    return fib(n - 1) + fib(n - 2);
//	}
func fibDemo() demo {
	fn := &ast.FunctionDef{
		Specs: intSpec(),
		Declarator: ast.FunctionDeclarator{
			Base: ast.IdentifierDeclarator{Name: "fib"},
			Params: []ast.ParamDecl{
				{Specs: intSpec(), Declarator: ast.IdentifierDeclarator{Name: "n"}},
			},
		},
		Body: &ast.CompoundStmt{
			Pos: at(2),
			Items: []ast.Node{
				&ast.IfStmt{
					Pos:  at(3),
					Cond: &ast.BinaryExpr{Op: ast.OpLt, Left: ident("n"), Right: intLit(2)},
					Then: &ast.ReturnStmt{Value: ident("n"), Pos: at(3)},
				},
				&ast.ReturnStmt{
					Pos: at(4),
					Value: &ast.BinaryExpr{
						Op: ast.OpAdd,
						Left: &ast.CallExpr{Callee: ident("fib"), Args: []ast.Expr{
							&ast.BinaryExpr{Op: ast.OpSub, Left: ident("n"), Right: intLit(1)},
						}},
						Right: &ast.CallExpr{Callee: ident("fib"), Args: []ast.Expr{
							&ast.BinaryExpr{Op: ast.OpSub, Left: ident("n"), Right: intLit(2)},
						}},
					},
				},
			},
		},
		Pos: at(1),
	}
	return demo{
		Name: "fib",
		Source: "int fib(int n) {\n" +
			"    if (n < 2) return n;\n" +
			"    return fib(n - 1) + fib(n - 2);\n}",
		Toplevels: []ast.Toplevel{fn},
	}
}

// pointDemo exercises a struct tag declaration, field assignment
// through an l-value, and the struct-return ABI (§4.6's hidden
// pointer parameter, written through retSlotName).
//
//	struct Point { int x; int y; };
//	struct Point make_point(int x, int y) {
//	    struct Point p;
//	    p.x = x;
//	    p.y = y;
//	    return p;
//	}
func pointDemo() demo {
	tagDecl := &ast.Decl{
		Specs: []ast.DeclSpecifier{ast.StructSpecifier{
			Kind: ast.StructKind, Tag: "Point", HasBody: true,
			Fields: []ast.FieldDecl{
				{Specs: intSpec(), Declarator: ast.IdentifierDeclarator{Name: "x"}},
				{Specs: intSpec(), Declarator: ast.IdentifierDeclarator{Name: "y"}},
			},
		}},
		Pos: at(1),
	}
	pointSpec := func() []ast.DeclSpecifier {
		return []ast.DeclSpecifier{ast.StructSpecifier{Kind: ast.StructKind, Tag: "Point"}}
	}
	fn := &ast.FunctionDef{
		Specs: pointSpec(),
		Declarator: ast.FunctionDeclarator{
			Base: ast.IdentifierDeclarator{Name: "make_point"},
			Params: []ast.ParamDecl{
				{Specs: intSpec(), Declarator: ast.IdentifierDeclarator{Name: "x"}},
				{Specs: intSpec(), Declarator: ast.IdentifierDeclarator{Name: "y"}},
			},
		},
		Body: &ast.CompoundStmt{
			Pos: at(3),
			Items: []ast.Node{
				&ast.DeclStmt{Decl: &ast.Decl{
					Specs:           pointSpec(),
					InitDeclarators: []ast.InitDeclarator{{Declarator: ast.IdentifierDeclarator{Name: "p"}}},
					Pos:             at(4),
				}},
				&ast.ExprStmt{Pos: at(5), Expr: &ast.AssignExpr{
					Target: &ast.FieldExpr{Base: ident("p"), Field: "x"}, Value: ident("x"),
				}},
				&ast.ExprStmt{Pos: at(6), Expr: &ast.AssignExpr{
					Target: &ast.FieldExpr{Base: ident("p"), Field: "y"}, Value: ident("y"),
				}},
				&ast.ReturnStmt{Pos: at(7), Value: ident("p")},
			},
		},
		Pos: at(2),
	}
	return demo{
		Name: "point",
		Source: "struct Point { int x; int y; };\n" +
			"struct Point make_point(int x, int y) {\n" +
			"    struct Point p;\n    p.x = x;\n    p.y = y;\n    return p;\n}",
		Toplevels: []ast.Toplevel{tagDecl, fn},
	}
}

// globalsDemo exercises a global variable (default/extern linkage,
// tentative — no initializer), a for-loop with its own init-clause
// scope, and both a local and a global l-value assigned in the same
// body.
//
//	int counter;
//	int sum_to(int n) {
//	    int total = 0;
//	    for (int i = 0; i <= n; i = i + 1) {
//	        total = total + i;
//	        counter = counter + 1;
//	    }
//	    return total;
//	}
func globalsDemo() demo {
	counterDecl := &ast.Decl{
		Specs:           intSpec(),
		InitDeclarators: []ast.InitDeclarator{{Declarator: ast.IdentifierDeclarator{Name: "counter"}}},
		Pos:             at(1),
	}
	fn := &ast.FunctionDef{
		Specs: intSpec(),
		Declarator: ast.FunctionDeclarator{
			Base: ast.IdentifierDeclarator{Name: "sum_to"},
			Params: []ast.ParamDecl{
				{Specs: intSpec(), Declarator: ast.IdentifierDeclarator{Name: "n"}},
			},
		},
		Body: &ast.CompoundStmt{
			Pos: at(2),
			Items: []ast.Node{
				&ast.DeclStmt{Decl: &ast.Decl{
					Specs: intSpec(),
					InitDeclarators: []ast.InitDeclarator{{
						Declarator:  ast.IdentifierDeclarator{Name: "total"},
						Initializer: ast.ExprInitializer{Expr: intLit(0)},
					}},
					Pos: at(3),
				}},
				&ast.ForStmt{
					Pos: at(4),
					Init: &ast.Decl{
						Specs: intSpec(),
						InitDeclarators: []ast.InitDeclarator{{
							Declarator:  ast.IdentifierDeclarator{Name: "i"},
							Initializer: ast.ExprInitializer{Expr: intLit(0)},
						}},
						Pos: at(4),
					},
					Cond: &ast.BinaryExpr{Op: ast.OpLe, Left: ident("i"), Right: ident("n")},
					Post: &ast.AssignExpr{Target: ident("i"), Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: ident("i"), Right: intLit(1)}},
					Body: &ast.CompoundStmt{
						Pos: at(4),
						Items: []ast.Node{
							&ast.ExprStmt{Pos: at(5), Expr: &ast.AssignExpr{
								Target: ident("total"), Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: ident("total"), Right: ident("i")},
							}},
							&ast.ExprStmt{Pos: at(6), Expr: &ast.AssignExpr{
								Target: ident("counter"), Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: ident("counter"), Right: intLit(1)},
							}},
						},
					},
				},
				&ast.ReturnStmt{Pos: at(8), Value: ident("total")},
			},
		},
		Pos: at(2),
	}
	return demo{
		Name: "globals",
		Source: "int counter;\n" +
			"int sum_to(int n) {\n    int total = 0;\n" +
			"    for (int i = 0; i <= n; i = i + 1) {\n" +
			"        total = total + i;\n        counter = counter + 1;\n    }\n" +
			"    return total;\n}",
		Toplevels: []ast.Toplevel{counterDecl, fn},
	}
}
