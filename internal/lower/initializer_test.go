package lower

import (
	"testing"

	"github.com/ccirgen/ccirgen/internal/ast"
	"github.com/ccirgen/ccirgen/internal/config"
	"github.com/ccirgen/ccirgen/internal/ir"
)

func braceInit(elems ...ast.DesignatedInitializer) ast.BraceInitializer {
	return ast.BraceInitializer{Elements: elems}
}

func plainElem(expr ast.Expr) ast.DesignatedInitializer {
	return ast.DesignatedInitializer{Init: ast.ExprInitializer{Expr: expr}}
}

func indexElem(i uint64, expr ast.Expr) ast.DesignatedInitializer {
	return ast.DesignatedInitializer{
		Designators: []ast.Designator{ast.IndexDesignator{Index: intLit(i)}},
		Init:        ast.ExprInitializer{Expr: expr},
	}
}

func fieldElem(name string, expr ast.Expr) ast.DesignatedInitializer {
	return ast.DesignatedInitializer{
		Designators: []ast.Designator{ast.FieldDesignator{Field: name}},
		Init:        ast.ExprInitializer{Expr: expr},
	}
}

// int a[] = { 1, 2, 3 };
func incompleteArrayFromBraceToplevels() []ast.Toplevel {
	decl := &ast.Decl{
		Specs: intSpecs(),
		InitDeclarators: []ast.InitDeclarator{{
			Declarator:  ast.ArrayDeclarator{Base: ast.IdentifierDeclarator{Name: "a"}},
			Initializer: braceInit(plainElem(intLit(1)), plainElem(intLit(2)), plainElem(intLit(3))),
		}},
	}
	return []ast.Toplevel{decl}
}

func TestInitializerArrayLengthInferredFromBrace(t *testing.T) {
	unit, reports := LowerTranslationUnit(config.Default(), incompleteArrayFromBraceToplevels())
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	arr, ok := unit.Globals[0].Type.(ir.ArrayType)
	if !ok {
		t.Fatalf("expected array type, got %T", unit.Globals[0].Type)
	}
	if arr.Len != 3 {
		t.Errorf("expected inferred length 3, got %d", arr.Len)
	}
	if arr.Incomplete {
		t.Errorf("expected the array to be completed, still marked incomplete")
	}
	ac, ok := unit.Globals[0].Init.(ir.ArrayConst)
	if !ok {
		t.Fatalf("expected an ArrayConst initializer, got %T", unit.Globals[0].Init)
	}
	if len(ac.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(ac.Elements))
	}
	want := []int64{1, 2, 3}
	for i, el := range ac.Elements {
		ic, ok := el.(ir.IntConst)
		if !ok {
			t.Fatalf("element %d: expected IntConst, got %T", i, el)
		}
		if ic.Value != want[i] {
			t.Errorf("element %d: got %d, want %d", i, ic.Value, want[i])
		}
	}
}

// char s[] = "hi"; length inferred as 3 (2 chars + NUL).
func incompleteArrayFromStringToplevels() []ast.Toplevel {
	decl := &ast.Decl{
		Specs: []ast.DeclSpecifier{ast.TypeKeywordSpecifier{Keyword: ast.KwChar}},
		InitDeclarators: []ast.InitDeclarator{{
			Declarator:  ast.ArrayDeclarator{Base: ast.IdentifierDeclarator{Name: "s"}},
			Initializer: ast.ExprInitializer{Expr: &ast.StringLiteral{Value: []byte("hi")}},
		}},
	}
	return []ast.Toplevel{decl}
}

func TestInitializerArrayLengthInferredFromString(t *testing.T) {
	unit, reports := LowerTranslationUnit(config.Default(), incompleteArrayFromStringToplevels())
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	arr, ok := unit.Globals[0].Type.(ir.ArrayType)
	if !ok {
		t.Fatalf("expected array type, got %T", unit.Globals[0].Type)
	}
	if arr.Len != 3 {
		t.Errorf("expected inferred length 3 (2 chars + NUL), got %d", arr.Len)
	}
	ac, ok := unit.Globals[0].Init.(ir.ArrayConst)
	if !ok {
		t.Fatalf("expected an ArrayConst initializer, got %T", unit.Globals[0].Init)
	}
	last := ac.Elements[len(ac.Elements)-1].(ir.IntConst)
	if last.Value != 0 {
		t.Errorf("expected trailing NUL byte, got %d", last.Value)
	}
}

// int b[4] = { [2] = 9, 10 }; index designator jumps to 2, then the next
// positional element lands at index 3.
func designatedArrayToplevels() []ast.Toplevel {
	decl := &ast.Decl{
		Specs: intSpecs(),
		InitDeclarators: []ast.InitDeclarator{{
			Declarator:  ast.ArrayDeclarator{Base: ast.IdentifierDeclarator{Name: "b"}, Length: intLit(4)},
			Initializer: braceInit(indexElem(2, intLit(9)), plainElem(intLit(10))),
		}},
	}
	return []ast.Toplevel{decl}
}

func TestInitializerArrayIndexDesignatorAdvancesCursor(t *testing.T) {
	unit, reports := LowerTranslationUnit(config.Default(), designatedArrayToplevels())
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	ac, ok := unit.Globals[0].Init.(ir.ArrayConst)
	if !ok {
		t.Fatalf("expected an ArrayConst initializer, got %T", unit.Globals[0].Init)
	}
	if len(ac.Elements) != 4 {
		t.Fatalf("expected 4 elements (array length 4), got %d", len(ac.Elements))
	}
	if v := ac.Elements[2].(ir.IntConst).Value; v != 9 {
		t.Errorf("expected index 2 == 9, got %d", v)
	}
	if v := ac.Elements[3].(ir.IntConst).Value; v != 10 {
		t.Errorf("expected index 3 (cursor advanced past the designator) == 10, got %d", v)
	}
}

// struct Point { int x; int y; }; struct Point p = { .y = 2, .x = 1 };
func designatedStructToplevels() []ast.Toplevel {
	tagDecl := &ast.Decl{Specs: []ast.DeclSpecifier{ast.StructSpecifier{
		Kind: ast.StructKind, Tag: "Point", HasBody: true,
		Fields: []ast.FieldDecl{
			{Specs: intSpecs(), Declarator: ast.IdentifierDeclarator{Name: "x"}},
			{Specs: intSpecs(), Declarator: ast.IdentifierDeclarator{Name: "y"}},
		},
	}}}
	pointSpec := []ast.DeclSpecifier{ast.StructSpecifier{Kind: ast.StructKind, Tag: "Point"}}
	varDecl := &ast.Decl{
		Specs: pointSpec,
		InitDeclarators: []ast.InitDeclarator{{
			Declarator:  ast.IdentifierDeclarator{Name: "p"},
			Initializer: braceInit(fieldElem("y", intLit(2)), fieldElem("x", intLit(1))),
		}},
	}
	return []ast.Toplevel{tagDecl, varDecl}
}

func TestInitializerStructFieldDesignators(t *testing.T) {
	unit, reports := LowerTranslationUnit(config.Default(), designatedStructToplevels())
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	sc, ok := unit.Globals[0].Init.(ir.StructConst)
	if !ok {
		t.Fatalf("expected a StructConst initializer, got %T", unit.Globals[0].Init)
	}
	if len(sc.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(sc.Fields))
	}
	if v := sc.Fields[1].(ir.IntConst).Value; v != 2 {
		t.Errorf("expected field y (index 1) == 2, got %d", v)
	}
	if v := sc.Fields[0].(ir.IntConst).Value; v != 1 {
		t.Errorf("expected field x (index 0, set after y via designator) == 1, got %d", v)
	}
}

// union Num { int i; float f; }; union Num n = { .i = 7 }; only the
// designated member's initializer is evaluated — constStructBrace
// breaks out of the element loop after the union's first (and only)
// initializer, leaving every other member zero-filled.
func unionInitializerToplevels() []ast.Toplevel {
	tagDecl := &ast.Decl{Specs: []ast.DeclSpecifier{ast.StructSpecifier{
		Kind: ast.UnionKind, Tag: "Num", HasBody: true,
		Fields: []ast.FieldDecl{
			{Specs: intSpecs(), Declarator: ast.IdentifierDeclarator{Name: "i"}},
			{Specs: []ast.DeclSpecifier{ast.TypeKeywordSpecifier{Keyword: ast.KwFloat}}, Declarator: ast.IdentifierDeclarator{Name: "f"}},
		},
	}}}
	numSpec := []ast.DeclSpecifier{ast.StructSpecifier{Kind: ast.UnionKind, Tag: "Num"}}
	varDecl := &ast.Decl{
		Specs: numSpec,
		InitDeclarators: []ast.InitDeclarator{{
			Declarator:  ast.IdentifierDeclarator{Name: "n"},
			Initializer: braceInit(fieldElem("i", intLit(7))),
		}},
	}
	return []ast.Toplevel{tagDecl, varDecl}
}

func TestInitializerUnionOnlyElaboratesOneMember(t *testing.T) {
	unit, reports := LowerTranslationUnit(config.Default(), unionInitializerToplevels())
	if len(reports) != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	sc, ok := unit.Globals[0].Init.(ir.StructConst)
	if !ok {
		t.Fatalf("expected a StructConst initializer, got %T", unit.Globals[0].Init)
	}
	if len(sc.Fields) != 2 {
		t.Fatalf("expected a slot per member (2), got %d", len(sc.Fields))
	}
	if v := sc.Fields[0].(ir.IntConst).Value; v != 7 {
		t.Errorf("expected the designated member i == 7, got %d", v)
	}
	if _, ok := sc.Fields[1].(ir.ZeroConst); !ok {
		t.Errorf("expected the non-designated member f to be zero-filled, got %T", sc.Fields[1])
	}
}
