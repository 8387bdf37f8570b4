// Package ast defines the AST contract the IR-generation core consumes.
// It deliberately mirrors only the node shapes spec.md §6 names — the
// tokenizer and grammar parser that actually produce these nodes are
// out of scope for this core and live elsewhere in the toolchain.
package ast

import "fmt"

// Pos is a single point in source.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a source range, used by creport for diagnostics.
type Span struct {
	Start Pos
	End   Pos
}

// Node is the base interface every AST node implements.
type Node interface {
	Position() Pos
}

// Toplevel is FunctionDef | Decl.
type Toplevel interface {
	Node
	toplevelNode()
}

// FunctionDef is a function definition: specifiers + declarator + body.
type FunctionDef struct {
	Specs              []DeclSpecifier
	Declarator         Declarator
	OldStyleParamDecls []*Decl // K&R-style parameter declarations, rarely populated
	Body               *CompoundStmt
	Pos                Pos
}

func (f *FunctionDef) Position() Pos { return f.Pos }
func (f *FunctionDef) toplevelNode() {}

// Decl is a (possibly multi-declarator) declaration.
type Decl struct {
	Specs           []DeclSpecifier
	InitDeclarators []InitDeclarator
	Pos             Pos
}

func (d *Decl) Position() Pos { return d.Pos }
func (d *Decl) toplevelNode() {}

// InitDeclarator pairs a declarator with an optional initializer.
type InitDeclarator struct {
	Declarator  Declarator
	Initializer Initializer // nil if none
}

// DeclSpecifier is one element of a declaration-specifier list.
type DeclSpecifier interface {
	declSpecifierNode()
}

// StorageClass values.
type StorageClass int

const (
	NoStorageClass StorageClass = iota
	Typedef
	Extern
	Static
	Auto
	Register
)

type StorageClassSpecifier struct{ Class StorageClass }

func (StorageClassSpecifier) declSpecifierNode() {}

// TypeQualifier values (const/restrict/volatile) — tracked but otherwise inert
// in this core (no const-correctness checking is in scope).
type TypeQualifier int

const (
	Const TypeQualifier = iota
	Restrict
	Volatile
)

type TypeQualifierSpecifier struct{ Qualifier TypeQualifier }

func (TypeQualifierSpecifier) declSpecifierNode() {}

// FunctionSpecifier is `inline`.
type FunctionSpecifier struct{}

func (FunctionSpecifier) declSpecifierNode() {}

// TypeKeyword is one of the primitive type keywords (void, char, int,
// short, long, signed, unsigned, float, double — float/double rejected
// per spec.md Non-goals if actually used for a value).
type TypeKeyword int

const (
	KwVoid TypeKeyword = iota
	KwChar
	KwShort
	KwInt
	KwLong
	KwSigned
	KwUnsigned
	KwFloat
	KwDouble
)

type TypeKeywordSpecifier struct{ Keyword TypeKeyword }

func (TypeKeywordSpecifier) declSpecifierNode() {}

// TypedefNameSpecifier references a name bound by an earlier typedef.
type TypedefNameSpecifier struct{ Name string }

func (TypedefNameSpecifier) declSpecifierNode() {}

// AggregateKind distinguishes struct from union.
type AggregateKind int

const (
	StructKind AggregateKind = iota
	UnionKind
)

// FieldDecl is one member of a struct/union body.
type FieldDecl struct {
	Specs      []DeclSpecifier
	Declarator Declarator
}

// StructSpecifier is a struct/union specifier, with or without a body.
type StructSpecifier struct {
	Kind    AggregateKind
	Tag     string // "" if anonymous
	Fields  []FieldDecl
	HasBody bool
	Packed  bool // __attribute__((packed))
}

func (StructSpecifier) declSpecifierNode() {}

// Enumerator is one `name [= expr]` entry of an enum body.
type Enumerator struct {
	Name  string
	Value Expr // nil if implicit
}

// EnumSpecifier is an enum specifier, with or without a body.
type EnumSpecifier struct {
	Tag         string
	Enumerators []Enumerator
	HasBody     bool
}

func (EnumSpecifier) declSpecifierNode() {}

// Declarator = Pointer(pointee) | Direct(DirectDeclarator).
type Declarator interface {
	declaratorNode()
}

type PointerDeclarator struct {
	Qualifiers []TypeQualifier
	Pointee    Declarator
}

func (PointerDeclarator) declaratorNode() {}

type DirectDeclarator interface {
	Declarator
	directDeclaratorNode()
}

type IdentifierDeclarator struct{ Name string }

func (IdentifierDeclarator) declaratorNode()       {}
func (IdentifierDeclarator) directDeclaratorNode() {}

type NestedDeclarator struct{ Inner Declarator }

func (NestedDeclarator) declaratorNode()       {}
func (NestedDeclarator) directDeclaratorNode() {}

type ParamDecl struct {
	Specs      []DeclSpecifier
	Declarator Declarator // nil for abstract parameters
}

type FunctionDeclarator struct {
	Base     Declarator
	Params   []ParamDecl
	Variadic bool
	// VoidOnly marks an explicit `(void)` parameter list: nullary, not variadic.
	VoidOnly bool
}

func (FunctionDeclarator) declaratorNode()       {}
func (FunctionDeclarator) directDeclaratorNode() {}

type ArrayDeclarator struct {
	Base   Declarator
	Length Expr // nil when the array is incomplete
}

func (ArrayDeclarator) declaratorNode()       {}
func (ArrayDeclarator) directDeclaratorNode() {}

// Initializer = ExprInitializer | BraceInitializer (§4.4).
type Initializer interface {
	initializerNode()
}

type ExprInitializer struct{ Expr Expr }

func (ExprInitializer) initializerNode() {}

// Designator = FieldDesignator(".field") | IndexDesignator("[expr]").
type Designator interface {
	designatorNode()
}

type FieldDesignator struct{ Field string }

func (FieldDesignator) designatorNode() {}

type IndexDesignator struct{ Index Expr }

func (IndexDesignator) designatorNode() {}

type DesignatedInitializer struct {
	Designators []Designator
	Init        Initializer
}

type BraceInitializer struct {
	Elements []DesignatedInitializer // Designators empty for positional elements
}

func (BraceInitializer) initializerNode() {}
