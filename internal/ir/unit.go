package ir

// Global is a file- or program-scope variable: a declared type, linkage,
// and an optional constant initializer (nil means tentative/zero-initialized
// for an `extern`-less declaration with no initializer, per §4.6).
type Global struct {
	Name    string
	Type    Type
	Linkage Linkage
	Extern  bool
	Init    Const // nil if uninitialized / extern
}

// TranslationUnit is the produced-downstream container of §6: a pool of
// functions, globals, and struct-type records for one C source file.
type TranslationUnit struct {
	Functions []*Function
	Globals   []*Global
	Structs   []*StructType

	stringLiteralCount int
}

// NewTranslationUnit creates an empty container.
func NewTranslationUnit() *TranslationUnit {
	return &TranslationUnit{}
}

// AddFunction registers fn (trans_unit_add_function, §6). Returns fn for
// chaining with AddInitToFunction-style body population.
func (tu *TranslationUnit) AddFunction(fn *Function) *Function {
	tu.Functions = append(tu.Functions, fn)
	return fn
}

// AddVar registers a global variable (trans_unit_add_var, §6).
func (tu *TranslationUnit) AddVar(g *Global) *Global {
	tu.Globals = append(tu.Globals, g)
	return g
}

// AddStruct registers a struct/union type record (trans_unit_add_struct, §6).
func (tu *TranslationUnit) AddStruct(st *StructType) *StructType {
	tu.Structs = append(tu.Structs, st)
	return st
}

// AddInitToFunction attaches a fully-built function body (AddFunction
// only registers the header; this call installs Blocks/Locals once the
// statement lowerer has finished). Kept as a distinct step so the driver
// can register a function (making it visible for recursive calls) before
// its body exists.
func (tu *TranslationUnit) AddInitToFunction(fn *Function, locals []*Local, blocks []*Block) {
	fn.Locals = locals
	fn.Blocks = blocks
}

// AddIntConst builds an IntConst (add_int_const, §6).
func (tu *TranslationUnit) AddIntConst(t Type, value int64) Const {
	return IntConst{Typ: t, Value: value}
}

// AddArrayConst builds an ArrayConst (add_array_const, §6).
func (tu *TranslationUnit) AddArrayConst(t Type, elems []Const) Const {
	return ArrayConst{Typ: t, Elements: elems}
}

// AddStructConst builds a StructConst (add_struct_const, §6).
func (tu *TranslationUnit) AddStructConst(t Type, fields []Const) Const {
	return StructConst{Typ: t, Fields: fields}
}

// AddGlobalConst builds a GlobalAddrConst (add_global_const, §6).
func (tu *TranslationUnit) AddGlobalConst(name string, t Type, offset int) Const {
	return GlobalAddrConst{Name: name, Typ: t, Offset: offset}
}

// SetArrayTypeLength completes an incomplete array type in place
// (set_array_type_length, §6), used by the initializer compiler (§4.4)
// and declarator resolver (§4.1) when a length is inferred rather than
// given explicitly.
func (tu *TranslationUnit) SetArrayTypeLength(at *ArrayType, length int) {
	at.Len = length
	at.Incomplete = false
}

// NextStringLiteralName returns the next synthesized name for a string
// literal global, per §6's "__string_literal_<hexindex>" scheme.
func (tu *TranslationUnit) NextStringLiteralName() string {
	n := tu.stringLiteralCount
	tu.stringLiteralCount++
	return hexStringLiteralName(n)
}

func hexStringLiteralName(n int) string {
	const digits = "0123456789abcdef"
	if n == 0 {
		return "__string_literal_0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{digits[n%16]}, buf...)
		n /= 16
	}
	return "__string_literal_" + string(buf)
}

// BuiltinMemcpy / BuiltinMemset name the runtime helpers the backend
// links in for struct/array copy and zero-fill (§4.3 "Struct and array
// assignment is a byte copy", §4.4 "a single call to the memset builtin").
func BuiltinMemcpy() string { return "memcpy" }
func BuiltinMemset() string { return "memset" }

// BuiltinVaArgUint64 names the runtime helper __builtin_va_arg lowers
// through (§4.3, §6, §9 Open Questions: its exact ABI is left to the backend).
func BuiltinVaArgUint64() string { return "__builtin_va_arg_uint64" }
