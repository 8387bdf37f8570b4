package ctypes

import "github.com/ccirgen/ccirgen/internal/ir"

// Env is the Type Environment component of §2: the translation-unit-wide
// catalogs of struct/union tags and typedef names, plus the Pool that
// canonicalizes pointer types. Tags and typedefs are kept flat (not
// nested per-block) because C tag/typedef visibility for this compiler's
// purposes is resolved once at first use within a translation unit — see
// DESIGN.md for why this is a deliberate simplification rather than an
// oversight.
type Env struct {
	Pool *Pool

	tags     map[string]*StructCType
	typedefs map[string]CType
}

// NewEnv creates an Env with its own Pool.
func NewEnv() *Env {
	return &Env{
		Pool:     NewPool(),
		tags:     make(map[string]*StructCType),
		typedefs: make(map[string]CType),
	}
}

// LookupTag returns the struct/union type previously declared or
// forward-declared under tag, or nil.
func (e *Env) LookupTag(tag string) *StructCType {
	return e.tags[tag]
}

// EnsureTag returns the canonical (possibly still incomplete)
// StructCType for tag, creating an incomplete forward-declaration record
// the first time the tag is seen (§4.1's "declaring `struct Foo;` before
// its body creates an incomplete type").
func (e *Env) EnsureTag(tag string, union bool) *StructCType {
	if st, ok := e.tags[tag]; ok {
		return st
	}
	st := &StructCType{Tag: tag, Union: union, Incomplete: true}
	if tag != "" {
		e.tags[tag] = st
	}
	return st
}

// CompleteTag fills in fields/size/align/packed for a (possibly
// forward-declared) struct/union in place, so every pointer to the
// incomplete type that was handed out earlier observes the completion
// (§4.1, §3's "may be completed exactly once").
func (e *Env) CompleteTag(st *StructCType, fields []Field, packed bool) {
	laidOut, size, align := LayoutFields(fields, st.Union, packed)
	st.Fields = laidOut
	st.Size = size
	st.Align = align
	st.Packed = packed
	st.Incomplete = false

	irFields := make([]ir.FieldType, len(laidOut))
	for i, f := range laidOut {
		irFields[i] = ir.FieldType{Name: f.Name, Type: f.Type.IR(), Offset: f.Offset}
	}
	st.irType = &ir.StructType{
		Name:   st.Tag,
		Fields: irFields,
		Size:   size,
		Align:  align,
		Union:  st.Union,
		Packed: packed,
	}
}

// DefineTypedef records name as an alias for t (§4.1's typedef handling).
func (e *Env) DefineTypedef(name string, t CType) {
	e.typedefs[name] = t
}

// LookupTypedef returns the type name was defined as, or nil.
func (e *Env) LookupTypedef(name string) CType {
	return e.typedefs[name]
}
