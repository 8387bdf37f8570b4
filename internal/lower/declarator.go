package lower

import (
	"github.com/ccirgen/ccirgen/internal/ast"
	"github.com/ccirgen/ccirgen/internal/creport"
	"github.com/ccirgen/ccirgen/internal/ctypes"
	"github.com/ccirgen/ccirgen/internal/ir"
)

// specifierSet tallies the type-keyword multiset a specifier list
// contributes, before matching it against the canonical integer-type
// combinations (§4.1).
type specifierSet struct {
	Void, Char, Short, Long, Int, Signed, Unsigned, Float, Double int
}

// ClassifySpecifiers separates storage class, the `inline` function
// specifier, and the base type out of a declaration-specifier list
// (§4.1 "Specifier → base type"). Type qualifiers are recognized but
// otherwise inert — no const-correctness checking is in scope (§1).
func (e *Env) ClassifySpecifiers(specs []ast.DeclSpecifier) (storage ast.StorageClass, inline bool, base ctypes.CType, err error) {
	storage = ast.NoStorageClass
	var kw specifierSet
	var named ctypes.CType
	var pos ast.Pos

	for _, s := range specs {
		switch sp := s.(type) {
		case ast.StorageClassSpecifier:
			storage = sp.Class
		case ast.TypeQualifierSpecifier:
			// inert: no const-correctness checking in scope (§1 Non-goals)
		case ast.FunctionSpecifier:
			inline = true
		case ast.TypeKeywordSpecifier:
			switch sp.Keyword {
			case ast.KwVoid:
				kw.Void++
			case ast.KwChar:
				kw.Char++
			case ast.KwShort:
				kw.Short++
			case ast.KwLong:
				kw.Long++
			case ast.KwInt:
				kw.Int++
			case ast.KwSigned:
				kw.Signed++
			case ast.KwUnsigned:
				kw.Unsigned++
			case ast.KwFloat:
				kw.Float++
			case ast.KwDouble:
				kw.Double++
			}
		case ast.TypedefNameSpecifier:
			t := e.Types.LookupTypedef(sp.Name)
			if t == nil {
				return storage, inline, nil, e.Fail(creport.New(creport.TYP004, "types", "unknown typedef name: "+sp.Name, nil))
			}
			named = t
		case ast.StructSpecifier:
			t, ferr := e.resolveStructSpecifier(sp)
			if ferr != nil {
				return storage, inline, nil, ferr
			}
			named = t
		case ast.EnumSpecifier:
			t, ferr := e.resolveEnumSpecifier(sp)
			if ferr != nil {
				return storage, inline, nil, ferr
			}
			named = t
		}
	}

	if named != nil {
		return storage, inline, named, nil
	}

	base, err = classifyIntegerKeywords(e, kw, pos)
	return storage, inline, base, err
}

func classifyIntegerKeywords(e *Env, kw specifierSet, pos ast.Pos) (ctypes.CType, error) {
	pool := e.Types.Pool
	switch {
	case kw.Void > 0:
		return pool.Void, nil
	case kw.Float > 0 || kw.Double > 0:
		return nil, e.Fail(creport.Unimplemented("type", "floating-point types", spanAt(pos)))
	case kw.Char > 0:
		return pool.IntegerFor(ctypes.RankChar, kw.Unsigned == 0), nil
	case kw.Short > 0:
		return pool.IntegerFor(ctypes.RankShort, kw.Unsigned == 0), nil
	case kw.Long >= 2:
		return pool.IntegerFor(ctypes.RankLongLong, kw.Unsigned == 0), nil
	case kw.Long == 1:
		return pool.IntegerFor(ctypes.RankLong, kw.Unsigned == 0), nil
	default:
		// plain `int`, `signed`, `unsigned`, or `signed int` / `unsigned int`
		return pool.IntegerFor(ctypes.RankInt, kw.Unsigned == 0), nil
	}
}

// resolveStructSpecifier implements §4.1's struct/union-specifier rules:
// a tag with no body resolves to (or creates) an incomplete forward type;
// a tag with a body defines it, completing a prior incomplete type of the
// same tag or erroring on a complete one.
func (e *Env) resolveStructSpecifier(s ast.StructSpecifier) (ctypes.CType, error) {
	union := s.Kind == ast.UnionKind

	if !s.HasBody {
		return e.Types.EnsureTag(s.Tag, union), nil
	}

	var st *ctypes.StructCType
	if s.Tag != "" {
		if existing := e.Types.LookupTag(s.Tag); existing != nil {
			if !existing.Incomplete {
				return nil, e.Fail(creport.New(creport.TYP001, "types", "redefinition of complete tag: "+s.Tag, nil))
			}
			st = existing
		} else {
			st = e.Types.EnsureTag(s.Tag, union)
		}
	} else {
		st = e.Types.EnsureTag("", union)
	}

	fields := make([]ctypes.Field, 0, len(s.Fields))
	for _, fd := range s.Fields {
		_, _, base, err := e.classifyForMember(fd.Specs)
		if err != nil {
			return nil, err
		}
		name, ftype, err := e.DeclToCDecl(base, fd.Declarator)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ctypes.Field{Name: name, Type: ftype})
	}
	e.Types.CompleteTag(st, fields, s.Packed)
	e.Unit.AddStruct(st.IR().(*ir.StructType))
	return st, nil
}

// classifyForMember is ClassifySpecifiers trimmed to the 3-value return a
// struct field needs (storage class is meaningless on a member).
func (e *Env) classifyForMember(specs []ast.DeclSpecifier) (ast.StorageClass, bool, ctypes.CType, error) {
	storage, inline, base, err := e.ClassifySpecifiers(specs)
	return storage, inline, base, err
}

// resolveEnumSpecifier binds each enumerator as a compile-time constant
// in the current scope and returns the int alias every enum type is
// (§3: "enum types are aliases of int").
func (e *Env) resolveEnumSpecifier(s ast.EnumSpecifier) (ctypes.CType, error) {
	intType := e.Types.Pool.Int
	if !s.HasBody {
		return intType, nil
	}
	var next int64
	for _, en := range s.Enumerators {
		val := next
		if en.Value != nil {
			v, err := e.EvalConstInt(en.Value)
			if err != nil {
				return nil, err
			}
			val = v
		}
		e.Scope.Define(Binding{
			Name:     en.Name,
			Term:     Term{Type: intType, Value: constIntValue(intType, val)},
			Constant: true,
		})
		next = val + 1
	}
	return intType, nil
}

// DeclToCDecl folds an AST declarator chain onto base, walking inside-out
// (§4.1 "Declarator folding"): a pointer declarator wraps base in a
// pointer type and recurses into the rest of the chain; an array
// declarator wraps it in an array (completing the size via the constant
// evaluator when a length expression is present); a function declarator
// builds a function type from the parameter list; the inner identifier
// declarator supplies the name. Parameters of array type are adjusted to
// pointer type per C 6.7.5.3/7.
func (e *Env) DeclToCDecl(base ctypes.CType, d ast.Declarator) (name string, result ctypes.CType, err error) {
	if d == nil {
		return "", base, nil
	}
	switch decl := d.(type) {
	case ast.PointerDeclarator:
		ptr := e.Types.Pool.PointerTo(base)
		return e.DeclToCDecl(ptr, decl.Pointee)

	case ast.IdentifierDeclarator:
		return decl.Name, base, nil

	case ast.NestedDeclarator:
		return e.DeclToCDecl(base, decl.Inner)

	case ast.ArrayDeclarator:
		size := 0
		incomplete := true
		if decl.Length != nil {
			v, ferr := e.EvalConstInt(decl.Length)
			if ferr != nil {
				return "", nil, ferr
			}
			size, incomplete = int(v), false
		}
		arr := ctypes.NewArrayCType(base, size, incomplete)
		return e.DeclToCDecl(arr, decl.Base)

	case ast.FunctionDeclarator:
		params := make([]ctypes.CType, 0, len(decl.Params))
		if !decl.VoidOnly {
			for _, p := range decl.Params {
				_, _, pbase, ferr := e.ClassifySpecifiers(p.Specs)
				if ferr != nil {
					return "", nil, ferr
				}
				_, ptype, ferr := e.DeclToCDecl(pbase, p.Declarator)
				if ferr != nil {
					return "", nil, ferr
				}
				if arrT, ok := ptype.(*ctypes.ArrayCType); ok {
					ptype = e.Types.Pool.PointerTo(arrT.Elem)
				}
				params = append(params, ptype)
			}
		}
		fn := &ctypes.FunctionCType{Return: base, Params: params, Variadic: decl.Variadic}
		return e.DeclToCDecl(fn, decl.Base)

	default:
		return "", nil, e.Fail(creport.Bug(creport.BUG003, "declarator", "unhandled declarator node"))
	}
}

// ResolveTypeName resolves a `sizeof(T)` / cast type-name to a CType.
func (e *Env) ResolveTypeName(tn ast.TypeName) (ctypes.CType, error) {
	_, _, base, err := e.ClassifySpecifiers(tn.Specs)
	if err != nil {
		return nil, err
	}
	_, t, err := e.DeclToCDecl(base, tn.Declarator)
	return t, err
}
