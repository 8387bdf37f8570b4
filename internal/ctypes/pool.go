package ctypes

// Pool is the hash-consing table §9 recommends for canonical pointer
// types, plus the handful of singleton base types every translation
// unit shares (void, the integer ranks). Two calls to PointerTo with
// structurally-equal pointees return the identical *PointerCType, which
// is the property §8 tests directly ("requesting a pointer to the same
// type twice yields identical pointer values").
type Pool struct {
	Void CType

	Char     CType
	UChar    CType
	Short    CType
	UShort   CType
	Int      CType
	UInt     CType
	Long     CType
	ULong    CType
	LongLong CType
	ULongLong CType

	ptrCache map[CType]*PointerCType
}

// NewPool creates the canonical base-type singletons and an empty
// pointer-interning cache.
func NewPool() *Pool {
	return &Pool{
		Void:      &VoidCType{},
		Char:      &IntegerCType{Rank: RankChar, Signed: true},
		UChar:     &IntegerCType{Rank: RankChar, Signed: false},
		Short:     &IntegerCType{Rank: RankShort, Signed: true},
		UShort:    &IntegerCType{Rank: RankShort, Signed: false},
		Int:       &IntegerCType{Rank: RankInt, Signed: true},
		UInt:      &IntegerCType{Rank: RankInt, Signed: false},
		Long:      &IntegerCType{Rank: RankLong, Signed: true},
		ULong:     &IntegerCType{Rank: RankLong, Signed: false},
		LongLong:  &IntegerCType{Rank: RankLongLong, Signed: true},
		ULongLong: &IntegerCType{Rank: RankLongLong, Signed: false},
		ptrCache:  make(map[CType]*PointerCType),
	}
}

// PointerTo returns the canonical "pointer to pointee" type (c_pointer_to,
// §4.1), reusing a previously interned result whenever pointee is the
// same CType value (an interface holding a pointer, compared by identity
// since map keys over an interface compare by dynamic type+value).
//
// Callers must always pass a pointee obtained from this Pool (a base
// singleton, a previously-interned pointer, or a canonical struct/array
// returned by the Env) so that structurally-identical pointees really do
// compare interface-equal here.
func (p *Pool) PointerTo(pointee CType) *PointerCType {
	if cached, ok := p.ptrCache[pointee]; ok {
		return cached
	}
	pt := &PointerCType{Pointee: pointee}
	p.ptrCache[pointee] = pt
	return pt
}

// IntegerFor returns the canonical signed/unsigned integer singleton of
// the given rank.
func (p *Pool) IntegerFor(rank Rank, signed bool) CType {
	switch rank {
	case RankChar:
		if signed {
			return p.Char
		}
		return p.UChar
	case RankShort:
		if signed {
			return p.Short
		}
		return p.UShort
	case RankInt:
		if signed {
			return p.Int
		}
		return p.UInt
	case RankLong:
		if signed {
			return p.Long
		}
		return p.ULong
	default: // RankLongLong
		if signed {
			return p.LongLong
		}
		return p.ULongLong
	}
}
