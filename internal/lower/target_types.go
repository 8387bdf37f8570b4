package lower

import "github.com/ccirgen/ccirgen/internal/ctypes"

func rankForBits(bits int) ctypes.Rank {
	switch bits {
	case 8:
		return ctypes.RankChar
	case 16:
		return ctypes.RankShort
	case 32:
		return ctypes.RankInt
	default:
		return ctypes.RankLong
	}
}

// sizeTType returns the integer type `sizeof` results and array-index
// computations are typed as, per the active target's size_t width/signedness.
func (e *Env) sizeTType() ctypes.CType {
	return e.Types.Pool.IntegerFor(rankForBits(e.Target.SizeTBits), !e.Target.SizeTUnsigned)
}

// ptrdiffType returns the integer type pointer subtraction results are
// typed as, per the active target's ptrdiff_t width.
func (e *Env) ptrdiffType() ctypes.CType {
	return e.Types.Pool.IntegerFor(rankForBits(e.Target.PtrdiffTBits), true)
}
