package lower

import "github.com/ccirgen/ccirgen/internal/ast"

// spanAt turns a single source position into a zero-width Span, the
// shape creport.Report wants, for diagnostics anchored on one token
// rather than a range.
func spanAt(p ast.Pos) *ast.Span {
	return &ast.Span{Start: p, End: p}
}
