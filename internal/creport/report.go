package creport

import (
	"encoding/json"
	"errors"

	"github.com/ccirgen/ccirgen/internal/ast"
)

// Report is the canonical structured error type produced by every abort
// path in the lowering engine (§7). It distinguishes the three error
// classes via Code/Category (see codes.go's Registry) rather than via
// distinct Go error types, so a single `errors.As` recovers any of them.
type Report struct {
	Schema  string         `json:"schema"` // always "ccirgen.error/v1"
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Span    *ast.Span      `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Fix     *Fix           `json:"fix,omitempty"`
}

// Fix is an optional suggested remediation, surfaced by `ccirgen` diagnostics.
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// ReportError wraps a Report so it survives errors.As() unwrapping while
// still satisfying the error interface.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// As recovers the *Report from any error in the chain, if one is present.
func As(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap turns a *Report into an error. Call sites should always return
// creport.Wrap(r), never a bare fmt.Errorf, for anything in §7's three
// classes.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// New builds a Report for the given code/phase/message at an optional span.
func New(code, phase, message string, span *ast.Span) *Report {
	return &Report{
		Schema:  "ccirgen.error/v1",
		Code:    code,
		Phase:   phase,
		Message: message,
		Span:    span,
		Data:    map[string]any{},
	}
}

// Unimplemented builds an UNIMPL report naming the unsupported construct.
func Unimplemented(phase, construct string, span *ast.Span) *Report {
	r := New(UNIMPL, phase, "unimplemented: "+construct, span)
	r.Data["construct"] = construct
	return r
}

// Bug builds an internal-consistency-violation report; callers should treat
// this as a compiler bug, not a user-facing diagnostic.
func Bug(code, phase, message string) *Report {
	return New(code, phase, message, nil)
}

// ToJSON renders the report deterministically (sorted map keys via
// encoding/json's default struct/map marshaling).
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
