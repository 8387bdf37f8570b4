// Package creport provides the structured error report type the lowering
// engine uses for every abort (§7): a stable code, a phase, a message, an
// optional source span, and structured data — never a bare error string.
package creport

// Error code constants, organized by the phase that raises them (§2, §7).
const (
	// ============================================================================
	// Type Environment / Declarator Resolver errors (TYP###, DCL###)
	// ============================================================================

	// TYP001 indicates a tag was redefined with an incompatible body
	TYP001 = "TYP001"
	// TYP002 indicates an incomplete type was used where a complete type is required
	TYP002 = "TYP002"
	// TYP003 indicates an unknown struct/union/enum tag was referenced
	TYP003 = "TYP003"
	// TYP004 indicates an unknown typedef name was referenced
	TYP004 = "TYP004"
	// TYP005 indicates a duplicate field name within one struct/union
	TYP005 = "TYP005"

	// DCL001 indicates conflicting storage-class specifiers
	DCL001 = "DCL001"
	// DCL002 indicates an array-of-function or function-returning-array declarator
	DCL002 = "DCL002"
	// DCL003 indicates a declarator with no base type keyword and no typedef name
	DCL003 = "DCL003"
	// DCL004 indicates redeclaration of an identifier with a conflicting type
	DCL004 = "DCL004"

	// ============================================================================
	// Constant-Expression Evaluator errors (CST###)
	// ============================================================================

	// CST001 indicates a non-constant sub-expression in a constant-expression context
	CST001 = "CST001"
	// CST002 indicates a side-effecting operator (assignment, ++/--, call, comma)
	// used inside a constant-expression context
	CST002 = "CST002"

	// ============================================================================
	// Initializer Compiler errors (INI###)
	// ============================================================================

	// INI001 indicates a designator applied to a non-aggregate type
	INI001 = "INI001"
	// INI002 indicates more initializer elements than the aggregate has slots for
	INI002 = "INI002"
	// INI003 indicates an initializer type incompatible with its target slot
	INI003 = "INI003"

	// ============================================================================
	// Expression Lowerer errors (EXP###)
	// ============================================================================

	// EXP001 indicates reference to an unbound identifier
	EXP001 = "EXP001"
	// EXP002 indicates an expression used in l-value context that cannot denote storage
	EXP002 = "EXP002"
	// EXP003 indicates a pointer compared against something other than a null-pointer
	// constant or a pointer of compatible type
	EXP003 = "EXP003"
	// EXP004 indicates a call to a non-function, non-function-pointer callee
	EXP004 = "EXP004"
	// EXP005 indicates an argument count that does not match a non-variadic callee
	EXP005 = "EXP005"
	// EXP006 indicates an operand type unsuited to its operator (e.g. a
	// struct operand to arithmetic, or a conversion with no defined rule)
	EXP006 = "EXP006"
	// EXP007 indicates field access (`.`/`->`) naming a field the
	// operand's struct/union type does not have
	EXP007 = "EXP007"

	// ============================================================================
	// Statement Lowerer errors (STM###)
	// ============================================================================

	// STM001 indicates break used outside any loop or switch
	STM001 = "STM001"
	// STM002 indicates continue used outside any loop
	STM002 = "STM002"
	// STM003 indicates a duplicate case constant within one switch
	STM003 = "STM003"
	// STM004 indicates case/default used outside a switch body
	STM004 = "STM004"

	// ============================================================================
	// Top-Level Driver errors (LNK###)
	// ============================================================================

	// LNK001 indicates a goto whose label was never defined in the same function
	LNK001 = "LNK001"
	// LNK002 indicates an extern-inline redeclaration whose type disagrees with
	// the deferred inline definition
	LNK002 = "LNK002"
	// LNK003 indicates a global redeclared with a conflicting type or linkage
	LNK003 = "LNK003"

	// ============================================================================
	// Unimplemented-feature signal (UNIMPL)
	// ============================================================================

	// UNIMPL names a construct spec.md places in Non-goals (bit-fields,
	// _Complex, floating-point, atomics, threads, full VLA, wide chars, ...)
	UNIMPL = "UNIMPL"

	// ============================================================================
	// Internal consistency violations (BUG###)
	// ============================================================================

	// BUG001 indicates a basic block was left without a terminator
	BUG001 = "BUG001"
	// BUG002 indicates a phi's predecessor set did not match its incoming blocks
	BUG002 = "BUG002"
	// BUG003 indicates arena/pool exhaustion or a stable-ID invariant violation
	BUG003 = "BUG003"
)

// Info describes one error code's phase and category, for tooling
// (e.g. `ccirgen dump-ir --explain CODE`).
type Info struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// Registry maps every code above to its descriptive Info.
var Registry = map[string]Info{
	TYP001: {TYP001, "types", "redefinition", "Incompatible tag redefinition"},
	TYP002: {TYP002, "types", "completeness", "Incomplete type used where size required"},
	TYP003: {TYP003, "types", "scope", "Unknown tag"},
	TYP004: {TYP004, "types", "scope", "Unknown typedef name"},
	TYP005: {TYP005, "types", "layout", "Duplicate field name"},

	DCL001: {DCL001, "declarator", "specifier", "Conflicting storage classes"},
	DCL002: {DCL002, "declarator", "shape", "Array of functions / function returning array"},
	DCL003: {DCL003, "declarator", "specifier", "Missing base type"},
	DCL004: {DCL004, "declarator", "redeclaration", "Conflicting redeclaration"},

	CST001: {CST001, "constexpr", "value", "Non-constant expression"},
	CST002: {CST002, "constexpr", "operator", "Side-effecting operator in constant context"},

	INI001: {INI001, "initializer", "designator", "Designator on non-aggregate"},
	INI002: {INI002, "initializer", "count", "Too many initializer elements"},
	INI003: {INI003, "initializer", "type", "Incompatible initializer type"},

	EXP001: {EXP001, "expr", "scope", "Unbound identifier"},
	EXP002: {EXP002, "expr", "lvalue", "Invalid l-value"},
	EXP003: {EXP003, "expr", "compare", "Incompatible pointer comparison"},
	EXP004: {EXP004, "expr", "call", "Call to non-function"},
	EXP005: {EXP005, "expr", "call", "Argument count mismatch"},
	EXP006: {EXP006, "expr", "operand", "Invalid operand type"},
	EXP007: {EXP007, "expr", "field", "Unknown struct/union field"},

	STM001: {STM001, "stmt", "control", "break outside loop/switch"},
	STM002: {STM002, "stmt", "control", "continue outside loop"},
	STM003: {STM003, "stmt", "switch", "Duplicate case constant"},
	STM004: {STM004, "stmt", "switch", "case/default outside switch"},

	LNK001: {LNK001, "driver", "goto", "Unresolved goto label"},
	LNK002: {LNK002, "driver", "inline", "Conflicting inline redeclaration"},
	LNK003: {LNK003, "driver", "global", "Conflicting global redeclaration"},

	UNIMPL: {UNIMPL, "*", "unimplemented", "Unimplemented C feature"},

	BUG001: {BUG001, "*", "internal", "Missing terminator"},
	BUG002: {BUG002, "*", "internal", "Phi predecessor mismatch"},
	BUG003: {BUG003, "*", "internal", "Arena/invariant violation"},
}

// GetInfo returns the descriptive Info for a code, if registered.
func GetInfo(code string) (Info, bool) {
	info, ok := Registry[code]
	return info, ok
}

// IsUnimplemented reports whether code names an unimplemented-feature signal.
func IsUnimplemented(code string) bool { return code == UNIMPL }

// IsBug reports whether code names an internal consistency violation.
func IsBug(code string) bool {
	info, ok := GetInfo(code)
	return ok && info.Category == "internal"
}
