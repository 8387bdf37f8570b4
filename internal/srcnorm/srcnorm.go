// Package srcnorm normalizes source text arriving in the AST to NFC
// before the lowering engine interns it. The tokenizer/parser that
// produced the AST is out of scope for this core (spec.md §1), so a
// source file's on-disk byte sequence may carry identifier spellings or
// string-literal contents in any Unicode normalization form; two
// spellings of the same identifier that differ only by normalization
// form must resolve to the same binding, and a string literal's byte
// sequence must be reproducible regardless of which form its source
// file used.
package srcnorm

import "golang.org/x/text/unicode/norm"

// String returns s normalized to NFC, the form identifiers are interned
// under (Scope keys, struct tags, typedef names).
func String(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// Bytes returns b normalized to NFC, the form a string literal's byte
// sequence is interned under before becoming an ir.ArrayConst of bytes.
// Non-UTF-8 byte sequences (e.g. a literal built from \xNN escapes that
// don't form valid UTF-8) pass through unchanged — normalization only
// applies to decodable text.
func Bytes(b []byte) []byte {
	if norm.NFC.IsNormal(b) {
		return b
	}
	return norm.NFC.Bytes(b)
}
