package models

import "strings"

// NormalizeID canonicalizes a security identifier for joins across data
// sources. Blank input yields the empty string. Every equality comparison
// between holdings, transactions, realized lots and price series must go
// through this first; raw casing or whitespace differences between sources
// must never cause a false "missing" determination.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// NormalizeName canonicalizes a display name for use as a fallback identity
// key when a record carries no security identifier.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
