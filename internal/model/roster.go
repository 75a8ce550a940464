package model

import "strings"

// RosterEntry is one known individual eligible for verification.
// FirstName is lowercase, Branch is uppercase, Phone is kept verbatim (trimmed).
type RosterEntry struct {
	FirstName string
	Branch    string
	Phone     string
}

// Roster is a read-only lookup over roster entries.
type Roster interface {
	FindByName(name string) []RosterEntry
	Len() int
}

// NormalizeName trims and lowercases a first name.
func NormalizeName(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// NormalizeBranch trims and uppercases a branch.
func NormalizeBranch(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// NormalizePhone trims a phone number.
func NormalizePhone(v string) string {
	return strings.TrimSpace(v)
}
