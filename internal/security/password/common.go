package password

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// builtinCommon is the blacklist every deployment starts from.
var builtinCommon = []string{
	"password", "123456", "qwerty", "admin", "letmein",
	"welcome", "monkey", "sunshine", "password1", "123456789",
}

var defaultCommon = NewCommonSet(builtinCommon...)

// Fold maps s to the form blacklist entries are stored and looked up in:
// NFKC, format characters (BOM, zero-width joiners) removed, lowercased.
func Fold(s string) string {
	t := transform.Chain(norm.NFKC, runes.Remove(runes.In(unicode.Cf)))
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	return strings.ToLower(s)
}

// CommonSet is a read-only set of folded blacklisted passwords.
// Build it once at startup and share it; it is never mutated afterwards.
type CommonSet struct {
	set map[string]struct{}
}

// NewCommonSet folds entries and skips blanks.
func NewCommonSet(entries ...string) *CommonSet {
	cs := &CommonSet{set: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		e = strings.TrimSpace(Fold(e))
		if e == "" {
			continue
		}
		cs.set[e] = struct{}{}
	}
	return cs
}

// Common returns the built-in set.
func Common() *CommonSet { return defaultCommon }

// BuiltinCommon returns a copy of the built-in entries.
func BuiltinCommon() []string {
	out := make([]string, len(builtinCommon))
	copy(out, builtinCommon)
	return out
}

// Contains reports an exact match after folding pwd, so case and Unicode
// compatibility forms do not matter.
func (cs *CommonSet) Contains(pwd string) bool {
	if cs == nil {
		return false
	}
	_, ok := cs.set[Fold(pwd)]
	return ok
}

func (cs *CommonSet) Len() int {
	if cs == nil {
		return 0
	}
	return len(cs.set)
}
