package catchment

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName upper-cases s with French rules and collapses whitespace.
// Accents are kept: "Sète" and "SETE" are different localities.
func NormalizeName(s string) string {
	// Casers are stateful; never share one between goroutines.
	up := cases.Upper(language.French).String(norm.NFC.String(s))
	return strings.Join(strings.Fields(up), " ")
}

// LocalityKey builds the "NAME (DEPARTMENT)" selector key.
func LocalityKey(name, department string) string {
	return NormalizeName(name) + " (" + NormalizeName(department) + ")"
}

// SplitLocalityKey is the inverse of LocalityKey. ok is false when key has no
// department suffix.
func SplitLocalityKey(key string) (name, department string, ok bool) {
	i := strings.LastIndex(key, " (")
	if i < 0 || !strings.HasSuffix(key, ")") {
		return key, "", false
	}
	return key[:i], key[i+2 : len(key)-1], true
}

// Fold strips diacritics and upper-cases s. It is used for loose comparisons
// (type labels, population keys, selector filtering), never for lookups.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return NormalizeName(out)
}
