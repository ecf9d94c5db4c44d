// Package textnorm canonicalises free text before table lookups.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Fold trims, composes accents (NFC) and lower-cases text so that "Hipertensão"
// typed with a combining tilde still matches the precomposed table keys.
func Fold(text string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(text)))
}

// List splits a comma or semicolon separated field into folded, non-empty items.
func List(text string) []string {
	out := []string{}
	for _, t := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		if folded := Fold(t); folded != "" {
			out = append(out, folded)
		}
	}
	return out
}
