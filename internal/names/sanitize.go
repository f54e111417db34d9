package names

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters without a canonical decomposition
var transliterations = map[rune]string{
	'ß': "ss", 'ẞ': "SS",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'ø': "o", 'Ø': "O",
	'ł': "l", 'Ł': "L",
	'đ': "d", 'Đ': "D",
	'ð': "d", 'Ð': "D",
	'þ': "th", 'Þ': "Th",
	'ı': "i",
}

var cKeywords = map[string]struct{}{
	"auto": {}, "break": {}, "case": {}, "char": {}, "const": {}, "continue": {},
	"default": {}, "do": {}, "double": {}, "else": {}, "enum": {}, "extern": {},
	"float": {}, "for": {}, "goto": {}, "if": {}, "inline": {}, "int": {},
	"long": {}, "register": {}, "restrict": {}, "return": {}, "short": {},
	"signed": {}, "sizeof": {}, "static": {}, "struct": {}, "switch": {},
	"typedef": {}, "union": {}, "unsigned": {}, "void": {}, "volatile": {},
	"while": {}, "_Alignas": {}, "_Alignof": {}, "_Atomic": {}, "_Bool": {},
	"_Complex": {}, "_Generic": {}, "_Imaginary": {}, "_Noreturn": {},
	"_Static_assert": {}, "_Thread_local": {}, "alignas": {}, "alignof": {},
	"bool": {}, "constexpr": {}, "false": {}, "nullptr": {}, "static_assert": {},
	"thread_local": {}, "true": {}, "typeof": {}, "typeof_unqual": {},
}

// Sanitizer maps foreign identifiers to portable C identifiers. Results are
// cached so every reference to a name spells it identically.
type Sanitizer struct {
	cache map[string]string
}

// NewSanitizer returns an empty sanitizer.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{cache: make(map[string]string, 64)}
}

// Ident returns the portable spelling of name. Diacritics are stripped,
// a few letters are transliterated, anything else outside [A-Za-z0-9_]
// becomes _uXXXX. Leading digits get an underscore and C keywords a
// trailing one.
func (s *Sanitizer) Ident(name string) string {
	if out, ok := s.cache[name]; ok {
		return out
	}
	out := sanitize(name)
	s.cache[name] = out
	return out
}

func sanitize(name string) string {
	var pre strings.Builder
	for _, r := range name {
		if rep, ok := transliterations[r]; ok {
			pre.WriteString(rep)
			continue
		}
		pre.WriteRune(r)
	}
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, pre.String())
	if err != nil {
		folded = pre.String()
	}

	var sb strings.Builder
	for _, r := range folded {
		if isIdentRune(r) {
			sb.WriteRune(r)
			continue
		}
		fmt.Fprintf(&sb, "_u%04x", r)
	}
	out := sb.String()
	switch {
	case out == "":
		return "_"
	case out[0] >= '0' && out[0] <= '9':
		out = "_" + out
	}
	if _, ok := cKeywords[out]; ok {
		out += "_"
	}
	return out
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
