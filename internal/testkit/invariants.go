// Package testkit checks structural invariants of generated headers.
package testkit

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	recordOpen   = regexp.MustCompile(`^typedef (struct|union|enum) (\w+) \{$`)
	recordClose  = regexp.MustCompile(`^\} (\w+);$`)
	plainTypedef = regexp.MustCompile(`^typedef [^(]*?(\w+)(\[\d+\])*;$`)
	enumRef      = regexp.MustCompile(`\benum (\w+)\b`)
)

// CheckHeaderInvariants runs a minimal set of checks on a header:
// 1) the text ends with one newline, has no trailing spaces and no runs of
// blank lines
// 2) preprocessor conditionals nest and close
// 3) every record body closes with its own name, and no typedef name is
// defined twice
// 4) enums are defined before they are referenced
func CheckHeaderInvariants(h string) error {
	if h == "" || !strings.HasSuffix(h, "\n") || strings.HasSuffix(h, "\n\n") {
		return errors.New("header must end with exactly one newline")
	}
	lines := strings.Split(strings.TrimSuffix(h, "\n"), "\n")

	var (
		depth     int
		open      string
		openLine  int
		typedefs  = make(map[string]int)
		enums     = make(map[string]bool)
		prevBlank bool
	)
	define := func(name string, at int) error {
		if prev, ok := typedefs[name]; ok {
			return errors.Newf("line %d: typedef %s already defined on line %d", at, name, prev)
		}
		typedefs[name] = at
		return nil
	}

	for i, l := range lines {
		n := i + 1
		if strings.TrimRight(l, " \t") != l {
			return errors.Newf("line %d: trailing whitespace", n)
		}
		blank := l == ""
		if blank && prevBlank {
			return errors.Newf("line %d: repeated blank line", n)
		}
		prevBlank = blank

		// 2) conditionals
		switch {
		case strings.HasPrefix(l, "#if"):
			depth++
		case strings.HasPrefix(l, "#else"):
			if depth == 0 {
				return errors.Newf("line %d: #else outside a conditional", n)
			}
		case strings.HasPrefix(l, "#endif"):
			if depth == 0 {
				return errors.Newf("line %d: unmatched #endif", n)
			}
			depth--
		}

		// 3) records
		if m := recordOpen.FindStringSubmatch(l); m != nil {
			if open != "" {
				return errors.Newf("line %d: %s opened inside %s (line %d)", n, m[2], open, openLine)
			}
			open, openLine = m[2], n
			if m[1] == "enum" {
				enums[m[2]] = true
			}
			continue
		}
		if m := recordClose.FindStringSubmatch(l); m != nil {
			if open != m[1] {
				return errors.Newf("line %d: closes %s but %q is open", n, m[1], open)
			}
			if err := define(m[1], openLine); err != nil {
				return err
			}
			open = ""
			continue
		}
		if m := plainTypedef.FindStringSubmatch(l); m != nil {
			if err := define(m[1], n); err != nil {
				return err
			}
		}

		// 4) enum references
		for _, m := range enumRef.FindAllStringSubmatch(l, -1) {
			if !enums[m[1]] {
				return errors.Newf("line %d: enum %s used before its definition", n, m[1])
			}
		}
	}
	if open != "" {
		return errors.Newf("line %d: %s is never closed", openLine, open)
	}
	if depth != 0 {
		return errors.Newf("%d unclosed preprocessor conditional(s)", depth)
	}
	return nil
}
