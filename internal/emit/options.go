package emit

import (
	"strings"

	"github.com/cockroachdb/errors"

	"hdrgen/internal/symbols"
)

// Style selects whitespace layout. Styles never change tokens.
type Style uint8

const (
	StyleCompact Style = iota
	StyleAligned
)

func (s Style) String() string {
	if s == StyleAligned {
		return "aligned"
	}
	return "compact"
}

// ParseStyle parses "compact" or "aligned".
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "compact":
		return StyleCompact, nil
	case "aligned":
		return StyleAligned, nil
	default:
		return StyleCompact, errors.WithHint(errors.Newf("unknown style %q", s), "use compact or aligned")
	}
}

// ParsePlatform parses "portable", "windows" or "posix". Portable headers
// carry both sides behind preprocessor conditionals.
func ParsePlatform(s string) (symbols.Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "portable":
		return symbols.PlatformAny, nil
	case "windows":
		return symbols.PlatformWindows, nil
	case "posix":
		return symbols.PlatformPosix, nil
	default:
		return symbols.PlatformAny, errors.WithHint(errors.Newf("unknown platform %q", s), "use portable, windows or posix")
	}
}

// PlatformName is the inverse of ParsePlatform.
func PlatformName(p symbols.Platform) string {
	if p == symbols.PlatformAny {
		return "portable"
	}
	return p.String()
}

// Options configures one header.
type Options struct {
	Platform symbols.Platform
	Style    Style
	// Prefix adds #define <prefix><fn> <fn> alias macros.
	Prefix string
	// Guard is an #ifndef guard macro; empty emits #pragma once.
	Guard string
	// SizeAsserts appends _Static_assert size checks after each record.
	SizeAsserts bool
	// PointerWidth in bits for size assertions; 0 means 64.
	PointerWidth int
}
