package testkit

import (
	"strings"
	"testing"
)

const good = `#ifndef G
#define G

#include <stdint.h>

typedef enum color {
    red = 0,
} color;

typedef struct pixel {
    enum color c;
    uint8_t a[4];
} pixel;

typedef uint8_t bits;
typedef int32_t row[8];

#ifdef _WIN32
extern struct pixel p;
#else
extern bits b;
#endif

#endif // G
`

func TestGoodHeaderPasses(t *testing.T) {
	if err := CheckHeaderInvariants(good); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestViolations(t *testing.T) {
	cases := map[string]struct {
		header string
		want   string
	}{
		"no newline":       {"#pragma once", "newline"},
		"double newline":   {"#pragma once\n\n", "newline"},
		"trailing space":   {"#pragma once \n", "trailing"},
		"blank run":        {"#pragma once\n\n\nint x;\n", "repeated blank"},
		"unclosed if":      {"#ifdef A\nint x;\n", "unclosed"},
		"stray endif":      {"#endif\n", "unmatched"},
		"stray else":       {"#else\n", "outside"},
		"wrong close":      {"typedef struct a {\n    int x;\n} b;\n", "closes b"},
		"never closed":     {"typedef struct a {\n    int x;\n", "never closed"},
		"duplicate":        {"typedef uint8_t t;\ntypedef uint16_t t;\n", "already defined"},
		"enum before def":  {"extern enum e v;\ntypedef enum e {\n    x = 0,\n} e;\n", "before its definition"},
		"nested record":    {"typedef struct a {\ntypedef struct b {\n", "opened inside"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := CheckHeaderInvariants(tc.header)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("got %v, want error containing %q", err, tc.want)
			}
		})
	}
}
