package emit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"hdrgen/internal/symbols"
	"hdrgen/internal/types"
)

func (e *emitter) constants(w *writer) error {
	for _, c := range e.in.Symbols.Constants {
		name := e.in.Names.Symbol(c.Name)
		var value string
		switch c.Kind {
		case symbols.ConstString:
			w.line(chunkConst, "static const char* "+name+" = "+cString(c.Str)+";")
			continue
		case symbols.ConstExpr:
			w.line(chunkConst, "#define "+name+" ("+c.Expr+")")
			continue
		case symbols.ConstInt:
			value = itoa(c.Int)
		case symbols.ConstFloat:
			v, err := cFloat(c.Float)
			if err != nil {
				return e.fail(c.Name, c.Type, err)
			}
			value = v
		case symbols.ConstBool:
			value = "0"
			if c.Bool {
				value = "1"
			}
		default:
			return e.fail(c.Name, c.Type, errors.Newf("unknown constant kind %d", c.Kind))
		}
		if c.Type != types.NoTypeID {
			spelling, err := e.syn.Spell(c.Type)
			if err != nil {
				return e.fail(c.Name, c.Type, err)
			}
			value = "((" + spelling + ")" + value + ")"
		}
		w.line(chunkConst, "#define "+name+" "+value)
	}
	return nil
}

// cFloat renders a float with enough digits to round-trip and always with
// a decimal point or exponent so C reads it as a double.
func cFloat(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", errors.Newf("non-finite float %v", v)
	}
	s := strconv.FormatFloat(v, 'g', 17, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s, nil
}

// cString quotes s as a C string literal. Printable text passes through
// unchanged; control bytes use three-digit octal escapes so a following
// digit can never extend them.
func cString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&sb, `\%03o`, c)
				continue
			}
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
