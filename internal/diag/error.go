package diag

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Error is a fatal generation error. Every error aborts the run; no header
// is produced.
type Error struct {
	Code Code
	// Symbol is the exported symbol through which the construct was reached.
	Symbol string
	// Chain lists the types involved, outermost first. For cycles the first
	// and last entries name the same type.
	Chain []string
	// Position is the index of the declaration being produced, or -1.
	Position int
	Detail   string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var sb strings.Builder
	sb.WriteString(e.Code.Name())
	sb.WriteString(": ")
	switch e.Code {
	case UnresolvableCycle:
		sb.WriteString("value cycle ")
		sb.WriteString(strings.Join(e.Chain, " -> "))
	case NameCollision:
		fmt.Fprintf(&sb, "identifier %q", e.Detail)
		if len(e.Chain) > 0 {
			sb.WriteString(" declared by ")
			sb.WriteString(strings.Join(e.Chain, " and "))
		}
	case UnsupportedConstruct, InvalidTag:
		sb.WriteString(strings.Join(e.Chain, " -> "))
		if e.Detail != "" {
			sb.WriteString(": ")
			sb.WriteString(e.Detail)
		}
	default:
		sb.WriteString(e.Detail)
	}
	if e.Symbol != "" {
		fmt.Fprintf(&sb, " (symbol %s)", e.Symbol)
	}
	if e.Position >= 0 {
		fmt.Fprintf(&sb, " (declaration #%d)", e.Position)
	}
	return sb.String()
}

// Cycle reports a value containment cycle.
func Cycle(symbol string, chain []string) *Error {
	return &Error{Code: UnresolvableCycle, Symbol: symbol, Chain: chain, Position: -1}
}

// Collision reports two owners of the same identifier.
func Collision(ident, first, second string) *Error {
	return &Error{Code: NameCollision, Detail: ident, Chain: []string{first, second}, Position: -1}
}

// Unsupported reports a type with no C lowering.
func Unsupported(symbol string, chain []string, detail string) *Error {
	return &Error{Code: UnsupportedConstruct, Symbol: symbol, Chain: chain, Detail: detail, Position: -1}
}

// BadTag reports a forward declaration request for a type without a tag.
func BadTag(symbol string, chain []string, detail string) *Error {
	return &Error{Code: InvalidTag, Symbol: symbol, Chain: chain, Detail: detail, Position: -1}
}

// At records the declaration position and returns the error.
func (e *Error) At(pos int) *Error {
	e.Position = pos
	return e
}

// CodeOf extracts the code of a wrapped *Error.
func CodeOf(err error) (Code, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	return UnknownCode, false
}
