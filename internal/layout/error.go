package layout

import (
	"fmt"
	"strings"

	"hdrgen/internal/types"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursiveUnsized indicates a type containing itself by value.
	LayoutErrRecursiveUnsized LayoutErrorKind = iota + 1
	LayoutErrLengthConversion
	// LayoutErrUnsized indicates a node without a storage size, e.g. void.
	LayoutErrUnsized
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  types.TypeID
	Label string
	Cycle []string // for LayoutErrRecursiveUnsized
	Err   error    // for LayoutErrLengthConversion
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursiveUnsized:
		if len(e.Cycle) == 0 {
			return fmt.Sprintf("recursive value type has infinite size (%s)", e.Label)
		}
		return fmt.Sprintf("recursive value type has infinite size (cycle: %s)", strings.Join(e.Cycle, " -> "))
	case LayoutErrLengthConversion:
		if e.Err != nil {
			return fmt.Sprintf("array length conversion error (%s): %v", e.Label, e.Err)
		}
		return fmt.Sprintf("array length conversion error (%s)", e.Label)
	case LayoutErrUnsized:
		return fmt.Sprintf("type %s has no size", e.Label)
	default:
		return fmt.Sprintf("layout error kind=%d type %s", e.Kind, e.Label)
	}
}

// Unwrap exposes the conversion error, if any.
func (e *LayoutError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
