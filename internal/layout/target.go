package layout

import "github.com/cockroachdb/errors"

// Target describes the data model the header is checked against.
type Target struct {
	Name        string // e.g. "lp64"
	PtrSize     int    // bytes
	PtrAlign    int    // bytes
	Int128Align int
}

// LP64 is the 64-bit data model of Linux, macOS and (for pointers) Windows.
func LP64() Target {
	return Target{Name: "lp64", PtrSize: 8, PtrAlign: 8, Int128Align: 16}
}

// ILP32 is the 32-bit data model.
func ILP32() Target {
	return Target{Name: "ilp32", PtrSize: 4, PtrAlign: 4, Int128Align: 16}
}

// ForPointerWidth picks the target for a pointer width in bits.
func ForPointerWidth(bits int) (Target, error) {
	switch bits {
	case 0, 64:
		return LP64(), nil
	case 32:
		return ILP32(), nil
	default:
		return Target{}, errors.Newf("unsupported pointer width %d", bits)
	}
}
