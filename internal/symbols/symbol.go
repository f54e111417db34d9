package symbols

import (
	"slices"
	"strconv"

	"hdrgen/internal/types"
)

// Platform restricts a symbol to one family of targets.
type Platform uint8

const (
	PlatformAny Platform = iota
	PlatformWindows
	PlatformPosix
)

// Emitted reports whether a symbol of platform p is part of a header
// generated for target. PlatformAny as target keeps everything.
func Emitted(p, target Platform) bool {
	return target == PlatformAny || p == PlatformAny || p == target
}

func (p Platform) String() string {
	switch p {
	case PlatformWindows:
		return "windows"
	case PlatformPosix:
		return "posix"
	default:
		return "any"
	}
}

// ConstKind selects which value field of a Constant is meaningful.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstString
	ConstBool
	ConstExpr // raw C expression, emitted verbatim in parentheses
)

// Constant is an exported compile-time value.
type Constant struct {
	Name  string
	Kind  ConstKind
	Int   int64
	Float float64
	Str   string
	Bool  bool
	Expr  string
	// Type optionally casts integer constants; NoTypeID leaves them bare.
	Type types.TypeID
}

// Variable is an exported global.
type Variable struct {
	Name     string
	Type     types.TypeID
	Platform Platform
}

// Function is an exported procedure. More than one result is returned
// through a synthesized <name>_result struct.
type Function struct {
	Name     string
	Params   []types.Field
	Results  []types.Field
	Platform Platform
	// Return is the C return type: NoTypeID for void, the single result,
	// or the synthesized result struct. Set by AddFunction.
	Return types.TypeID
}

// TypeDecl exports a named type even if no variable or function uses it.
type TypeDecl struct {
	Name string
	Type types.TypeID
}

// Table is the ordered exported surface of one foreign package.
type Table struct {
	Package   string
	Types     []TypeDecl
	Constants []Constant
	Variables []Variable
	Functions []Function
}

// Len returns the number of exported symbols.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Types) + len(t.Constants) + len(t.Variables) + len(t.Functions)
}

// ResultFields returns the fields of the synthesized result struct, naming
// unnamed results v0, v1, ...
func (f *Function) ResultFields() []types.Field {
	out := make([]types.Field, len(f.Results))
	for i, r := range f.Results {
		name := r.Name
		if name == "" {
			name = "v" + strconv.Itoa(i)
		}
		out[i] = types.Field{Name: name, Type: r.Type}
	}
	return out
}

// AddFunction appends fn to the table, synthesizing its return type in the
// interner. Must be called while the graph is still being built.
//
// A function with the same name on the opposite platform reuses its twin's
// result struct when the result fields match, so both can live in one
// portable header.
func (t *Table) AddFunction(in *types.Interner, fn Function) {
	switch len(fn.Results) {
	case 0:
		fn.Return = types.NoTypeID
	case 1:
		fn.Return = fn.Results[0].Type
	default:
		fields := fn.ResultFields()
		if twin := t.twin(fn); twin != nil && slices.Equal(in.Fields(twin.Return), fields) {
			fn.Return = twin.Return
			break
		}
		id := in.RegisterStruct(fn.Name + "_result")
		in.SetFields(id, fields)
		fn.Return = id
	}
	t.Functions = append(t.Functions, fn)
}

// twin finds a multi-result function named like fn for the other platform.
func (t *Table) twin(fn Function) *Function {
	if fn.Platform == PlatformAny {
		return nil
	}
	for i := range t.Functions {
		other := &t.Functions[i]
		if other.Name == fn.Name && other.Platform != PlatformAny && other.Platform != fn.Platform && len(other.Results) > 1 {
			return other
		}
	}
	return nil
}
