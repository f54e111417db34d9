// Package cdecl renders C declarators for type graph nodes.
//
// A declarator is built center-out: starting from the identifier, pointer
// stars accumulate until an array suffix or a parameter list forces them
// into parentheses, so ^[5]^^^u8 becomes "uint8_t*** (*name)[5]".
package cdecl

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"hdrgen/internal/resolve"
	"hdrgen/internal/types"
)

// Namer supplies the identifiers chosen for declarations and parameters.
type Namer interface {
	// TypeName returns the C name of a declared node.
	TypeName(id types.TypeID) string
	// Ident sanitizes a foreign identifier.
	Ident(name string) string
}

// Qual is a top-level qualifier applied to the declared object.
type Qual uint8

const (
	QualNone Qual = iota
	// QualConst makes the declared object itself read-only: the outermost
	// pointer for pointer chains, the element type otherwise.
	QualConst
)

// Declarator is a declaration split at the identifier. Head holds the base
// type with directly attached stars, Body the identifier with any
// parenthesized pointer groups and suffixes.
type Declarator struct {
	Head string
	Body string
}

func (d Declarator) String() string {
	if d.Body == "" {
		return d.Head
	}
	return d.Head + " " + d.Body
}

// Synthesizer renders declarators against one resolved graph.
type Synthesizer struct {
	in    *types.Interner
	res   *resolve.Result
	names Namer

	usesSize  bool
	usesSSize bool
}

// New returns a synthesizer for the given graph.
func New(in *types.Interner, res *resolve.Result, names Namer) *Synthesizer {
	return &Synthesizer{in: in, res: res, names: names}
}

// UsesSize reports whether any rendered declarator mentioned size_t.
func (s *Synthesizer) UsesSize() bool { return s.usesSize }

// UsesSSize reports whether any rendered declarator mentioned ssize_t.
func (s *Synthesizer) UsesSSize() bool { return s.usesSSize }

// MarkSize records a size_t spelled by the caller.
func (s *Synthesizer) MarkSize() { s.usesSize = true }

// MarkSSize records a ssize_t spelled by the caller.
func (s *Synthesizer) MarkSSize() { s.usesSSize = true }

// Declare renders a declaration of name with type id.
func (s *Synthesizer) Declare(id types.TypeID, name string, q Qual) (Declarator, error) {
	return s.declare(id, name, q, 0)
}

// Pointer renders a declaration of name as a pointer to id without
// interning the pointer node.
func (s *Synthesizer) Pointer(id types.TypeID, name string, q Qual) (Declarator, error) {
	return s.declare(id, name, q, 1)
}

// Spell renders an abstract declarator, as used in casts.
func (s *Synthesizer) Spell(id types.TypeID) (string, error) {
	d, err := s.declare(id, "", QualNone, 0)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// grouped is set once pending stars were wrapped in parentheses; a later
// const then qualifies the element, not the outer pointer.
type state struct {
	body    string
	stars   int
	qual    Qual
	grouped bool
}

// group wraps the pending stars and the body in parentheses. Function
// pointer groups keep a space before the identifier.
func (st *state) group(fn bool) {
	prefix := strings.Repeat("*", st.stars)
	if fn && st.qual == QualConst && !st.grouped {
		prefix += "const"
		st.qual = QualNone
		if st.body != "" {
			prefix += " "
		}
	} else if fn && st.body != "" {
		prefix += " "
	}
	st.body = "(" + prefix + st.body + ")"
	st.stars = 0
	st.grouped = true
}

func (s *Synthesizer) declare(id types.TypeID, name string, q Qual, stars int) (Declarator, error) {
	st := &state{body: name, stars: stars, qual: q}
	for guard := 0; guard <= s.in.Len()+1; guard++ {
		if id == types.NoTypeID {
			return st.base("void"), nil
		}
		tt, ok := s.in.Lookup(id)
		if !ok {
			return Declarator{}, errors.Newf("cdecl: unknown type %d", id)
		}
		if s.res.Declared(id) {
			return st.base(s.reference(id, tt)), nil
		}
		switch tt.Kind {
		case types.KindPrimitive:
			spelling, err := s.primitive(tt)
			if err != nil {
				return Declarator{}, err
			}
			return st.base(spelling), nil

		case types.KindPointer:
			st.stars++
			id = tt.Elem

		case types.KindArray, types.KindMultiArray:
			if st.stars > 0 {
				st.group(false)
			}
			dims, _ := s.in.ArrayDims(id)
			var sb strings.Builder
			sb.WriteString(st.body)
			for _, d := range dims {
				sb.WriteString("[" + strconv.FormatUint(uint64(d), 10) + "]")
			}
			st.body = sb.String()
			id = tt.Elem

		case types.KindFn:
			// a procedure value is a function pointer
			st.stars++
			st.group(true)
			params, err := s.params(id)
			if err != nil {
				return Declarator{}, err
			}
			st.body += "(" + params + ")"
			info, _ := s.in.FnInfo(id)
			id = info.Result

		default:
			return Declarator{}, errors.Newf("cdecl: %s %s has no declaration", tt.Kind, types.Label(s.in, id))
		}
	}
	return Declarator{}, errors.Newf("cdecl: type %s does not terminate", types.Label(s.in, id))
}

// base finishes a declarator at its base type.
func (st *state) base(spelling string) Declarator {
	head := spelling + strings.Repeat("*", st.stars)
	if st.qual == QualConst {
		if st.stars > 0 && !st.grouped {
			head += "const"
		} else {
			head = "const " + head
		}
	}
	return Declarator{Head: head, Body: st.body}
}

func (s *Synthesizer) params(fn types.TypeID) (string, error) {
	info, ok := s.in.FnInfo(fn)
	if !ok {
		return "", errors.Newf("cdecl: procedure %d without signature", fn)
	}
	return s.Params(info.Params)
}

// Params renders a parameter list. Every parameter is const qualified;
// unnamed parameters render as abstract declarators.
func (s *Synthesizer) Params(fields []types.Field) (string, error) {
	parts := make([]string, 0, len(fields))
	for _, p := range fields {
		name := ""
		if p.Name != "" {
			name = s.names.Ident(p.Name)
		}
		d, err := s.Declare(p.Type, name, QualConst)
		if err != nil {
			return "", err
		}
		parts = append(parts, d.String())
	}
	return strings.Join(parts, ", "), nil
}

// reference spells a use of a declared node. Tag-bearing nodes and native
// enums are always referenced through their tag.
func (s *Synthesizer) reference(id types.TypeID, tt types.Type) string {
	name := s.names.TypeName(id)
	switch tt.Kind {
	case types.KindStruct, types.KindTaggedUnion, types.KindSlice, types.KindDynArray, types.KindMap:
		return "struct " + name
	case types.KindUnion:
		return "union " + name
	case types.KindEnum:
		if s.res.Enums[id] == resolve.EnumNative {
			return "enum " + name
		}
	}
	return name
}

func (s *Synthesizer) primitive(tt types.Type) (string, error) {
	switch tt.Class {
	case types.PrimSize:
		s.usesSSize = true
	case types.PrimUsize:
		s.usesSize = true
	}
	return Primitive(tt)
}

// Primitive returns the C spelling of a primitive node.
func Primitive(tt types.Type) (string, error) {
	w := int(tt.Width)
	switch tt.Class {
	case types.PrimInt:
		switch tt.Width {
		case types.Width8, types.Width16, types.Width32, types.Width64:
			return "int" + strconv.Itoa(w) + "_t", nil
		case types.Width128:
			return "__int128", nil
		}
	case types.PrimUint:
		switch tt.Width {
		case types.Width8, types.Width16, types.Width32, types.Width64:
			return "uint" + strconv.Itoa(w) + "_t", nil
		case types.Width128:
			return "unsigned __int128", nil
		}
	case types.PrimFloat:
		switch tt.Width {
		case types.Width16:
			return "_Float16", nil
		case types.Width32:
			return "float", nil
		case types.Width64:
			return "double", nil
		}
	case types.PrimBool:
		switch tt.Width {
		case 0, types.Width8:
			return "_Bool", nil
		case types.Width16, types.Width32, types.Width64:
			return "int" + strconv.Itoa(w) + "_t", nil
		}
	case types.PrimVoid:
		return "void", nil
	case types.PrimChar:
		return "char", nil
	case types.PrimCString:
		return "char*", nil
	case types.PrimRawPtr:
		return "void*", nil
	case types.PrimSize:
		return "ssize_t", nil
	case types.PrimUsize:
		return "size_t", nil
	case types.PrimUintptr:
		return "uintptr_t", nil
	}
	return "", errors.Newf("cdecl: no C spelling for %s of width %d", tt.Class, w)
}
