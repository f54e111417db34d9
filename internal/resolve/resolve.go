// Package resolve computes the set of type nodes an exported surface needs
// and decides which of them get their own declaration.
package resolve

import (
	"math"

	"hdrgen/internal/diag"
	"hdrgen/internal/symbols"
	"hdrgen/internal/types"
)

// EnumLowering selects how an enum is rendered.
type EnumLowering uint8

const (
	// EnumNative renders a C enum declaration.
	EnumNative EnumLowering = iota + 1
	// EnumMacros renders one #define per member plus a typedef of the
	// underlying integer.
	EnumMacros
)

func (l EnumLowering) String() string {
	switch l {
	case EnumNative:
		return "native"
	case EnumMacros:
		return "macros"
	default:
		return "none"
	}
}

// Result is the reachable closure of the exported surface.
type Result struct {
	// MustDeclare lists nodes needing a named declaration, in post-order of
	// a depth-first walk over the symbols in input order.
	MustDeclare []types.TypeID
	// InlineOnly lists nodes rendered at each use site.
	InlineOnly []types.TypeID
	Enums      map[types.TypeID]EnumLowering
	// Origin maps every reached node to the first symbol that reached it.
	Origin map[types.TypeID]string

	declared map[types.TypeID]bool
}

// Declared reports whether id is in MustDeclare.
func (r *Result) Declared(id types.TypeID) bool {
	return r != nil && r.declared[id]
}

// NeedsDeclaration reports whether a node kind gets its own declaration.
func NeedsDeclaration(in *types.Interner, id types.TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case types.KindStruct, types.KindUnion, types.KindTaggedUnion, types.KindEnum,
		types.KindAlias, types.KindSlice, types.KindDynArray, types.KindMap,
		types.KindBitSet, types.KindBitField:
		return true
	default:
		return false
	}
}

type use uint8

const (
	useValue    use = iota // held by value: field, element, parameter, variable
	useIndirect            // behind a pointer or a slice data pointer
	useResult              // function result, void allowed
	useAlias               // alias target, checks already applied at the alias
	useElem                // bit set element
	useRef                 // map key or value, named only
)

type resolver struct {
	in      *types.Interner
	res     *Result
	visited map[types.TypeID]bool
	scalar  map[types.TypeID]bool
	symbol  string
	path    []types.TypeID
}

// Resolve walks every exported symbol and returns the partitioned closure.
func Resolve(in *types.Interner, syms *symbols.Table) (*Result, error) {
	return ResolveFor(in, syms, symbols.PlatformAny)
}

// ResolveFor is Resolve for a header targeting one platform: variables and
// functions of the other platform contribute no types.
func ResolveFor(in *types.Interner, syms *symbols.Table, target symbols.Platform) (*Result, error) {
	r := &resolver{
		in: in,
		res: &Result{
			Enums:    make(map[types.TypeID]EnumLowering),
			Origin:   make(map[types.TypeID]string),
			declared: make(map[types.TypeID]bool),
		},
		visited: make(map[types.TypeID]bool),
		scalar:  make(map[types.TypeID]bool),
	}
	if syms == nil {
		return r.res, nil
	}
	for _, td := range syms.Types {
		r.symbol = td.Name
		if err := r.visit(td.Type, useAlias); err != nil {
			return nil, err
		}
	}
	for _, c := range syms.Constants {
		r.symbol = c.Name
		if err := r.constant(c); err != nil {
			return nil, err
		}
	}
	for _, v := range syms.Variables {
		if !symbols.Emitted(v.Platform, target) {
			continue
		}
		r.symbol = v.Name
		if err := r.visit(v.Type, useValue); err != nil {
			return nil, err
		}
	}
	for _, fn := range syms.Functions {
		if !symbols.Emitted(fn.Platform, target) {
			continue
		}
		r.symbol = fn.Name
		for _, p := range fn.Params {
			if err := r.visit(p.Type, useValue); err != nil {
				return nil, err
			}
		}
		if err := r.result(fn.Return); err != nil {
			return nil, err
		}
	}
	r.lowerEnums()
	return r.res, nil
}

func (r *resolver) constant(c symbols.Constant) error {
	if c.Kind == symbols.ConstFloat && (math.IsNaN(c.Float) || math.IsInf(c.Float, 0)) {
		return diag.Unsupported(c.Name, []string{c.Name}, "non-finite float constant")
	}
	if c.Type == types.NoTypeID {
		return nil
	}
	return r.visit(c.Type, useValue)
}

func (r *resolver) visit(id types.TypeID, u use) error {
	tt, ok := r.in.Lookup(id)
	if !ok || tt.Kind == types.KindInvalid {
		return r.unsupported(id, "invalid type node")
	}
	under := r.in.Underlying(id)
	if u == useValue && r.isVoid(under) {
		return r.unsupported(id, "void held by value")
	}
	if u != useElem && u != useRef {
		if ut, ok := r.in.Lookup(under); ok && ut.Kind == types.KindEnum {
			r.scalar[under] = true
		}
	}
	if r.visited[id] {
		return nil
	}
	r.visited[id] = true
	if _, ok := r.res.Origin[id]; !ok {
		r.res.Origin[id] = r.symbol
	}

	r.path = append(r.path, id)
	err := r.children(id, tt, u)
	r.path = r.path[:len(r.path)-1]
	if err != nil {
		return err
	}

	if NeedsDeclaration(r.in, id) {
		r.res.MustDeclare = append(r.res.MustDeclare, id)
		r.res.declared[id] = true
	} else {
		r.res.InlineOnly = append(r.res.InlineOnly, id)
	}
	return nil
}

func (r *resolver) children(id types.TypeID, tt types.Type, u use) error {
	in := r.in
	switch tt.Kind {
	case types.KindPrimitive:
		if tt.Class == types.PrimInvalid {
			return r.unsupported(id, "primitive without C spelling")
		}
		return nil

	case types.KindPointer:
		return r.visit(tt.Elem, useIndirect)

	case types.KindArray, types.KindMultiArray:
		dims, _ := in.ArrayDims(id)
		for _, d := range dims {
			if d == 0 {
				return r.unsupported(id, "zero-length array")
			}
		}
		return r.visit(tt.Elem, useValue)

	case types.KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return r.unsupported(id, "procedure without signature")
		}
		for _, p := range info.Params {
			if err := r.visit(p.Type, useValue); err != nil {
				return err
			}
		}
		return r.result(info.Result)

	case types.KindStruct, types.KindUnion:
		fields := in.Fields(id)
		if len(fields) == 0 {
			return r.unsupported(id, "empty "+tt.Kind.String())
		}
		for _, f := range fields {
			if r.containsSelf(id, f.Type) {
				return r.selfCycle(id)
			}
		}
		for _, f := range fields {
			if err := r.visit(f.Type, useValue); err != nil {
				return err
			}
		}
		return nil

	case types.KindTaggedUnion:
		info, ok := in.TaggedUnionInfo(id)
		if !ok || len(info.Variants) == 0 {
			return r.unsupported(id, "tagged union without variants")
		}
		for _, v := range info.Variants {
			if r.containsSelf(id, v) {
				return r.selfCycle(id)
			}
		}
		if info.Tag != types.NoTypeID {
			if !r.isInteger(info.Tag) {
				return r.unsupported(info.Tag, "tag must be an integer")
			}
			if err := r.visit(info.Tag, useValue); err != nil {
				return err
			}
		}
		for _, v := range info.Variants {
			if err := r.visit(v, useValue); err != nil {
				return err
			}
		}
		return nil

	case types.KindEnum:
		info, ok := in.EnumInfo(id)
		if !ok || len(info.Members) == 0 {
			return r.unsupported(id, "enum without members")
		}
		if info.Base == types.NoTypeID || !r.isInteger(info.Base) {
			return r.unsupported(id, "enum base must be an integer")
		}
		return r.visit(info.Base, useAlias)

	case types.KindSlice:
		return r.visit(tt.Elem, useIndirect)

	case types.KindDynArray:
		if err := r.visit(tt.Elem, useIndirect); err != nil {
			return err
		}
		return r.allocator()

	case types.KindMap:
		if err := r.visit(tt.Elem, useRef); err != nil {
			return err
		}
		if err := r.visit(tt.Value, useRef); err != nil {
			return err
		}
		return r.allocator()

	case types.KindBitSet:
		return r.bitSet(id)

	case types.KindBitField:
		info, ok := in.BitFieldInfo(id)
		if !ok || info.Backing == types.NoTypeID {
			return r.unsupported(id, "bit field without backing")
		}
		backing := in.Underlying(info.Backing)
		if bt, ok := in.Lookup(backing); ok && (bt.Kind == types.KindArray || bt.Kind == types.KindMultiArray) {
			backing = in.Underlying(bt.Elem)
		}
		if !r.isInteger(backing) {
			return r.unsupported(id, "bit field backing must be an integer or integer array")
		}
		return r.visit(info.Backing, useValue)

	case types.KindAlias:
		target, ok := in.AliasTarget(id)
		if !ok {
			return r.unsupported(id, "alias without target")
		}
		next := useAlias
		if u == useElem || u == useRef || u == useIndirect {
			next = u
		}
		return r.visit(target, next)

	default:
		return r.unsupported(id, "no C lowering for "+tt.Kind.String())
	}
}

func (r *resolver) bitSet(id types.TypeID) error {
	info, _ := r.in.BitSetInfo(id)
	lo, hi, ok := r.in.BitRange(id)
	if info == nil || !ok {
		return r.unsupported(id, "bit set without elements")
	}
	if info.Elem != types.NoTypeID {
		if et, ok := r.in.Lookup(r.in.Underlying(info.Elem)); !ok || et.Kind != types.KindEnum {
			return r.unsupported(id, "bit set element must be an enum")
		}
		if err := r.visit(info.Elem, useElem); err != nil {
			return err
		}
	}
	if hi < lo || types.BitSpan(lo, hi) >= 128 {
		return r.unsupported(id, "bit set range does not fit 128 bits")
	}
	if info.Backing != types.NoTypeID {
		if !r.isInteger(info.Backing) {
			return r.unsupported(id, "bit set backing must be an integer")
		}
		return r.visit(info.Backing, useValue)
	}
	return nil
}

// result visits a function result. C cannot return arrays by value.
func (r *resolver) result(id types.TypeID) error {
	if id == types.NoTypeID {
		return nil
	}
	if rt, ok := r.in.Lookup(r.in.Underlying(id)); ok && (rt.Kind == types.KindArray || rt.Kind == types.KindMultiArray) {
		return r.unsupported(id, "array returned by value")
	}
	return r.visit(id, useResult)
}

func (r *resolver) allocator() error {
	if alloc := r.in.Allocator(); alloc != types.NoTypeID {
		return r.visit(alloc, useValue)
	}
	return nil
}

// lowerEnums picks native enums for contiguous scalars that fit a C int.
func (r *resolver) lowerEnums() {
	for _, id := range r.res.MustDeclare {
		info, ok := r.in.EnumInfo(id)
		if !ok {
			continue
		}
		lowering := EnumMacros
		if r.scalar[id] && info.Consecutive() {
			lo, hi := info.Bounds()
			if lo >= math.MinInt32 && hi <= math.MaxInt32 {
				lowering = EnumNative
			}
		}
		r.res.Enums[id] = lowering
	}
}

// containsSelf reports whether child embeds owner by value without passing
// through another declaration.
func (r *resolver) containsSelf(owner, child types.TypeID) bool {
	for guard := 0; guard < r.in.Len(); guard++ {
		if child == owner {
			return true
		}
		tt, ok := r.in.Lookup(child)
		if !ok {
			return false
		}
		switch tt.Kind {
		case types.KindArray, types.KindMultiArray:
			child = tt.Elem
		case types.KindAlias:
			target, ok := r.in.AliasTarget(child)
			if !ok {
				return false
			}
			child = target
		default:
			return false
		}
	}
	return false
}

func (r *resolver) isVoid(id types.TypeID) bool {
	tt, ok := r.in.Lookup(id)
	return ok && tt.Kind == types.KindPrimitive && tt.Class == types.PrimVoid
}

func (r *resolver) isInteger(id types.TypeID) bool {
	tt, ok := r.in.Lookup(r.in.Underlying(id))
	return ok && tt.Kind == types.KindPrimitive && tt.Class.Integer()
}

func (r *resolver) chain(id types.TypeID) []string {
	out := make([]string, 0, len(r.path)+1)
	for _, p := range r.path {
		out = append(out, types.Label(r.in, p))
	}
	if len(r.path) == 0 || r.path[len(r.path)-1] != id {
		out = append(out, types.Label(r.in, id))
	}
	return out
}

func (r *resolver) unsupported(id types.TypeID, detail string) error {
	return diag.Unsupported(r.symbol, r.chain(id), detail)
}

func (r *resolver) selfCycle(id types.TypeID) error {
	label := types.Label(r.in, id)
	return diag.Cycle(r.symbol, []string{label, label})
}
