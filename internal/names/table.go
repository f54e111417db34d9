// Package names assigns C identifiers to every declaration of a plan and
// checks that they share one flat namespace without collisions.
package names

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"hdrgen/internal/diag"
	"hdrgen/internal/order"
	"hdrgen/internal/resolve"
	"hdrgen/internal/symbols"
	"hdrgen/internal/types"
)

// Options controls identifiers that do not come from the graph.
type Options struct {
	// Prefix adds short alias macros for exported functions.
	Prefix string
	// Guard is an include guard macro to reserve; empty for #pragma once.
	Guard string
	// Platform restricts which platform-specific symbols are emitted.
	// PlatformAny keeps both sides.
	Platform symbols.Platform
}

// Macro is a #define of one identifier to another.
type Macro struct {
	Name   string
	Target string
}

// Table holds the identifiers chosen for one header.
type Table struct {
	in  *types.Interner
	san *Sanitizer
	ns  *Namespace

	byType  map[types.TypeID]string
	fields  map[types.TypeID][]string
	members map[types.TypeID][]string
	symbols map[string]string

	// per-platform extern names, for portable headers
	platformNS map[symbols.Platform]map[string]string

	// Aliases lists the short alias macros in function order.
	Aliases []Macro
}

// TypeName returns the identifier of a declared node.
func (t *Table) TypeName(id types.TypeID) string {
	if name, ok := t.byType[id]; ok {
		return name
	}
	return t.label(id)
}

// Ident sanitizes a foreign identifier.
func (t *Table) Ident(name string) string { return t.san.Ident(name) }

// Fields returns the member identifiers of a struct or union, or v0..vN
// for a tagged union's payload union.
func (t *Table) Fields(id types.TypeID) []string { return t.fields[id] }

// Members returns the identifiers of an enum's members.
func (t *Table) Members(id types.TypeID) []string { return t.members[id] }

// Values returns the name of a tagged union's payload union.
func (t *Table) Values(id types.TypeID) string { return t.TypeName(id) + "_values" }

// Symbol returns the identifier chosen for an exported symbol.
func (t *Table) Symbol(name string) string {
	if ident, ok := t.symbols[name]; ok {
		return ident
	}
	return t.san.Ident(name)
}

// Namespace exposes the flat identifier space, mostly for inspection.
func (t *Table) Namespace() *Namespace { return t.ns }

// Allocate names every defined node of the plan and every exported symbol.
// Anonymous composites are numbered anon_0, anon_1, ... in definition
// order; structural declarations get names derived from their labels.
func Allocate(in *types.Interner, res *resolve.Result, plan *order.Plan, syms *symbols.Table, opts Options) (*Table, error) {
	t := &Table{
		in:      in,
		san:     NewSanitizer(),
		ns:      NewNamespace(),
		byType:  make(map[types.TypeID]string),
		fields:  make(map[types.TypeID][]string),
		members: make(map[types.TypeID][]string),
		symbols: make(map[string]string),
		platformNS: map[symbols.Platform]map[string]string{
			symbols.PlatformWindows: {},
			symbols.PlatformPosix:   {},
		},
	}
	defined := plan.Defined()

	anon := 0
	for _, id := range defined {
		if in.IsComposite(id) && !in.IsNominal(id) {
			t.byType[id] = "anon_" + strconv.Itoa(anon)
			anon++
		}
	}
	for _, id := range defined {
		if in.IsNominal(id) {
			t.byType[id] = t.san.Ident(in.Name(id))
		}
	}
	for _, id := range defined {
		if _, ok := t.byType[id]; !ok {
			t.byType[id] = t.derive(id)
		}
	}

	for pos, id := range defined {
		if err := t.declareType(id, res); err != nil {
			return nil, positioned(err, pos)
		}
	}
	if err := t.declareSymbols(syms, opts); err != nil {
		return nil, err
	}
	if opts.Guard != "" {
		if err := t.ns.Declare(opts.Guard, "include guard"); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func positioned(err error, pos int) error {
	var de *diag.Error
	if errors.As(err, &de) {
		return de.At(pos)
	}
	return err
}

func (t *Table) declareType(id types.TypeID, res *resolve.Result) error {
	name := t.byType[id]
	tt, _ := t.in.Lookup(id)
	if err := t.ns.Declare(name, tt.Kind.String()+" "+types.Label(t.in, id)); err != nil {
		return err
	}
	switch tt.Kind {
	case types.KindStruct, types.KindUnion:
		return t.declareFields(id, name)
	case types.KindTaggedUnion:
		info, _ := t.in.TaggedUnionInfo(id)
		vals := make([]string, len(info.Variants))
		for i := range vals {
			vals[i] = "v" + strconv.Itoa(i)
		}
		t.fields[id] = vals
		return t.ns.Declare(t.Values(id), "payload union of "+name)
	case types.KindEnum:
		info, _ := t.in.EnumInfo(id)
		kind := "enum constant"
		if res.Enums[id] == resolve.EnumMacros {
			kind = "enum macro"
		}
		members := make([]string, len(info.Members))
		for i, m := range info.Members {
			members[i] = t.san.Ident(m.Name)
			if err := t.ns.Declare(members[i], kind+" "+m.Name+" of "+name); err != nil {
				return err
			}
		}
		t.members[id] = members
	}
	return nil
}

func (t *Table) declareFields(id types.TypeID, owner string) error {
	fields := t.in.Fields(id)
	out := make([]string, len(fields))
	seen := make(map[string]string, len(fields))
	for i, f := range fields {
		ident := t.san.Ident(f.Name)
		if prev, ok := seen[ident]; ok {
			return diag.Collision(ident, "field "+prev+" of "+owner, "field "+f.Name+" of "+owner)
		}
		seen[ident] = f.Name
		out[i] = ident
	}
	t.fields[id] = out
	return nil
}

func (t *Table) declareSymbols(syms *symbols.Table, opts Options) error {
	if syms == nil {
		return nil
	}
	for _, c := range syms.Constants {
		if err := t.declareSymbol(c.Name, "constant "+c.Name, symbols.PlatformAny); err != nil {
			return err
		}
	}
	for _, v := range syms.Variables {
		if !Emitted(v.Platform, opts.Platform) {
			continue
		}
		if err := t.declareSymbol(v.Name, "variable "+v.Name, v.Platform); err != nil {
			return err
		}
	}
	for _, fn := range syms.Functions {
		if !Emitted(fn.Platform, opts.Platform) {
			continue
		}
		if err := t.declareSymbol(fn.Name, "function "+fn.Name, fn.Platform); err != nil {
			return err
		}
	}
	if opts.Prefix == "" {
		return nil
	}
	seen := make(map[string]bool)
	for _, fn := range syms.Functions {
		if !Emitted(fn.Platform, opts.Platform) {
			continue
		}
		target := t.symbols[fn.Name]
		if seen[target] {
			continue
		}
		seen[target] = true
		alias := opts.Prefix + target
		if strings.HasPrefix(target, opts.Prefix) {
			alias = strings.TrimPrefix(target, opts.Prefix)
			if alias == "" {
				continue
			}
		}
		alias = t.san.Ident(alias)
		if err := t.ns.Declare(alias, "alias macro for "+fn.Name); err != nil {
			return err
		}
		t.Aliases = append(t.Aliases, Macro{Name: alias, Target: target})
	}
	return nil
}

// declareSymbol claims an extern or constant identifier. Symbols of
// opposite platforms may share a name since at most one of them is ever
// compiled.
func (t *Table) declareSymbol(name, owner string, p symbols.Platform) error {
	ident := t.san.Ident(name)
	t.symbols[name] = ident
	if p == symbols.PlatformAny {
		for _, side := range []symbols.Platform{symbols.PlatformWindows, symbols.PlatformPosix} {
			if prev, ok := t.platformNS[side][ident]; ok {
				return diag.Collision(ident, prev, owner)
			}
		}
		return t.ns.Declare(ident, owner)
	}
	if prev, ok := t.ns.Owner(ident); ok {
		return diag.Collision(ident, prev, owner)
	}
	side := t.platformNS[p]
	if prev, ok := side[ident]; ok {
		return diag.Collision(ident, prev, owner)
	}
	side[ident] = owner
	return nil
}

// Emitted reports whether a symbol of platform p is part of a header
// generated for target. PlatformAny as target keeps everything.
func Emitted(p, target symbols.Platform) bool {
	return symbols.Emitted(p, target)
}

// derive builds the name of a structural declaration from its children.
func (t *Table) derive(id types.TypeID) string {
	tt, ok := t.in.Lookup(id)
	if !ok {
		return "invalid"
	}
	switch tt.Kind {
	case types.KindSlice:
		return t.label(tt.Elem) + "_slice"
	case types.KindDynArray:
		return t.label(tt.Elem) + "_dynamic_array"
	case types.KindMap:
		return "map_" + t.label(tt.Elem) + "_" + t.label(tt.Value)
	case types.KindBitSet:
		info, _ := t.in.BitSetInfo(id)
		var name string
		if info.Elem != types.NoTypeID {
			name = "bit_set_" + t.label(info.Elem)
		} else if info.Lo == 0 {
			name = "bit_set_range_" + strconv.FormatInt(info.Hi+1, 10)
		} else {
			name = "bit_set_range_" + bound(info.Lo) + "_to_" + bound(info.Hi)
		}
		if info.Backing != types.NoTypeID {
			name += "_" + t.label(info.Backing)
		}
		return t.san.Ident(name)
	case types.KindBitField:
		info, _ := t.in.BitFieldInfo(id)
		return "bit_field_" + t.label(info.Backing)
	default:
		return t.label(id)
	}
}

// bound spells a range bound as identifier text, negatives as neg<n>.
func bound(v int64) string {
	if v < 0 {
		return "neg" + strconv.FormatUint(-uint64(v), 10)
	}
	return strconv.FormatInt(v, 10)
}

// label names a node for use inside a derived name.
func (t *Table) label(id types.TypeID) string {
	if id == types.NoTypeID {
		return "void"
	}
	if name, ok := t.byType[id]; ok {
		return name
	}
	tt, ok := t.in.Lookup(id)
	if !ok {
		return "invalid"
	}
	if t.in.IsNominal(id) {
		return t.san.Ident(t.in.Name(id))
	}
	switch tt.Kind {
	case types.KindPrimitive:
		return t.san.Ident(types.Label(t.in, id))
	case types.KindPointer:
		return t.label(tt.Elem) + "_pointer"
	case types.KindArray, types.KindMultiArray:
		dims, _ := t.in.ArrayDims(id)
		var sb strings.Builder
		sb.WriteString(t.label(tt.Elem))
		for i := len(dims) - 1; i >= 0; i-- {
			sb.WriteString("_array_" + strconv.FormatUint(uint64(dims[i]), 10))
		}
		return sb.String()
	case types.KindFn:
		info, _ := t.in.FnInfo(id)
		var sb strings.Builder
		sb.WriteString("proc")
		if info != nil {
			for _, p := range info.Params {
				sb.WriteString("_" + t.label(p.Type))
			}
			if info.Result != types.NoTypeID {
				sb.WriteString("_ret_" + t.label(info.Result))
			}
		}
		return sb.String()
	case types.KindSlice, types.KindDynArray, types.KindMap, types.KindBitSet, types.KindBitField:
		name := t.derive(id)
		t.byType[id] = name
		return name
	default:
		return "anon"
	}
}
