package graphfile

import (
	"strings"

	"fortio.org/safecast"
	"github.com/cockroachdb/errors"

	"hdrgen/internal/symbols"
	"hdrgen/internal/types"
)

var kinds = func() map[string]types.Kind {
	m := make(map[string]types.Kind)
	for k := types.KindPrimitive; k <= types.KindAlias; k++ {
		m[k.String()] = k
	}
	return m
}()

var classes = func() map[string]types.PrimClass {
	m := make(map[string]types.PrimClass)
	for c := types.PrimInt; c <= types.PrimUintptr; c++ {
		m[c.String()] = c
	}
	return m
}()

// Build materializes doc into a fresh interner and symbol table. Nominal
// nodes are registered first so references between them may form cycles;
// structural nodes must form a DAG.
func Build(doc *Document) (*types.Interner, *symbols.Table, error) {
	b := &builder{
		doc:   doc,
		in:    types.NewInterner(),
		ids:   make([]types.TypeID, len(doc.Types)+1),
		state: make([]uint8, len(doc.Types)+1),
	}
	if err := b.register(); err != nil {
		return nil, nil, err
	}
	for i := range doc.Types {
		if _, err := b.node(i + 1); err != nil {
			return nil, nil, err
		}
	}
	if doc.Allocator != 0 {
		id, err := b.ref(doc.Allocator)
		if err != nil {
			return nil, nil, errors.Wrap(err, "allocator")
		}
		b.in.SetAllocator(id)
	}
	syms, err := b.symbols()
	if err != nil {
		return nil, nil, err
	}
	return b.in, syms, nil
}

const (
	stateNew uint8 = iota
	stateBuilding
	stateDone
)

type builder struct {
	doc   *Document
	in    *types.Interner
	ids   []types.TypeID
	state []uint8
}

func (b *builder) kindOf(idx int) (types.Kind, error) {
	n := b.doc.Types[idx-1]
	k, ok := kinds[n.Kind]
	if !ok {
		return types.KindInvalid, errors.Newf("types[%d]: unknown kind %q", idx, n.Kind)
	}
	return k, nil
}

// nominal reports whether the node owns a declaration slot by name.
func nominal(k types.Kind, name string) bool {
	if name == "" {
		return false
	}
	switch k {
	case types.KindStruct, types.KindUnion, types.KindTaggedUnion, types.KindEnum,
		types.KindAlias, types.KindBitSet, types.KindBitField:
		return true
	default:
		return false
	}
}

func (b *builder) register() error {
	for i, n := range b.doc.Types {
		idx := i + 1
		k, err := b.kindOf(idx)
		if err != nil {
			return err
		}
		if !nominal(k, n.Name) {
			continue
		}
		var id types.TypeID
		switch k {
		case types.KindStruct:
			id = b.in.RegisterStruct(n.Name)
		case types.KindUnion:
			id = b.in.RegisterUnion(n.Name)
		case types.KindTaggedUnion:
			id = b.in.RegisterTaggedUnion(n.Name)
		case types.KindEnum:
			id = b.in.RegisterEnum(n.Name)
		case types.KindAlias:
			id = b.in.RegisterAlias(n.Name)
		case types.KindBitSet:
			id = b.in.RegisterBitSet(types.BitSetInfo{Name: n.Name})
		case types.KindBitField:
			id = b.in.RegisterBitField(n.Name, types.NoTypeID)
		}
		b.ids[idx] = id
	}
	return nil
}

func (b *builder) ref(idx int) (types.TypeID, error) {
	if idx < 1 || idx > len(b.doc.Types) {
		return types.NoTypeID, errors.Newf("reference %d out of range 1..%d", idx, len(b.doc.Types))
	}
	return b.node(idx)
}

// opt resolves an optional reference.
func (b *builder) opt(idx int) (types.TypeID, error) {
	if idx == 0 {
		return types.NoTypeID, nil
	}
	return b.ref(idx)
}

func (b *builder) fields(fs []Field) ([]types.Field, error) {
	out := make([]types.Field, len(fs))
	for i, f := range fs {
		id, err := b.ref(f.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", f.Name)
		}
		out[i] = types.Field{Name: f.Name, Type: id}
	}
	return out, nil
}

// node returns the TypeID of node idx, building it on first use. Nominal
// slots are already registered and are filled exactly once.
func (b *builder) node(idx int) (types.TypeID, error) {
	switch b.state[idx] {
	case stateDone:
		return b.ids[idx], nil
	case stateBuilding:
		if b.ids[idx] != types.NoTypeID {
			return b.ids[idx], nil
		}
		return types.NoTypeID, errors.Newf("types[%d]: structural cycle", idx)
	}
	b.state[idx] = stateBuilding
	id, err := b.build(idx)
	if err != nil {
		return types.NoTypeID, err
	}
	b.ids[idx] = id
	b.state[idx] = stateDone
	return id, nil
}

func (b *builder) build(idx int) (types.TypeID, error) {
	n := b.doc.Types[idx-1]
	k, err := b.kindOf(idx)
	if err != nil {
		return types.NoTypeID, err
	}
	slot := b.ids[idx]
	wrap := func(err error) error { return errors.Wrapf(err, "types[%d] (%s %s)", idx, n.Kind, n.Name) }

	switch k {
	case types.KindPrimitive:
		class, ok := classes[n.Class]
		if !ok {
			return types.NoTypeID, wrap(errors.Newf("unknown primitive class %q", n.Class))
		}
		w, err := width(n.Width)
		if err != nil {
			return types.NoTypeID, wrap(err)
		}
		return b.in.Intern(types.MakePrimitive(n.Name, class, w)), nil

	case types.KindPointer, types.KindSlice, types.KindDynArray, types.KindArray:
		elem, err := b.ref(n.Elem)
		if err != nil {
			return types.NoTypeID, wrap(err)
		}
		switch k {
		case types.KindPointer:
			return b.in.Intern(types.MakePointer(elem)), nil
		case types.KindSlice:
			return b.in.Intern(types.MakeSlice(elem)), nil
		case types.KindDynArray:
			return b.in.Intern(types.MakeDynArray(elem)), nil
		default:
			return b.in.Intern(types.MakeArray(elem, n.Count)), nil
		}

	case types.KindMultiArray:
		elem, err := b.ref(n.Elem)
		if err != nil {
			return types.NoTypeID, wrap(err)
		}
		if len(n.Dims) < 2 {
			return types.NoTypeID, wrap(errors.New("multi_array needs at least two dims"))
		}
		return b.in.MultiArray(elem, n.Dims), nil

	case types.KindMap:
		key, err := b.ref(n.Key)
		if err != nil {
			return types.NoTypeID, wrap(err)
		}
		value, err := b.ref(n.Value)
		if err != nil {
			return types.NoTypeID, wrap(err)
		}
		return b.in.Intern(types.MakeMap(key, value)), nil

	case types.KindFn:
		params, err := b.fields(n.Params)
		if err != nil {
			return types.NoTypeID, wrap(err)
		}
		result, err := b.opt(n.Result)
		if err != nil {
			return types.NoTypeID, wrap(err)
		}
		return b.in.RegisterFn(params, result), nil

	case types.KindStruct, types.KindUnion:
		fields, err := b.fields(n.Fields)
		if err != nil {
			return types.NoTypeID, wrap(err)
		}
		switch {
		case slot != types.NoTypeID:
			b.in.SetFields(slot, fields)
			return slot, nil
		case k == types.KindStruct:
			return b.in.InternStruct(fields), nil
		default:
			return b.in.InternUnion(fields), nil
		}

	case types.KindTaggedUnion:
		tag, err := b.opt(n.Tag)
		if err != nil {
			return types.NoTypeID, wrap(err)
		}
		variants := make([]types.TypeID, len(n.Variants))
		for i, v := range n.Variants {
			if variants[i], err = b.ref(v); err != nil {
				return types.NoTypeID, wrap(errors.Wrapf(err, "variant %d", i))
			}
		}
		if slot != types.NoTypeID {
			b.in.SetTaggedUnion(slot, tag, variants)
			return slot, nil
		}
		return b.in.InternTaggedUnion(tag, variants), nil

	case types.KindEnum:
		base, err := b.ref(n.Base)
		if err != nil {
			return types.NoTypeID, wrap(err)
		}
		members := make([]types.EnumMember, len(n.Members))
		for i, m := range n.Members {
			members[i] = types.EnumMember{Name: m.Name, Value: m.Value}
		}
		if slot != types.NoTypeID {
			b.in.SetEnum(slot, base, members)
			return slot, nil
		}
		return b.in.InternEnum(base, members), nil

	case types.KindAlias:
		if slot == types.NoTypeID {
			return types.NoTypeID, wrap(errors.New("alias needs a name"))
		}
		target, err := b.ref(n.Target)
		if err != nil {
			return types.NoTypeID, wrap(err)
		}
		b.in.SetAliasTarget(slot, target)
		return slot, nil

	case types.KindBitSet:
		elem, err := b.opt(n.Elem)
		if err != nil {
			return types.NoTypeID, wrap(err)
		}
		backing, err := b.opt(n.Backing)
		if err != nil {
			return types.NoTypeID, wrap(err)
		}
		info := types.BitSetInfo{Elem: elem, Lo: n.Lo, Hi: n.Hi, Backing: backing}
		if slot != types.NoTypeID {
			b.in.SetBitSet(slot, info)
			return slot, nil
		}
		return b.in.InternBitSet(info), nil

	case types.KindBitField:
		backing, err := b.ref(n.Backing)
		if err != nil {
			return types.NoTypeID, wrap(err)
		}
		if slot != types.NoTypeID {
			b.in.SetBitFieldBacking(slot, backing)
			return slot, nil
		}
		return b.in.InternBitField(backing), nil
	}
	return types.NoTypeID, wrap(errors.New("unhandled kind"))
}

func width(w int) (types.Width, error) {
	v, err := safecast.Conv[uint8](w)
	if err != nil {
		return types.WidthAny, errors.Newf("width %d out of range", w)
	}
	switch types.Width(v) {
	case types.WidthAny, types.Width8, types.Width16, types.Width32, types.Width64, types.Width128:
		return types.Width(v), nil
	default:
		return types.WidthAny, errors.Newf("unsupported width %d", w)
	}
}

// ParsePlatform maps the symbol platform spelling; empty means any.
func ParsePlatform(s string) (symbols.Platform, error) {
	switch strings.ToLower(s) {
	case "", "any":
		return symbols.PlatformAny, nil
	case "windows":
		return symbols.PlatformWindows, nil
	case "posix":
		return symbols.PlatformPosix, nil
	default:
		return symbols.PlatformAny, errors.Newf("unknown platform %q", s)
	}
}

func constKind(s string) (symbols.ConstKind, error) {
	switch s {
	case "int":
		return symbols.ConstInt, nil
	case "float":
		return symbols.ConstFloat, nil
	case "string":
		return symbols.ConstString, nil
	case "bool":
		return symbols.ConstBool, nil
	case "expr":
		return symbols.ConstExpr, nil
	default:
		return 0, errors.Newf("unknown constant kind %q", s)
	}
}

func (b *builder) symbols() (*symbols.Table, error) {
	src := b.doc.Symbols
	tab := &symbols.Table{Package: b.doc.Package}

	for _, t := range src.Types {
		id, err := b.ref(t.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "type %q", t.Name)
		}
		tab.Types = append(tab.Types, symbols.TypeDecl{Name: t.Name, Type: id})
	}
	for _, c := range src.Constants {
		kind, err := constKind(c.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "constant %q", c.Name)
		}
		typ, err := b.opt(c.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "constant %q", c.Name)
		}
		tab.Constants = append(tab.Constants, symbols.Constant{
			Name: c.Name, Kind: kind, Int: c.Int, Float: c.Float,
			Str: c.Str, Bool: c.Bool, Expr: c.Expr, Type: typ,
		})
	}
	for _, v := range src.Variables {
		id, err := b.ref(v.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "variable %q", v.Name)
		}
		p, err := ParsePlatform(v.Platform)
		if err != nil {
			return nil, errors.Wrapf(err, "variable %q", v.Name)
		}
		tab.Variables = append(tab.Variables, symbols.Variable{Name: v.Name, Type: id, Platform: p})
	}
	for _, fn := range src.Functions {
		params, err := b.fields(fn.Params)
		if err != nil {
			return nil, errors.Wrapf(err, "function %q", fn.Name)
		}
		results, err := b.fields(fn.Results)
		if err != nil {
			return nil, errors.Wrapf(err, "function %q", fn.Name)
		}
		p, err := ParsePlatform(fn.Platform)
		if err != nil {
			return nil, errors.Wrapf(err, "function %q", fn.Name)
		}
		tab.AddFunction(b.in, symbols.Function{Name: fn.Name, Params: params, Results: results, Platform: p})
	}
	return tab, nil
}
