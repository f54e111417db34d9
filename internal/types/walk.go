package types

// Children returns every direct child of a node in declaration order,
// including map keys and values and function parameters and results.
// The allocator handle embedded by dynamic arrays and maps is included.
func (in *Interner) Children(id TypeID) []TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return nil
	}
	var out []TypeID
	add := func(ids ...TypeID) {
		for _, c := range ids {
			if c != NoTypeID {
				out = append(out, c)
			}
		}
	}
	switch tt.Kind {
	case KindPointer, KindArray, KindMultiArray, KindSlice:
		add(tt.Elem)
	case KindDynArray:
		add(tt.Elem, in.allocator)
	case KindMap:
		add(tt.Elem, tt.Value, in.allocator)
	case KindFn:
		if info, ok := in.FnInfo(id); ok {
			for _, p := range info.Params {
				add(p.Type)
			}
			add(info.Result)
		}
	case KindStruct, KindUnion:
		for _, f := range in.Fields(id) {
			add(f.Type)
		}
	case KindTaggedUnion:
		if info, ok := in.TaggedUnionInfo(id); ok {
			add(info.Tag)
			add(info.Variants...)
		}
	case KindEnum:
		if info, ok := in.EnumInfo(id); ok {
			add(info.Base)
		}
	case KindBitSet:
		if info, ok := in.BitSetInfo(id); ok {
			add(info.Elem, info.Backing)
		}
	case KindBitField:
		if info, ok := in.BitFieldInfo(id); ok {
			add(info.Backing)
		}
	case KindAlias:
		if target, ok := in.AliasTarget(id); ok {
			add(target)
		}
	}
	return out
}

// Name returns the intrinsic name of a node, or "" for anonymous and
// structural nodes.
func (in *Interner) Name(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return ""
	}
	switch tt.Kind {
	case KindStruct, KindUnion:
		if info, ok := in.StructInfo(id); ok {
			return info.Name
		}
	case KindTaggedUnion:
		if info, ok := in.TaggedUnionInfo(id); ok {
			return info.Name
		}
	case KindEnum:
		if info, ok := in.EnumInfo(id); ok {
			return info.Name
		}
	case KindBitSet:
		if info, ok := in.BitSetInfo(id); ok {
			return info.Name
		}
	case KindBitField:
		if info, ok := in.BitFieldInfo(id); ok {
			return info.Name
		}
	case KindAlias:
		if info, ok := in.AliasInfo(id); ok {
			return info.Name
		}
	}
	return ""
}

// IsNominal reports whether the node carries an intrinsic declared name.
// Two nominal nodes with identical shape stay distinct.
func (in *Interner) IsNominal(id TypeID) bool {
	return in.Name(id) != ""
}

// IsComposite reports whether the node kind is a struct, union, tagged
// union or enum, named or not.
func (in *Interner) IsComposite(id TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindStruct, KindUnion, KindTaggedUnion, KindEnum:
		return true
	default:
		return false
	}
}

// IsTagBearing reports whether the node lowers to a C struct or union tag
// that may be forward declared. Enums are excluded: C forbids forward
// declaring them.
func (in *Interner) IsTagBearing(id TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindStruct, KindUnion, KindTaggedUnion, KindSlice, KindDynArray, KindMap:
		return true
	default:
		return false
	}
}

// Underlying chases alias chains to the first non-alias node.
func (in *Interner) Underlying(id TypeID) TypeID {
	seen := 0
	for {
		tt, ok := in.Lookup(id)
		if !ok || tt.Kind != KindAlias {
			return id
		}
		target, ok := in.AliasTarget(id)
		if !ok {
			return id
		}
		id = target
		seen++
		if seen > len(in.types) {
			return id
		}
	}
}
