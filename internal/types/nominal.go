package types

import (
	"slices"
)

// Field describes a struct field, a union variant or a named parameter.
type Field struct {
	Name string
	Type TypeID
}

// StructInfo stores metadata shared by structs and plain unions.
// An empty Name marks an anonymous composite.
type StructInfo struct {
	Name   string
	Fields []Field
}

// AliasInfo stores metadata for a named alias.
type AliasInfo struct {
	Name   string
	Target TypeID
}

// RegisterStruct allocates a nominal struct slot and returns its TypeID.
func (in *Interner) RegisterStruct(name string) TypeID {
	slot := in.appendStructInfo(StructInfo{Name: name})
	return in.internRaw(Type{Kind: KindStruct, Payload: slot})
}

// RegisterUnion allocates a nominal union slot and returns its TypeID.
func (in *Interner) RegisterUnion(name string) TypeID {
	slot := in.appendStructInfo(StructInfo{Name: name})
	return in.internRaw(Type{Kind: KindUnion, Payload: slot})
}

// SetFields stores the ordered fields of a struct or the variants of a union.
func (in *Interner) SetFields(typeID TypeID, fields []Field) {
	info := in.structInfo(typeID)
	if info == nil {
		return
	}
	info.Fields = cloneFields(fields)
}

// InternStruct returns the anonymous struct with exactly these fields,
// creating it on first use.
func (in *Interner) InternStruct(fields []Field) TypeID {
	return in.internAnonComposite(KindStruct, fields)
}

// InternUnion returns the anonymous union with exactly these variants.
func (in *Interner) InternUnion(fields []Field) TypeID {
	return in.internAnonComposite(KindUnion, fields)
}

func (in *Interner) internAnonComposite(kind Kind, fields []Field) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != kind {
			continue
		}
		info := in.structs[tt.Payload]
		if info.Name == "" && slices.Equal(info.Fields, fields) {
			return id
		}
	}
	slot := in.appendStructInfo(StructInfo{Fields: fields})
	return in.internRaw(Type{Kind: kind, Payload: slot})
}

// StructInfo returns metadata for a struct or union TypeID.
func (in *Interner) StructInfo(typeID TypeID) (*StructInfo, bool) {
	info := in.structInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// Fields returns a copy of the fields of a struct or union.
func (in *Interner) Fields(typeID TypeID) []Field {
	info := in.structInfo(typeID)
	if info == nil || len(info.Fields) == 0 {
		return nil
	}
	return cloneFields(info.Fields)
}

// RegisterAlias allocates a named alias slot and returns its TypeID.
func (in *Interner) RegisterAlias(name string) TypeID {
	in.aliases = append(in.aliases, AliasInfo{Name: name})
	slot := nextSlot(len(in.aliases), "alias info")
	return in.internRaw(Type{Kind: KindAlias, Payload: slot})
}

// SetAliasTarget sets the aliased target type.
func (in *Interner) SetAliasTarget(typeID, target TypeID) {
	info := in.aliasInfo(typeID)
	if info == nil {
		return
	}
	info.Target = target
}

// AliasTarget retrieves the aliased target type.
func (in *Interner) AliasTarget(typeID TypeID) (TypeID, bool) {
	info := in.aliasInfo(typeID)
	if info == nil || info.Target == NoTypeID {
		return NoTypeID, false
	}
	return info.Target, true
}

// AliasInfo returns metadata for the provided alias TypeID.
func (in *Interner) AliasInfo(typeID TypeID) (*AliasInfo, bool) {
	info := in.aliasInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

func (in *Interner) structInfo(typeID TypeID) *StructInfo {
	tt, ok := in.Lookup(typeID)
	if !ok || (tt.Kind != KindStruct && tt.Kind != KindUnion) {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil
	}
	return &in.structs[tt.Payload]
}

func (in *Interner) aliasInfo(typeID TypeID) *AliasInfo {
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindAlias {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.aliases) {
		return nil
	}
	return &in.aliases[tt.Payload]
}

func (in *Interner) appendStructInfo(info StructInfo) uint32 {
	in.structs = append(in.structs, StructInfo{
		Name:   info.Name,
		Fields: cloneFields(info.Fields),
	})
	return nextSlot(len(in.structs), "struct info")
}

func cloneFields(fields []Field) []Field {
	if len(fields) == 0 {
		return nil
	}
	return slices.Clone(fields)
}
