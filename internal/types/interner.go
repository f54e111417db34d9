package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Interner provides stable TypeIDs for every node of a type graph.
// Structural nodes are deduplicated by shape, nominal nodes get a fresh
// slot per registration.
type Interner struct {
	types     []Type
	index     map[typeKey]TypeID
	structs   []StructInfo
	tagged    []TaggedUnionInfo
	enums     []EnumInfo
	fns       []FnInfo
	dims      [][]uint32
	bitsets   []BitSetInfo
	bitfields []BitFieldInfo
	aliases   []AliasInfo
	allocator TypeID
}

// NewInterner constructs an empty interner with slot 0 reserved.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	// reserve 0 as invalid sentinel in every table
	in.types = append(in.types, Type{Kind: KindInvalid})
	in.structs = append(in.structs, StructInfo{})
	in.tagged = append(in.tagged, TaggedUnionInfo{})
	in.enums = append(in.enums, EnumInfo{})
	in.fns = append(in.fns, FnInfo{})
	in.dims = append(in.dims, nil)
	in.bitsets = append(in.bitsets, BitSetInfo{})
	in.bitfields = append(in.bitfields, BitFieldInfo{})
	in.aliases = append(in.aliases, AliasInfo{})
	return in
}

// Intern ensures the provided structural descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	id := in.internRaw(t)
	in.index[key] = id
	return id
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len reports the number of slots including the reserved sentinel.
func (in *Interner) Len() int {
	if in == nil {
		return 0
	}
	return len(in.types)
}

// SetAllocator records the allocator handle type embedded by value in
// dynamic arrays and maps. NoTypeID renders as an opaque pointer.
func (in *Interner) SetAllocator(id TypeID) {
	in.allocator = id
}

// Allocator returns the allocator handle type, if any.
func (in *Interner) Allocator() TypeID {
	if in == nil {
		return NoTypeID
	}
	return in.allocator
}

type typeKey Type

func nextSlot(n int, what string) uint32 {
	slot, err := safecast.Conv[uint32](n - 1)
	if err != nil {
		panic(fmt.Errorf("%s overflow: %w", what, err))
	}
	return slot
}
