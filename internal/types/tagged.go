package types

import (
	"math"
	"slices"
)

// TaggedUnionInfo stores metadata for a discriminated union. Tag is the
// declared discriminant type; NoTypeID lets the emitter pick the smallest
// unsigned integer able to count the variants.
type TaggedUnionInfo struct {
	Name     string
	Tag      TypeID
	Variants []TypeID
}

// RegisterTaggedUnion allocates a nominal tagged union slot.
func (in *Interner) RegisterTaggedUnion(name string) TypeID {
	in.tagged = append(in.tagged, TaggedUnionInfo{Name: name})
	slot := nextSlot(len(in.tagged), "tagged union info")
	return in.internRaw(Type{Kind: KindTaggedUnion, Payload: slot})
}

// SetTaggedUnion stores the discriminant and the ordered payload variants.
func (in *Interner) SetTaggedUnion(typeID, tag TypeID, variants []TypeID) {
	info := in.taggedInfo(typeID)
	if info == nil {
		return
	}
	info.Tag = tag
	info.Variants = slices.Clone(variants)
}

// InternTaggedUnion returns the anonymous tagged union with this shape.
func (in *Interner) InternTaggedUnion(tag TypeID, variants []TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindTaggedUnion {
			continue
		}
		info := in.tagged[tt.Payload]
		if info.Name == "" && info.Tag == tag && slices.Equal(info.Variants, variants) {
			return id
		}
	}
	id := in.RegisterTaggedUnion("")
	in.SetTaggedUnion(id, tag, variants)
	return id
}

// TaggedUnionInfo returns metadata for a tagged union TypeID.
func (in *Interner) TaggedUnionInfo(typeID TypeID) (*TaggedUnionInfo, bool) {
	info := in.taggedInfo(typeID)
	return info, info != nil
}

func (in *Interner) taggedInfo(typeID TypeID) *TaggedUnionInfo {
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindTaggedUnion {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.tagged) {
		return nil
	}
	return &in.tagged[tt.Payload]
}

// TagWidth returns the width of the smallest unsigned integer able to count
// n variants, used when a tagged union declares no discriminant type.
func TagWidth(n int) Width {
	switch {
	case n <= math.MaxUint8:
		return Width8
	case n <= math.MaxUint16:
		return Width16
	default:
		return Width32
	}
}
