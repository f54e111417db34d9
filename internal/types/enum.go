package types //nolint:revive

import (
	"slices"
)

// EnumMember stores a single enumerator.
type EnumMember struct {
	Name  string
	Value int64
}

// EnumInfo stores metadata for an enum type.
type EnumInfo struct {
	Name    string
	Base    TypeID
	Members []EnumMember
}

// RegisterEnum allocates a nominal enum slot and returns its TypeID.
func (in *Interner) RegisterEnum(name string) TypeID {
	in.enums = append(in.enums, EnumInfo{Name: name})
	slot := nextSlot(len(in.enums), "enum info")
	return in.internRaw(Type{Kind: KindEnum, Payload: slot})
}

// SetEnum stores the underlying integer type and the ordered members.
func (in *Interner) SetEnum(typeID, base TypeID, members []EnumMember) {
	info := in.enumInfo(typeID)
	if info == nil {
		return
	}
	info.Base = base
	info.Members = slices.Clone(members)
}

// InternEnum returns the anonymous enum with this shape.
func (in *Interner) InternEnum(base TypeID, members []EnumMember) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindEnum {
			continue
		}
		info := in.enums[tt.Payload]
		if info.Name == "" && info.Base == base && slices.Equal(info.Members, members) {
			return id
		}
	}
	id := in.RegisterEnum("")
	in.SetEnum(id, base, members)
	return id
}

// EnumInfo returns metadata for the provided enum TypeID.
func (in *Interner) EnumInfo(typeID TypeID) (*EnumInfo, bool) {
	info := in.enumInfo(typeID)
	return info, info != nil
}

// Consecutive reports whether member values increase by one in declared order.
func (info *EnumInfo) Consecutive() bool {
	if info == nil || len(info.Members) == 0 {
		return false
	}
	for i := 1; i < len(info.Members); i++ {
		if info.Members[i].Value != info.Members[i-1].Value+1 {
			return false
		}
	}
	return true
}

// Bounds returns the smallest and largest member value.
func (info *EnumInfo) Bounds() (lo, hi int64) {
	for i, m := range info.Members {
		if i == 0 || m.Value < lo {
			lo = m.Value
		}
		if i == 0 || m.Value > hi {
			hi = m.Value
		}
	}
	return lo, hi
}

func (in *Interner) enumInfo(typeID TypeID) *EnumInfo {
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindEnum {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.enums) {
		return nil
	}
	return &in.enums[tt.Payload]
}
