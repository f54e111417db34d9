package types

// BitSetInfo stores metadata for a bit set. Elem is the enum whose members
// select bits; when Elem is NoTypeID the set ranges over Lo..Hi inclusive.
// Backing is the explicitly chosen backing integer, if any.
type BitSetInfo struct {
	Name    string
	Elem    TypeID
	Lo, Hi  int64
	Backing TypeID
}

// BitFieldInfo stores metadata for a bit field. Backing is a scalar
// integer or an array of integers.
type BitFieldInfo struct {
	Name    string
	Backing TypeID
}

// RegisterBitSet allocates a bit set slot. Anonymous bit sets should go
// through InternBitSet so equal shapes share one node.
func (in *Interner) RegisterBitSet(info BitSetInfo) TypeID {
	in.bitsets = append(in.bitsets, info)
	slot := nextSlot(len(in.bitsets), "bit set info")
	return in.internRaw(Type{Kind: KindBitSet, Payload: slot})
}

// SetBitSet overwrites the metadata of a registered bit set, keeping its name.
func (in *Interner) SetBitSet(typeID TypeID, info BitSetInfo) {
	cur := in.bitSetInfo(typeID)
	if cur == nil {
		return
	}
	info.Name = cur.Name
	*cur = info
}

// InternBitSet returns the anonymous bit set with this shape.
func (in *Interner) InternBitSet(info BitSetInfo) TypeID {
	info.Name = ""
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind == KindBitSet && in.bitsets[tt.Payload] == info {
			return id
		}
	}
	return in.RegisterBitSet(info)
}

// BitSetInfo returns metadata for a bit set TypeID.
func (in *Interner) BitSetInfo(typeID TypeID) (*BitSetInfo, bool) {
	info := in.bitSetInfo(typeID)
	return info, info != nil
}

// BitRange returns the inclusive bit index range covered by the set.
func (in *Interner) BitRange(typeID TypeID) (lo, hi int64, ok bool) {
	info := in.bitSetInfo(typeID)
	if info == nil {
		return 0, 0, false
	}
	if info.Elem == NoTypeID {
		return info.Lo, info.Hi, true
	}
	enum, ok := in.EnumInfo(in.Underlying(info.Elem))
	if !ok || len(enum.Members) == 0 {
		return 0, 0, false
	}
	lo, hi = enum.Bounds()
	return lo, hi, true
}

// RegisterBitField allocates a bit field slot.
func (in *Interner) RegisterBitField(name string, backing TypeID) TypeID {
	in.bitfields = append(in.bitfields, BitFieldInfo{Name: name, Backing: backing})
	slot := nextSlot(len(in.bitfields), "bit field info")
	return in.internRaw(Type{Kind: KindBitField, Payload: slot})
}

// SetBitFieldBacking stores the backing type of a registered bit field.
func (in *Interner) SetBitFieldBacking(typeID, backing TypeID) {
	info := in.bitFieldInfo(typeID)
	if info == nil {
		return
	}
	info.Backing = backing
}

// InternBitField returns the anonymous bit field over backing.
func (in *Interner) InternBitField(backing TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind == KindBitField && in.bitfields[tt.Payload] == (BitFieldInfo{Backing: backing}) {
			return id
		}
	}
	return in.RegisterBitField("", backing)
}

// BitFieldInfo returns metadata for a bit field TypeID.
func (in *Interner) BitFieldInfo(typeID TypeID) (*BitFieldInfo, bool) {
	info := in.bitFieldInfo(typeID)
	return info, info != nil
}

func (in *Interner) bitSetInfo(typeID TypeID) *BitSetInfo {
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindBitSet {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.bitsets) {
		return nil
	}
	return &in.bitsets[tt.Payload]
}

func (in *Interner) bitFieldInfo(typeID TypeID) *BitFieldInfo {
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindBitField {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.bitfields) {
		return nil
	}
	return &in.bitfields[tt.Payload]
}

// BitSpan returns hi-lo without overflowing. Requires lo <= hi.
func BitSpan(lo, hi int64) uint64 {
	return uint64(hi) - uint64(lo)
}

// BitSetWidth returns the width of the smallest unsigned integer holding
// one bit per index in [lo, hi].
func BitSetWidth(lo, hi int64) Width {
	span := BitSpan(lo, hi)
	switch {
	case span < 8:
		return Width8
	case span < 16:
		return Width16
	case span < 32:
		return Width32
	case span < 64:
		return Width64
	default:
		return Width128
	}
}
