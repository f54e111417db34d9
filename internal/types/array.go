package types

import "slices"

// MultiArray creates or finds a multi-dimensional array. Dims are ordered
// outermost first, the way they are written in a C declarator.
func (in *Interner) MultiArray(elem TypeID, dims []uint32) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindMultiArray || tt.Elem != elem {
			continue
		}
		if slices.Equal(in.dims[tt.Payload], dims) {
			return id
		}
	}
	in.dims = append(in.dims, slices.Clone(dims))
	slot := nextSlot(len(in.dims), "array dims")
	return in.internRaw(Type{Kind: KindMultiArray, Elem: elem, Payload: slot})
}

// ArrayDims returns the dimensions of a fixed or multi-dimensional array,
// outermost first.
func (in *Interner) ArrayDims(id TypeID) ([]uint32, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return nil, false
	}
	switch tt.Kind {
	case KindArray:
		return []uint32{tt.Count}, true
	case KindMultiArray:
		if tt.Payload == 0 || int(tt.Payload) >= len(in.dims) {
			return nil, false
		}
		return slices.Clone(in.dims[tt.Payload]), true
	default:
		return nil, false
	}
}
