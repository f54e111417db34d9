package layout

import (
	"fortio.org/safecast"

	"hdrgen/internal/types"
)

func (e *LayoutEngine) computeLayout(id types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	typesIn := e.Types
	tt, ok := typesIn.Lookup(id)
	if !ok || id == types.NoTypeID {
		return TypeLayout{Size: 0, Align: 1}, e.unsized(id)
	}

	switch tt.Kind {
	case types.KindPrimitive:
		return e.primitiveLayout(id, tt)

	case types.KindPointer, types.KindFn:
		return e.ptrLayout(), nil

	case types.KindArray, types.KindMultiArray:
		dims, _ := typesIn.ArrayDims(id)
		return e.arrayFixedLayout(id, tt.Elem, dims, state)

	case types.KindStruct:
		return e.structLayout(e.fieldTypes(id), state)

	case types.KindUnion:
		return e.unionLayout(e.fieldTypes(id), state)

	case types.KindTaggedUnion:
		return e.taggedUnionLayout(id, state)

	case types.KindEnum:
		if e.IntEnums[id] {
			return scalarLayoutBytes(4), nil
		}
		info, ok := typesIn.EnumInfo(id)
		if !ok || info.Base == types.NoTypeID {
			return scalarLayoutBytes(4), nil
		}
		return e.layoutOf(info.Base, state)

	case types.KindSlice:
		ptr := e.ptrLayout()
		return e.sequence([]TypeLayout{ptr, ptr}), nil

	case types.KindDynArray, types.KindMap:
		ptr := e.ptrLayout()
		alloc := ptr
		if a := typesIn.Allocator(); a != types.NoTypeID {
			var err *LayoutError
			if alloc, err = e.layoutOf(a, state); err != nil {
				return TypeLayout{Size: 0, Align: 1}, err
			}
		}
		if tt.Kind == types.KindMap {
			return e.sequence([]TypeLayout{ptr, ptr, alloc}), nil
		}
		return e.sequence([]TypeLayout{ptr, ptr, ptr, alloc}), nil

	case types.KindBitSet:
		info, _ := typesIn.BitSetInfo(id)
		if info != nil && info.Backing != types.NoTypeID {
			return e.layoutOf(info.Backing, state)
		}
		lo, hi, _ := typesIn.BitRange(id)
		return e.intLayout(types.BitSetWidth(lo, hi)), nil

	case types.KindBitField:
		info, ok := typesIn.BitFieldInfo(id)
		if !ok {
			return TypeLayout{Size: 0, Align: 1}, e.unsized(id)
		}
		return e.layoutOf(info.Backing, state)

	default:
		return TypeLayout{Size: 0, Align: 1}, e.unsized(id)
	}
}

func (e *LayoutEngine) primitiveLayout(id types.TypeID, tt types.Type) (TypeLayout, *LayoutError) {
	switch tt.Class {
	case types.PrimInt, types.PrimUint, types.PrimFloat:
		if tt.Width == types.WidthAny {
			return e.ptrLayout(), nil
		}
		return e.intLayout(tt.Width), nil
	case types.PrimBool:
		if tt.Width == types.WidthAny {
			return scalarLayoutBytes(1), nil
		}
		return e.intLayout(tt.Width), nil
	case types.PrimChar:
		return scalarLayoutBytes(1), nil
	case types.PrimCString, types.PrimRawPtr, types.PrimSize, types.PrimUsize, types.PrimUintptr:
		return e.ptrLayout(), nil
	default:
		return TypeLayout{Size: 0, Align: 1}, e.unsized(id)
	}
}

func (e *LayoutEngine) intLayout(w types.Width) TypeLayout {
	size := int(w) / 8
	if w == types.Width128 {
		return TypeLayout{Size: size, Align: e.Target.Int128Align}
	}
	return scalarLayoutBytes(size)
}

func (e *LayoutEngine) fieldTypes(id types.TypeID) []types.TypeID {
	fields := e.Types.Fields(id)
	out := make([]types.TypeID, len(fields))
	for i, f := range fields {
		out[i] = f.Type
	}
	return out
}

func (e *LayoutEngine) unsized(id types.TypeID) *LayoutError {
	return &LayoutError{Kind: LayoutErrUnsized, Type: id, Label: types.Label(e.Types, id)}
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize <= 0 {
		ptrSize = 8
	}
	if ptrAlign <= 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign}
}

func scalarLayoutBytes(size int) TypeLayout {
	if size <= 0 {
		return TypeLayout{Size: 0, Align: 1}
	}
	return TypeLayout{Size: size, Align: size}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func (e *LayoutEngine) arrayFixedLayout(id, elem types.TypeID, dims []uint32, state *layoutState) (TypeLayout, *LayoutError) {
	elemLayout, err := e.layoutOf(elem, state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	elemAlign := max(elemLayout.Align, 1)
	size := roundUp(elemLayout.Size, elemAlign)
	for _, d := range dims {
		n, convErr := safecast.Conv[int](d)
		if convErr != nil {
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{
				Kind:  LayoutErrLengthConversion,
				Type:  id,
				Label: types.Label(e.Types, id),
				Err:   convErr,
			}
		}
		size *= n
	}
	return TypeLayout{
		Size:  size,
		Align: elemAlign,
	}, nil
}

// sequence lays out already computed members like a C struct.
func (e *LayoutEngine) sequence(members []TypeLayout) TypeLayout {
	size := 0
	align := 1
	offsets := make([]int, len(members))
	aligns := make([]int, len(members))
	for i, m := range members {
		a := max(m.Align, 1)
		size = roundUp(size, a)
		offsets[i] = size
		aligns[i] = a
		size += m.Size
		align = max(align, a)
	}
	return TypeLayout{
		Size:         roundUp(size, align),
		Align:        align,
		FieldOffsets: offsets,
		FieldAligns:  aligns,
	}
}

func (e *LayoutEngine) structLayout(fields []types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	members := make([]TypeLayout, len(fields))
	for i, f := range fields {
		fl, err := e.layoutOf(f, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		members[i] = fl
	}
	return e.sequence(members), nil
}

func (e *LayoutEngine) unionLayout(fields []types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	size := 0
	align := 1
	for _, f := range fields {
		fl, err := e.layoutOf(f, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		size = max(size, fl.Size)
		align = max(align, fl.Align)
	}
	return TypeLayout{Size: roundUp(size, align), Align: align}, nil
}

// taggedUnionLayout mirrors struct { tag; union values; }.
func (e *LayoutEngine) taggedUnionLayout(id types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	info, ok := e.Types.TaggedUnionInfo(id)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, e.unsized(id)
	}
	payload, err := e.unionLayout(info.Variants, state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	tag := e.intLayout(types.TagWidth(len(info.Variants)))
	if info.Tag != types.NoTypeID {
		if tag, err = e.layoutOf(info.Tag, state); err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
	}
	out := e.sequence([]TypeLayout{tag, payload})
	out.TagSize = tag.Size
	out.PayloadOffset = out.FieldOffsets[1]
	out.FieldOffsets = nil
	out.FieldAligns = nil
	return out, nil
}
