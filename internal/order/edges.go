package order

import (
	"hdrgen/internal/resolve"
	"hdrgen/internal/types"
)

type mode uint8

const (
	// modeValue: the target must be complete before the source.
	modeValue mode = iota
	// modeIndirect: only the target's tag (or typedef name) must be visible.
	modeIndirect
	// modeRef: the target is only named, e.g. a map key; it is ordered
	// first when possible but never forces a forward declaration.
	modeRef
)

type edge struct {
	to   types.TypeID
	mode mode
}

type edgeWalker struct {
	in  *types.Interner
	res *resolve.Result
	out []edge
}

// edges lists the dependencies of a declaration in member order.
func edges(in *types.Interner, res *resolve.Result, id types.TypeID) []edge {
	w := &edgeWalker{in: in, res: res}
	tt, ok := in.Lookup(id)
	if !ok {
		return nil
	}
	switch tt.Kind {
	case types.KindStruct, types.KindUnion:
		for _, f := range in.Fields(id) {
			w.walk(f.Type, modeValue)
		}
	case types.KindTaggedUnion:
		if info, ok := in.TaggedUnionInfo(id); ok {
			if info.Tag != types.NoTypeID {
				w.walk(info.Tag, modeValue)
			}
			for _, v := range info.Variants {
				w.walk(v, modeValue)
			}
		}
	case types.KindEnum:
		if info, ok := in.EnumInfo(id); ok {
			w.walk(info.Base, modeValue)
		}
	case types.KindAlias:
		target, ok := in.AliasTarget(id)
		if !ok {
			break
		}
		if res.Declared(target) && in.IsTagBearing(target) {
			// typedef struct X Y; needs only the tag of X.
			w.add(target, modeIndirect)
			break
		}
		w.walk(target, modeValue)
	case types.KindSlice:
		w.walk(tt.Elem, modeIndirect)
	case types.KindDynArray:
		w.walk(tt.Elem, modeIndirect)
		w.allocator()
	case types.KindMap:
		w.walk(tt.Elem, modeRef)
		w.walk(tt.Value, modeRef)
		w.allocator()
	case types.KindBitSet:
		if info, ok := in.BitSetInfo(id); ok {
			if info.Elem != types.NoTypeID {
				w.walk(info.Elem, modeRef)
			}
			if info.Backing != types.NoTypeID {
				w.walk(info.Backing, modeValue)
			}
		}
	case types.KindBitField:
		if info, ok := in.BitFieldInfo(id); ok {
			w.walk(info.Backing, modeValue)
		}
	}
	return w.out
}

func (w *edgeWalker) add(to types.TypeID, m mode) {
	w.out = append(w.out, edge{to: to, mode: m})
}

func (w *edgeWalker) allocator() {
	if alloc := w.in.Allocator(); alloc != types.NoTypeID {
		w.walk(alloc, modeValue)
	}
}

// walk descends through inline-only nodes until it reaches declarations.
func (w *edgeWalker) walk(id types.TypeID, m mode) {
	tt, ok := w.in.Lookup(id)
	if !ok {
		return
	}
	if w.res.Declared(id) {
		w.add(id, m)
		if tt.Kind == types.KindAlias && m == modeValue {
			// using an alias by value needs its target complete as well
			if target, ok := w.in.AliasTarget(id); ok {
				w.walk(target, modeValue)
			}
		}
		return
	}
	through := modeIndirect
	if m == modeRef {
		through = modeRef
	}
	switch tt.Kind {
	case types.KindPointer:
		w.walk(tt.Elem, through)
	case types.KindArray, types.KindMultiArray:
		w.walk(tt.Elem, m)
	case types.KindFn:
		info, ok := w.in.FnInfo(id)
		if !ok {
			return
		}
		for _, p := range info.Params {
			w.walk(p.Type, through)
		}
		if info.Result != types.NoTypeID {
			w.walk(info.Result, through)
		}
	}
}
