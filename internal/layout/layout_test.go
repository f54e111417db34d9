package layout_test

import (
	"errors"
	"testing"

	"hdrgen/internal/layout"
	"hdrgen/internal/types"
)

type fixture struct {
	in  *types.Interner
	u8  types.TypeID
	i32 types.TypeID
	i64 types.TypeID
}

func newFixture() *fixture {
	in := types.NewInterner()
	return &fixture{
		in:  in,
		u8:  in.Intern(types.MakePrimitive("u8", types.PrimUint, types.Width8)),
		i32: in.Intern(types.MakePrimitive("i32", types.PrimInt, types.Width32)),
		i64: in.Intern(types.MakePrimitive("i64", types.PrimInt, types.Width64)),
	}
}

func expectLayout(t *testing.T, le *layout.LayoutEngine, id types.TypeID, size, align int) {
	t.Helper()
	l, err := le.LayoutOf(id)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if l.Size != size || l.Align != align {
		t.Fatalf("layout = %d/%d, want %d/%d", l.Size, l.Align, size, align)
	}
}

func TestStructPadding(t *testing.T) {
	f := newFixture()
	s := f.in.RegisterStruct("padded")
	f.in.SetFields(s, []types.Field{
		{Name: "a", Type: f.u8},
		{Name: "b", Type: f.i64},
		{Name: "c", Type: f.u8},
	})
	le := layout.New(layout.LP64(), f.in)
	expectLayout(t, le, s, 24, 8)
	if off, _ := le.FieldOffset(s, 1); off != 8 {
		t.Fatalf("offset of b = %d, want 8", off)
	}
}

func TestIntEnumsUseCInt(t *testing.T) {
	f := newFixture()
	e := f.in.RegisterEnum("color")
	f.in.SetEnum(e, f.u8, []types.EnumMember{{Name: "red", Value: 0}, {Name: "green", Value: 1}})
	s := f.in.RegisterStruct("pixel")
	f.in.SetFields(s, []types.Field{{Name: "c", Type: e}, {Name: "a", Type: f.u8}})

	expectLayout(t, layout.New(layout.LP64(), f.in), s, 2, 1)

	le := layout.New(layout.ILP32(), f.in)
	le.IntEnums = map[types.TypeID]bool{e: true}
	expectLayout(t, le, e, 4, 4)
	expectLayout(t, le, s, 8, 4)
}

func TestPointerWidthChangesSlices(t *testing.T) {
	f := newFixture()
	slice := f.in.Intern(types.MakeSlice(f.i64))
	expectLayout(t, layout.New(layout.LP64(), f.in), slice, 16, 8)
	expectLayout(t, layout.New(layout.ILP32(), f.in), slice, 8, 4)
}

func TestDynamicArrayEmbedsAllocator(t *testing.T) {
	f := newFixture()
	alloc := f.in.RegisterStruct("runtime_Allocator")
	rawptr := f.in.Intern(types.MakePrimitive("rawptr", types.PrimRawPtr, 0))
	f.in.SetFields(alloc, []types.Field{{Name: "procedure", Type: rawptr}, {Name: "data", Type: rawptr}})
	f.in.SetAllocator(alloc)
	dyn := f.in.Intern(types.MakeDynArray(f.i32))
	expectLayout(t, layout.New(layout.LP64(), f.in), dyn, 40, 8)
}

func TestTaggedUnionUsesSmallestTag(t *testing.T) {
	f := newFixture()
	tu := f.in.RegisterTaggedUnion("value")
	f.in.SetTaggedUnion(tu, types.NoTypeID, []types.TypeID{f.i32, f.u8})
	le := layout.New(layout.LP64(), f.in)
	l, err := le.LayoutOf(tu)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if l.Size != 8 || l.TagSize != 1 || l.PayloadOffset != 4 {
		t.Fatalf("layout = %+v", l)
	}
}

func TestMultiArrayAndBitSet(t *testing.T) {
	f := newFixture()
	multi := f.in.MultiArray(f.i32, []uint32{2, 3})
	set := f.in.InternBitSet(types.BitSetInfo{Lo: 0, Hi: 25})
	le := layout.New(layout.LP64(), f.in)
	expectLayout(t, le, multi, 24, 4)
	expectLayout(t, le, set, 4, 4)
}

func TestRecursiveValueReportsCycle(t *testing.T) {
	f := newFixture()
	node := f.in.RegisterStruct("Node")
	f.in.SetFields(node, []types.Field{{Name: "next", Type: node}})

	le := layout.New(layout.LP64(), f.in)
	_, err := le.LayoutOf(node)
	var lerr *layout.LayoutError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *layout.LayoutError, got %T (%v)", err, err)
	}
	if lerr.Kind != layout.LayoutErrRecursiveUnsized || len(lerr.Cycle) != 2 {
		t.Fatalf("unexpected error %+v", lerr)
	}
}

func TestForPointerWidth(t *testing.T) {
	if tg, err := layout.ForPointerWidth(32); err != nil || tg.PtrSize != 4 {
		t.Fatalf("32 -> %+v, %v", tg, err)
	}
	if tg, err := layout.ForPointerWidth(0); err != nil || tg.PtrSize != 8 {
		t.Fatalf("default -> %+v, %v", tg, err)
	}
	if _, err := layout.ForPointerWidth(16); err == nil {
		t.Fatalf("expected error for 16-bit pointers")
	}
}
