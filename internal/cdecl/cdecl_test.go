package cdecl

import (
	"testing"

	"hdrgen/internal/resolve"
	"hdrgen/internal/symbols"
	"hdrgen/internal/types"
)

type stubNames struct {
	in    *types.Interner
	names map[types.TypeID]string
}

func (n *stubNames) TypeName(id types.TypeID) string {
	if name, ok := n.names[id]; ok {
		return name
	}
	return n.in.Name(id)
}

func (n *stubNames) Ident(name string) string { return name }

type fixture struct {
	in    *types.Interner
	syms  *symbols.Table
	names *stubNames
	i64   types.TypeID
	i32   types.TypeID
	u8    types.TypeID
}

func newFixture() *fixture {
	in := types.NewInterner()
	return &fixture{
		in:    in,
		syms:  &symbols.Table{},
		names: &stubNames{in: in, names: map[types.TypeID]string{}},
		i64:   in.Intern(types.MakePrimitive("i64", types.PrimInt, types.Width64)),
		i32:   in.Intern(types.MakePrimitive("i32", types.PrimInt, types.Width32)),
		u8:    in.Intern(types.MakePrimitive("u8", types.PrimUint, types.Width8)),
	}
}

func (f *fixture) ptr(id types.TypeID, depth int) types.TypeID {
	for i := 0; i < depth; i++ {
		id = f.in.Intern(types.MakePointer(id))
	}
	return id
}

func (f *fixture) arr(id types.TypeID, n uint32) types.TypeID {
	return f.in.Intern(types.MakeArray(id, n))
}

// synth exports every given type so the resolver declares what it must.
func (f *fixture) synth(t *testing.T, exported ...types.TypeID) *Synthesizer {
	t.Helper()
	for i, id := range exported {
		f.syms.Variables = append(f.syms.Variables, symbols.Variable{Name: "v" + string(rune('a'+i)), Type: id})
	}
	res, err := resolve.Resolve(f.in, f.syms)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return New(f.in, res, f.names)
}

func expectDecl(t *testing.T, s *Synthesizer, id types.TypeID, name string, q Qual, want string) {
	t.Helper()
	d, err := s.Declare(id, name, q)
	if err != nil {
		t.Fatalf("declare %s: %v", name, err)
	}
	if got := d.String(); got != want {
		t.Fatalf("declare %s:\n got  %s\n want %s", name, got, want)
	}
}

func TestPointerToArrayOfPointers(t *testing.T) {
	f := newFixture()
	id := f.ptr(f.arr(f.ptr(f.u8, 3), 5), 1)
	s := f.synth(t, id)
	expectDecl(t, s, id, "name", QualNone, "uint8_t*** (*name)[5]")
}

func TestArrayOfPointers(t *testing.T) {
	f := newFixture()
	id := f.arr(f.ptr(f.i64, 1), 10)
	s := f.synth(t, id)
	expectDecl(t, s, id, "name", QualNone, "int64_t* name[10]")
}

func TestNestedPointerArrayChain(t *testing.T) {
	f := newFixture()
	inner := f.ptr(f.arr(f.ptr(f.i64, 3), 17), 3)
	mid := f.ptr(f.arr(f.ptr(f.arr(inner, 18), 1), 15), 1)
	id := f.ptr(f.in.MultiArray(mid, []uint32{13, 14}), 3)
	s := f.synth(t, id)
	expectDecl(t, s, id, "complex_ptr", QualNone,
		"int64_t*** (***(*(*(***complex_ptr)[13][14])[15])[18])[17]")
}

func TestConstPointerChainParam(t *testing.T) {
	f := newFixture()
	anon := f.in.InternStruct([]types.Field{{Name: "x", Type: f.i32}})
	f.names.names[anon] = "anon_4"
	id := f.ptr(anon, 2)
	s := f.synth(t, id)
	expectDecl(t, s, id, "over", QualConst, "struct anon_4**const over")
}

func TestConstPointerToArrayQualifiesElement(t *testing.T) {
	f := newFixture()
	slice := f.in.Intern(types.MakeSlice(f.i64))
	f.names.names[slice] = "i64_slice"
	id := f.ptr(f.arr(slice, 5), 1)
	s := f.synth(t, id)
	expectDecl(t, s, id, "ss", QualConst, "const struct i64_slice (*ss)[5]")
}

func TestConstArrayOfPointersQualifiesElements(t *testing.T) {
	f := newFixture()
	id := f.arr(f.ptr(f.i64, 1), 5)
	s := f.synth(t, id)
	expectDecl(t, s, id, "x", QualConst, "int64_t*const x[5]")
}

func TestProcedureField(t *testing.T) {
	f := newFixture()
	order := f.in.RegisterStruct("booty_anon_1")
	f.in.SetFields(order, []types.Field{{Name: "x", Type: f.i32}})
	ret := f.in.RegisterAlias("booty_boot_int")
	f.in.SetAliasTarget(ret, f.i32)
	fn := f.in.RegisterFn([]types.Field{{Name: "order", Type: order}}, ret)
	s := f.synth(t, fn)
	expectDecl(t, s, fn, "booty_callback", QualNone,
		"booty_boot_int (* booty_callback)(const struct booty_anon_1 order)")
}

func TestConstProcedureParam(t *testing.T) {
	f := newFixture()
	fn := f.in.RegisterFn([]types.Field{{Name: "x", Type: f.i32}}, f.ptr(f.i32, 1))
	s := f.synth(t, fn)
	expectDecl(t, s, fn, "cb", QualConst, "int32_t* (*const cb)(const int32_t x)")
}

func TestEmptyParameterListAndVoidResult(t *testing.T) {
	f := newFixture()
	fn := f.in.RegisterFn(nil, types.NoTypeID)
	s := f.synth(t, fn)
	expectDecl(t, s, fn, "f", QualNone, "void (* f)()")
}

func TestProcedureReturningPointerToArray(t *testing.T) {
	f := newFixture()
	fn := f.in.RegisterFn(nil, f.ptr(f.arr(f.i32, 4), 1))
	s := f.synth(t, fn)
	expectDecl(t, s, fn, "f", QualNone, "int32_t (*(* f)())[4]")
}

func TestCStringParam(t *testing.T) {
	f := newFixture()
	cstr := f.in.Intern(types.MakePrimitive("cstring", types.PrimCString, 0))
	s := f.synth(t, cstr)
	expectDecl(t, s, cstr, "s", QualConst, "const char* s")
}

func TestAbstractDeclarator(t *testing.T) {
	f := newFixture()
	fn := f.in.RegisterFn([]types.Field{{Type: f.i32}}, f.i32)
	s := f.synth(t, fn)
	got, err := s.Spell(fn)
	if err != nil {
		t.Fatalf("spell: %v", err)
	}
	if got != "int32_t (*)(const int32_t)" {
		t.Fatalf("spell = %q", got)
	}
}

func TestPointerHelper(t *testing.T) {
	f := newFixture()
	s := f.synth(t, f.i64)
	d, err := s.Pointer(f.i64, "data", QualNone)
	if err != nil {
		t.Fatalf("pointer: %v", err)
	}
	if d.Head != "int64_t*" || d.Body != "data" {
		t.Fatalf("pointer = %+v", d)
	}
}

func TestSizeTracking(t *testing.T) {
	f := newFixture()
	size := f.in.Intern(types.MakePrimitive("int", types.PrimSize, 0))
	usize := f.in.Intern(types.MakePrimitive("uint", types.PrimUsize, 0))
	s := f.synth(t, size, usize)
	if s.UsesSize() || s.UsesSSize() {
		t.Fatalf("nothing rendered yet")
	}
	expectDecl(t, s, size, "n", QualNone, "ssize_t n")
	if !s.UsesSSize() || s.UsesSize() {
		t.Fatalf("ssize_t not tracked")
	}
	expectDecl(t, s, usize, "m", QualNone, "size_t m")
	if !s.UsesSize() {
		t.Fatalf("size_t not tracked")
	}
}

func TestPrimitiveSpellings(t *testing.T) {
	cases := []struct {
		tt   types.Type
		want string
	}{
		{types.MakePrimitive("i8", types.PrimInt, types.Width8), "int8_t"},
		{types.MakePrimitive("u64", types.PrimUint, types.Width64), "uint64_t"},
		{types.MakePrimitive("i128", types.PrimInt, types.Width128), "__int128"},
		{types.MakePrimitive("u128", types.PrimUint, types.Width128), "unsigned __int128"},
		{types.MakePrimitive("f16", types.PrimFloat, types.Width16), "_Float16"},
		{types.MakePrimitive("f32", types.PrimFloat, types.Width32), "float"},
		{types.MakePrimitive("f64", types.PrimFloat, types.Width64), "double"},
		{types.MakePrimitive("bool", types.PrimBool, types.Width8), "_Bool"},
		{types.MakePrimitive("b32", types.PrimBool, types.Width32), "int32_t"},
		{types.MakePrimitive("rawptr", types.PrimRawPtr, 0), "void*"},
		{types.MakePrimitive("uintptr", types.PrimUintptr, 0), "uintptr_t"},
	}
	for _, tc := range cases {
		got, err := Primitive(tc.tt)
		if err != nil {
			t.Fatalf("%s: %v", tc.tt.Name, err)
		}
		if got != tc.want {
			t.Fatalf("%s = %q, want %q", tc.tt.Name, got, tc.want)
		}
	}
	if _, err := Primitive(types.MakePrimitive("f8", types.PrimFloat, types.Width8)); err == nil {
		t.Fatalf("expected error for 8-bit float")
	}
}
