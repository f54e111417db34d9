package emit

import (
	"strings"
	"testing"

	"hdrgen/internal/diag"
	"hdrgen/internal/names"
	"hdrgen/internal/order"
	"hdrgen/internal/resolve"
	"hdrgen/internal/symbols"
	"hdrgen/internal/testkit"
	"hdrgen/internal/types"
)

type fixture struct {
	in   *types.Interner
	syms *symbols.Table
	i32  types.TypeID
	i64  types.TypeID
	u8   types.TypeID
}

func newFixture() *fixture {
	in := types.NewInterner()
	return &fixture{
		in:   in,
		syms: &symbols.Table{},
		i32:  in.Intern(types.MakePrimitive("i32", types.PrimInt, types.Width32)),
		i64:  in.Intern(types.MakePrimitive("i64", types.PrimInt, types.Width64)),
		u8:   in.Intern(types.MakePrimitive("u8", types.PrimUint, types.Width8)),
	}
}

func (f *fixture) variable(name string, id types.TypeID) {
	f.syms.Variables = append(f.syms.Variables, symbols.Variable{Name: name, Type: id})
}

func (f *fixture) emit(t *testing.T, opts Options) (string, error) {
	t.Helper()
	res, err := resolve.ResolveFor(f.in, f.syms, opts.Platform)
	if err != nil {
		return "", err
	}
	plan, err := order.Order(f.in, res)
	if err != nil {
		return "", err
	}
	tab, err := names.Allocate(f.in, res, plan, f.syms, names.Options{
		Prefix:   opts.Prefix,
		Guard:    opts.Guard,
		Platform: opts.Platform,
	})
	if err != nil {
		return "", err
	}
	return Emit(Input{Types: f.in, Symbols: f.syms, Resolved: res, Plan: plan, Names: tab}, opts)
}

func expectHeader(t *testing.T, f *fixture, opts Options, want string) {
	t.Helper()
	got, err := f.emit(t, opts)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	want = strings.TrimPrefix(want, "\n")
	if err := testkit.CheckHeaderInvariants(got); err != nil {
		t.Fatalf("invariants: %v\n%s", err, got)
	}
	if got != want {
		t.Fatalf("header mismatch\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestStructVariableAndFunction(t *testing.T) {
	f := newFixture()
	point := f.in.RegisterStruct("point")
	f.in.SetFields(point, []types.Field{{Name: "x", Type: f.i32}, {Name: "y", Type: f.i32}})
	f.variable("origin", point)
	f.syms.AddFunction(f.in, symbols.Function{
		Name: "move",
		Params: []types.Field{
			{Name: "p", Type: f.in.Intern(types.MakePointer(point))},
			{Name: "dx", Type: f.i32},
		},
		Results: []types.Field{{Type: point}},
	})

	expectHeader(t, f, Options{}, `
#pragma once

#include <stdint.h>

typedef struct point {
    int32_t x;
    int32_t y;
} point;

extern struct point origin;

extern struct point move(struct point*const p, const int32_t dx);
`)
}

func TestAlignedEnumsAndSlices(t *testing.T) {
	f := newFixture()
	pants := f.in.RegisterEnum("pants")
	f.in.SetEnum(pants, f.i32, []types.EnumMember{
		{Name: "trousers", Value: 0},
		{Name: "skirt", Value: 1},
		{Name: "pantalones", Value: 2},
	})
	sausages := f.in.RegisterEnum("sausages")
	f.in.SetEnum(sausages, f.i64, []types.EnumMember{
		{Name: "Weißwurst", Value: 0},
		{Name: "Bratwurst", Value: 1},
		{Name: "Käsekrainer", Value: 69},
	})
	f.variable("p", pants)
	f.variable("s", sausages)
	f.variable("xs", f.in.Intern(types.MakeSlice(f.i64)))

	expectHeader(t, f, Options{Style: StyleAligned}, `
#pragma once

#include <stdint.h>

#ifdef _MSC_VER
#include <BaseTsd.h>
typedef SSIZE_T ssize_t;
#else
#include <sys/types.h>
#endif

typedef enum pants {
    trousers   =   0,
    skirt      =   1,
    pantalones =   2,
} pants;

#define Weisswurst  ((sausages)  0)
#define Bratwurst   ((sausages)  1)
#define Kasekrainer ((sausages) 69)
typedef int64_t sausages;

typedef struct i64_slice {
    int64_t* data;
    ssize_t  length;
} i64_slice;

extern enum pants p;
extern sausages s;
extern struct i64_slice xs;
`)
}

func TestCompactMacroEnum(t *testing.T) {
	f := newFixture()
	e := f.in.RegisterEnum("sparse")
	f.in.SetEnum(e, f.i32, []types.EnumMember{{Name: "a", Value: -1}, {Name: "b", Value: 7}})
	f.variable("v", e)

	expectHeader(t, f, Options{}, `
#pragma once

#include <stdint.h>

#define a ((sparse)-1)
#define b ((sparse)7)
typedef int32_t sparse;

extern sparse v;
`)
}

func TestTaggedUnionWithSelfPointer(t *testing.T) {
	f := newFixture()
	expr := f.in.RegisterTaggedUnion("expr")
	f.in.SetTaggedUnion(expr, types.NoTypeID, []types.TypeID{f.i64, f.in.Intern(types.MakePointer(expr))})
	f.variable("e", expr)

	expectHeader(t, f, Options{}, `
#pragma once

#include <stdint.h>

struct expr;

typedef union expr_values {
    int64_t v0;
    struct expr* v1;
} expr_values;

typedef struct expr {
    uint8_t tag;
    union expr_values values;
} expr;

extern struct expr e;
`)
}

func (f *fixture) platformFunctions() {
	cstr := f.in.Intern(types.MakePrimitive("cstring", types.PrimCString, 0))
	raw := f.in.Intern(types.MakePrimitive("rawptr", types.PrimRawPtr, 0))
	path := []types.Field{{Name: "path", Type: cstr}}
	f.syms.AddFunction(f.in, symbols.Function{Name: "init"})
	f.syms.AddFunction(f.in, symbols.Function{
		Name: "win_open", Params: path, Results: []types.Field{{Type: raw}}, Platform: symbols.PlatformWindows,
	})
	f.syms.AddFunction(f.in, symbols.Function{
		Name: "posix_open", Params: path, Results: []types.Field{{Type: f.i32}}, Platform: symbols.PlatformPosix,
	})
}

func TestPortablePlatformGroups(t *testing.T) {
	f := newFixture()
	f.platformFunctions()

	expectHeader(t, f, Options{Prefix: "lib_", Guard: "LIB_H"}, `
#ifndef LIB_H
#define LIB_H

#include <stdint.h>

extern void init();

#ifdef _WIN32
extern void* win_open(const char* path);
#else
extern int32_t posix_open(const char* path);
#endif

#define lib_init init
#define lib_win_open win_open
#define lib_posix_open posix_open

#endif // LIB_H
`)
}

func TestTargetedPlatformDropsOtherSide(t *testing.T) {
	f := newFixture()
	f.platformFunctions()

	expectHeader(t, f, Options{Platform: symbols.PlatformWindows, Prefix: "lib_", Guard: "LIB_H"}, `
#ifndef LIB_H
#define LIB_H

#include <stdint.h>

extern void init();
extern void* win_open(const char* path);

#define lib_init init
#define lib_win_open win_open

#endif // LIB_H
`)
}

func (f *fixture) platformTwins(posixResult types.TypeID) {
	win := f.in.RegisterStruct("win_only")
	f.in.SetFields(win, []types.Field{{Name: "h", Type: f.i64}})
	f.syms.Variables = append(f.syms.Variables, symbols.Variable{Name: "handle", Type: win, Platform: symbols.PlatformWindows})
	f.syms.AddFunction(f.in, symbols.Function{
		Name: "foo", Results: []types.Field{{Type: f.i32}, {Type: f.i32}}, Platform: symbols.PlatformWindows,
	})
	f.syms.AddFunction(f.in, symbols.Function{
		Name: "foo", Results: []types.Field{{Type: posixResult}, {Type: posixResult}}, Platform: symbols.PlatformPosix,
	})
}

func TestTargetedPlatformSkipsOtherSideTypes(t *testing.T) {
	f := newFixture()
	f.platformTwins(f.i64)

	expectHeader(t, f, Options{Platform: symbols.PlatformPosix}, `
#pragma once

#include <stdint.h>

typedef struct foo_result {
    int64_t v0;
    int64_t v1;
} foo_result;

extern struct foo_result foo();
`)
}

func TestPortableTwinsShareResultStruct(t *testing.T) {
	f := newFixture()
	f.platformTwins(f.i32)

	expectHeader(t, f, Options{}, `
#pragma once

#include <stdint.h>

typedef struct win_only {
    int64_t h;
} win_only;

typedef struct foo_result {
    int32_t v0;
    int32_t v1;
} foo_result;

#ifdef _WIN32
extern struct win_only handle;
#endif

#ifdef _WIN32
extern struct foo_result foo();
#else
extern struct foo_result foo();
#endif
`)
}

func TestTargetedSSizeBlock(t *testing.T) {
	f := newFixture()
	size := f.in.Intern(types.MakePrimitive("int", types.PrimSize, 0))
	f.variable("n", size)

	expectHeader(t, f, Options{Platform: symbols.PlatformPosix}, `
#pragma once

#include <stdint.h>
#include <sys/types.h>

extern ssize_t n;
`)
	expectHeader(t, f, Options{Platform: symbols.PlatformWindows}, `
#pragma once

#include <stdint.h>

#include <BaseTsd.h>
typedef SSIZE_T ssize_t;

extern ssize_t n;
`)
}

func TestConstants(t *testing.T) {
	f := newFixture()
	f.syms.Constants = []symbols.Constant{
		{Name: "FOO_VALUE", Kind: symbols.ConstInt, Int: 5},
		{Name: "FOO_VALUE_STR", Kind: symbols.ConstString, Str: "five \"5\"\n"},
		{Name: "FOO_FLOAT", Kind: symbols.ConstFloat, Float: 5.6},
		{Name: "WHOLE", Kind: symbols.ConstFloat, Float: 2},
		{Name: "FLAG", Kind: symbols.ConstBool, Bool: true},
		{Name: "TYPED", Kind: symbols.ConstInt, Int: -3, Type: f.i64},
		{Name: "EXPR", Kind: symbols.ConstExpr, Expr: "1 << 4"},
	}

	expectHeader(t, f, Options{}, `
#pragma once

#include <stdint.h>

#define FOO_VALUE 5
static const char* FOO_VALUE_STR = "five \"5\"\n";
#define FOO_FLOAT 5.5999999999999996
#define WHOLE 2.0
#define FLAG 1
#define TYPED ((int64_t)-3)
#define EXPR (1 << 4)
`)
}

func TestAllocatorCarryingContainers(t *testing.T) {
	f := newFixture()
	raw := f.in.Intern(types.MakePrimitive("rawptr", types.PrimRawPtr, 0))
	alloc := f.in.RegisterStruct("runtime_Allocator")
	f.in.SetFields(alloc, []types.Field{{Name: "procedure", Type: raw}, {Name: "data", Type: raw}})
	f.in.SetAllocator(alloc)
	f.variable("d", f.in.Intern(types.MakeDynArray(f.i32)))
	f.variable("m", f.in.Intern(types.MakeMap(f.u8, f.i32)))

	expectHeader(t, f, Options{}, `
#pragma once

#include <stddef.h>
#include <stdint.h>

#ifdef _MSC_VER
#include <BaseTsd.h>
typedef SSIZE_T ssize_t;
#else
#include <sys/types.h>
#endif

typedef struct runtime_Allocator {
    void* procedure;
    void* data;
} runtime_Allocator;

typedef struct i32_dynamic_array {
    int32_t* data;
    ssize_t length;
    ssize_t capacity;
    struct runtime_Allocator allocator;
} i32_dynamic_array;

typedef struct map_u8_i32 {
    size_t data;
    size_t length;
    struct runtime_Allocator allocator;
} map_u8_i32;

extern struct i32_dynamic_array d;
extern struct map_u8_i32 m;
`)
}

func TestBitSetsAndBitFields(t *testing.T) {
	f := newFixture()
	f.variable("r", f.in.InternBitSet(types.BitSetInfo{Lo: 2, Hi: 5}))
	f.variable("bf", f.in.InternBitField(f.in.Intern(types.MakeArray(f.i32, 5))))

	expectHeader(t, f, Options{}, `
#pragma once

#include <stdint.h>

typedef uint8_t bit_set_range_2_to_5;
typedef int32_t bit_field_i32_array_5[5];

extern bit_set_range_2_to_5 r;
extern bit_field_i32_array_5 bf;
`)
}

func TestSizeAssertions(t *testing.T) {
	f := newFixture()
	s := f.in.RegisterStruct("padded")
	f.in.SetFields(s, []types.Field{{Name: "a", Type: f.u8}, {Name: "b", Type: f.i64}})
	f.variable("v", s)

	expectHeader(t, f, Options{SizeAsserts: true, PointerWidth: 64}, `
#pragma once

#include <stdint.h>

typedef struct padded {
    uint8_t a;
    int64_t b;
} padded;
_Static_assert(sizeof(struct padded) == 16, "unexpected size of struct padded");

extern struct padded v;
`)
}

func TestSizeAssertionsSizeNativeEnumsAsInt(t *testing.T) {
	f := newFixture()
	c := f.in.RegisterEnum("color")
	f.in.SetEnum(c, f.u8, []types.EnumMember{{Name: "red", Value: 0}, {Name: "green", Value: 1}})
	s := f.in.RegisterStruct("pixel")
	f.in.SetFields(s, []types.Field{{Name: "c", Type: c}, {Name: "a", Type: f.u8}})
	f.variable("v", s)

	expectHeader(t, f, Options{SizeAsserts: true, PointerWidth: 64}, `
#pragma once

#include <stdint.h>

typedef enum color {
    red = 0,
    green = 1,
} color;

typedef struct pixel {
    enum color c;
    uint8_t a;
} pixel;
_Static_assert(sizeof(struct pixel) == 8, "unexpected size of struct pixel");

extern struct pixel v;
`)
}

func TestOptionsDoNotChangeTokens(t *testing.T) {
	f := newFixture()
	s := f.in.RegisterStruct("wide")
	f.in.SetFields(s, []types.Field{
		{Name: "a", Type: f.u8},
		{Name: "callback", Type: f.in.RegisterFn([]types.Field{{Name: "x", Type: f.i32}}, f.i64)},
	})
	f.variable("v", s)

	compact, err := f.emit(t, Options{})
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	aligned, err := f.emit(t, Options{Style: StyleAligned})
	if err != nil {
		t.Fatalf("aligned: %v", err)
	}
	if strings.Join(strings.Fields(compact), " ") != strings.Join(strings.Fields(aligned), " ") {
		t.Fatalf("styles differ beyond whitespace:\n%s\n%s", compact, aligned)
	}
	if !strings.Contains(aligned, "    uint8_t a;\n    int64_t (* callback)(const int32_t x);") {
		t.Fatalf("aligned body:\n%s", aligned)
	}
}

func TestUnspellablePrimitiveIsUnsupported(t *testing.T) {
	f := newFixture()
	f.variable("n", f.in.Intern(types.MakePrimitive("int", types.PrimInt, types.WidthAny)))
	_, err := f.emit(t, Options{})
	code, ok := diag.CodeOf(err)
	if !ok || code != diag.UnsupportedConstruct {
		t.Fatalf("err = %v, want UnsupportedConstruct", err)
	}
}

func TestEmitIsDeterministic(t *testing.T) {
	f := newFixture()
	a := f.in.RegisterStruct("a")
	b := f.in.RegisterStruct("b")
	f.in.SetFields(a, []types.Field{{Name: "b", Type: f.in.Intern(types.MakePointer(b))}})
	f.in.SetFields(b, []types.Field{{Name: "a", Type: f.in.Intern(types.MakePointer(a))}})
	f.variable("v", a)

	first, err := f.emit(t, Options{Style: StyleAligned})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := f.emit(t, Options{Style: StyleAligned})
		if err != nil || again != first {
			t.Fatalf("run %d differs: %v\n%s", i, err, again)
		}
	}
}
