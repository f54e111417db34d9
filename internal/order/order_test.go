package order

import (
	"errors"
	"testing"

	"hdrgen/internal/diag"
	"hdrgen/internal/resolve"
	"hdrgen/internal/symbols"
	"hdrgen/internal/types"
)

type fixture struct {
	in   *types.Interner
	syms *symbols.Table
	i64  types.TypeID
}

func newFixture() *fixture {
	in := types.NewInterner()
	return &fixture{
		in:   in,
		syms: &symbols.Table{},
		i64:  in.Intern(types.MakePrimitive("i64", types.PrimInt, types.Width64)),
	}
}

func (f *fixture) ptr(id types.TypeID) types.TypeID {
	return f.in.Intern(types.MakePointer(id))
}

func (f *fixture) export(name string, id types.TypeID) {
	f.syms.Variables = append(f.syms.Variables, symbols.Variable{Name: name, Type: id})
}

func (f *fixture) plan(t *testing.T) *Plan {
	t.Helper()
	res, err := resolve.Resolve(f.in, f.syms)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	plan, err := Order(f.in, res)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	return plan
}

func (f *fixture) orderErr(t *testing.T) error {
	t.Helper()
	res, err := resolve.Resolve(f.in, f.syms)
	if err != nil {
		return err
	}
	_, err = Order(f.in, res)
	return err
}

func position(plan *Plan, kind StepKind, id types.TypeID) int {
	for i, s := range plan.Steps {
		if s.Kind == kind && s.Type == id {
			return i
		}
	}
	return -1
}

func TestValueDependenciesComeFirst(t *testing.T) {
	f := newFixture()
	inner := f.in.RegisterStruct("inner")
	outer := f.in.RegisterStruct("outer")
	f.in.SetFields(inner, []types.Field{{Name: "x", Type: f.i64}})
	f.in.SetFields(outer, []types.Field{
		{Name: "a", Type: f.in.Intern(types.MakeArray(inner, 3))},
		{Name: "b", Type: inner},
	})
	f.export("v", outer)

	plan := f.plan(t)
	if got := plan.Defined(); len(got) != 2 || got[0] != inner || got[1] != outer {
		t.Fatalf("defined = %v, want [inner outer]", got)
	}
	if plan.Forwards() != 0 {
		t.Fatalf("unexpected forward declarations: %+v", plan.Steps)
	}
}

func TestPointerCycleNeedsOneForward(t *testing.T) {
	f := newFixture()
	a := f.in.RegisterStruct("a")
	b := f.in.RegisterStruct("b")
	f.in.SetFields(a, []types.Field{{Name: "b", Type: f.ptr(b)}})
	f.in.SetFields(b, []types.Field{{Name: "a", Type: f.ptr(a)}})
	f.export("v", a)

	plan := f.plan(t)
	if plan.Forwards() != 1 {
		t.Fatalf("forwards = %d, want 1: %+v", plan.Forwards(), plan.Steps)
	}
	fwd := plan.Steps[0]
	if fwd.Kind != StepForward {
		t.Fatalf("first step = %+v, want a forward declaration", fwd)
	}
	first := position(plan, StepDefine, a)
	if d := position(plan, StepDefine, b); d < first {
		first = d
	}
	if first < 1 {
		t.Fatalf("forward declaration must precede both definitions: %+v", plan.Steps)
	}
}

func TestSelfPointerNeedsNoForward(t *testing.T) {
	f := newFixture()
	node := f.in.RegisterStruct("hooty_tooty")
	f.in.SetFields(node, []types.Field{{Name: "child", Type: f.ptr(node)}})
	f.export("v", node)

	plan := f.plan(t)
	if plan.Forwards() != 0 {
		t.Fatalf("self pointer must not be forward declared: %+v", plan.Steps)
	}
}

func TestSelfPointerThroughAliasNeedsForward(t *testing.T) {
	f := newFixture()
	cycle := f.in.RegisterStruct("pointed_cycle")
	alias := f.in.RegisterAlias("cycle_pointer")
	f.in.SetAliasTarget(alias, f.ptr(cycle))
	f.in.SetFields(cycle, []types.Field{{Name: "data", Type: f.ptr(alias)}})
	f.export("v", cycle)

	plan := f.plan(t)
	if plan.Forwards() != 1 {
		t.Fatalf("forwards = %d, want 1: %+v", plan.Forwards(), plan.Steps)
	}
	fwd := position(plan, StepForward, cycle)
	def := position(plan, StepDefine, alias)
	if fwd < 0 || def < 0 || fwd > def {
		t.Fatalf("forward must precede the alias: %+v", plan.Steps)
	}
	if position(plan, StepDefine, cycle) < def {
		t.Fatalf("struct must follow the alias: %+v", plan.Steps)
	}
}

func TestSliceOfSelfForwardsStruct(t *testing.T) {
	f := newFixture()
	node := f.in.RegisterStruct("node")
	slice := f.in.Intern(types.MakeSlice(node))
	f.in.SetFields(node, []types.Field{{Name: "children", Type: slice}})
	f.export("v", node)

	plan := f.plan(t)
	want := []Step{
		{Kind: StepForward, Type: node},
		{Kind: StepDefine, Type: slice},
		{Kind: StepDefine, Type: node},
	}
	if len(plan.Steps) != len(want) {
		t.Fatalf("steps = %+v", plan.Steps)
	}
	for i := range want {
		if plan.Steps[i] != want[i] {
			t.Fatalf("step %d = %+v, want %+v", i, plan.Steps[i], want[i])
		}
	}
}

func TestTaggedUnionSelfPointerIsForwarded(t *testing.T) {
	f := newFixture()
	tu := f.in.RegisterTaggedUnion("expr")
	f.in.SetTaggedUnion(tu, types.NoTypeID, []types.TypeID{f.i64, f.ptr(tu)})
	f.export("v", tu)

	plan := f.plan(t)
	if plan.Forwards() != 1 || plan.Steps[0].Type != tu {
		t.Fatalf("tagged union self pointer needs a forward: %+v", plan.Steps)
	}
}

func TestValueCycleIsFatal(t *testing.T) {
	f := newFixture()
	a := f.in.RegisterStruct("a")
	b := f.in.RegisterStruct("b")
	f.in.SetFields(a, []types.Field{{Name: "b", Type: b}})
	f.in.SetFields(b, []types.Field{{Name: "a", Type: f.in.Intern(types.MakeArray(a, 2))}})
	f.export("v", a)

	err := f.orderErr(t)
	code, ok := diag.CodeOf(err)
	if !ok || code != diag.UnresolvableCycle {
		t.Fatalf("err = %v, want UnresolvableCycle", err)
	}
	var de *diag.Error
	if !errors.As(err, &de) || len(de.Chain) != 3 || de.Chain[0] != de.Chain[2] {
		t.Fatalf("chain = %+v", de)
	}
}

func TestDirectSelfContainmentRejected(t *testing.T) {
	f := newFixture()
	a := f.in.RegisterStruct("a")
	f.in.SetFields(a, []types.Field{{Name: "self", Type: a}})
	f.export("v", a)

	code, ok := diag.CodeOf(f.orderErr(t))
	if !ok || code != diag.UnresolvableCycle {
		t.Fatalf("code = %v, want UnresolvableCycle", code)
	}
}

func TestPointerToInProgressAliasIsInvalidTag(t *testing.T) {
	f := newFixture()
	alias := f.in.RegisterAlias("self_ptr")
	f.in.SetAliasTarget(alias, f.ptr(alias))
	f.export("v", alias)

	code, ok := diag.CodeOf(f.orderErr(t))
	if !ok || code != diag.InvalidTag {
		t.Fatalf("code = %v, want InvalidTag", code)
	}
}

func TestEveryDeclarationDefinedOnce(t *testing.T) {
	f := newFixture()
	a := f.in.RegisterStruct("a")
	b := f.in.RegisterStruct("b")
	c := f.in.RegisterStruct("c")
	f.in.SetFields(a, []types.Field{{Name: "b", Type: b}, {Name: "c", Type: f.ptr(c)}})
	f.in.SetFields(b, []types.Field{{Name: "c", Type: c}})
	f.in.SetFields(c, []types.Field{{Name: "a", Type: f.ptr(a)}, {Name: "b", Type: f.ptr(b)}})
	f.export("x", a)
	f.export("y", c)

	plan := f.plan(t)
	seen := map[types.TypeID]int{}
	for _, id := range plan.Defined() {
		seen[id]++
	}
	for _, id := range []types.TypeID{a, b, c} {
		if seen[id] != 1 {
			t.Fatalf("type %d defined %d times", id, seen[id])
		}
	}
	if !(position(plan, StepDefine, c) < position(plan, StepDefine, b) &&
		position(plan, StepDefine, b) < position(plan, StepDefine, a)) {
		t.Fatalf("value order violated: %+v", plan.Steps)
	}
	// c points at both a and b before either is complete
	if plan.Forwards() != 2 || position(plan, StepForward, a) < 0 || position(plan, StepForward, b) < 0 {
		t.Fatalf("forwards = %+v", plan.Steps)
	}
}
