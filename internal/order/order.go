// Package order sequences declarations so every C declaration precedes its
// first use, inserting forward declarations where only a tag is needed.
package order

import (
	"hdrgen/internal/diag"
	"hdrgen/internal/resolve"
	"hdrgen/internal/types"
)

// StepKind distinguishes tag-only declarations from full definitions.
type StepKind uint8

const (
	StepForward StepKind = iota + 1
	StepDefine
)

func (k StepKind) String() string {
	switch k {
	case StepForward:
		return "forward"
	case StepDefine:
		return "define"
	default:
		return "?"
	}
}

// Step is one entry of the emission sequence.
type Step struct {
	Kind StepKind
	Type types.TypeID
}

// Plan is the ordered declaration list.
type Plan struct {
	Steps []Step
}

// Defined returns the defined types in emission order.
func (p *Plan) Defined() []types.TypeID {
	if p == nil {
		return nil
	}
	out := make([]types.TypeID, 0, len(p.Steps))
	for _, s := range p.Steps {
		if s.Kind == StepDefine {
			out = append(out, s.Type)
		}
	}
	return out
}

// Forwards counts the forward declarations in the plan.
func (p *Plan) Forwards() int {
	n := 0
	for _, s := range p.Steps {
		if s.Kind == StepForward {
			n++
		}
	}
	return n
}

type color uint8

const (
	unvisited color = iota
	inProgress
	done
)

type orderer struct {
	in      *types.Interner
	res     *resolve.Result
	state   map[types.TypeID]color
	stack   []types.TypeID
	visible map[types.TypeID]bool
	plan    *Plan
}

// Order runs a three-color depth-first walk over the declarations in
// resolver order. Value edges must be defined first and reaching an
// in-progress node through one is fatal. Indirect edges to struct or union
// tags only require the tag to be visible and are satisfied by a forward
// declaration emitted right before the first definition needing it.
func Order(in *types.Interner, res *resolve.Result) (*Plan, error) {
	o := &orderer{
		in:      in,
		res:     res,
		state:   make(map[types.TypeID]color, len(res.MustDeclare)),
		visible: make(map[types.TypeID]bool, len(res.MustDeclare)),
		plan:    &Plan{Steps: make([]Step, 0, len(res.MustDeclare)+4)},
	}
	for _, id := range res.MustDeclare {
		if o.state[id] != unvisited {
			continue
		}
		if err := o.define(id); err != nil {
			return nil, err
		}
	}
	return o.plan, nil
}

func (o *orderer) define(id types.TypeID) error {
	o.state[id] = inProgress
	o.stack = append(o.stack, id)

	var needTags []types.TypeID
	for _, e := range edges(o.in, o.res, id) {
		switch e.mode {
		case modeValue:
			switch o.state[e.to] {
			case inProgress:
				return o.cycle(e.to)
			case unvisited:
				if err := o.define(e.to); err != nil {
					return err
				}
			}
		case modeIndirect:
			if o.in.IsTagBearing(e.to) {
				needTags = append(needTags, e.to)
				continue
			}
			switch o.state[e.to] {
			case inProgress:
				return o.badTag(e.to)
			case unvisited:
				if err := o.define(e.to); err != nil {
					return err
				}
			}
		case modeRef:
			if o.state[e.to] == unvisited {
				if err := o.define(e.to); err != nil {
					return err
				}
			}
		}
	}

	for _, t := range needTags {
		if o.visible[t] || (t == id && selfVisible(o.in, id)) {
			continue
		}
		o.plan.Steps = append(o.plan.Steps, Step{Kind: StepForward, Type: t})
		o.visible[t] = true
	}
	o.plan.Steps = append(o.plan.Steps, Step{Kind: StepDefine, Type: id})
	if o.in.IsTagBearing(id) {
		o.visible[id] = true
	}
	o.state[id] = done
	o.stack = o.stack[:len(o.stack)-1]
	return nil
}

// selfVisible reports whether a definition makes its own tag visible to its
// members. A tagged union emits its payload union before the struct, so a
// self pointer inside a variant still needs a forward declaration.
func selfVisible(in *types.Interner, id types.TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	return tt.Kind != types.KindTaggedUnion
}

func (o *orderer) chain(to types.TypeID) []string {
	start := 0
	for i, id := range o.stack {
		if id == to {
			start = i
			break
		}
	}
	out := make([]string, 0, len(o.stack)-start+1)
	for _, id := range o.stack[start:] {
		out = append(out, types.Label(o.in, id))
	}
	return append(out, types.Label(o.in, to))
}

func (o *orderer) cycle(to types.TypeID) error {
	return diag.Cycle(o.res.Origin[to], o.chain(to)).At(len(o.plan.Steps))
}

func (o *orderer) badTag(to types.TypeID) error {
	tt, _ := o.in.Lookup(to)
	return diag.BadTag(o.res.Origin[to], o.chain(to),
		tt.Kind.String()+" cannot be forward declared").At(len(o.plan.Steps))
}
