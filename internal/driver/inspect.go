package driver

import (
	"fmt"
	"io"

	"hdrgen/internal/emit"
	"hdrgen/internal/names"
	"hdrgen/internal/order"
	"hdrgen/internal/resolve"
	"hdrgen/internal/symbols"
	"hdrgen/internal/types"
)

// Inspection is the intermediate state of a run, for debugging graphs.
type Inspection struct {
	types *types.Interner
	res   *resolve.Result
	plan  *order.Plan
	names *names.Table
}

// Inspect runs every stage up to naming.
func Inspect(in *types.Interner, syms *symbols.Table, opts emit.Options) (*Inspection, error) {
	res, err := resolve.ResolveFor(in, syms, opts.Platform)
	if err != nil {
		return nil, err
	}
	plan, err := order.Order(in, res)
	if err != nil {
		return nil, err
	}
	tab, err := names.Allocate(in, res, plan, syms, names.Options{
		Prefix:   opts.Prefix,
		Guard:    opts.Guard,
		Platform: opts.Platform,
	})
	if err != nil {
		return nil, err
	}
	return &Inspection{types: in, res: res, plan: plan, names: tab}, nil
}

// WriteTo prints the resolver partition, enum lowerings and the plan.
func (ins *Inspection) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	fmt.Fprintf(cw, "declared (%d):\n", len(ins.res.MustDeclare))
	for _, id := range ins.res.MustDeclare {
		tt := ins.types.MustLookup(id)
		fmt.Fprintf(cw, "  %-24s %-14s via %s", ins.names.TypeName(id), tt.Kind, ins.res.Origin[id])
		if l, ok := ins.res.Enums[id]; ok {
			fmt.Fprintf(cw, "  [%s]", l)
		}
		fmt.Fprintln(cw)
	}
	fmt.Fprintf(cw, "inline (%d):\n", len(ins.res.InlineOnly))
	for _, id := range ins.res.InlineOnly {
		fmt.Fprintf(cw, "  %s\n", types.Label(ins.types, id))
	}
	fmt.Fprintf(cw, "plan (%d steps, %d forward):\n", len(ins.plan.Steps), ins.plan.Forwards())
	for i, s := range ins.plan.Steps {
		fmt.Fprintf(cw, "  %3d %-7s %s\n", i, s.Kind, ins.names.TypeName(s.Type))
	}
	return cw.n, cw.err
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
