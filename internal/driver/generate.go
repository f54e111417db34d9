// Package driver runs the generation pipeline over graph files and
// manifests.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"hdrgen/internal/config"
	"hdrgen/internal/emit"
	"hdrgen/internal/graphfile"
	"hdrgen/internal/logger"
	"hdrgen/internal/names"
	"hdrgen/internal/observ"
	"hdrgen/internal/order"
	"hdrgen/internal/resolve"
	"hdrgen/internal/symbols"
	"hdrgen/internal/types"
)

// Phase names reported to observers and timers.
const (
	PhaseLoad    = "load"
	PhaseResolve = "resolve"
	PhaseOrder   = "order"
	PhaseNames   = "names"
	PhaseEmit    = "emit"
)

// Options configures one run.
type Options struct {
	Emit     emit.Options
	Observer PhaseObserver
}

// Result is the output of one successful run.
type Result struct {
	Header       string
	Declarations int
	Forwards     int
	Timing       observ.Report
}

type run struct {
	ctx   context.Context
	opts  Options
	timer *observ.Timer
}

func newRun(ctx context.Context, opts Options) *run {
	return &run{ctx: ctx, opts: opts, timer: observ.NewTimer()}
}

// phase times fn and reports it. The note returned by fn ends up in the
// timing summary.
func (r *run) phase(name string, fn func() (string, error)) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	idx := r.timer.Begin(name)
	r.notify(PhaseEvent{Name: name, Status: PhaseStart})
	start := time.Now()
	note, err := fn()
	elapsed := time.Since(start)
	r.timer.End(idx, note)
	r.notify(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: elapsed, Err: err})
	logger.Logger.Debugw("phase", "name", name, "elapsed", elapsed, "note", note)
	return err
}

func (r *run) notify(ev PhaseEvent) {
	if r.opts.Observer != nil {
		r.opts.Observer(ev)
	}
}

// Generate renders the header for an already built graph.
func Generate(ctx context.Context, in *types.Interner, syms *symbols.Table, opts Options) (*Result, error) {
	r := newRun(ctx, opts)
	return r.generate(in, syms)
}

func (r *run) generate(in *types.Interner, syms *symbols.Table) (*Result, error) {
	var (
		res   *resolve.Result
		plan  *order.Plan
		tab   *names.Table
		out   string
		err   error
		eopts = r.opts.Emit
	)
	if err = r.phase(PhaseResolve, func() (string, error) {
		res, err = resolve.ResolveFor(in, syms, eopts.Platform)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d declared, %d inline", len(res.MustDeclare), len(res.InlineOnly)), nil
	}); err != nil {
		return nil, err
	}
	if err = r.phase(PhaseOrder, func() (string, error) {
		plan, err = order.Order(in, res)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d steps", len(plan.Steps)), nil
	}); err != nil {
		return nil, err
	}
	if err = r.phase(PhaseNames, func() (string, error) {
		tab, err = names.Allocate(in, res, plan, syms, names.Options{
			Prefix:   eopts.Prefix,
			Guard:    eopts.Guard,
			Platform: eopts.Platform,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d identifiers", len(tab.Namespace().Declared())), nil
	}); err != nil {
		return nil, err
	}
	if err = r.phase(PhaseEmit, func() (string, error) {
		out, err = emit.Emit(emit.Input{Types: in, Symbols: syms, Resolved: res, Plan: plan, Names: tab}, eopts)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d bytes", len(out)), nil
	}); err != nil {
		return nil, err
	}
	return &Result{
		Header:       out,
		Declarations: len(plan.Defined()),
		Forwards:     plan.Forwards(),
		Timing:       r.timer.Report(),
	}, nil
}

// GenerateFile loads the graph at path and renders it with opts.
func GenerateFile(ctx context.Context, path string, opts config.Options, observer PhaseObserver) (*Result, error) {
	eopts, err := opts.Emit()
	if err != nil {
		return nil, err
	}
	r := newRun(ctx, Options{Emit: eopts, Observer: observer})
	var (
		in   *types.Interner
		syms *symbols.Table
	)
	if err := r.phase(PhaseLoad, func() (string, error) {
		doc, _, err := graphfile.ReadFile(path)
		if err != nil {
			return "", err
		}
		in, syms, err = graphfile.Build(doc)
		if err != nil {
			return "", errors.Wrapf(err, "%s", path)
		}
		return fmt.Sprintf("%d nodes, %d symbols", len(doc.Types), syms.Len()), nil
	}); err != nil {
		return nil, err
	}
	return r.generate(in, syms)
}
