package driver

import (
	"context"
	"runtime"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"hdrgen/internal/config"
	"hdrgen/internal/graphfile"
	"hdrgen/internal/logger"
	"hdrgen/internal/symbols"
	"hdrgen/internal/types"
)

// Outcome reports what happened to one manifest header.
type Outcome struct {
	Header config.Header
	// Cached is set when the header came from the cache.
	Cached bool
	// Written is false when the output already had identical content.
	Written bool
	Result  *Result
}

// BatchOptions configures BuildAll.
type BatchOptions struct {
	// Jobs overrides the manifest's parallelism when positive.
	Jobs     int
	Cache    *HeaderCache
	Observer PhaseObserver
}

// BuildAll generates every header of the manifest in parallel. Runs share
// nothing; the first failure cancels the rest and is returned.
func BuildAll(ctx context.Context, m *config.Manifest, opts BatchOptions) ([]Outcome, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = m.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	outcomes := make([]Outcome, len(m.Headers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, h := range m.Headers {
		g.Go(func() error {
			out, err := buildOne(gctx, h, opts)
			if err != nil {
				return errors.Wrapf(err, "%s", h.Output)
			}
			outcomes[i] = *out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func buildOne(ctx context.Context, h config.Header, opts BatchOptions) (*Outcome, error) {
	eopts, err := h.Options.Emit()
	if err != nil {
		return nil, err
	}
	r := newRun(ctx, Options{Emit: eopts, Observer: opts.Observer})

	var (
		doc *graphfile.Document
		raw []byte
	)
	if err := r.phase(PhaseLoad, func() (string, error) {
		doc, raw, err = graphfile.ReadFile(h.Input)
		return "", err
	}); err != nil {
		return nil, err
	}

	key := CacheKey(raw, eopts)
	if hit, ok, err := opts.Cache.Get(key); err != nil {
		logger.Logger.Warnw("cache read failed", "output", h.Output, "error", err)
	} else if ok {
		written, err := WriteAtomic(h.Output, []byte(hit.Header))
		if err != nil {
			return nil, err
		}
		logger.Logger.Infow("cached", "output", h.Output, "written", written)
		return &Outcome{
			Header:  h,
			Cached:  true,
			Written: written,
			Result: &Result{
				Header:       hit.Header,
				Declarations: hit.Declarations,
				Forwards:     hit.Forwards,
				Timing:       r.timer.Report(),
			},
		}, nil
	}

	var (
		in   *types.Interner
		syms *symbols.Table
	)
	in, syms, err = graphfile.Build(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", h.Input)
	}
	res, err := r.generate(in, syms)
	if err != nil {
		return nil, err
	}
	written, err := WriteAtomic(h.Output, []byte(res.Header))
	if err != nil {
		return nil, err
	}
	if err := opts.Cache.Put(key, &CachedHeader{
		Input:        h.Input,
		Header:       res.Header,
		Declarations: res.Declarations,
		Forwards:     res.Forwards,
	}); err != nil {
		logger.Logger.Warnw("cache write failed", "output", h.Output, "error", err)
	}
	logger.Logger.Infow("generated", "output", h.Output, "decls", res.Declarations, "written", written)
	return &Outcome{Header: h, Written: written, Result: res}, nil
}
