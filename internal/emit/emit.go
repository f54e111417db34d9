// Package emit renders a resolved, ordered and named type graph as a C
// header.
package emit

import (
	"strconv"

	"github.com/cockroachdb/errors"

	"hdrgen/internal/cdecl"
	"hdrgen/internal/diag"
	"hdrgen/internal/layout"
	"hdrgen/internal/names"
	"hdrgen/internal/order"
	"hdrgen/internal/resolve"
	"hdrgen/internal/symbols"
	"hdrgen/internal/types"
)

// Input bundles the results of the earlier stages.
type Input struct {
	Types    *types.Interner
	Symbols  *symbols.Table
	Resolved *resolve.Result
	Plan     *order.Plan
	Names    *names.Table
}

type emitter struct {
	in   Input
	opts Options
	syn  *cdecl.Synthesizer
	le   *layout.LayoutEngine
	pos  int
}

// Emit renders the header. The result is fully determined by the input
// and options; no partial text is returned on error.
func Emit(input Input, opts Options) (string, error) {
	if input.Types == nil || input.Resolved == nil || input.Plan == nil || input.Names == nil {
		return "", errors.New("emit: incomplete input")
	}
	if input.Symbols == nil {
		input.Symbols = &symbols.Table{}
	}
	e := &emitter{
		in:   input,
		opts: opts,
		syn:  cdecl.New(input.Types, input.Resolved, input.Names),
		pos:  -1,
	}
	if opts.SizeAsserts {
		target, err := layout.ForPointerWidth(opts.PointerWidth)
		if err != nil {
			return "", err
		}
		e.le = layout.New(target, input.Types)
		e.le.IntEnums = make(map[types.TypeID]bool)
		for id, l := range input.Resolved.Enums {
			if l == resolve.EnumNative {
				e.le.IntEnums[id] = true
			}
		}
	}

	body := &writer{}
	if err := e.constants(body); err != nil {
		return "", err
	}
	if err := e.declarations(body); err != nil {
		return "", err
	}
	e.pos = -1
	if err := e.variables(body); err != nil {
		return "", err
	}
	if err := e.functions(body); err != nil {
		return "", err
	}
	for _, m := range input.Names.Aliases {
		body.line(chunkAlias, "#define "+m.Name+" "+m.Target)
	}

	out := &writer{}
	e.prologue(out)
	out.chunks = append(out.chunks, body.chunks...)
	if opts.Guard != "" {
		out.line(chunkGuard, "#endif // "+opts.Guard)
	}
	return out.String(), nil
}

func (e *emitter) prologue(w *writer) {
	if e.opts.Guard == "" {
		w.line(chunkGuard, "#pragma once")
	} else {
		w.chunks = append(w.chunks, chunk{kind: chunkGuard, lines: []string{
			"#ifndef " + e.opts.Guard,
			"#define " + e.opts.Guard,
		}})
	}

	if e.syn.UsesSize() {
		w.line(chunkInclude, "#include <stddef.h>")
	}
	w.line(chunkInclude, "#include <stdint.h>")

	if !e.syn.UsesSSize() {
		return
	}
	switch e.opts.Platform {
	case symbols.PlatformWindows:
		w.block(chunkPlatform, []string{
			"#include <BaseTsd.h>",
			"typedef SSIZE_T ssize_t;",
		})
	case symbols.PlatformPosix:
		w.line(chunkInclude, "#include <sys/types.h>")
	default:
		w.block(chunkPlatform, []string{
			"#ifdef _MSC_VER",
			"#include <BaseTsd.h>",
			"typedef SSIZE_T ssize_t;",
			"#else",
			"#include <sys/types.h>",
			"#endif",
		})
	}
}

// fail converts a lower-level error into an UnsupportedConstruct
// diagnostic anchored at the current declaration.
func (e *emitter) fail(symbol string, id types.TypeID, err error) error {
	var de *diag.Error
	if errors.As(err, &de) {
		return err
	}
	chain := []string{types.Label(e.in.Types, id)}
	return diag.Unsupported(symbol, chain, err.Error()).At(e.pos)
}

func (e *emitter) variables(w *writer) error {
	var common, win, posix []string
	for _, v := range e.in.Symbols.Variables {
		if !names.Emitted(v.Platform, e.opts.Platform) {
			continue
		}
		d, err := e.syn.Declare(v.Type, e.in.Names.Symbol(v.Name), cdecl.QualNone)
		if err != nil {
			return e.fail(v.Name, v.Type, err)
		}
		line := "extern " + d.String() + ";"
		common, win, posix = sortPlatform(v.Platform, e.opts.Platform, line, common, win, posix)
	}
	e.platformGroup(w, chunkVariable, common, win, posix)
	return nil
}

func (e *emitter) functions(w *writer) error {
	var common, win, posix []string
	for _, fn := range e.in.Symbols.Functions {
		if !names.Emitted(fn.Platform, e.opts.Platform) {
			continue
		}
		params, err := e.syn.Params(fn.Params)
		if err != nil {
			return e.fail(fn.Name, fn.Return, err)
		}
		d, err := e.syn.Declare(fn.Return, e.in.Names.Symbol(fn.Name)+"("+params+")", cdecl.QualNone)
		if err != nil {
			return e.fail(fn.Name, fn.Return, err)
		}
		line := "extern " + d.String() + ";"
		common, win, posix = sortPlatform(fn.Platform, e.opts.Platform, line, common, win, posix)
	}
	e.platformGroup(w, chunkFunction, common, win, posix)
	return nil
}

// sortPlatform files a line under its conditional group. Targeted headers
// have no groups.
func sortPlatform(p, target symbols.Platform, line string, common, win, posix []string) ([]string, []string, []string) {
	switch {
	case target != symbols.PlatformAny || p == symbols.PlatformAny:
		common = append(common, line)
	case p == symbols.PlatformWindows:
		win = append(win, line)
	default:
		posix = append(posix, line)
	}
	return common, win, posix
}

func (e *emitter) platformGroup(w *writer, kind chunkKind, common, win, posix []string) {
	for _, l := range common {
		w.line(kind, l)
	}
	if len(win) == 0 && len(posix) == 0 {
		return
	}
	lines := make([]string, 0, len(win)+len(posix)+3)
	if len(win) == 0 {
		lines = append(lines, "#ifndef _WIN32")
		lines = append(lines, posix...)
		lines = append(lines, "#endif")
		w.block(kind, lines)
		return
	}
	lines = append(lines, "#ifdef _WIN32")
	lines = append(lines, win...)
	if len(posix) > 0 {
		lines = append(lines, "#else")
		lines = append(lines, posix...)
	}
	lines = append(lines, "#endif")
	w.block(kind, lines)
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
