package emit

import (
	"strconv"

	"hdrgen/internal/cdecl"
	"hdrgen/internal/order"
	"hdrgen/internal/resolve"
	"hdrgen/internal/types"
)

const indent = "    "

func (e *emitter) declarations(w *writer) error {
	for pos, step := range e.in.Plan.Steps {
		e.pos = pos
		switch step.Kind {
		case order.StepForward:
			w.line(chunkForward, e.tagKeyword(step.Type)+" "+e.in.Names.TypeName(step.Type)+";")
		case order.StepDefine:
			if err := e.define(w, step.Type); err != nil {
				return e.fail(e.in.Resolved.Origin[step.Type], step.Type, err)
			}
		}
	}
	return nil
}

func (e *emitter) tagKeyword(id types.TypeID) string {
	if tt, ok := e.in.Types.Lookup(id); ok && tt.Kind == types.KindUnion {
		return "union"
	}
	return "struct"
}

func (e *emitter) define(w *writer, id types.TypeID) error {
	in := e.in.Types
	tt, _ := in.Lookup(id)
	name := e.in.Names.TypeName(id)

	switch tt.Kind {
	case types.KindStruct, types.KindUnion:
		fields := in.Fields(id)
		idents := e.in.Names.Fields(id)
		ms := make([]member, len(fields))
		for i, f := range fields {
			d, err := e.syn.Declare(f.Type, idents[i], cdecl.QualNone)
			if err != nil {
				return err
			}
			ms[i] = member{head: d.Head, body: d.Body}
		}
		return e.record(w, e.tagKeyword(id), name, ms, id)

	case types.KindTaggedUnion:
		return e.taggedUnion(w, id, name)

	case types.KindEnum:
		if e.in.Resolved.Enums[id] == resolve.EnumNative {
			e.nativeEnum(w, id, name)
			return nil
		}
		return e.macroEnum(w, id, name)

	case types.KindAlias:
		target, _ := in.AliasTarget(id)
		return e.typedef(w, target, name)

	case types.KindSlice:
		data, err := e.syn.Pointer(tt.Elem, "data", cdecl.QualNone)
		if err != nil {
			return err
		}
		e.syn.MarkSSize()
		return e.record(w, "struct", name, []member{
			{head: data.Head, body: data.Body},
			{head: "ssize_t", body: "length"},
		}, id)

	case types.KindDynArray:
		data, err := e.syn.Pointer(tt.Elem, "data", cdecl.QualNone)
		if err != nil {
			return err
		}
		alloc, err := e.allocator()
		if err != nil {
			return err
		}
		e.syn.MarkSSize()
		return e.record(w, "struct", name, []member{
			{head: data.Head, body: data.Body},
			{head: "ssize_t", body: "length"},
			{head: "ssize_t", body: "capacity"},
			alloc,
		}, id)

	case types.KindMap:
		alloc, err := e.allocator()
		if err != nil {
			return err
		}
		e.syn.MarkSize()
		return e.record(w, "struct", name, []member{
			{head: "size_t", body: "data"},
			{head: "size_t", body: "length"},
			alloc,
		}, id)

	case types.KindBitSet:
		info, _ := in.BitSetInfo(id)
		if info.Backing != types.NoTypeID {
			return e.typedef(w, info.Backing, name)
		}
		lo, hi, _ := in.BitRange(id)
		spelling, err := cdecl.Primitive(types.MakePrimitive("", types.PrimUint, types.BitSetWidth(lo, hi)))
		if err != nil {
			return err
		}
		w.line(chunkTypedef, "typedef "+spelling+" "+name+";")
		return nil

	case types.KindBitField:
		info, _ := in.BitFieldInfo(id)
		return e.typedef(w, info.Backing, name)
	}
	return nil
}

func (e *emitter) typedef(w *writer, target types.TypeID, name string) error {
	d, err := e.syn.Declare(target, name, cdecl.QualNone)
	if err != nil {
		return err
	}
	w.line(chunkTypedef, "typedef "+d.String()+";")
	return nil
}

func (e *emitter) allocator() (member, error) {
	alloc := e.in.Types.Allocator()
	if alloc == types.NoTypeID {
		return member{head: "void*", body: "allocator"}, nil
	}
	d, err := e.syn.Declare(alloc, "allocator", cdecl.QualNone)
	if err != nil {
		return member{}, err
	}
	return member{head: d.Head, body: d.Body}, nil
}

// record renders typedef struct X { ... } X; with an optional size check.
func (e *emitter) record(w *writer, keyword, name string, ms []member, id types.TypeID) error {
	lines := make([]string, 0, len(ms)+3)
	lines = append(lines, "typedef "+keyword+" "+name+" {")
	lines = append(lines, columns(ms, e.opts.Style, indent, ";")...)
	lines = append(lines, "} "+name+";")
	if e.le != nil && id != types.NoTypeID {
		size, err := e.le.SizeOf(id)
		if err != nil {
			return err
		}
		ref := keyword + " " + name
		lines = append(lines, "_Static_assert(sizeof("+ref+") == "+strconv.Itoa(size)+", \"unexpected size of "+ref+"\");")
	}
	w.block(chunkBlock, lines)
	return nil
}

func (e *emitter) taggedUnion(w *writer, id types.TypeID, name string) error {
	info, _ := e.in.Types.TaggedUnionInfo(id)
	idents := e.in.Names.Fields(id)
	values := make([]member, len(info.Variants))
	for i, v := range info.Variants {
		d, err := e.syn.Declare(v, idents[i], cdecl.QualNone)
		if err != nil {
			return err
		}
		values[i] = member{head: d.Head, body: d.Body}
	}
	valuesName := e.in.Names.Values(id)
	if err := e.record(w, "union", valuesName, values, types.NoTypeID); err != nil {
		return err
	}

	var tag member
	if info.Tag != types.NoTypeID {
		d, err := e.syn.Declare(info.Tag, "tag", cdecl.QualNone)
		if err != nil {
			return err
		}
		tag = member{head: d.Head, body: d.Body}
	} else {
		spelling, err := cdecl.Primitive(types.MakePrimitive("", types.PrimUint, types.TagWidth(len(info.Variants))))
		if err != nil {
			return err
		}
		tag = member{head: spelling, body: "tag"}
	}
	return e.record(w, "struct", name, []member{
		tag,
		{head: "union " + valuesName, body: "values"},
	}, id)
}

func (e *emitter) nativeEnum(w *writer, id types.TypeID, name string) {
	info, _ := e.in.Types.EnumInfo(id)
	idents := e.in.Names.Members(id)
	nameWidth, valueWidth := 0, 3
	if e.opts.Style == StyleAligned {
		for i, m := range info.Members {
			nameWidth = max(nameWidth, displayWidth(idents[i]))
			valueWidth = max(valueWidth, len(itoa(m.Value)))
		}
	}
	lines := make([]string, 0, len(info.Members)+2)
	lines = append(lines, "typedef enum "+name+" {")
	for i, m := range info.Members {
		if e.opts.Style == StyleAligned {
			lines = append(lines, indent+padRight(idents[i], nameWidth)+" = "+padLeft(itoa(m.Value), valueWidth)+",")
			continue
		}
		lines = append(lines, indent+idents[i]+" = "+itoa(m.Value)+",")
	}
	lines = append(lines, "} "+name+";")
	w.block(chunkBlock, lines)
}

func (e *emitter) macroEnum(w *writer, id types.TypeID, name string) error {
	info, _ := e.in.Types.EnumInfo(id)
	idents := e.in.Names.Members(id)
	nameWidth, valueWidth := 0, 2
	if e.opts.Style == StyleAligned {
		for i, m := range info.Members {
			nameWidth = max(nameWidth, displayWidth(idents[i]))
			valueWidth = max(valueWidth, len(itoa(m.Value)))
		}
	}
	lines := make([]string, 0, len(info.Members)+1)
	for i, m := range info.Members {
		if e.opts.Style == StyleAligned {
			lines = append(lines, "#define "+padRight(idents[i], nameWidth)+" (("+name+") "+padLeft(itoa(m.Value), valueWidth)+")")
			continue
		}
		lines = append(lines, "#define "+idents[i]+" (("+name+")"+itoa(m.Value)+")")
	}
	d, err := e.syn.Declare(info.Base, name, cdecl.QualNone)
	if err != nil {
		return err
	}
	lines = append(lines, "typedef "+d.String()+";")
	w.block(chunkBlock, lines)
	return nil
}
