package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Label returns a readable label for a TypeID, used in error chains.
func Label(typesIn *Interner, id TypeID) string {
	return labelDepth(typesIn, id, 0)
}

func labelDepth(typesIn *Interner, id TypeID, depth int) string {
	if id == NoTypeID {
		return "void"
	}
	if depth > 6 {
		return "..."
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		return "?"
	}
	if name := typesIn.Name(id); name != "" {
		return name
	}
	switch tt.Kind {
	case KindPrimitive:
		if tt.Name != "" {
			return tt.Name
		}
		return formatPrimitive(tt)
	case KindPointer:
		return "^" + labelDepth(typesIn, tt.Elem, depth+1)
	case KindArray:
		return fmt.Sprintf("[%d]%s", tt.Count, labelDepth(typesIn, tt.Elem, depth+1))
	case KindMultiArray:
		dims, _ := typesIn.ArrayDims(id)
		var sb strings.Builder
		for _, d := range dims {
			sb.WriteString("[" + strconv.FormatUint(uint64(d), 10) + "]")
		}
		return sb.String() + labelDepth(typesIn, tt.Elem, depth+1)
	case KindSlice:
		return "[]" + labelDepth(typesIn, tt.Elem, depth+1)
	case KindDynArray:
		return "[dynamic]" + labelDepth(typesIn, tt.Elem, depth+1)
	case KindMap:
		return "map[" + labelDepth(typesIn, tt.Elem, depth+1) + "]" + labelDepth(typesIn, tt.Value, depth+1)
	case KindFn:
		info, ok := typesIn.FnInfo(id)
		if !ok {
			return "proc(?)"
		}
		parts := make([]string, len(info.Params))
		for i, p := range info.Params {
			parts[i] = labelDepth(typesIn, p.Type, depth+1)
		}
		out := "proc(" + strings.Join(parts, ", ") + ")"
		if info.Result != NoTypeID {
			out += " -> " + labelDepth(typesIn, info.Result, depth+1)
		}
		return out
	case KindStruct, KindUnion:
		fields := typesIn.Fields(id)
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = f.Name
		}
		return tt.Kind.String() + "{" + strings.Join(parts, ", ") + "}"
	case KindTaggedUnion:
		info, _ := typesIn.TaggedUnionInfo(id)
		parts := make([]string, 0, 4)
		if info != nil {
			for _, v := range info.Variants {
				parts = append(parts, labelDepth(typesIn, v, depth+1))
			}
		}
		return "union{" + strings.Join(parts, ", ") + "}"
	case KindEnum:
		info, _ := typesIn.EnumInfo(id)
		parts := make([]string, 0, 4)
		if info != nil {
			for _, m := range info.Members {
				parts = append(parts, m.Name)
			}
		}
		return "enum{" + strings.Join(parts, ", ") + "}"
	case KindBitSet:
		info, _ := typesIn.BitSetInfo(id)
		if info == nil {
			return "bit_set[?]"
		}
		if info.Elem != NoTypeID {
			return "bit_set[" + labelDepth(typesIn, info.Elem, depth+1) + "]"
		}
		return fmt.Sprintf("bit_set[%d..%d]", info.Lo, info.Hi)
	case KindBitField:
		info, _ := typesIn.BitFieldInfo(id)
		if info == nil {
			return "bit_field ?"
		}
		return "bit_field " + labelDepth(typesIn, info.Backing, depth+1)
	default:
		return tt.Kind.String()
	}
}

func formatPrimitive(tt Type) string {
	switch tt.Class {
	case PrimInt:
		return "i" + strconv.Itoa(int(tt.Width))
	case PrimUint:
		return "u" + strconv.Itoa(int(tt.Width))
	case PrimFloat:
		return "f" + strconv.Itoa(int(tt.Width))
	default:
		return tt.Class.String()
	}
}
