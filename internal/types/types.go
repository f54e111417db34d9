package types

import "fmt"

// TypeID uniquely identifies a type node inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates every type node variant of the graph.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindPrimitive
	KindPointer
	KindArray
	KindMultiArray
	KindFn
	KindStruct
	KindUnion
	KindTaggedUnion
	KindEnum
	KindSlice
	KindDynArray
	KindMap
	KindBitSet
	KindBitField
	KindAlias
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindPrimitive:
		return "primitive"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindMultiArray:
		return "multi_array"
	case KindFn:
		return "proc"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindTaggedUnion:
		return "tagged_union"
	case KindEnum:
		return "enum"
	case KindSlice:
		return "slice"
	case KindDynArray:
		return "dynamic_array"
	case KindMap:
		return "map"
	case KindBitSet:
		return "bit_set"
	case KindBitField:
		return "bit_field"
	case KindAlias:
		return "alias"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// PrimClass selects the C spelling family of a primitive.
type PrimClass uint8

const (
	PrimInvalid PrimClass = iota
	PrimInt
	PrimUint
	PrimFloat
	PrimBool
	PrimVoid
	PrimChar
	PrimCString
	PrimRawPtr
	PrimSize    // signed, pointer sized
	PrimUsize   // unsigned, pointer sized
	PrimUintptr // unsigned, pointer sized integer handle
)

func (c PrimClass) String() string {
	switch c {
	case PrimInt:
		return "int"
	case PrimUint:
		return "uint"
	case PrimFloat:
		return "float"
	case PrimBool:
		return "bool"
	case PrimVoid:
		return "void"
	case PrimChar:
		return "char"
	case PrimCString:
		return "cstring"
	case PrimRawPtr:
		return "rawptr"
	case PrimSize:
		return "size"
	case PrimUsize:
		return "usize"
	case PrimUintptr:
		return "uintptr"
	default:
		return "invalid"
	}
}

// Signed reports whether values of the class carry a sign.
func (c PrimClass) Signed() bool {
	return c == PrimInt || c == PrimSize || c == PrimFloat
}

// Integer reports whether the class is an integer class.
func (c PrimClass) Integer() bool {
	switch c {
	case PrimInt, PrimUint, PrimSize, PrimUsize, PrimUintptr, PrimChar:
		return true
	default:
		return false
	}
}

// Width captures the bit precision of numeric primitives.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
	Width128 Width = 128
)

// Type is a compact descriptor for any type node. Variable sized metadata
// (fields, members, parameters, dimensions) lives in side tables addressed
// by Payload.
type Type struct {
	Kind  Kind
	Class PrimClass // primitives
	Width Width     // primitives
	Name  string    // foreign spelling of a primitive, used for derived labels
	Elem  TypeID    // pointer target, element, map key
	Value TypeID    // map value
	Count uint32    // fixed array length

	Payload uint32
}

// Descriptor helpers ---------------------------------------------------------

// MakePrimitive describes a primitive with its foreign spelling.
func MakePrimitive(name string, class PrimClass, width Width) Type {
	return Type{Kind: KindPrimitive, Name: name, Class: class, Width: width}
}

// MakePointer describes a raw pointer.
func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem}
}

// MakeArray describes a fixed array of count elements.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeSlice describes a {data, length} view.
func MakeSlice(elem TypeID) Type {
	return Type{Kind: KindSlice, Elem: elem}
}

// MakeDynArray describes a growable {data, length, capacity, allocator} array.
func MakeDynArray(elem TypeID) Type {
	return Type{Kind: KindDynArray, Elem: elem}
}

// MakeMap describes an opaque map handle.
func MakeMap(key, value TypeID) Type {
	return Type{Kind: KindMap, Elem: key, Value: value}
}
