// Package graphfile reads and writes serialized type graphs and builds
// them into an interner and a symbol table.
package graphfile

// Document is the on-disk form of one foreign package: a node arena plus
// the exported symbols. Node references are 1-based indices into Types;
// 0 means none.
type Document struct {
	Package   string  `json:"package"`
	Allocator int     `json:"allocator,omitempty"`
	Types     []Node  `json:"types"`
	Symbols   Symbols `json:"symbols"`
}

// Node describes one type node. Which fields matter depends on Kind,
// spelled as types.Kind.String() ("struct", "proc", "bit_set", ...).
type Node struct {
	Kind string `json:"kind"`
	// Name is the nominal name, or the foreign spelling of a primitive.
	// Nominal kinds without a name are anonymous.
	Name  string `json:"name,omitempty"`
	Class string `json:"class,omitempty"`
	Width int    `json:"width,omitempty"`

	Elem  int      `json:"elem,omitempty"`
	Key   int      `json:"key,omitempty"`
	Value int      `json:"value,omitempty"`
	Count uint32   `json:"count,omitempty"`
	Dims  []uint32 `json:"dims,omitempty"`

	Fields   []Field  `json:"fields,omitempty"`
	Tag      int      `json:"tag,omitempty"`
	Variants []int    `json:"variants,omitempty"`
	Base     int      `json:"base,omitempty"`
	Members  []Member `json:"members,omitempty"`
	Params   []Field  `json:"params,omitempty"`
	Result   int      `json:"result,omitempty"`
	Lo       int64    `json:"lo,omitempty"`
	Hi       int64    `json:"hi,omitempty"`
	Backing  int      `json:"backing,omitempty"`
	Target   int      `json:"target,omitempty"`
}

// Field is a named reference.
type Field struct {
	Name string `json:"name,omitempty"`
	Type int    `json:"type"`
}

// Member is one enum constant.
type Member struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Symbols lists the exported surface in declaration order.
type Symbols struct {
	Types     []Field    `json:"types,omitempty"`
	Constants []Constant `json:"constants,omitempty"`
	Variables []Variable `json:"variables,omitempty"`
	Functions []Function `json:"functions,omitempty"`
}

// Constant holds exactly one of the value fields, selected by Kind
// ("int", "float", "string", "bool" or "expr").
type Constant struct {
	Name  string  `json:"name"`
	Kind  string  `json:"kind"`
	Int   int64   `json:"int,omitempty"`
	Float float64 `json:"float,omitempty"`
	Str   string  `json:"str,omitempty"`
	Bool  bool    `json:"bool,omitempty"`
	Expr  string  `json:"expr,omitempty"`
	Type  int     `json:"type,omitempty"`
}

type Variable struct {
	Name     string `json:"name"`
	Type     int    `json:"type"`
	Platform string `json:"platform,omitempty"`
}

type Function struct {
	Name     string  `json:"name"`
	Params   []Field `json:"params,omitempty"`
	Results  []Field `json:"results,omitempty"`
	Platform string  `json:"platform,omitempty"`
}
