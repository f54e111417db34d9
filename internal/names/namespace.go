package names

import (
	"hdrgen/internal/diag"
)

// Namespace is the single flat identifier space of a header: tags, typedef
// names, enum constants, macros and extern symbols.
type Namespace struct {
	owners map[string]string
	order  []string
}

// reserved spellings the emitter may produce on its own
var reserved = []string{
	"int8_t", "int16_t", "int32_t", "int64_t",
	"uint8_t", "uint16_t", "uint32_t", "uint64_t",
	"size_t", "ssize_t", "uintptr_t", "SSIZE_T",
}

// NewNamespace returns a namespace seeded with the standard typedef names.
func NewNamespace() *Namespace {
	ns := &Namespace{owners: make(map[string]string, 128)}
	for _, r := range reserved {
		ns.owners[r] = "standard type " + r
	}
	return ns
}

// Declare claims ident for owner. A second claim fails with NameCollision.
func (ns *Namespace) Declare(ident, owner string) error {
	if prev, ok := ns.owners[ident]; ok {
		return diag.Collision(ident, prev, owner)
	}
	ns.owners[ident] = owner
	ns.order = append(ns.order, ident)
	return nil
}

// Owner returns who declared ident.
func (ns *Namespace) Owner(ident string) (string, bool) {
	o, ok := ns.owners[ident]
	return o, ok
}

// Declared lists identifiers in declaration order, reserved names excluded.
func (ns *Namespace) Declared() []string {
	return append([]string(nil), ns.order...)
}
