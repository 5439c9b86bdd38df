package x64

import (
	"errors"
	"fmt"

	. "github.com/wdamron/x64dis/internal/flags"
)

// ErrInvalidTableEntry is returned by NewTable when a descriptor can never be decoded
// unambiguously.
var ErrInvalidTableEntry = errors.New("invalid table entry")

// A trie node keyed by opcode byte. descs holds indexes into Table.descs in registration order.
type node struct {
	children map[byte]*node
	descs    []int
}

func (n *node) child(b byte) *node {
	if n.children == nil {
		n.children = make(map[byte]*node)
	}
	c := n.children[b]
	if c == nil {
		c = &node{}
		n.children[b] = c
	}
	return c
}

// Table is an immutable set of instruction descriptors indexed by opcode bytes. A Table may be
// shared by concurrent decoders.
type Table struct {
	descs []Desc
	root  node
}

// Create a table from descriptors in priority order. When several descriptors of an
// opcode-extension group match, the first registered wins.
func NewTable(descs []Desc) (*Table, error) {
	t := &Table{descs: make([]Desc, len(descs))}
	for i, d := range descs {
		if err := validateDesc(&d); err != nil {
			return nil, fmt.Errorf("%w: #%d (%s): %v", ErrInvalidTableEntry, i, &d, err)
		}
		d.Opcode = append([]byte(nil), d.Opcode...)
		t.descs[i] = d
	}
	for i := range t.descs {
		d := &t.descs[i]
		n := &t.root
		for _, b := range d.Opcode[:len(d.Opcode)-1] {
			n = n.child(b)
		}
		last := d.Opcode[len(d.Opcode)-1]
		if !hasFlag(d.Flags, SHORT_ARG) {
			n = n.child(last)
			n.descs = append(n.descs, i)
			continue
		}
		for r := byte(0); r < 8; r++ {
			c := n.child(last | r)
			c.descs = append(c.descs, i)
		}
	}
	if err := t.checkNode(&t.root, nil); err != nil {
		return nil, err
	}
	return t, nil
}

// Create a table from descriptors, or panic if any descriptor is invalid.
func MustNewTable(descs []Desc) *Table {
	t, err := NewTable(descs)
	if err != nil {
		panic(err)
	}
	return t
}

func validateDesc(d *Desc) error {
	switch {
	case len(d.Opcode) < 1 || len(d.Opcode) > 3:
		return fmt.Errorf("opcode length %d is not 1-3", len(d.Opcode))
	case d.Ext < -1 || d.Ext > 7:
		return fmt.Errorf("opcode extension %d is not in -1..7", d.Ext)
	case d.Ext >= 0 && !d.Model.HasModRM():
		return fmt.Errorf("opcode extension on %s, which has no ModR/M byte", d.Model)
	case d.Rexw < -1 || d.Rexw > 1:
		return fmt.Errorf("REX.W requirement %d is not in -1..1", d.Rexw)
	case d.Mnemonic == "":
		return errors.New("empty mnemonic")
	case int(d.Model) >= len(modelNames):
		return fmt.Errorf("unknown operand model %d", d.Model)
	}
	if hasFlag(d.Flags, SHORT_ARG) != d.Model.hasOpcodeReg() {
		return fmt.Errorf("SHORT_ARG does not agree with %s", d.Model)
	}
	if hasFlag(d.Flags, SHORT_ARG) && d.Opcode[len(d.Opcode)-1]&7 != 0 {
		return fmt.Errorf("SHORT_ARG opcode %#02x has register bits set", d.Opcode[len(d.Opcode)-1])
	}
	if d.Flags&(ImmMask|IMM_UNSIGNED) != 0 && !d.Model.HasImm() {
		return fmt.Errorf("immediate flag set on %s, which has no immediate", d.Model)
	}
	if hasFlag(d.Flags, IMM_UNSIGNED) && d.Model == Relative {
		return errors.New("IMM_UNSIGNED on a branch displacement")
	}
	if bits := d.Flags & SizeMask; bits&(bits-1) != 0 {
		return errors.New("conflicting operand size flags")
	}
	if bits := d.Flags & ImmMask; bits&(bits-1) != 0 {
		return errors.New("conflicting immediate size flags")
	}
	return nil
}

func rexwOverlap(a, b int8) bool { return a == 0 || b == 0 || a == b }

func (t *Table) checkNode(n *node, path []byte) error {
	if len(n.descs) > 0 && len(n.children) > 0 {
		d := &t.descs[n.descs[0]]
		return fmt.Errorf("%w: %s: opcode % x is a prefix of a longer opcode", ErrInvalidTableEntry, d, path)
	}
	for i, ai := range n.descs {
		a := &t.descs[ai]
		for _, bi := range n.descs[i+1:] {
			b := &t.descs[bi]
			if !rexwOverlap(a.Rexw, b.Rexw) {
				continue
			}
			if a.Ext < 0 || b.Ext < 0 {
				return fmt.Errorf("%w: %s: ambiguous with %s at opcode % x", ErrInvalidTableEntry, b, a, path)
			}
		}
	}
	for b, c := range n.children {
		if err := t.checkNode(c, append(path[:len(path):len(path)], b)); err != nil {
			return err
		}
	}
	return nil
}

// Get all descriptors in registration order. The result must not be modified.
func (t *Table) Descs() []Desc { return t.descs }

// Get the descriptors registered at exactly the given opcode path, in registration order.
func (t *Table) Lookup(opcode ...byte) []*Desc {
	n := &t.root
	for _, b := range opcode {
		if n = n.children[b]; n == nil {
			return nil
		}
	}
	descs := make([]*Desc, len(n.descs))
	for i, di := range n.descs {
		descs[i] = &t.descs[di]
	}
	return descs
}

var defaultTable = MustNewTable(defaultDescs())

// Get the built-in table covering the common one-byte opcode map.
func DefaultTable() *Table { return defaultTable }
