package x64

import "errors"

// ErrUnrecognized is the internal result of matching bytes which select no descriptor. The
// decoder turns it into a placeholder instruction; it is never returned by Next.
var ErrUnrecognized = errors.New("unrecognized opcode")

// ModR/M byte fields
type modRM struct {
	mod, reg, rm uint8
}

func decodeModRM(b byte) modRM {
	return modRM{mod: b >> 6, reg: (b >> 3) & 7, rm: b & 7}
}

// SIB byte fields
type sib struct {
	scale, index, base uint8
}

func decodeSIB(b byte) sib {
	return sib{scale: b >> 6, index: (b >> 3) & 7, base: b & 7}
}

// Result of matching opcode bytes against a table.
type match struct {
	desc     *Desc
	last     byte // final opcode byte, carrying the register number for SHORT_ARG
	modrm    modRM
	hasModRM bool // the ModR/M byte was consumed while disambiguating a group
}

// Match opcode bytes at the cursor.
//
// The trie is walked one byte at a time; a byte is consumed only when the current node has a
// child for it. The candidates at the final node are filtered by REX.W, then an opcode-extension
// group is resolved by reading the ModR/M byte and taking the first candidate whose extension
// equals its reg field.
//
// ErrUnrecognized is returned when no candidate survives; the cursor is left after the bytes
// consumed so far. Other errors wrap ErrTruncated.
func (t *Table) match(c *Cursor, rex Rex) (m match, err error) {
	b, err := c.Take()
	if err != nil {
		return m, err
	}
	m.last = b
	n := t.root.children[b]
	for n != nil && len(n.children) > 0 {
		next, ok := c.Peek()
		if !ok {
			break
		}
		child := n.children[next]
		if child == nil {
			break
		}
		c.i++
		m.last = next
		n = child
	}
	if n == nil || len(n.descs) == 0 {
		return m, ErrUnrecognized
	}

	var buf [16]*Desc
	cands := buf[:0]
	for _, di := range n.descs {
		d := &t.descs[di]
		switch {
		case d.Rexw > 0 && !rex.W:
		case d.Rexw < 0 && rex.W:
		default:
			cands = append(cands, d)
		}
	}
	switch {
	case len(cands) == 0:
		return m, ErrUnrecognized
	case len(cands) == 1 && cands[0].Ext < 0:
		m.desc = cands[0]
		return m, nil
	}

	mb, err := c.Take()
	if err != nil {
		return m, err
	}
	m.modrm, m.hasModRM = decodeModRM(mb), true
	for _, d := range cands {
		if d.Ext == int8(m.modrm.reg) {
			m.desc = d
			return m, nil
		}
	}
	return m, ErrUnrecognized
}
