package x64

import (
	"errors"
	"fmt"

	. "github.com/wdamron/x64dis/internal/flags"
)

// A Decoder decodes a sequence of instructions from a byte slice. The slice is borrowed; it must
// not be modified while the decoder is in use.
//
// Decoding stops at the end of the buffer, or at the first instruction which is cut off by the end
// of the buffer. Bytes which match no table entry decode as placeholder instructions and decoding
// continues after them.
//
//	d := x64.NewDecoder(code, x64.LittleEndian)
//	for d.Next() {
//		fmt.Println(d.Inst())
//	}
//	if err := d.Err(); err != nil {
//		...
//	}
type Decoder struct {
	table *Table
	c     Cursor
	order ByteOrder
	inst  Inst
	err   error
}

// Create a decoder using the built-in table.
func NewDecoder(code []byte, order ByteOrder) *Decoder { return defaultTable.NewDecoder(code, order) }

// Create a decoder using the table t.
func (t *Table) NewDecoder(code []byte, order ByteOrder) *Decoder {
	return &Decoder{table: t, c: Cursor{b: code}, order: order}
}

// Reset a decoder to decode a new buffer. The error will be cleared if one exists.
func (d *Decoder) Reset(code []byte) {
	d.c = Cursor{b: code}
	d.inst = Inst{}
	d.err = nil
}

// Decode the next instruction. Next returns false at the end of the buffer or after an error.
func (d *Decoder) Next() bool {
	if d.err != nil || d.c.AtEnd() {
		return false
	}
	start := d.c.Pos()
	inst, err := d.table.decode(&d.c, d.order)
	if err != nil {
		d.err = fmt.Errorf("decode instruction at offset %d: %w", start, err)
		d.inst = Inst{}
		return false
	}
	d.inst = inst
	return true
}

// Get the most recently decoded instruction.
func (d *Decoder) Inst() Inst { return d.inst }

// Get the error which stopped decoding, or nil if decoding stopped at the end of the buffer.
func (d *Decoder) Err() error { return d.err }

// Get the offset of the next instruction within the buffer.
func (d *Decoder) Offset() int { return d.c.Pos() }

// Decode all instructions in code with the built-in table. When decoding stops at a truncated
// instruction, the instructions decoded before it are returned with the error.
func Decode(code []byte, order ByteOrder) ([]Inst, error) {
	var insts []Inst
	d := NewDecoder(code, order)
	for d.Next() {
		insts = append(insts, d.Inst())
	}
	return insts, d.Err()
}

// Decode the first instruction in code with the built-in table.
func DecodeOne(code []byte, order ByteOrder) (Inst, error) {
	d := NewDecoder(code, order)
	if d.Next() {
		return d.Inst(), nil
	}
	if err := d.Err(); err != nil {
		return Inst{}, err
	}
	return Inst{}, fmt.Errorf("decode instruction at offset 0: %w", ErrTruncated)
}

// Decode one instruction at the cursor. On error, the cursor position is unspecified.
func (t *Table) decode(c *Cursor, order ByteOrder) (Inst, error) {
	start := c.Pos()
	var inst Inst
	inst.Prefix, inst.Rex = scanPrefixes(c)

	m, err := t.match(c, inst.Rex)
	if errors.Is(err, ErrUnrecognized) {
		inst.Len = c.Pos() - start
		inst.Raw = append([]byte(nil), c.b[start:c.Pos()]...)
		return inst, nil
	}
	if err != nil {
		return Inst{}, err
	}

	desc := m.desc
	inst.Desc, inst.Mnemonic = desc, desc.Mnemonic
	inst.Width = operandWidth(desc, inst.Prefix, inst.Rex)
	o := operands{c: c, order: order, p: inst.Prefix, rex: inst.Rex, width: inst.Width}

	if desc.Model.HasModRM() && !m.hasModRM {
		b, err := c.Take()
		if err != nil {
			return Inst{}, err
		}
		m.modrm = decodeModRM(b)
	}

	var args [2]Arg
	n := 0
	push := func(a Arg) {
		args[n] = a
		n++
	}
	reg := func() Reg { return o.reg(m.modrm.reg | rexBit(inst.Rex.R)) }
	opcodeReg := func() Reg { return o.reg(m.last&7 | rexBit(inst.Rex.B)) }

	switch desc.Model {
	case RegisterFromOpcode, RegisterFromOpcodeAndImmediate:
		push(opcodeReg())
	case RegisterField:
		push(reg())
	case RegisterAndRegMem:
		push(reg())
		fallthrough
	case RegMemField, RegMemAndImmediate:
		rm, err := o.regMem(m.modrm)
		if err != nil {
			return Inst{}, err
		}
		push(rm)
	case RegMemAndRegister:
		rm, err := o.regMem(m.modrm)
		if err != nil {
			return Inst{}, err
		}
		push(rm)
		push(reg())
	}

	if desc.Model.HasImm() {
		v, err := o.takeConst(immWidth(desc, inst.Width))
		if err != nil {
			return Inst{}, err
		}
		if desc.Model == Relative {
			push(Rel{v})
		} else {
			push(Imm{Const: v, Unsigned: hasFlag(desc.Flags, IMM_UNSIGNED)})
		}
	}

	if n > 0 {
		inst.Args = append([]Arg(nil), args[:n]...)
	}
	inst.Len = c.Pos() - start
	inst.Raw = append([]byte(nil), c.b[start:c.Pos()]...)
	return inst, nil
}
