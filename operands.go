package x64

import (
	. "github.com/wdamron/x64dis/internal/flags"
)

// Resolve the operand width in bytes. A fixed width from the table takes priority, then REX.W,
// then the operand-size prefix.
func operandWidth(d *Desc, p Prefixes, rex Rex) uint8 {
	switch {
	case hasFlag(d.Flags, FIXED_64):
		return 8
	case hasFlag(d.Flags, BYTE_OP):
		return 1
	case rex.W:
		return 8
	case p.OpSize16:
		return 2
	case hasFlag(d.Flags, AUTO_NO32):
		return 8
	}
	return 4
}

// Resolve the width of the immediate for an instruction with the given operand width.
func immWidth(d *Desc, width uint8) uint8 {
	switch {
	case hasFlag(d.Flags, IMM8):
		return 1
	case hasFlag(d.Flags, IMM16):
		return 2
	case hasFlag(d.Flags, IMM_FULL):
		return width
	case d.Model == Relative:
		return 4
	case width > 4:
		return 4
	}
	return width
}

// Operand decoding state for one instruction.
type operands struct {
	c     *Cursor
	order ByteOrder
	p     Prefixes
	rex   Rex
	width uint8
}

func (o *operands) takeConst(width uint8) (Const, error) {
	v, err := o.c.TakeInt(int(width), o.order)
	if err != nil {
		return Const{}, err
	}
	return Const{Value: v, Width: width}, nil
}

func (o *operands) reg(num uint8) Reg {
	return GPR(num, o.width, o.rex.Present)
}

// Decode the r/m operand selected by a ModR/M byte, consuming the SIB byte and displacement.
func (o *operands) regMem(m modRM) (Arg, error) {
	if m.mod == 3 {
		return o.reg(m.rm | rexBit(o.rex.B)), nil
	}

	mem := Mem{Segment: o.p.Segment}
	var err error
	switch {
	case m.mod == 0 && m.rm == 5:
		mem.Base, mem.DispRequired = RIP, true
		mem.Disp, err = o.takeConst(4)
		return mem, err
	case m.rm == 4:
		var b byte
		if b, err = o.c.Take(); err != nil {
			return nil, err
		}
		s := decodeSIB(b)
		if index := s.index | rexBit(o.rex.X); index != 4 {
			mem.Index, mem.Scale = GPR(index, 8, true), 1<<s.scale
		}
		if s.base == 5 && m.mod == 0 {
			mem.DispRequired = true
			mem.Disp, err = o.takeConst(4)
			return mem, err
		}
		mem.Base = GPR(s.base|rexBit(o.rex.B), 8, true)
	default:
		mem.Base = GPR(m.rm|rexBit(o.rex.B), 8, true)
	}

	switch m.mod {
	case 1:
		mem.Disp, err = o.takeConst(1)
	case 2:
		mem.Disp, err = o.takeConst(4)
	}
	if err != nil {
		return nil, err
	}
	return mem, nil
}
