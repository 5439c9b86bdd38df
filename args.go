package x64

import (
	"fmt"
	"strings"
)

// Arg represents a decoded instruction operand.
//
// Any Reg, Mem, Imm, or Rel value implements Arg.
type Arg interface {
	isArg()
	String() string
}

var _ Arg = Reg(0)
var _ Arg = Mem{}
var _ Arg = Imm{}
var _ Arg = Rel{}

// Const is a constant read from the instruction stream, interpreted as a two's-complement
// integer of Width bytes. The sign is taken from the most-significant bit of Width, never
// from the width of Value.
type Const struct {
	Value uint64
	Width uint8
}

func (c Const) mask() uint64 {
	if c.Width >= 8 {
		return ^uint64(0)
	}
	return 1<<(8*uint(c.Width)) - 1
}

// Check if the constant is negative when read as a Width-byte signed integer.
func (c Const) Negative() bool {
	if c.Width == 0 {
		return false
	}
	return (c.Value>>(8*uint(c.Width)-1))&1 != 0
}

// Get the sign-extended value.
func (c Const) Int64() int64 {
	v := c.Value & c.mask()
	if c.Negative() {
		v |= ^c.mask()
	}
	return int64(v)
}

// Get the absolute value. The most negative 8-byte value has magnitude 1<<63.
func (c Const) Magnitude() uint64 {
	if c.Negative() {
		return -uint64(c.Int64())
	}
	return c.Value & c.mask()
}

func (c Const) String() string {
	if c.Negative() {
		return fmt.Sprintf("-%#x", c.Magnitude())
	}
	return fmt.Sprintf("%#x", c.Magnitude())
}

// Segment is a segment-override selection from a legacy prefix.
type Segment uint8

const (
	SegNone Segment = iota
	SegCS
	SegSS
	SegDS
	SegES
	SegFS
	SegGS
)

var segmentNames = [...]string{"", "cs", "ss", "ds", "es", "fs", "gs"}

func (s Segment) String() string {
	if int(s) < len(segmentNames) {
		return segmentNames[s]
	}
	return fmt.Sprintf("Segment(%d)", uint8(s))
}

// Mem is a memory-reference operand. Base may be RIP for RIP-relative addressing. A zero Base or
// Index means the register is absent.
//
// Mem implements Arg.
type Mem struct {
	Segment Segment
	Base    Reg
	Index   Reg
	Scale   uint8 // 1, 2, 4 or 8 when Index is present
	Disp    Const

	// The addressing mode encodes a displacement even when it is zero (no base, or RIP-relative).
	DispRequired bool
}

func (m Mem) isArg() {}

func (m Mem) String() string {
	var sb strings.Builder
	if m.Segment != SegNone {
		sb.WriteString(m.Segment.String())
		sb.WriteByte(':')
	}
	sb.WriteByte('[')
	terms := 0
	if m.Base != 0 {
		sb.WriteString(m.Base.String())
		terms++
	}
	if m.Index != 0 {
		if terms > 0 {
			sb.WriteString(" + ")
		}
		sb.WriteString(m.Index.String())
		if m.Scale > 1 {
			fmt.Fprintf(&sb, "*%d", m.Scale)
		}
		terms++
	}
	if m.Disp.Magnitude() != 0 || m.DispRequired {
		switch {
		case terms == 0:
			sb.WriteString(m.Disp.String())
		case m.Disp.Negative():
			fmt.Fprintf(&sb, " - %#x", m.Disp.Magnitude())
		default:
			fmt.Fprintf(&sb, " + %#x", m.Disp.Magnitude())
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// Imm is an immediate operand.
//
// Imm implements Arg.
type Imm struct {
	Const
	Unsigned bool // rendered without a sign, e.g. the vector of int or the byte count of ret
}

func (i Imm) isArg() {}

func (i Imm) String() string {
	if i.Unsigned {
		return fmt.Sprintf("%#x", i.Value&i.mask())
	}
	return i.Const.String()
}

// Rel is a branch displacement relative to the address of the next instruction.
//
// Rel implements Arg.
type Rel struct{ Const }

func (r Rel) isArg() {}

// Get the absolute branch target for an instruction at pc with length n.
func (r Rel) Target(pc uint64, n int) uint64 {
	return pc + uint64(n) + uint64(r.Int64())
}
