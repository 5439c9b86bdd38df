package x64

import (
	"fmt"
	"strings"

	. "github.com/wdamron/x64dis/internal/flags"
)

func hasFlag(flags, flag uint32) bool { return flags&flag != 0 }

// OperandModel declares how many operands an instruction has and where each comes from.
type OperandModel uint8

const (
	NoOperands                     OperandModel = iota
	RegisterFromOpcode                          // r: low 3 bits of the final opcode byte
	RegisterField                               // r: ModR/M reg
	RegMemField                                 // r/m: ModR/M mod + rm
	ImmediateOnly                               // imm
	RegMemAndImmediate                          // r/m, imm
	RegisterAndRegMem                           // r, r/m
	RegMemAndRegister                           // r/m, r
	RegisterFromOpcodeAndImmediate              // r, imm
	Relative                                    // rel: displacement from the next instruction
)

var modelNames = [...]string{
	NoOperands:                     "NoOperands",
	RegisterFromOpcode:             "RegisterFromOpcode",
	RegisterField:                  "RegisterField",
	RegMemField:                    "RegMemField",
	ImmediateOnly:                  "ImmediateOnly",
	RegMemAndImmediate:             "RegMemAndImmediate",
	RegisterAndRegMem:              "RegisterAndRegMem",
	RegMemAndRegister:              "RegMemAndRegister",
	RegisterFromOpcodeAndImmediate: "RegisterFromOpcodeAndImmediate",
	Relative:                       "Relative",
}

func (m OperandModel) String() string {
	if int(m) < len(modelNames) {
		return modelNames[m]
	}
	return fmt.Sprintf("OperandModel(%d)", uint8(m))
}

// Check if operands of the model are encoded in a ModR/M byte.
func (m OperandModel) HasModRM() bool {
	switch m {
	case RegisterField, RegMemField, RegMemAndImmediate, RegisterAndRegMem, RegMemAndRegister:
		return true
	}
	return false
}

// Check if the model ends with an immediate or displacement read from the instruction stream.
func (m OperandModel) HasImm() bool {
	switch m {
	case ImmediateOnly, RegMemAndImmediate, RegisterFromOpcodeAndImmediate, Relative:
		return true
	}
	return false
}

func (m OperandModel) hasOpcodeReg() bool {
	return m == RegisterFromOpcode || m == RegisterFromOpcodeAndImmediate
}

// No opcode extension.
const X int8 = -1

// Desc describes one decodable instruction encoding.
type Desc struct {
	// 1-3 opcode bytes, excluding prefixes. With SHORT_ARG, the low 3 bits of the final byte
	// are zero in the pattern and carry a register number in the instruction stream.
	Opcode []byte

	// Required value of the ModR/M reg field for opcode-extension groups, or X.
	Ext int8

	Mnemonic string
	Model    OperandModel

	// 1: REX.W must be set, -1: REX.W must not be set, 0: either.
	Rexw int8

	// See package internal/flags.
	Flags uint32
}

func (d *Desc) String() string {
	var sb strings.Builder
	for i, b := range d.Opcode {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}
	if hasFlag(d.Flags, SHORT_ARG) {
		sb.WriteString("+r")
	}
	if d.Ext >= 0 {
		fmt.Fprintf(&sb, " /%d", d.Ext)
	}
	switch d.Rexw {
	case 1:
		sb.WriteString(" REX.W")
	case -1:
		sb.WriteString(" !REX.W")
	}
	fmt.Fprintf(&sb, " %s %s", d.Mnemonic, d.Model)
	if names := FlagNames(d.Flags &^ SHORT_ARG); len(names) > 0 {
		sb.WriteString(" ")
		sb.WriteString(strings.Join(names, "|"))
	}
	return sb.String()
}

// Inst is a decoded instruction. Raw is a private copy of the consumed bytes; an Inst holds
// no reference into the decoded buffer.
//
// An Inst with a nil Desc is a placeholder for bytes which matched no table entry.
type Inst struct {
	Mnemonic string
	Args     []Arg
	Len      int
	Raw      []byte
	Width    uint8 // resolved operand width in bytes; 0 for placeholders
	Prefix   Prefixes
	Rex      Rex
	Desc     *Desc
}

// Check if the instruction is a placeholder for an unrecognized opcode.
func (inst Inst) Unimplemented() bool { return inst.Desc == nil }

func (inst Inst) String() string { return Render(inst) }
