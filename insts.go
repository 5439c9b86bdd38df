package x64

import (
	. "github.com/wdamron/x64dis/internal/flags"
)

type op = []byte

var aluOps = [...]struct {
	name string
	base byte
}{
	{"add", 0x00},
	{"or", 0x08},
	{"adc", 0x10},
	{"sbb", 0x18},
	{"and", 0x20},
	{"sub", 0x28},
	{"xor", 0x30},
	{"cmp", 0x38},
}

var (
	shiftGroup = [...]string{"rol", "ror", "rcl", "rcr", "shl", "shr", "", "sar"}
	unaryGroup = [...]string{"test", "", "not", "neg", "mul", "imul", "div", "idiv"}
)

// Descriptors for the built-in table, ordered by opcode.
func defaultDescs() []Desc {
	var descs []Desc
	add := func(d ...Desc) { descs = append(descs, d...) }

	for _, alu := range aluOps {
		add(
			Desc{op{alu.base + 0}, X, alu.name, RegMemAndRegister, 0, BYTE_OP},
			Desc{op{alu.base + 1}, X, alu.name, RegMemAndRegister, 0, DEFAULT},
			Desc{op{alu.base + 2}, X, alu.name, RegisterAndRegMem, 0, BYTE_OP},
			Desc{op{alu.base + 3}, X, alu.name, RegisterAndRegMem, 0, DEFAULT},
		)
	}

	add(
		Desc{op{0x50}, X, "push", RegisterFromOpcode, 0, SHORT_ARG | FIXED_64},
		Desc{op{0x58}, X, "pop", RegisterFromOpcode, 0, SHORT_ARG | FIXED_64},
		Desc{op{0x68}, X, "push", ImmediateOnly, 0, FIXED_64},
		Desc{op{0x6a}, X, "push", ImmediateOnly, 0, FIXED_64 | IMM8},
	)

	for cc := ConditionCode(0); cc < numConditionCC; cc++ {
		add(Desc{op{0x70 + byte(cc)}, X, Jcc(cc), Relative, 0, IMM8})
	}

	for ext, alu := range aluOps {
		add(Desc{op{0x80}, int8(ext), alu.name, RegMemAndImmediate, 0, BYTE_OP})
	}
	for ext, alu := range aluOps {
		add(Desc{op{0x81}, int8(ext), alu.name, RegMemAndImmediate, 0, DEFAULT})
	}
	// The sign-extended imm8 group defaults to 64-bit operands, so "83 f8 05" is "cmp rax, 0x5"
	// while the imm32 form "81 f8 ..." is "cmp eax, ...". 0x66 still selects 16-bit operands.
	for ext, alu := range aluOps {
		add(Desc{op{0x83}, int8(ext), alu.name, RegMemAndImmediate, 0, AUTO_NO32 | IMM8})
	}

	add(
		Desc{op{0x84}, X, "test", RegMemAndRegister, 0, BYTE_OP},
		Desc{op{0x85}, X, "test", RegMemAndRegister, 0, DEFAULT},
		Desc{op{0x86}, X, "xchg", RegMemAndRegister, 0, BYTE_OP},
		Desc{op{0x87}, X, "xchg", RegMemAndRegister, 0, DEFAULT},
		Desc{op{0x88}, X, "mov", RegMemAndRegister, 0, BYTE_OP},
		Desc{op{0x89}, X, "mov", RegMemAndRegister, 0, DEFAULT},
		Desc{op{0x8a}, X, "mov", RegisterAndRegMem, 0, BYTE_OP},
		Desc{op{0x8b}, X, "mov", RegisterAndRegMem, 0, DEFAULT},
		Desc{op{0x8d}, X, "lea", RegisterAndRegMem, 0, DEFAULT},
		Desc{op{0x8f}, 0, "pop", RegMemField, 0, FIXED_64},
		Desc{op{0x90}, X, "nop", NoOperands, 0, DEFAULT},
		Desc{op{0x98}, X, "cwde", NoOperands, -1, DEFAULT},
		Desc{op{0x98}, X, "cdqe", NoOperands, 1, DEFAULT},
		Desc{op{0x99}, X, "cdq", NoOperands, -1, DEFAULT},
		Desc{op{0x99}, X, "cqo", NoOperands, 1, DEFAULT},
		Desc{op{0xb0}, X, "mov", RegisterFromOpcodeAndImmediate, 0, SHORT_ARG | BYTE_OP},
		Desc{op{0xb8}, X, "mov", RegisterFromOpcodeAndImmediate, 0, SHORT_ARG | IMM_FULL},
	)

	for ext, name := range shiftGroup {
		if name != "" {
			add(Desc{op{0xc0}, int8(ext), name, RegMemAndImmediate, 0, BYTE_OP | IMM8})
		}
	}
	for ext, name := range shiftGroup {
		if name != "" {
			add(Desc{op{0xc1}, int8(ext), name, RegMemAndImmediate, 0, IMM8})
		}
	}

	add(
		Desc{op{0xc2}, X, "ret", ImmediateOnly, 0, IMM16 | IMM_UNSIGNED},
		Desc{op{0xc3}, X, "ret", NoOperands, 0, DEFAULT},
		Desc{op{0xc6}, 0, "mov", RegMemAndImmediate, 0, BYTE_OP},
		Desc{op{0xc7}, 0, "mov", RegMemAndImmediate, 0, DEFAULT},
		Desc{op{0xc9}, X, "leave", NoOperands, 0, DEFAULT},
		Desc{op{0xcc}, X, "int3", NoOperands, 0, DEFAULT},
		Desc{op{0xcd}, X, "int", ImmediateOnly, 0, IMM8 | IMM_UNSIGNED},
		Desc{op{0xe8}, X, "call", Relative, 0, DEFAULT},
		Desc{op{0xe9}, X, "jmp", Relative, 0, DEFAULT},
		Desc{op{0xeb}, X, "jmp", Relative, 0, IMM8},
		Desc{op{0xf4}, X, "hlt", NoOperands, 0, DEFAULT},
	)

	for ext, name := range unaryGroup {
		switch {
		case name == "":
		case ext == 0:
			add(Desc{op{0xf6}, int8(ext), name, RegMemAndImmediate, 0, BYTE_OP})
		default:
			add(Desc{op{0xf6}, int8(ext), name, RegMemField, 0, BYTE_OP})
		}
	}
	for ext, name := range unaryGroup {
		switch {
		case name == "":
		case ext == 0:
			add(Desc{op{0xf7}, int8(ext), name, RegMemAndImmediate, 0, DEFAULT})
		default:
			add(Desc{op{0xf7}, int8(ext), name, RegMemField, 0, DEFAULT})
		}
	}

	add(
		Desc{op{0xfe}, 0, "inc", RegMemField, 0, BYTE_OP},
		Desc{op{0xfe}, 1, "dec", RegMemField, 0, BYTE_OP},
		Desc{op{0xff}, 0, "inc", RegMemField, 0, DEFAULT},
		Desc{op{0xff}, 1, "dec", RegMemField, 0, DEFAULT},
		Desc{op{0xff}, 2, "call", RegMemField, 0, FIXED_64},
		Desc{op{0xff}, 4, "jmp", RegMemField, 0, FIXED_64},
		Desc{op{0xff}, 6, "push", RegMemField, 0, FIXED_64},
	)
	return descs
}
