package x64flags

// Flags
const (
	DEFAULT   uint32 = 0         // this instruction has default encoding: 32-bit, 16-bit with OPSIZE, 64-bit with REX.W
	SHORT_ARG uint32 = 1 << iota // a register argument is encoded in the last byte of the opcode

	// note: the first 3 in this block are mutually exclusive
	BYTE_OP   // operands are 8-bit
	AUTO_NO32 // 16 bit -> OPSIZE , 32-bit -> illegal, 64-bit -> None(x64)
	FIXED_64  // operands are 64-bit regardless of prefixes

	// note: the immediate flags are mutually exclusive; without one, the immediate is min(operand size, 4)
	IMM8     // the immediate is a byte
	IMM16    // the immediate is a word
	IMM_FULL // the immediate is as wide as the operand, including 64-bit

	IMM_UNSIGNED // the immediate is a count or vector number and is never negative
)

// Flags that select the operand size.
const SizeMask = BYTE_OP | AUTO_NO32 | FIXED_64

// Flags that select the immediate size.
const ImmMask = IMM8 | IMM16 | IMM_FULL

func FlagName(f uint32) string { return flagNames[f] }

// Names for all flags set in f, in bit order.
func FlagNames(f uint32) []string {
	var names []string
	for bit := uint32(1); bit != 0 && bit <= f; bit <<= 1 {
		if f&bit != 0 {
			names = append(names, flagNames[bit])
		}
	}
	return names
}

var flagNames = map[uint32]string{
	DEFAULT:   "DEFAULT",
	SHORT_ARG: "SHORT_ARG",
	BYTE_OP:   "BYTE_OP",
	AUTO_NO32: "AUTO_NO32",
	FIXED_64:  "FIXED_64",
	IMM8:      "IMM8",
	IMM16:     "IMM16",
	IMM_FULL:  "IMM_FULL",

	IMM_UNSIGNED: "IMM_UNSIGNED",
}
