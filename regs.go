package x64

import "fmt"

// Register families
const (
	REG_LEGACY   = iota
	REG_RIP      // IP, EIP, RIP
	REG_HIGHBYTE // AH, CH, DH, BH
)

// Reg is a register operand with a specific width and family. All registers have a number
// which distinguishes them within their family, with the exception of the IP/EIP/RIP registers.
//
// Reg implements Arg.
type Reg uint32

func (r Reg) isArg() {}

// Get the family for the register: REG_LEGACY, REG_RIP, or REG_HIGHBYTE.
func (r Reg) Family() uint8 { return uint8(r >> 8) }

// Get the number which distinguishes the register within its family. The IP/EIP/RIP registers
// have no meaningful number, so they will return 0.
func (r Reg) Num() uint8 { return uint8(r) & 0xf }

// Get the width of the register in bytes.
func (r Reg) Width() uint8 { return uint8(r>>16) & 0x1f }

// Check if the register is numbered 8 or higher.
func (r Reg) IsExtended() bool { return r.Num() > 7 }

func (r Reg) String() string {
	n := r.Num()
	switch r.Family() {
	case REG_RIP:
		switch r.Width() {
		case 2:
			return "ip"
		case 4:
			return "eip"
		}
		return "rip"
	case REG_HIGHBYTE:
		return highByteNames[n&3]
	case REG_LEGACY:
		if n > 7 {
			switch r.Width() {
			case 1:
				return fmt.Sprintf("r%db", n)
			case 2:
				return fmt.Sprintf("r%dw", n)
			case 4:
				return fmt.Sprintf("r%dd", n)
			}
			return fmt.Sprintf("r%d", n)
		}
		switch r.Width() {
		case 1:
			return byteNames[n]
		case 2:
			return wordNames[n]
		case 4:
			return "e" + wordNames[n]
		case 8:
			return "r" + wordNames[n]
		}
	}
	return fmt.Sprintf("Reg(%#x)", uint32(r))
}

var (
	wordNames     = [8]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"}
	byteNames     = [8]string{"al", "cl", "dl", "bl", "spl", "bpl", "sil", "dil"}
	highByteNames = [4]string{"ah", "ch", "dh", "bh"}
)

func makeReg(width, family, num uint8) Reg {
	return Reg(uint32(width)<<16 | uint32(family)<<8 | uint32(num&0xf))
}

// Get the general-purpose register numbered num (0..15) with the given width in bytes.
//
// Without an extension prefix, 8-bit registers 4..7 name the high bytes AH, CH, DH and BH.
func GPR(num, width uint8, rex bool) Reg {
	if width == 1 && !rex && num >= 4 && num < 8 {
		return makeReg(1, REG_HIGHBYTE, num-4)
	}
	return makeReg(width, REG_LEGACY, num)
}

// Registers
const (
	// 8-bit
	AH   Reg = Reg(1<<16 | REG_HIGHBYTE<<8 | 0)
	CH   Reg = Reg(1<<16 | REG_HIGHBYTE<<8 | 1)
	DH   Reg = Reg(1<<16 | REG_HIGHBYTE<<8 | 2)
	BH   Reg = Reg(1<<16 | REG_HIGHBYTE<<8 | 3)
	AL   Reg = Reg(1<<16 | REG_LEGACY<<8 | 0)
	CL   Reg = Reg(1<<16 | REG_LEGACY<<8 | 1)
	DL   Reg = Reg(1<<16 | REG_LEGACY<<8 | 2)
	BL   Reg = Reg(1<<16 | REG_LEGACY<<8 | 3)
	SPB  Reg = Reg(1<<16 | REG_LEGACY<<8 | 4)
	BPB  Reg = Reg(1<<16 | REG_LEGACY<<8 | 5)
	SIB  Reg = Reg(1<<16 | REG_LEGACY<<8 | 6)
	DIB  Reg = Reg(1<<16 | REG_LEGACY<<8 | 7)
	R8B  Reg = Reg(1<<16 | REG_LEGACY<<8 | 8)
	R15B Reg = Reg(1<<16 | REG_LEGACY<<8 | 15)

	// 16-bit
	AX   Reg = Reg(2<<16 | REG_LEGACY<<8 | 0)
	CX   Reg = Reg(2<<16 | REG_LEGACY<<8 | 1)
	DX   Reg = Reg(2<<16 | REG_LEGACY<<8 | 2)
	BX   Reg = Reg(2<<16 | REG_LEGACY<<8 | 3)
	SP   Reg = Reg(2<<16 | REG_LEGACY<<8 | 4)
	BP   Reg = Reg(2<<16 | REG_LEGACY<<8 | 5)
	SI   Reg = Reg(2<<16 | REG_LEGACY<<8 | 6)
	DI   Reg = Reg(2<<16 | REG_LEGACY<<8 | 7)
	R8W  Reg = Reg(2<<16 | REG_LEGACY<<8 | 8)
	R15W Reg = Reg(2<<16 | REG_LEGACY<<8 | 15)

	// 32-bit
	EAX  Reg = Reg(4<<16 | REG_LEGACY<<8 | 0)
	ECX  Reg = Reg(4<<16 | REG_LEGACY<<8 | 1)
	EDX  Reg = Reg(4<<16 | REG_LEGACY<<8 | 2)
	EBX  Reg = Reg(4<<16 | REG_LEGACY<<8 | 3)
	ESP  Reg = Reg(4<<16 | REG_LEGACY<<8 | 4)
	EBP  Reg = Reg(4<<16 | REG_LEGACY<<8 | 5)
	ESI  Reg = Reg(4<<16 | REG_LEGACY<<8 | 6)
	EDI  Reg = Reg(4<<16 | REG_LEGACY<<8 | 7)
	R8L  Reg = Reg(4<<16 | REG_LEGACY<<8 | 8)
	R15L Reg = Reg(4<<16 | REG_LEGACY<<8 | 15)

	// 64-bit
	RAX Reg = Reg(8<<16 | REG_LEGACY<<8 | 0)
	RCX Reg = Reg(8<<16 | REG_LEGACY<<8 | 1)
	RDX Reg = Reg(8<<16 | REG_LEGACY<<8 | 2)
	RBX Reg = Reg(8<<16 | REG_LEGACY<<8 | 3)
	RSP Reg = Reg(8<<16 | REG_LEGACY<<8 | 4)
	RBP Reg = Reg(8<<16 | REG_LEGACY<<8 | 5)
	RSI Reg = Reg(8<<16 | REG_LEGACY<<8 | 6)
	RDI Reg = Reg(8<<16 | REG_LEGACY<<8 | 7)
	R8  Reg = Reg(8<<16 | REG_LEGACY<<8 | 8)
	R9  Reg = Reg(8<<16 | REG_LEGACY<<8 | 9)
	R10 Reg = Reg(8<<16 | REG_LEGACY<<8 | 10)
	R11 Reg = Reg(8<<16 | REG_LEGACY<<8 | 11)
	R12 Reg = Reg(8<<16 | REG_LEGACY<<8 | 12)
	R13 Reg = Reg(8<<16 | REG_LEGACY<<8 | 13)
	R14 Reg = Reg(8<<16 | REG_LEGACY<<8 | 14)
	R15 Reg = Reg(8<<16 | REG_LEGACY<<8 | 15)

	// Instruction pointer.
	RIP Reg = Reg(8<<16 | REG_RIP<<8 | 0) // 64-bit
)
