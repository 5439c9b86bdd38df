package disasm

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"

	x64 "github.com/wdamron/x64dis"
)

// Mismatch is an instruction whose length disagrees with the x86asm decoder.
type Mismatch struct {
	Offset  int
	Raw     []byte
	Text    string
	RefText string // x86asm rendering in Intel syntax, or its decoding error
	RefLen  int
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%#x: % x: %s (%d bytes), x86asm: %s (%d bytes)", m.Offset, m.Raw, m.Text, len(m.Raw), m.RefText, m.RefLen)
}

// Cross-check the length of every implemented instruction in code against golang.org/x/arch.
// Placeholders for unrecognized opcodes are skipped. x86asm only reads little-endian code.
func Verify(code []byte, order x64.ByteOrder) ([]Mismatch, error) {
	var mismatches []Mismatch
	d := x64.NewDecoder(code, order)
	for d.Next() {
		inst := d.Inst()
		if inst.Unimplemented() {
			continue
		}
		off := d.Offset() - inst.Len
		ref, err := x86asm.Decode(code[off:], 64)
		switch {
		case err != nil:
			mismatches = append(mismatches, Mismatch{Offset: off, Raw: inst.Raw, Text: inst.String(), RefText: err.Error()})
		case ref.Len != inst.Len:
			mismatches = append(mismatches, Mismatch{
				Offset:  off,
				Raw:     inst.Raw,
				Text:    inst.String(),
				RefText: x86asm.IntelSyntax(ref, uint64(off), nil),
				RefLen:  ref.Len,
			})
		}
	}
	return mismatches, d.Err()
}
