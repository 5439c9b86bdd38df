package x64

import (
	"fmt"
	"strings"
)

// Render an instruction in Intel syntax, e.g. "mov rax, [rip + 0x10]". Branch displacements are
// shown relative to the next instruction. Placeholders render as "unimplemented: " followed by
// the consumed bytes in hex.
func Render(inst Inst) string {
	if inst.Unimplemented() {
		return renderUnimplemented(inst)
	}
	var sb strings.Builder
	sb.WriteString(inst.Mnemonic)
	for i, a := range inst.Args {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	return sb.String()
}

// Render an instruction located at address pc. Branch targets are shown as absolute addresses
// and RIP-relative memory operands are followed by a comment holding the effective address.
func RenderAt(inst Inst, pc uint64) string {
	if inst.Unimplemented() {
		return renderUnimplemented(inst)
	}
	var sb strings.Builder
	sb.WriteString(inst.Mnemonic)
	var comment uint64
	hasComment := false
	for i, a := range inst.Args {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		switch a := a.(type) {
		case Rel:
			fmt.Fprintf(&sb, "%#x", a.Target(pc, inst.Len))
		case Mem:
			sb.WriteString(a.String())
			if a.Base == RIP && a.Index == 0 {
				comment, hasComment = pc+uint64(inst.Len)+uint64(a.Disp.Int64()), true
			}
		default:
			sb.WriteString(a.String())
		}
	}
	if hasComment {
		fmt.Fprintf(&sb, " # %#x", comment)
	}
	return sb.String()
}

func renderUnimplemented(inst Inst) string {
	var sb strings.Builder
	sb.WriteString("unimplemented:")
	for _, b := range inst.Raw {
		fmt.Fprintf(&sb, " %02x", b)
	}
	return sb.String()
}
