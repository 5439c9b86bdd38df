// Package elftest builds small ELF executables for tests.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
)

type Sym struct {
	Name  string
	Value uint64
	Size  uint64
	Info  uint8
	Shndx uint16
}

// ELF describes a minimal executable: one PT_LOAD program header and the sections
// null, .text, .bss, .symtab, .strtab, .shstrtab.
type ELF struct {
	Class    elf.Class
	Order    binary.ByteOrder
	Machine  elf.Machine
	TextAddr uint64
	Code     []byte
	Syms     []Sym
}

// Section indexes
const (
	Text     = 1
	BSS      = 2
	Symtab   = 3
	Strtab   = 4
	Shstrtab = 5
)

const BSSAddr = 0x600000

type writer struct {
	bytes.Buffer
	order binary.ByteOrder
	is64  bool
}

func (w *writer) u8(v uint8) { w.WriteByte(v) }

func (w *writer) u16(v uint16) {
	var b [2]byte
	w.order.PutUint16(b[:], v)
	w.Write(b[:])
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	w.Write(b[:])
}

func (w *writer) u64(v uint64) {
	var b [8]byte
	w.order.PutUint64(b[:], v)
	w.Write(b[:])
}

func (w *writer) word(v uint64) {
	if w.is64 {
		w.u64(v)
	} else {
		w.u32(uint32(v))
	}
}

func (w *writer) pad(off int) {
	for w.Len() < off {
		w.WriteByte(0)
	}
}

func align8(n int) int { return (n + 7) &^ 7 }

func (e *ELF) Build() []byte {
	w := &writer{order: e.Order, is64: e.Class == elf.ELFCLASS64}
	ehsize, phentsize, shentsize, symsize := 52, 32, 40, 16
	if w.is64 {
		ehsize, phentsize, shentsize, symsize = 64, 56, 64, 24
	}

	strtab := []byte{0}
	nameOffs := make([]uint32, len(e.Syms))
	for i, s := range e.Syms {
		nameOffs[i] = uint32(len(strtab))
		strtab = append(append(strtab, s.Name...), 0)
	}
	shstrtab := []byte{0}
	var shnames []uint32
	for _, name := range []string{".text", ".bss", ".symtab", ".strtab", ".shstrtab"} {
		shnames = append(shnames, uint32(len(shstrtab)))
		shstrtab = append(append(shstrtab, name...), 0)
	}

	textOff := ehsize + phentsize
	symOff := align8(textOff + len(e.Code))
	symSize := (len(e.Syms) + 1) * symsize
	strOff := symOff + symSize
	shstrOff := strOff + len(strtab)
	shOff := align8(shstrOff + len(shstrtab))

	// identification
	w.Write([]byte(elf.ELFMAG))
	w.u8(uint8(e.Class))
	if e.Order == binary.ByteOrder(binary.BigEndian) {
		w.u8(uint8(elf.ELFDATA2MSB))
	} else {
		w.u8(uint8(elf.ELFDATA2LSB))
	}
	w.u8(uint8(elf.EV_CURRENT))
	w.pad(elf.EI_NIDENT)

	// file header
	w.u16(uint16(elf.ET_EXEC))
	w.u16(uint16(e.Machine))
	w.u32(uint32(elf.EV_CURRENT))
	w.word(e.TextAddr)
	w.word(uint64(ehsize))
	w.word(uint64(shOff))
	w.u32(0)
	w.u16(uint16(ehsize))
	w.u16(uint16(phentsize))
	w.u16(1)
	w.u16(uint16(shentsize))
	w.u16(6)
	w.u16(Shstrtab)

	// program header
	if w.is64 {
		w.u32(uint32(elf.PT_LOAD))
		w.u32(uint32(elf.PF_R | elf.PF_X))
		w.word(uint64(textOff))
		w.word(e.TextAddr)
		w.word(e.TextAddr)
		w.word(uint64(len(e.Code)))
		w.word(uint64(len(e.Code)))
		w.word(0x1000)
	} else {
		w.u32(uint32(elf.PT_LOAD))
		w.word(uint64(textOff))
		w.word(e.TextAddr)
		w.word(e.TextAddr)
		w.word(uint64(len(e.Code)))
		w.word(uint64(len(e.Code)))
		w.u32(uint32(elf.PF_R | elf.PF_X))
		w.word(0x1000)
	}

	w.Write(e.Code)
	w.pad(symOff + symsize) // null symbol
	for i, s := range e.Syms {
		if w.is64 {
			w.u32(nameOffs[i])
			w.u8(s.Info)
			w.u8(0)
			w.u16(s.Shndx)
			w.u64(s.Value)
			w.u64(s.Size)
		} else {
			w.u32(nameOffs[i])
			w.u32(uint32(s.Value))
			w.u32(uint32(s.Size))
			w.u8(s.Info)
			w.u8(0)
			w.u16(s.Shndx)
		}
	}
	w.Write(strtab)
	w.Write(shstrtab)
	w.pad(shOff)

	sh := func(name uint32, typ elf.SectionType, flags elf.SectionFlag, addr uint64, off, size int, link, info uint32, align, entsize uint64) {
		w.u32(name)
		w.u32(uint32(typ))
		w.word(uint64(flags))
		w.word(addr)
		w.word(uint64(off))
		w.word(uint64(size))
		w.u32(link)
		w.u32(info)
		w.word(align)
		w.word(entsize)
	}
	sh(0, elf.SHT_NULL, 0, 0, 0, 0, 0, 0, 0, 0)
	sh(shnames[0], elf.SHT_PROGBITS, elf.SHF_ALLOC|elf.SHF_EXECINSTR, e.TextAddr, textOff, len(e.Code), 0, 0, 16, 0)
	sh(shnames[1], elf.SHT_NOBITS, elf.SHF_ALLOC|elf.SHF_WRITE, BSSAddr, symOff, 0x100, 0, 0, 8, 0)
	sh(shnames[2], elf.SHT_SYMTAB, 0, 0, symOff, symSize, Strtab, 1, 8, uint64(symsize))
	sh(shnames[3], elf.SHT_STRTAB, 0, 0, strOff, len(strtab), 0, 0, 1, 0)
	sh(shnames[4], elf.SHT_STRTAB, 0, 0, shstrOff, len(shstrtab), 0, 0, 1, 0)
	return w.Bytes()
}

func SymInfo(bind elf.SymBind, typ elf.SymType) uint8 { return elf.ST_INFO(bind, typ) }

// push rbp; mov rbp, rsp; pop rbp; ret; nop; ret
var Code = []byte{0x55, 0x48, 0x89, 0xe5, 0x5d, 0xc3, 0x90, 0xc3}

const TextAddr = 0x401000

// Create an executable holding Code with two function symbols, "_ZN3foo3barEv" covering the
// first 6 bytes and "helper" covering the rest, plus an object, an undefined function and an
// unsized label.
func New(class elf.Class, order binary.ByteOrder) *ELF {
	return &ELF{
		Class:    class,
		Order:    order,
		Machine:  elf.EM_X86_64,
		TextAddr: TextAddr,
		Code:     Code,
		Syms: []Sym{
			{"helper", TextAddr + 6, 2, SymInfo(elf.STB_LOCAL, elf.STT_FUNC), Text},
			{"_ZN3foo3barEv", TextAddr, 6, SymInfo(elf.STB_GLOBAL, elf.STT_FUNC), Text},
			{"counter", BSSAddr, 8, SymInfo(elf.STB_GLOBAL, elf.STT_OBJECT), BSS},
			{"printf", 0, 0, SymInfo(elf.STB_GLOBAL, elf.STT_FUNC), uint16(elf.SHN_UNDEF)},
			{"label", TextAddr + 4, 0, SymInfo(elf.STB_LOCAL, elf.STT_FUNC), Text},
		},
	}
}
