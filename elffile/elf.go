// Package elffile parses ELF object and executable files to locate code for the x64 decoder.
//
// Only the structures needed for disassembly are read: the file header, program and section
// header tables, string tables and symbol tables. Multi-byte fields are read in the file's own
// byte order with the same cursor the decoder uses.
package elffile

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"

	x64 "github.com/wdamron/x64dis"
)

var (
	// ErrTruncated is returned when a header or table extends past the end of the file.
	ErrTruncated = x64.ErrTruncated

	ErrBadMagic     = errors.New("bad ELF magic")
	ErrBadClass     = errors.New("unknown ELF class")
	ErrBadByteOrder = errors.New("unknown ELF data encoding")
	ErrNoSymbols    = errors.New("no symbol table")
)

// Header is the ELF file header.
type Header struct {
	Class     elf.Class
	Data      elf.Data
	Version   elf.Version
	OSABI     elf.OSABI
	Type      elf.Type
	Machine   elf.Machine
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

// Section is an entry of the section header table.
type Section struct {
	Index     int
	Name      string
	NameOff   uint32
	Type      elf.SectionType
	Flags     elf.SectionFlag
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

// Check if the section holds executable code loaded at run time.
func (s *Section) Executable() bool {
	const want = elf.SHF_ALLOC | elf.SHF_EXECINSTR
	return s.Type == elf.SHT_PROGBITS && s.Flags&want == want
}

// Prog is an entry of the program header table.
type Prog struct {
	Type   elf.ProgType
	Flags  elf.ProgFlag
	Offset uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

// File is a parsed ELF file. The file's bytes are borrowed; slices returned by File methods alias
// them and are only valid until Close.
type File struct {
	Header
	ByteOrder x64.ByteOrder
	Sections  []*Section
	Progs     []*Prog

	data  []byte
	unmap func() error
}

// Field reader for one file class and byte order.
type reader struct {
	c     *x64.Cursor
	order x64.ByteOrder
	class elf.Class
}

func (r *reader) u8() (uint8, error) { return r.c.Take() }

func (r *reader) u16() (uint16, error) {
	v, err := r.c.TakeInt(2, r.order)
	return uint16(v), err
}

func (r *reader) u32() (uint32, error) {
	v, err := r.c.TakeInt(4, r.order)
	return uint32(v), err
}

func (r *reader) u64() (uint64, error) { return r.c.TakeInt(8, r.order) }

// Read an address, offset or size field: 4 bytes in 32-bit files, 8 bytes in 64-bit files.
func (r *reader) word() (uint64, error) {
	if r.class == elf.ELFCLASS32 {
		v, err := r.u32()
		return uint64(v), err
	}
	return r.u64()
}

// Read fields in order, stopping at the first error.
func (r *reader) read(fields ...interface{}) error {
	for _, f := range fields {
		var err error
		switch f := f.(type) {
		case *uint8:
			*f, err = r.u8()
		case *uint16:
			*f, err = r.u16()
		case *uint32:
			*f, err = r.u32()
		case *uint64:
			*f, err = r.word()
		default:
			panic(fmt.Sprintf("elffile: unsupported field type %T", f))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Parse an ELF file from its bytes. data is borrowed, not copied.
func Parse(data []byte) (*File, error) {
	if len(data) < elf.EI_NIDENT {
		return nil, fmt.Errorf("ELF identification needs %d bytes, found %d: %w", elf.EI_NIDENT, len(data), ErrTruncated)
	}
	if !bytes.HasPrefix(data, []byte(elf.ELFMAG)) {
		return nil, fmt.Errorf("% x: %w", data[:4], ErrBadMagic)
	}

	f := &File{data: data}
	f.Class = elf.Class(data[elf.EI_CLASS])
	f.Data = elf.Data(data[elf.EI_DATA])
	f.Version = elf.Version(data[elf.EI_VERSION])
	f.OSABI = elf.OSABI(data[elf.EI_OSABI])
	switch f.Class {
	case elf.ELFCLASS32, elf.ELFCLASS64:
	default:
		return nil, fmt.Errorf("%d: %w", uint8(f.Class), ErrBadClass)
	}
	switch f.Data {
	case elf.ELFDATA2LSB:
		f.ByteOrder = x64.LittleEndian
	case elf.ELFDATA2MSB:
		f.ByteOrder = x64.BigEndian
	default:
		return nil, fmt.Errorf("%d: %w", uint8(f.Data), ErrBadByteOrder)
	}

	r := &reader{c: x64.NewCursor(data), order: f.ByteOrder, class: f.Class}
	if err := r.c.Seek(elf.EI_NIDENT); err != nil {
		return nil, err
	}
	var typ, machine uint16
	var version uint32
	err := r.read(&typ, &machine, &version, &f.Entry, &f.Phoff, &f.Shoff, &f.Flags,
		&f.Ehsize, &f.Phentsize, &f.Phnum, &f.Shentsize, &f.Shnum, &f.Shstrndx)
	if err != nil {
		return nil, fmt.Errorf("read file header: %w", err)
	}
	f.Type, f.Machine = elf.Type(typ), elf.Machine(machine)

	if err := f.readProgs(r); err != nil {
		return nil, err
	}
	if err := f.readSections(r); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) entrySize(actual uint16, size32, size64 int) (int, error) {
	want := size64
	if f.Class == elf.ELFCLASS32 {
		want = size32
	}
	if int(actual) < want {
		return 0, fmt.Errorf("table entry size %d is smaller than %d", actual, want)
	}
	return int(actual), nil
}

// Seek to entry i of a table at off. Offsets past the end of the file are truncation errors.
func (r *reader) seekEntry(off uint64, i, size int) error {
	pos := off + uint64(i)*uint64(size)
	if pos > uint64(r.c.Len()) {
		return fmt.Errorf("table entry at offset %#x: %w", pos, ErrTruncated)
	}
	return r.c.Seek(int(pos))
}

func (f *File) readProgs(r *reader) error {
	if f.Phoff == 0 || f.Phnum == 0 {
		return nil
	}
	size, err := f.entrySize(f.Phentsize, 32, 56)
	if err != nil {
		return fmt.Errorf("program headers: %w", err)
	}
	f.Progs = make([]*Prog, f.Phnum)
	for i := range f.Progs {
		if err := r.seekEntry(f.Phoff, i, size); err != nil {
			return fmt.Errorf("program header %d: %w", i, err)
		}
		p := &Prog{}
		var typ, flags uint32
		if f.Class == elf.ELFCLASS32 {
			err = r.read(&typ, &p.Offset, &p.Vaddr, &p.Paddr, &p.Filesz, &p.Memsz, &flags, &p.Align)
		} else {
			err = r.read(&typ, &flags, &p.Offset, &p.Vaddr, &p.Paddr, &p.Filesz, &p.Memsz, &p.Align)
		}
		if err != nil {
			return fmt.Errorf("program header %d: %w", i, err)
		}
		p.Type, p.Flags = elf.ProgType(typ), elf.ProgFlag(flags)
		f.Progs[i] = p
	}
	return nil
}

func (f *File) readSection(r *reader, i, size int) (*Section, error) {
	if err := r.seekEntry(f.Shoff, i, size); err != nil {
		return nil, err
	}
	s := &Section{Index: i}
	var typ uint32
	var flags uint64
	err := r.read(&s.NameOff, &typ, &flags, &s.Addr, &s.Offset, &s.Size, &s.Link, &s.Info, &s.Addralign, &s.Entsize)
	if err != nil {
		return nil, err
	}
	s.Type, s.Flags = elf.SectionType(typ), elf.SectionFlag(flags)
	return s, nil
}

func (f *File) readSections(r *reader) error {
	if f.Shoff == 0 {
		return nil
	}
	size, err := f.entrySize(f.Shentsize, 40, 64)
	if err != nil {
		return fmt.Errorf("section headers: %w", err)
	}

	// With extended numbering, the count and string table index are held by section 0.
	count, strndx := uint64(f.Shnum), uint64(f.Shstrndx)
	if count == 0 || strndx == uint64(elf.SHN_XINDEX) {
		s0, err := f.readSection(r, 0, size)
		if err != nil {
			return fmt.Errorf("section header 0: %w", err)
		}
		if count == 0 {
			count = s0.Size
		}
		if strndx == uint64(elf.SHN_XINDEX) {
			strndx = uint64(s0.Link)
		}
	}
	if count > uint64(len(f.data))/uint64(size) {
		return fmt.Errorf("%d section headers: %w", count, ErrTruncated)
	}

	f.Sections = make([]*Section, int(count))
	for i := range f.Sections {
		if f.Sections[i], err = f.readSection(r, i, size); err != nil {
			return fmt.Errorf("section header %d: %w", i, err)
		}
	}

	if strndx == uint64(elf.SHN_UNDEF) {
		return nil
	}
	if strndx >= count {
		return fmt.Errorf("section name table index %d out of range (%d sections)", strndx, count)
	}
	names, err := f.stringTable(f.Sections[strndx])
	if err != nil {
		return fmt.Errorf("section name table: %w", err)
	}
	for i, s := range f.Sections {
		if s.Name, err = names.Lookup(s.NameOff); err != nil {
			return fmt.Errorf("section header %d name: %w", i, err)
		}
	}
	return nil
}

// Get the file's bytes.
func (f *File) Bytes() []byte { return f.data }

// Get the first section with the given name, or nil.
func (f *File) Section(name string) *Section {
	for _, s := range f.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Get the contents of a section. Sections which occupy no space in the file have no contents.
func (f *File) SectionData(s *Section) ([]byte, error) {
	if s.Type == elf.SHT_NOBITS || s.Size == 0 {
		return nil, nil
	}
	end := s.Offset + s.Size
	if end < s.Offset || end > uint64(len(f.data)) {
		return nil, fmt.Errorf("section %q at %#x+%#x: %w", s.Name, s.Offset, s.Size, ErrTruncated)
	}
	return f.data[s.Offset:end], nil
}

// Get the sections holding executable code, in section header order.
func (f *File) ExecSections() []*Section {
	var secs []*Section
	for _, s := range f.Sections {
		if s.Executable() {
			secs = append(secs, s)
		}
	}
	return secs
}
